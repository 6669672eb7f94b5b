package room

import "github.com/mcoot/wordbattle/internal/model"

// StatusView is a room with guesses and the solution redacted
type StatusView struct {
	Code       model.RoomCode
	HostID     string
	Mode       model.GameMode
	Status     model.RoomStatus
	MaxPlayers int
	Winner     string
	Players    []PlayerStatus
	Stats      Stats
}

// PlayerStatus is the public standing of one player
type PlayerStatus struct {
	Username   string
	Score      int
	Eliminated bool
	Won        bool
}

// Stats aggregates player standings
type Stats struct {
	TotalPlayers      int
	ActivePlayers     int
	EliminatedPlayers int
	Winners           int
}

// NewStatusView builds the redacted view of a room
func NewStatusView(room *model.Room) *StatusView {
	view := &StatusView{
		Code:       room.Code,
		HostID:     room.HostID,
		Mode:       room.Mode,
		Status:     room.Status,
		MaxPlayers: room.MaxPlayers,
		Winner:     room.Winner,
		Players:    make([]PlayerStatus, 0, len(room.Players)),
	}

	for _, p := range room.Players {
		status := PlayerStatus{
			Username:   p.Username,
			Score:      p.Score,
			Eliminated: p.IsEliminated(room.Mode),
			Won:        p.HasWon(),
		}
		view.Players = append(view.Players, status)

		if p.CanGuess() {
			view.Stats.ActivePlayers++
		}
		if status.Eliminated {
			view.Stats.EliminatedPlayers++
		}
		if status.Won {
			view.Stats.Winners++
		}
	}
	view.Stats.TotalPlayers = len(room.Players)

	return view
}
