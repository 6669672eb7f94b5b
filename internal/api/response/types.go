package response

import (
	"time"

	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/services/room"
)

// Guess represents a submitted guess
type Guess struct {
	Word          string    `json:"word"`
	AttemptNumber int       `json:"attemptNumber"`
	Timestamp     time.Time `json:"timestamp"`
}

// Player represents a room member with their guesses
type Player struct {
	Username   string    `json:"username"`
	Score      int       `json:"score"`
	Won        bool      `json:"won"`
	Eliminated bool      `json:"eliminated"`
	Outcome    string    `json:"outcome"`
	Guesses    []Guess   `json:"guesses"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// PlayerFromModel converts a model.Player; mode decides the eliminated flag
func PlayerFromModel(p model.Player, mode model.GameMode) Player {
	guesses := make([]Guess, len(p.Guesses))
	for i, g := range p.Guesses {
		guesses[i] = Guess{Word: g.Word, AttemptNumber: g.AttemptNumber, Timestamp: g.Timestamp}
	}
	return Player{
		Username:   p.Username,
		Score:      p.Score,
		Won:        p.HasWon(),
		Eliminated: p.IsEliminated(mode),
		Outcome:    string(p.Outcome),
		Guesses:    guesses,
		JoinedAt:   p.JoinedAt,
	}
}

// PlayersFromModel converts every player in a room
func PlayersFromModel(r *model.Room) []Player {
	players := make([]Player, len(r.Players))
	for i, p := range r.Players {
		players[i] = PlayerFromModel(p, r.Mode)
	}
	return players
}

// Room represents a room in API responses
type Room struct {
	Code          string     `json:"roomCode"`
	HostID        string     `json:"hostId"`
	Mode          string     `json:"mode"`
	MaxPlayers    int        `json:"maxPlayers"`
	Status        string     `json:"status"`
	Players       []Player   `json:"players"`
	Winner        *string    `json:"winner"`
	SolutionWord  string     `json:"solutionWord,omitempty"`
	RoundNumber   int        `json:"roundNumber"`
	GameStartTime *time.Time `json:"gameStartTime,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastActivity  time.Time  `json:"lastActivity"`
}

// RoomFromModel converts model.Room. The solution is only revealed once the
// game is finished.
func RoomFromModel(r *model.Room) Room {
	resp := Room{
		Code:         string(r.Code),
		HostID:       r.HostID,
		Mode:         string(r.Mode),
		MaxPlayers:   r.MaxPlayers,
		Status:       string(r.Status),
		Players:      PlayersFromModel(r),
		Winner:       Winner(r.Winner),
		RoundNumber:  r.RoundNumber,
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivity,
	}
	if r.Status == model.RoomStatusFinished {
		resp.SolutionWord = r.SolutionWord
	}
	if !r.GameStartTime.IsZero() {
		t := r.GameStartTime
		resp.GameStartTime = &t
	}
	return resp
}

// Winner converts an empty winner to null
func Winner(username string) *string {
	if username == "" {
		return nil
	}
	return &username
}

// PlayerStatus is a player's standing without guesses
type PlayerStatus struct {
	Username   string `json:"username"`
	Score      int    `json:"score"`
	Eliminated bool   `json:"eliminated"`
	Won        bool   `json:"won"`
}

// Stats aggregates player standings
type Stats struct {
	TotalPlayers      int `json:"totalPlayers"`
	ActivePlayers     int `json:"activePlayers"`
	EliminatedPlayers int `json:"eliminatedPlayers"`
	Winners           int `json:"winners"`
}

// RoomStatus is the redacted room view
type RoomStatus struct {
	Code       string         `json:"roomCode"`
	HostID     string         `json:"hostId"`
	Mode       string         `json:"mode"`
	Status     string         `json:"status"`
	MaxPlayers int            `json:"maxPlayers"`
	Winner     *string        `json:"winner"`
	Players    []PlayerStatus `json:"players"`
	Stats      Stats          `json:"stats"`
}

// RoomStatusFromView converts room.StatusView
func RoomStatusFromView(v *room.StatusView) RoomStatus {
	players := make([]PlayerStatus, len(v.Players))
	for i, p := range v.Players {
		players[i] = PlayerStatus{
			Username:   p.Username,
			Score:      p.Score,
			Eliminated: p.Eliminated,
			Won:        p.Won,
		}
	}
	return RoomStatus{
		Code:       string(v.Code),
		HostID:     v.HostID,
		Mode:       string(v.Mode),
		Status:     string(v.Status),
		MaxPlayers: v.MaxPlayers,
		Winner:     Winner(v.Winner),
		Players:    players,
		Stats: Stats{
			TotalPlayers:      v.Stats.TotalPlayers,
			ActivePlayers:     v.Stats.ActivePlayers,
			EliminatedPlayers: v.Stats.EliminatedPlayers,
			Winners:           v.Stats.Winners,
		},
	}
}

// RoomCounts represents room totals by status
type RoomCounts struct {
	Total    int `json:"total"`
	Waiting  int `json:"waiting"`
	Playing  int `json:"playing"`
	Finished int `json:"finished"`
}

// RoomCountsFromModel converts model.RoomCounts
func RoomCountsFromModel(c model.RoomCounts) RoomCounts {
	return RoomCounts{
		Total:    c.Total,
		Waiting:  c.Waiting,
		Playing:  c.Playing,
		Finished: c.Finished,
	}
}

// Health is the health check response
type Health struct {
	Status           string `json:"status"`
	DictionaryLoaded bool   `json:"dictionaryLoaded"`
	DictionaryWords  int    `json:"dictionaryWords"`
}
