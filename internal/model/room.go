package model

import "time"

// RoomCode is a short human-readable identifier for a room.
// It is both the storage key and the broadcast channel name.
type RoomCode string

// GameMode selects the player bounds and end-of-game policy of a room
type GameMode string

const (
	ModeDuel         GameMode = "duel"          // Exactly two players, first win ends the game
	ModeBattleRoyale GameMode = "battle_royale" // Up to eight players, last one standing wins
)

// RoomStatus represents the current phase of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Accepting players, no game running
	RoomStatusPlaying  RoomStatus = "playing"  // Game in progress
	RoomStatusFinished RoomStatus = "finished" // Game over, results visible
)

// Game rules shared by both modes
const (
	WordLength             = 5
	MaxGuesses             = 6
	MinPlayersToStart      = 2
	DuelMaxPlayers         = 2
	BattleRoyaleMaxPlayers = 8
)

// Valid reports whether the mode is one of the known game modes
func (m GameMode) Valid() bool {
	return m == ModeDuel || m == ModeBattleRoyale
}

// MaxPlayers returns the player cap for the mode
func (m GameMode) MaxPlayers() int {
	if m == ModeBattleRoyale {
		return BattleRoyaleMaxPlayers
	}
	return DuelMaxPlayers
}

// Room is a time-bounded game session container
type Room struct {
	Code         RoomCode
	HostID       string
	Mode         GameMode
	MaxPlayers   int
	Status       RoomStatus
	SolutionWord string

	// Players in join order; usernames are unique within the room
	Players []Player

	// Winner is the username of the winner once finished, empty for a draw
	Winner string

	RoundNumber   int
	GameStartTime time.Time
	CreatedAt     time.Time
	LastActivity  time.Time
}

// GetPlayer returns the player with the given username, or nil if not found
func (r *Room) GetPlayer(username string) *Player {
	for i := range r.Players {
		if r.Players[i].Username == username {
			return &r.Players[i]
		}
	}
	return nil
}

// HasPlayer reports whether a player with the given username is in the room
func (r *Room) HasPlayer(username string) bool {
	return r.GetPlayer(username) != nil
}

// IsFull returns true if no more players can join
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// ActivePlayers returns the players still able to guess this round
func (r *Room) ActivePlayers() []Player {
	var active []Player
	for _, p := range r.Players {
		if p.CanGuess() {
			active = append(active, p)
		}
	}
	return active
}

// RemovePlayer removes the player with the given username.
// Returns false if no such player exists.
func (r *Room) RemovePlayer(username string) bool {
	for i, p := range r.Players {
		if p.Username == username {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// Age returns how long the room has existed at the given instant
func (r *Room) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		clone.Players[i] = p.Clone()
	}
	return &clone
}

// RoomCounts aggregates rooms by status
type RoomCounts struct {
	Total    int
	Waiting  int
	Playing  int
	Finished int
}
