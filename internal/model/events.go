package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Room events
	EventRoomUpdated EventType = "room_updated"
	EventRoomClosed  EventType = "room_closed"

	// Game events
	EventGameStarted      EventType = "game_started"
	EventGuessSubmitted   EventType = "guess_submitted"
	EventPlayerEliminated EventType = "player_eliminated"
	EventGameOver         EventType = "game_over"
)

// Event is a committed state change of a single room
type Event struct {
	Type      EventType
	Timestamp time.Time
	RoomCode  RoomCode
	Username  string // The player who triggered or is affected, if any
	Room      *Room  // Snapshot after the change; nil for room_closed
	Payload   any    // Type-specific data
}

// RoomUpdatedReason explains why a room snapshot was broadcast
type RoomUpdatedReason string

const (
	ReasonPlayerJoined    RoomUpdatedReason = "player_joined"
	ReasonPlayerLeft      RoomUpdatedReason = "player_left"
	ReasonReturnedToLobby RoomUpdatedReason = "returned_to_lobby"
)

// RoomUpdatedPayload contains data for room updated events
type RoomUpdatedPayload struct {
	Reason      RoomUpdatedReason
	HostChanged bool
}

// RoomClosedReason explains why a room was removed
type RoomClosedReason string

const (
	ClosedEmpty   RoomClosedReason = "empty"
	ClosedExpired RoomClosedReason = "expired"
	ClosedDeleted RoomClosedReason = "deleted"
)

// RoomClosedPayload contains data for room closed events
type RoomClosedPayload struct {
	Reason RoomClosedReason
}

// GuessSubmittedPayload contains data for guess submitted events
type GuessSubmittedPayload struct {
	Guess         string
	AttemptNumber int
	Won           bool
	Eliminated    bool
}

// EliminationReason distinguishes players out by winning from players out of guesses
type EliminationReason string

const (
	EliminatedByVictory    EliminationReason = "won"
	EliminatedByExhaustion EliminationReason = "exhausted"
)

// PlayerEliminatedPayload contains data for player eliminated events
type PlayerEliminatedPayload struct {
	Reason           EliminationReason
	RemainingPlayers []string
}

// GameOverReason explains how a game ended
type GameOverReason string

const (
	GameOverSolved       GameOverReason = "solved"        // Duel: a player guessed the word
	GameOverLastStanding GameOverReason = "last_standing" // Battle royale: one active player left
	GameOverDraw         GameOverReason = "draw"          // Nobody left to guess and no winner
	GameOverForfeit      GameOverReason = "forfeit"       // Opponent left mid-game
	GameOverAllFinished  GameOverReason = "all_finished"  // Battle royale: everyone out, best winner takes it
)

// GameOver describes how a game ended
type GameOver struct {
	Winner string // Empty for a draw
	Reason GameOverReason
}

// IsDraw returns true if the game ended without a winner
func (g *GameOver) IsDraw() bool {
	return g.Winner == ""
}

// GameOverPayload contains data for game over events
type GameOverPayload struct {
	GameOver
}
