package ws

import (
	"encoding/json"

	"github.com/mcoot/wordbattle/internal/api/response"
)

// Inbound events
const (
	EventJoin          = "join"
	EventLeave         = "leave"
	EventLeaveRoom     = "leaveRoom"
	EventStartGame     = "startGame"
	EventSubmitGuess   = "submitGuess"
	EventGetRoomStatus = "getRoomStatus"
	EventReturnToLobby = "returnToLobby"
)

// Outbound events
const (
	EventConnected        = "connected"
	EventRoomUpdated      = "room-updated"
	EventRoomClosed       = "room-closed"
	EventGameStarted      = "game-started"
	EventGuessSubmitted   = "guess-submitted"
	EventPlayerEliminated = "player-eliminated"
	EventGameOver         = "game-over"
	EventRoomStatus       = "room-status"
	EventRoomError        = "room-error"
	EventGameError        = "game-error"
)

// Envelope is the frame format in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode builds an outbound frame
func Encode(event string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}

// JoinData is sent with join
type JoinData struct {
	Username string `json:"username"`
	RoomCode string `json:"roomCode"`
}

// LeaveData is sent with leave
type LeaveData struct {
	Username string `json:"username"`
	RoomCode string `json:"roomCode"`
}

// StartGameData is sent with startGame
type StartGameData struct {
	RoomCode   string `json:"roomCode"`
	CustomWord string `json:"customWord,omitempty"`
}

// SubmitGuessData is sent with submitGuess
type SubmitGuessData struct {
	RoomCode      string `json:"roomCode"`
	Username      string `json:"username"`
	Guess         string `json:"guess"`
	AttemptNumber int    `json:"attemptNumber"`
}

// RoomCodeData is sent with getRoomStatus and returnToLobby
type RoomCodeData struct {
	RoomCode string `json:"roomCode"`
}

// ConnectedData is sent privately when a connection opens
type ConnectedData struct {
	ConnectionID string `json:"connectionId"`
}

// RoomUpdatedData carries a room snapshot
type RoomUpdatedData struct {
	Room        response.Room `json:"room"`
	Reason      string        `json:"reason"`
	Username    string        `json:"username,omitempty"`
	HostChanged bool          `json:"hostChanged,omitempty"`
}

// Settings are the rules of a started game
type Settings struct {
	WordLength int `json:"wordLength"`
	MaxGuesses int `json:"maxGuesses"`
	MaxPlayers int `json:"maxPlayers"`
}

// GameStartedData carries the start of game snapshot, solution included
type GameStartedData struct {
	RoomCode     string            `json:"roomCode"`
	SolutionWord string            `json:"solutionWord"`
	Status       string            `json:"status"`
	Mode         string            `json:"mode"`
	RoundNumber  int               `json:"roundNumber"`
	Players      []response.Player `json:"players"`
	Settings     Settings          `json:"settings"`
}

// GuessSubmittedData reports a guess and the resulting player list
type GuessSubmittedData struct {
	RoomCode      string            `json:"roomCode"`
	Username      string            `json:"username"`
	Guess         string            `json:"guess"`
	AttemptNumber int               `json:"attemptNumber"`
	Won           bool              `json:"won"`
	Eliminated    bool              `json:"eliminated"`
	Players       []response.Player `json:"players"`
}

// PlayerEliminatedData reports a player leaving the active set mid-game
type PlayerEliminatedData struct {
	RoomCode         string            `json:"roomCode"`
	EliminatedPlayer string            `json:"eliminatedPlayer"`
	Reason           string            `json:"reason"`
	RemainingPlayers []string          `json:"remainingPlayers"`
	Players          []response.Player `json:"players"`
}

// GameOverData reports the end of a game
type GameOverData struct {
	RoomCode     string            `json:"roomCode"`
	Winner       *string           `json:"winner"`
	Reason       string            `json:"reason"`
	SolutionWord string            `json:"solutionWord"`
	Status       string            `json:"status"`
	Mode         string            `json:"mode"`
	Players      []response.Player `json:"players"`
}

// RoomClosedData reports that a room no longer exists
type RoomClosedData struct {
	RoomCode string `json:"roomCode"`
	Reason   string `json:"reason"`
}

// ErrorData is sent privately with room-error and game-error
type ErrorData struct {
	Event   string `json:"event,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
