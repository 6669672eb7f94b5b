package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/wordbattle/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes, shared by the HTTP and websocket surfaces
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeInvalidUsername       = "INVALID_USERNAME"
	CodeInvalidMode           = "INVALID_MODE"
	CodeRoomNotFound          = "ROOM_NOT_FOUND"
	CodeRoomFull              = "ROOM_FULL"
	CodeUsernameTaken         = "USERNAME_TAKEN"
	CodeCodeExhausted         = "ROOM_CODE_EXHAUSTED"
	CodeGameInProgress        = "GAME_IN_PROGRESS"
	CodeGameNotInProgress     = "GAME_NOT_IN_PROGRESS"
	CodeGameNotFinished       = "GAME_NOT_FINISHED"
	CodeInsufficientPlayers   = "INSUFFICIENT_PLAYERS"
	CodeInvalidCustomWord     = "INVALID_CUSTOM_WORD"
	CodeInvalidGuess          = "INVALID_GUESS"
	CodePlayerNotFound        = "PLAYER_NOT_FOUND"
	CodeDictionaryUnavailable = "DICTIONARY_UNAVAILABLE"
	CodeUnknownEvent          = "UNKNOWN_EVENT"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// FromError returns the client facing code and message for err
func FromError(err error) APIError {
	return toHTTPError(err).apiError
}

// IsInternal reports whether err has no client facing mapping
func IsInternal(err error) bool {
	return toHTTPError(err).status == http.StatusInternalServerError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username is already taken in this room"}}
	case errors.Is(err, model.ErrInvalidUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUsername, "Username must be 1 to 20 characters"}}
	case errors.Is(err, model.ErrInvalidMode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMode, "Mode must be duel or battle_royale"}}
	case errors.Is(err, model.ErrCodeGenerationExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeCodeExhausted, "Could not allocate a room code, try again"}}
	case errors.Is(err, model.ErrGameInProgress):
		return &httpError{http.StatusConflict, APIError{CodeGameInProgress, "Game has already started"}}
	case errors.Is(err, model.ErrGameNotInProgress):
		return &httpError{http.StatusConflict, APIError{CodeGameNotInProgress, "No game in progress"}}
	case errors.Is(err, model.ErrGameNotFinished):
		return &httpError{http.StatusConflict, APIError{CodeGameNotFinished, "Game has not finished"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "At least 2 players are needed to start"}}
	case errors.Is(err, model.ErrInvalidCustomWord):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCustomWord, "Custom word must be a valid 5-letter word"}}
	case errors.Is(err, model.ErrInvalidGuessFormat):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGuess, "Guess must be exactly 5 letters"}}
	case errors.Is(err, model.ErrPlayerNotFoundOrEliminated), errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrDictionaryNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeDictionaryUnavailable, "Word list is not loaded"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnknownEventError creates an error for an unrecognised websocket event
func NewUnknownEventError(event string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeUnknownEvent, "Unknown event: " + event}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
