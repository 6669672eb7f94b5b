package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound            = errors.New("room not found")
	ErrRoomFull                = errors.New("room is full")
	ErrUsernameTaken           = errors.New("username is already taken in this room")
	ErrInvalidUsername         = errors.New("invalid username")
	ErrInvalidMode             = errors.New("invalid game mode")
	ErrCodeGenerationExhausted = errors.New("could not generate a unique room code")

	// Game errors
	ErrGameInProgress             = errors.New("game is already in progress")
	ErrGameNotInProgress          = errors.New("no game in progress")
	ErrGameNotFinished            = errors.New("game has not finished")
	ErrInsufficientPlayers        = errors.New("insufficient players to start game")
	ErrInvalidCustomWord          = errors.New("invalid custom word")
	ErrInvalidGuessFormat         = errors.New("invalid guess format")
	ErrPlayerNotFound             = errors.New("player not found")
	ErrPlayerNotFoundOrEliminated = errors.New("player not found or eliminated")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)
