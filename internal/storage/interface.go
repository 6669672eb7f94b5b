package storage

import (
	"context"

	"github.com/mcoot/wordbattle/internal/model"
)

// RoomStorage holds the authoritative table of rooms.
// Implementations copy on the way in and out so callers never share state.
type RoomStorage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
}

// DictionaryStorage caches the loaded word list
type DictionaryStorage interface {
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error
}

// Storage defines the interface for data persistence
type Storage interface {
	RoomStorage
	DictionaryStorage
}
