package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/wordbattle/internal/dependencies/clock"
	"github.com/mcoot/wordbattle/internal/dependencies/random"
	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/services/game"
	"github.com/mcoot/wordbattle/internal/storage"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MaxCodeAttempts bounds retries when a generated code collides
	MaxCodeAttempts = 10
	// MaxUsernameLength is the longest accepted display name, in runes
	MaxUsernameLength = 20
)

// Publisher receives committed room events. Publish is called while the
// room is still locked and must not block or call back into the Controller.
type Publisher interface {
	Publish(event model.Event)
}

// NopPublisher discards every event
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(model.Event) {}

// Controller is the authoritative store of rooms. Every operation on a
// room code runs under that code's lock; different codes never contend.
type Controller struct {
	storage   storage.RoomStorage
	engine    *game.Engine
	clock     clock.Clock
	random    random.Random
	publisher Publisher
	locks     *keyedMutex
	logger    *slog.Logger
}

// NewController creates a new room Controller. A nil publisher discards events.
func NewController(
	storage storage.RoomStorage,
	engine *game.Engine,
	clock clock.Clock,
	random random.Random,
	publisher Publisher,
	logger *slog.Logger,
) *Controller {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Controller{
		storage:   storage,
		engine:    engine,
		clock:     clock,
		random:    random,
		publisher: publisher,
		locks:     newKeyedMutex(),
		logger:    logger.With(slog.String("component", "room-controller")),
	}
}

// NormalizeCode upper-cases and trims a client supplied room code
func NormalizeCode(code string) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}

// NormalizeUsername trims a display name and checks its length
func NormalizeUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" || utf8.RuneCountInString(name) > MaxUsernameLength {
		return "", model.ErrInvalidUsername
	}
	return name, nil
}

// CreateRoom creates a new room with the given player as host
func (c *Controller) CreateRoom(ctx context.Context, username string, mode model.GameMode) (*model.Room, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, model.ErrInvalidMode
	}

	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code := model.RoomCode(c.random.String(CodeLength, CodeAlphabet))
		room, err := c.tryCreate(ctx, code, name, mode)
		if err != nil {
			return nil, err
		}
		if room != nil {
			c.logger.Info("room created",
				slog.String("room_code", string(code)),
				slog.String("host", name),
				slog.String("mode", string(mode)))
			return room, nil
		}
	}

	c.logger.Error("room code generation exhausted", slog.Int("attempts", MaxCodeAttempts))
	return nil, model.ErrCodeGenerationExhausted
}

// tryCreate saves a fresh room under code, returning nil if the code is taken
func (c *Controller) tryCreate(ctx context.Context, code model.RoomCode, host string, mode model.GameMode) (*model.Room, error) {
	if len(code) != CodeLength {
		return nil, nil
	}

	unlock := c.locks.Lock(code)
	defer unlock()

	exists, err := c.storage.RoomExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	now := c.clock.Now()
	room := &model.Room{
		Code:         code,
		HostID:       host,
		Mode:         mode,
		MaxPlayers:   mode.MaxPlayers(),
		Status:       model.RoomStatusWaiting,
		Players:      []model.Player{model.NewPlayer(host, now)},
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, NormalizeCode(string(code)))
}

// JoinRoom adds a player to a waiting room
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, username string) (*model.Room, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	var joined *model.Room
	err = c.withRoom(ctx, code, func(room *model.Room) error {
		if room.Status != model.RoomStatusWaiting {
			return model.ErrGameInProgress
		}
		if room.IsFull() {
			return model.ErrRoomFull
		}
		if room.HasPlayer(name) {
			return model.ErrUsernameTaken
		}

		room.Players = append(room.Players, model.NewPlayer(name, c.clock.Now()))

		if err := c.commit(ctx, room, c.event(model.EventRoomUpdated, name, model.RoomUpdatedPayload{
			Reason: model.ReasonPlayerJoined,
		})); err != nil {
			return err
		}
		joined = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("player joined room",
		slog.String("room_code", string(joined.Code)),
		slog.String("username", name),
		slog.Int("player_count", len(joined.Players)))
	return joined, nil
}

// LeaveRoom removes a player from a room. The last player out deletes the
// room, a departing host hands over to the earliest remaining player, and a
// game in progress is re-evaluated. Reports whether a player was removed.
func (c *Controller) LeaveRoom(ctx context.Context, code model.RoomCode, username string) (bool, error) {
	name := strings.TrimSpace(username)
	removed := false

	err := c.withRoom(ctx, code, func(room *model.Room) error {
		if !room.RemovePlayer(name) {
			return nil
		}
		removed = true

		if len(room.Players) == 0 {
			return c.remove(ctx, room.Code, model.ClosedEmpty)
		}

		hostChanged := false
		if room.HostID == name {
			room.HostID = room.Players[0].Username
			hostChanged = true
		}

		events := []model.Event{c.event(model.EventRoomUpdated, name, model.RoomUpdatedPayload{
			Reason:      model.ReasonPlayerLeft,
			HostChanged: hostChanged,
		})}
		if over := c.engine.ResolveDeparture(room); over != nil {
			events = append(events, c.event(model.EventGameOver, over.Winner, model.GameOverPayload{GameOver: *over}))
		}

		return c.commit(ctx, room, events...)
	})
	if err != nil {
		return false, err
	}

	if removed {
		c.logger.Info("player left room",
			slog.String("room_code", string(NormalizeCode(string(code)))),
			slog.String("username", name))
	}
	return removed, nil
}

// DeleteRoom removes a room regardless of its state
func (c *Controller) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	return c.withRoom(ctx, code, func(room *model.Room) error {
		return c.remove(ctx, room.Code, model.ClosedDeleted)
	})
}

// StartGame starts a game in a waiting room
func (c *Controller) StartGame(ctx context.Context, code model.RoomCode, customWord string) (*model.Room, error) {
	var started *model.Room
	err := c.withRoom(ctx, code, func(room *model.Room) error {
		if err := c.engine.StartGame(room, customWord); err != nil {
			return err
		}
		if err := c.commit(ctx, room, c.event(model.EventGameStarted, "", nil)); err != nil {
			return err
		}
		started = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// SubmitGuess applies a guess and publishes its consequences: a game over or
// an elimination when either happened, then the guess itself
func (c *Controller) SubmitGuess(ctx context.Context, code model.RoomCode, username, guess string, attemptNumber int) (*game.GuessResult, *model.Room, error) {
	var (
		result  *game.GuessResult
		updated *model.Room
	)
	err := c.withRoom(ctx, code, func(room *model.Room) error {
		var err error
		result, err = c.engine.SubmitGuess(room, username, guess, attemptNumber)
		if err != nil {
			return err
		}

		player := result.Player
		var events []model.Event
		switch {
		case result.GameOver != nil:
			events = append(events, c.event(model.EventGameOver, result.GameOver.Winner,
				model.GameOverPayload{GameOver: *result.GameOver}))
		case result.Outcome == game.GuessWon:
			events = append(events, c.event(model.EventPlayerEliminated, username, model.PlayerEliminatedPayload{
				Reason:           model.EliminatedByVictory,
				RemainingPlayers: game.RemainingPlayers(room),
			}))
		case result.Outcome == game.GuessEliminated:
			events = append(events, c.event(model.EventPlayerEliminated, username, model.PlayerEliminatedPayload{
				Reason:           model.EliminatedByExhaustion,
				RemainingPlayers: game.RemainingPlayers(room),
			}))
		}
		events = append(events, c.event(model.EventGuessSubmitted, username, model.GuessSubmittedPayload{
			Guess:         result.Guess.Word,
			AttemptNumber: result.Guess.AttemptNumber,
			Won:           player.HasWon(),
			Eliminated:    player.IsEliminated(room.Mode),
		}))

		if err := c.commit(ctx, room, events...); err != nil {
			return err
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, updated, nil
}

// ReturnToLobby moves a finished room back to waiting so it can be replayed
func (c *Controller) ReturnToLobby(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	var reset *model.Room
	err := c.withRoom(ctx, code, func(room *model.Room) error {
		if err := c.engine.ReturnToLobby(room); err != nil {
			return err
		}
		if err := c.commit(ctx, room, c.event(model.EventRoomUpdated, "", model.RoomUpdatedPayload{
			Reason: model.ReasonReturnedToLobby,
		})); err != nil {
			return err
		}
		reset = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reset, nil
}

// RoomStatus returns a redacted view of a room without changing it
func (c *Controller) RoomStatus(ctx context.Context, code model.RoomCode) (*StatusView, error) {
	room, err := c.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return NewStatusView(room), nil
}

// Counts aggregates the current rooms by status
func (c *Controller) Counts(ctx context.Context) (model.RoomCounts, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return model.RoomCounts{}, err
	}

	counts := model.RoomCounts{Total: len(rooms)}
	for _, room := range rooms {
		switch room.Status {
		case model.RoomStatusWaiting:
			counts.Waiting++
		case model.RoomStatusPlaying:
			counts.Playing++
		case model.RoomStatusFinished:
			counts.Finished++
		}
	}
	return counts, nil
}

// Sweep deletes every room older than maxAge and returns their codes
func (c *Controller) Sweep(ctx context.Context, maxAge time.Duration) ([]model.RoomCode, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	var swept []model.RoomCode
	for _, candidate := range rooms {
		if candidate.Age(c.clock.Now()) <= maxAge {
			continue
		}

		err := c.withRoom(ctx, candidate.Code, func(room *model.Room) error {
			// Re-check under the lock in case it changed since listing
			if room.Age(c.clock.Now()) <= maxAge {
				return nil
			}
			if err := c.remove(ctx, room.Code, model.ClosedExpired); err != nil {
				return err
			}
			swept = append(swept, room.Code)
			return nil
		})
		if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
			return swept, fmt.Errorf("sweep room %s: %w", candidate.Code, err)
		}
	}

	if len(swept) > 0 {
		c.logger.Info("expired rooms swept",
			slog.Int("count", len(swept)),
			slog.Duration("max_age", maxAge))
	}
	return swept, nil
}

// withRoom locks the room and hands fn a private copy. Changes only take
// effect if fn commits them.
func (c *Controller) withRoom(ctx context.Context, code model.RoomCode, fn func(room *model.Room) error) error {
	code = NormalizeCode(string(code))

	unlock := c.locks.Lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	return fn(room)
}

// commit saves the room and publishes events stamped with its new state.
// Must be called with the room lock held.
func (c *Controller) commit(ctx context.Context, room *model.Room, events ...model.Event) error {
	room.LastActivity = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return err
	}

	for _, event := range events {
		event.RoomCode = room.Code
		event.Room = room.Clone()
		c.publisher.Publish(event)
	}
	return nil
}

// remove deletes the room and announces it. Must be called with the room lock held.
func (c *Controller) remove(ctx context.Context, code model.RoomCode, reason model.RoomClosedReason) error {
	if err := c.storage.DeleteRoom(ctx, code); err != nil {
		return err
	}

	event := c.event(model.EventRoomClosed, "", model.RoomClosedPayload{Reason: reason})
	event.RoomCode = code
	c.publisher.Publish(event)

	c.logger.Info("room closed",
		slog.String("room_code", string(code)),
		slog.String("reason", string(reason)))
	return nil
}

func (c *Controller) event(eventType model.EventType, username string, payload any) model.Event {
	return model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		Username:  username,
		Payload:   payload,
	}
}
