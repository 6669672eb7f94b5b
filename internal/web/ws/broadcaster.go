package ws

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/wordbattle/internal/api/response"
	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/services/room"
)

// Broadcaster turns committed room events into websocket frames for the
// room's hub. It is the room.Publisher of the running server.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

var _ room.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "ws-broadcaster")),
	}
}

// Publish renders the event and queues it on the room's hub. A closed room
// also has its hub shut down once the notice is queued.
func (b *Broadcaster) Publish(event model.Event) {
	hub := b.hubManager.GetHub(event.RoomCode)
	if hub != nil {
		message, err := b.render(event)
		if err != nil {
			b.logger.Error("ws failed to render event",
				slog.String("room_code", string(event.RoomCode)),
				slog.String("event", string(event.Type)),
				slog.Any("error", err))
		} else {
			hub.Broadcast(message)
		}
	}

	if event.Type == model.EventRoomClosed {
		b.hubManager.RemoveHub(event.RoomCode)
	}
}

func (b *Broadcaster) render(event model.Event) ([]byte, error) {
	if event.Type == model.EventRoomClosed {
		payload, _ := event.Payload.(model.RoomClosedPayload)
		return Encode(EventRoomClosed, RoomClosedData{
			RoomCode: string(event.RoomCode),
			Reason:   string(payload.Reason),
		})
	}

	r := event.Room
	if r == nil {
		return nil, fmt.Errorf("event %s has no room snapshot", event.Type)
	}

	switch event.Type {
	case model.EventRoomUpdated:
		payload, _ := event.Payload.(model.RoomUpdatedPayload)
		return Encode(EventRoomUpdated, RoomUpdatedData{
			Room:        response.RoomFromModel(r),
			Reason:      string(payload.Reason),
			Username:    event.Username,
			HostChanged: payload.HostChanged,
		})

	case model.EventGameStarted:
		return Encode(EventGameStarted, GameStartedData{
			RoomCode:     string(r.Code),
			SolutionWord: r.SolutionWord,
			Status:       string(r.Status),
			Mode:         string(r.Mode),
			RoundNumber:  r.RoundNumber,
			Players:      response.PlayersFromModel(r),
			Settings: Settings{
				WordLength: model.WordLength,
				MaxGuesses: model.MaxGuesses,
				MaxPlayers: r.MaxPlayers,
			},
		})

	case model.EventGuessSubmitted:
		payload, _ := event.Payload.(model.GuessSubmittedPayload)
		return Encode(EventGuessSubmitted, GuessSubmittedData{
			RoomCode:      string(r.Code),
			Username:      event.Username,
			Guess:         payload.Guess,
			AttemptNumber: payload.AttemptNumber,
			Won:           payload.Won,
			Eliminated:    payload.Eliminated,
			Players:       response.PlayersFromModel(r),
		})

	case model.EventPlayerEliminated:
		payload, _ := event.Payload.(model.PlayerEliminatedPayload)
		remaining := payload.RemainingPlayers
		if remaining == nil {
			remaining = []string{}
		}
		return Encode(EventPlayerEliminated, PlayerEliminatedData{
			RoomCode:         string(r.Code),
			EliminatedPlayer: event.Username,
			Reason:           string(payload.Reason),
			RemainingPlayers: remaining,
			Players:          response.PlayersFromModel(r),
		})

	case model.EventGameOver:
		payload, _ := event.Payload.(model.GameOverPayload)
		return Encode(EventGameOver, GameOverData{
			RoomCode:     string(r.Code),
			Winner:       response.Winner(payload.Winner),
			Reason:       string(payload.Reason),
			SolutionWord: r.SolutionWord,
			Status:       string(r.Status),
			Mode:         string(r.Mode),
			Players:      response.PlayersFromModel(r),
		})

	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
}
