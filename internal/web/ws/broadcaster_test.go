package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/testutil"
)

func finishedRoom() *model.Room {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	alice := model.NewPlayer("alice", now)
	alice.Outcome = model.OutcomeWon
	alice.Score = 2
	alice.Guesses = []model.Guess{{Word: "SLATE", AttemptNumber: 1}, {Word: "CRANE", AttemptNumber: 2}}
	bob := model.NewPlayer("bob", now)
	return &model.Room{
		Code:         "ABCDEF",
		HostID:       "alice",
		Mode:         model.ModeDuel,
		MaxPlayers:   2,
		Status:       model.RoomStatusFinished,
		SolutionWord: "CRANE",
		Winner:       "alice",
		Players:      []model.Player{alice, bob},
		CreatedAt:    now,
	}
}

func TestRenderGameOver(t *testing.T) {
	b := NewBroadcaster(NewHubManager(testutil.NopLogger()), testutil.NopLogger())

	msg, err := b.render(model.Event{
		Type:     model.EventGameOver,
		RoomCode: "ABCDEF",
		Room:     finishedRoom(),
		Payload:  model.GameOverPayload{GameOver: model.GameOver{Winner: "alice", Reason: model.GameOverSolved}},
	})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, EventGameOver, env.Event)

	var data GameOverData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.Winner)
	assert.Equal(t, "alice", *data.Winner)
	assert.Equal(t, "CRANE", data.SolutionWord)
	assert.Len(t, data.Players[0].Guesses, 2)
	assert.True(t, data.Players[0].Won)
	assert.False(t, data.Players[0].Eliminated)
}

func TestRenderDrawHasNullWinner(t *testing.T) {
	b := NewBroadcaster(NewHubManager(testutil.NopLogger()), testutil.NopLogger())
	room := finishedRoom()
	room.Winner = ""

	msg, err := b.render(model.Event{
		Type:    model.EventGameOver,
		Room:    room,
		Payload: model.GameOverPayload{GameOver: model.GameOver{Reason: model.GameOverDraw}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"winner":null`)
}

func TestRenderRoomUpdatedRedactsSolutionUntilFinished(t *testing.T) {
	b := NewBroadcaster(NewHubManager(testutil.NopLogger()), testutil.NopLogger())
	room := finishedRoom()
	room.Status = model.RoomStatusPlaying

	msg, err := b.render(model.Event{
		Type:    model.EventRoomUpdated,
		Room:    room,
		Payload: model.RoomUpdatedPayload{Reason: model.ReasonPlayerLeft},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(msg), "solutionWord")
}

func TestRenderRejectsMissingSnapshot(t *testing.T) {
	b := NewBroadcaster(NewHubManager(testutil.NopLogger()), testutil.NopLogger())

	_, err := b.render(model.Event{Type: model.EventGuessSubmitted})
	assert.Error(t, err)
}

func TestPublishRoomClosedRemovesHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	b := NewBroadcaster(manager, testutil.NopLogger())

	c := NewClient(nil, testutil.NopLogger())
	c.subscribe(manager, "ABCDEF")

	b.Publish(model.Event{
		Type:     model.EventRoomClosed,
		RoomCode: "ABCDEF",
		Payload:  model.RoomClosedPayload{Reason: model.ClosedExpired},
	})

	assert.Nil(t, manager.GetHub("ABCDEF"))
	assert.JSONEq(t, `{"event":"room-closed","data":{"roomCode":"ABCDEF","reason":"expired"}}`, receive(t, c))
}
