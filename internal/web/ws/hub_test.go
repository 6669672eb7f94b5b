package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/testutil"
)

func receive(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case msg := <-c.send:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func TestHubDeliversInOrder(t *testing.T) {
	hub := NewHub("ABCDEF", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	a := NewClient(nil, testutil.NopLogger())
	b := NewClient(nil, testutil.NopLogger())
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two"))

	for _, c := range []*Client{a, b} {
		assert.Equal(t, "one", receive(t, c))
		assert.Equal(t, "two", receive(t, c))
	}
	assert.Equal(t, 2, hub.ClientCount())
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub("ABCDEF", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	a := NewClient(nil, testutil.NopLogger())
	require.True(t, hub.Register(a))
	hub.Unregister(a)

	hub.Broadcast([]byte("ignored"))
	assert.Eventually(t, func() bool { return len(hub.broadcast) == 0 }, time.Second, time.Millisecond)
	assert.Empty(t, a.send)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubCloseFlushesQueuedMessages(t *testing.T) {
	hub := NewHub("ABCDEF", testutil.NopLogger())
	go hub.Run()

	a := NewClient(nil, testutil.NopLogger())
	require.True(t, hub.Register(a))

	hub.Broadcast([]byte("closing"))
	hub.Close()

	assert.Equal(t, "closing", receive(t, a))
	assert.Eventually(t, func() bool {
		return !hub.Register(NewClient(nil, testutil.NopLogger()))
	}, time.Second, time.Millisecond)
}

func TestClientSendAfterCloseFails(t *testing.T) {
	c := NewClient(nil, testutil.NopLogger())
	assert.True(t, c.Send([]byte("hello")))

	c.close()
	assert.False(t, c.Send([]byte("late")))
}

func TestClientSubscribeMovesBetweenHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	c := NewClient(nil, testutil.NopLogger())
	c.subscribe(manager, "AAAAAA")
	assert.Equal(t, model.RoomCode("AAAAAA"), c.subscribedTo())

	c.subscribe(manager, "BBBBBB")
	assert.Equal(t, model.RoomCode("BBBBBB"), c.subscribedTo())
	assert.Equal(t, 0, manager.GetHub("AAAAAA").ClientCount())
	assert.Equal(t, 1, manager.GetHub("BBBBBB").ClientCount())

	c.unsubscribe()
	assert.Equal(t, model.RoomCode(""), c.subscribedTo())
}

func TestSubscribeAfterHubRemovedCreatesNewHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	old := manager.GetOrCreateHub("AAAAAA")
	manager.RemoveHub("AAAAAA")

	c := NewClient(nil, testutil.NopLogger())
	c.subscribe(manager, "AAAAAA")

	hub := manager.GetHub("AAAAAA")
	require.NotNil(t, hub)
	assert.NotSame(t, old, hub)
	assert.Equal(t, 1, manager.HubCount())
}
