package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/internal/model"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())

	c1 := mockClient(hub, "s1")
	c2 := mockClient(hub, "s1")
	hub.Register("s1", c1)
	hub.Register("s1", c2)
	assert.Equal(t, 2, hub.SubscriberCount("s1"))

	hub.Unregister("s1", c1)
	assert.Equal(t, 1, hub.SubscriberCount("s1"))

	hub.Unregister("s1", c2)
	assert.Equal(t, 0, hub.SubscriberCount("s1"))
}

func TestDoubleUnregisterDoesNotPanic(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := mockClient(hub, "s1")
	hub.Register("s1", c)
	hub.Unregister("s1", c)
	assert.NotPanics(t, func() { hub.Unregister("s1", c) })
}

func TestPublishReachesOnlySessionSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())

	mine := mockClient(hub, "s1")
	other := mockClient(hub, "s2")
	hub.Register("s1", mine)
	hub.Register("s2", other)

	hub.EarningsUpdate(model.Session{ID: "s1", CurrentEarnings: 12.5})

	require.Len(t, mine.send, 1)
	assert.Empty(t, other.send)

	var ev Event
	require.NoError(t, json.Unmarshal(<-mine.send, &ev))
	assert.Equal(t, EventEarningsUpdate, ev.Type)
	assert.Equal(t, "s1", ev.Session.ID)
	assert.Equal(t, 12.5, ev.Session.CurrentEarnings)
}

func TestSessionCompleteEvent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := mockClient(hub, "s1")
	hub.Register("s1", c)

	hub.SessionComplete(model.Session{ID: "s1"})

	var ev Event
	require.NoError(t, json.Unmarshal(<-c.send, &ev))
	assert.Equal(t, EventSessionComplete, ev.Type)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := mockClient(hub, "s1")
	hub.Register("s1", c)

	// Saturate the buffer and keep publishing; the extra frames must be
	// dropped without blocking.
	for i := 0; i < sendBufferSize+5; i++ {
		hub.EarningsUpdate(model.Session{ID: "s1"})
	}
	assert.Len(t, c.send, sendBufferSize)
}
