package broadcast

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockclaim/blockclaim-backend/internal/entity"
)

var errTransportGone = errors.New("transport gone")

type fakeSession struct {
	id      string
	mu      sync.Mutex
	inbox   []Message
	sendErr error
	closed  bool
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id}
}

func (that *fakeSession) ID() string { return that.id }

func (that *fakeSession) Send(data []byte) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.sendErr != nil {
		return that.sendErr
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		return err
	}

	that.inbox = append(that.inbox, message)

	return nil
}

func (that *fakeSession) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.closed = true
}

func (that *fakeSession) received(action string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	var count int
	for _, message := range that.inbox {
		if message.Action == action {
			count++
		}
	}

	return count
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, nil))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestHub_Broadcast(t *testing.T) {
	t.Run("Delivers one event to every registered session", func(t *testing.T) {
		// Given: three active sessions
		hub := NewHub(testLogger())
		sessions := []*fakeSession{newFakeSession("s1"), newFakeSession("s2"), newFakeSession("s3")}
		for _, session := range sessions {
			hub.Register(session)
		}

		// When: broadcasting a claim
		hub.Broadcast(BlockClaimedEvent{X: 5, Y: 5, Owner: "user-a"})

		// Then: each session receives exactly one delivery
		for _, session := range sessions {
			assert.Equal(t, 1, session.received("block-claimed"), "session %s", session.id)
		}
	})

	t.Run("BroadcastExcept skips the originating session", func(t *testing.T) {
		// Given: three active sessions
		hub := NewHub(testLogger())
		origin := newFakeSession("origin")
		other1 := newFakeSession("other1")
		other2 := newFakeSession("other2")
		for _, session := range []*fakeSession{origin, other1, other2} {
			hub.Register(session)
		}

		// When: announcing a join from origin
		hub.BroadcastExcept(UserJoinedEvent{ID: "user-a", Name: "Fox1"}, "origin")

		// Then: everyone but origin hears it
		assert.Equal(t, 0, origin.received("user-joined"))
		assert.Equal(t, 1, other1.received("user-joined"))
		assert.Equal(t, 1, other2.received("user-joined"))
	})

	t.Run("A dead recipient is evicted without blocking the others", func(t *testing.T) {
		// Given: one healthy and one dead session
		hub := NewHub(testLogger())
		healthy := newFakeSession("healthy")
		dead := newFakeSession("dead")
		dead.sendErr = errTransportGone
		hub.Register(healthy)
		hub.Register(dead)

		// When: broadcasting
		hub.Broadcast(UserLeftEvent{ID: "user-b", Name: "Bear2"})

		// Then: the healthy session still got the event
		assert.Equal(t, 1, healthy.received("user-left"))

		// And: the dead one was closed and dropped
		assert.True(t, dead.closed)
		assert.Equal(t, 1, hub.Count())
	})
}

func TestHub_SendTo(t *testing.T) {
	t.Run("Unicasts to one session only", func(t *testing.T) {
		// Given: two sessions
		hub := NewHub(testLogger())
		target := newFakeSession("target")
		bystander := newFakeSession("bystander")
		hub.Register(target)
		hub.Register(bystander)

		// When: sending the identity descriptor to target
		err := hub.SendTo("target", UserAssignedEvent{User: entity.User{ID: "user-a", Name: "Fox1"}})

		// Then: only target receives it
		require.NoError(t, err)
		assert.Equal(t, 1, target.received("user-assigned"))
		assert.Equal(t, 0, bystander.received("user-assigned"))
	})

	t.Run("Unknown sessions report an error", func(t *testing.T) {
		// Given: an empty hub
		hub := NewHub(testLogger())

		// When: sending to a session that never registered
		err := hub.SendTo("ghost", RenameFailedEvent{Error: "nope"})

		// Then: the lookup fails
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("A failing unicast evicts the session", func(t *testing.T) {
		// Given: a session whose transport is gone
		hub := NewHub(testLogger())
		dead := newFakeSession("dead")
		dead.sendErr = errTransportGone
		hub.Register(dead)

		// When: unicasting to it
		err := hub.SendTo("dead", RenameFailedEvent{Error: "nope"})

		// Then: the failure surfaces and the session is closed and dropped
		require.Error(t, err)
		assert.True(t, dead.closed)
		assert.Equal(t, 0, hub.Count())
	})
}

func TestEncode(t *testing.T) {
	// Given: a claim event
	event := BlockClaimedEvent{
		X: 5, Y: 6,
		Owner: "user-a", OwnerName: "Fox1", OwnerColor: "#FF6B6B",
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	// When: encoding it for the wire
	data, err := Encode(event)
	require.NoError(t, err)

	// Then: the envelope carries the action and payload
	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	assert.Equal(t, "block-claimed", message.Action)

	var decoded BlockClaimedEvent
	require.NoError(t, json.Unmarshal(message.Payload, &decoded))
	assert.Equal(t, event, decoded)
}
