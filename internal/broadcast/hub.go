package broadcast

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is a live connection the hub can push encoded events to.
// Send must not block: it either enqueues the data or fails immediately.
type Session interface {
	ID() string
	Send(data []byte) error
	Close()
}

// Hub fans accepted events out to every registered session. Delivery is
// best-effort per recipient: a session whose Send fails is closed and
// dropped so one dead transport never stalls the others.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]Session
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger.With("component", "broadcast"),
		sessions: make(map[string]Session),
	}
}

// Register adds a session to the fan-out set.
func (that *Hub) Register(session Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID()] = session
}

// Unregister removes a session without closing it; safe to call for a
// session that was already removed.
func (that *Hub) Unregister(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, sessionID)
}

// Count returns the number of registered sessions.
func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

// Broadcast delivers the event to every registered session.
func (that *Hub) Broadcast(event Event) {
	that.deliver(event, "")
}

// BroadcastExcept delivers the event to every registered session except the
// named one, used for join announcements.
func (that *Hub) BroadcastExcept(event Event, exceptID string) {
	that.deliver(event, exceptID)
}

// SendTo delivers the event to a single session.
func (that *Hub) SendTo(sessionID string, event Event) error {
	data, err := Encode(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	that.mu.RLock()
	session, ok := that.sessions[sessionID]
	that.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	if err = session.Send(data); err != nil {
		that.evict(session, event.Action(), err)
		return fmt.Errorf("failed to send event: %w", err)
	}

	return nil
}

func (that *Hub) deliver(event Event, exceptID string) {
	log := that.logger.With("action", event.Action())

	data, err := Encode(event)
	if err != nil {
		log.Error("failed to encode event", "error", err)
		return
	}

	that.mu.RLock()
	recipients := make([]Session, 0, len(that.sessions))
	for id, session := range that.sessions {
		if id == exceptID {
			continue
		}
		recipients = append(recipients, session)
	}
	that.mu.RUnlock()

	for _, session := range recipients {
		if err = session.Send(data); err != nil {
			that.evict(session, event.Action(), err)
		}
	}
}

// evict drops a session that can no longer accept events and closes it; the
// close surfaces through the transport's read loop as a normal disconnect.
func (that *Hub) evict(session Session, action string, err error) {
	that.logger.Warn("dropping undeliverable session",
		"sessionID", session.ID(), "action", action, "error", err)

	that.mu.Lock()
	delete(that.sessions, session.ID())
	that.mu.Unlock()

	session.Close()
}
