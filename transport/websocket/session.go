package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize bounds how far a slow reader may fall behind before
	// it is dropped and disconnected.
	sendBufferSize = 64
)

var (
	errSessionClosed  = errors.New("session is closed")
	errSendBufferFull = errors.New("send buffer is full")
)

// session is one active connection. The hub enqueues encoded events through
// Send; writePump is the only goroutine that touches the connection for
// writes.
type session struct {
	id   string
	conn *websocket.Conn

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSession(id string, conn *websocket.Conn) *session {
	return &session{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (that *session) ID() string {
	return that.id
}

// Send enqueues data without blocking. A full buffer means the client cannot
// keep up; the caller reacts by evicting the session.
func (that *session) Send(data []byte) error {
	select {
	case <-that.done:
		return errSessionClosed
	default:
	}

	select {
	case that.send <- data:
		return nil
	case <-that.done:
		return errSessionClosed
	default:
		return errSendBufferFull
	}
}

// Close tears the connection down; the read loop then unwinds with an error
// and triggers the gateway's disconnect handling. Safe to call repeatedly.
func (that *session) Close() {
	that.once.Do(func() {
		close(that.done)
		that.conn.Close()
	})
}

// writePump drains the send queue onto the connection and keeps the client
// alive with pings.
func (that *session) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		that.Close()
	}()

	for {
		select {
		case data := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-that.done:
			return
		}
	}
}
