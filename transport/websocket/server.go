package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/blockclaim/blockclaim-backend/internal/broadcast"
	"github.com/blockclaim/blockclaim-backend/internal/entity"
)

const (
	actionClaimBlock = "claim-block"
	actionUpdateName = "update-name"
)

type gridManager interface {
	Connect(session broadcast.Session) entity.User
	Disconnect(sessionID string)
	Claim(ctx context.Context, sessionID string, x, y float64) error
	Rename(ctx context.Context, sessionID, newName string) error
}

// Message is the inbound wire envelope; outbound traffic uses
// broadcast.Message.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type claimPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type renamePayload struct {
	Name string `json:"name"`
}

type Server struct {
	logger  *slog.Logger
	manager gridManager

	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, manager gridManager) *Server {
	return &Server{
		logger:  logger,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the excluded UI layer is served from anywhere
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleConnection upgrades the request and runs the session until its
// transport dies, at which point the gateway sees a Closed transition.
func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sess := newSession(uuid.NewString(), conn)
	go sess.writePump()

	user := that.manager.Connect(sess)
	log = log.With("sessionID", sess.ID(), "userID", user.ID)
	log.Info("WebSocket connection established")

	defer func() {
		that.manager.Disconnect(sess.ID())
		sess.Close()
		log.Info("WebSocket connection closed")
	}()

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	that.readLoop(ctx, sess)
}

func (that *Server) readLoop(ctx context.Context, sess *session) {
	log := that.logger.With("method", "readLoop", "sessionID", sess.ID())

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		if err = that.dispatch(ctx, sess, &message); err != nil {
			log.Error("failed to process message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) dispatch(ctx context.Context, sess *session, message *Message) error {
	switch message.Action {
	case actionClaimBlock:
		var payload claimPayload
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal claim payload: %w", err)
		}

		return that.manager.Claim(ctx, sess.ID(), payload.X, payload.Y)
	case actionUpdateName:
		var payload renamePayload
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal rename payload: %w", err)
		}

		return that.manager.Rename(ctx, sess.ID(), payload.Name)
	default:
		return fmt.Errorf("unknown action %q", message.Action)
	}
}
