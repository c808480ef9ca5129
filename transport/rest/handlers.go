package rest

import (
	"encoding/json"
	"net/http"

	"github.com/blockclaim/blockclaim-backend/internal/broadcast"
	"github.com/blockclaim/blockclaim-backend/internal/stats"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
	BlocksHandler(w http.ResponseWriter, r *http.Request)
	StatsHandler(w http.ResponseWriter, r *http.Request)
}

type gridQueries interface {
	Snapshot() broadcast.SnapshotEvent
	Stats() *stats.Stats
}

type handlers struct {
	manager gridQueries
}

func NewHandlers(manager gridQueries) Handlers {
	return &handlers{
		manager: manager,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) BlocksHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"success": true,
		"blocks":  that.manager.Snapshot(),
	})
}

func (that *handlers) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"success": true,
		"stats":   that.manager.Stats(),
	})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
