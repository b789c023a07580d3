package server

import (
	"database/sql"
	"encoding/json"
	"net/http"

	dbpkg "github.com/activitybank/archiver/db"
)

// Handlers carries the dependencies shared by all HTTP endpoints.
type Handlers struct {
	db    *sql.DB
	store *dbpkg.Store
}

func NewHandlers(db *sql.DB) *Handlers {
	return &Handlers{db: db, store: dbpkg.NewStore(db)}
}

// HandleHealthz responds to liveness probes.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probes by checking database connectivity.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":       "not_ready",
			"failed_check": "database",
			"error":        err.Error(),
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// HandleStatus reports ledger tallies.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	servers, users, videos, err := h.store.Counts(r.Context())
	if err != nil {
		http.Error(w, "status query failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{
		"servers": servers,
		"users":   users,
		"videos":  videos,
	})
}
