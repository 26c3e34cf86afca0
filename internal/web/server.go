// Package web exposes the engine over a small local JSON API so a
// dashboard collaborator can read progress and drive reviews. It serves
// data only; all rendering is somebody else's job.
package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/daylex/internal/backup"
	"github.com/example/daylex/internal/progress"
	"github.com/example/daylex/internal/srs"
	"github.com/example/daylex/internal/store"
)

// Server holds the dependencies for the HTTP API.
type Server struct {
	store   *store.Store
	tracker *progress.Tracker
	sched   *srs.Scheduler
	router  *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(s *store.Store, tracker *progress.Tracker, sched *srs.Scheduler) *Server {
	srv := &Server{
		store:   s,
		tracker: tracker,
		sched:   sched,
		router:  http.NewServeMux(),
	}
	srv.routes()
	return srv
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("/api/status", s.handleStatus())
	s.router.HandleFunc("/api/stats", s.handleStats())
	s.router.HandleFunc("/api/cards", s.handleCards())
	s.router.HandleFunc("/api/cards/", s.handleDeleteCard())
	s.router.HandleFunc("/api/due", s.handleDue())
	s.router.HandleFunc("/api/xp", s.handleXP())
	s.router.HandleFunc("/api/export", s.handleExport())
	s.router.HandleFunc("/api/import", s.handleImport())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleStatus reports the persistence mode so a UI can warn the user
// when their data will not survive a restart.
func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"mode":       s.store.CurrentMode().String(),
			"persistent": s.store.IsPersistent(),
			"today":      s.tracker.Today(),
			"cards":      s.sched.Len(),
			"due_count":  s.sched.DueCount(s.sched.Today()),
		})
	}
}

// handleStats reports today's progress numbers.
func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		today := s.tracker.Today()
		goal := s.tracker.Goal()
		writeJSON(w, http.StatusOK, map[string]any{
			"today":         today,
			"goal":          goal,
			"today_xp":      s.tracker.XP(today),
			"week_xp":       s.tracker.WeekTotal(today),
			"streak":        s.tracker.Streak(goal),
			"flags":         s.tracker.Flags(today),
			"history":       s.tracker.History(14),
			"daily_minutes": s.tracker.DailyMinutes(),
			"weekly_hours":  s.tracker.WeeklyHours(),
		})
	}
}

// handleCards lists the collection or adds a card.
func (s *Server) handleCards() http.HandlerFunc {
	type addRequest struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, s.sched.All())
		case http.MethodPost:
			var req addRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			card, err := s.sched.Add(req.Front, req.Back)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, http.StatusCreated, card)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

// handleDeleteCard removes a card by ID.
func (s *Server) handleDeleteCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/cards/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing card ID")
			return
		}
		if !s.sched.Remove(id) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"removed": id})
	}
}

// handleDue lists the cards due today.
func (s *Server) handleDue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		due := s.sched.Due(s.sched.Today())
		writeJSON(w, http.StatusOK, map[string]any{
			"due":   due,
			"count": len(due),
		})
	}
}

// handleXP credits practice XP, optionally flagging a category.
func (s *Server) handleXP() http.HandlerFunc {
	type xpRequest struct {
		Amount   int    `json:"amount"`
		Category string `json:"category"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req xpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		s.tracker.AddXP(req.Amount, req.Category)
		today := s.tracker.Today()
		writeJSON(w, http.StatusOK, map[string]any{
			"today_xp": s.tracker.XP(today),
			"flags":    s.tracker.Flags(today),
		})
	}
}

// handleExport serves the full backup document.
func (s *Server) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		data, err := backup.Export(s.store)
		if err != nil {
			slog.Error("export failed", "error", err)
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename=daylex-backup.json")
		w.Write(data)
	}
}

// handleImport restores a backup document. The scheduler is reloaded
// afterwards so the replaced vocabulary takes effect immediately.
func (s *Server) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read body")
			return
		}
		if err := backup.Import(s.store, data); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.sched.Reload()
		writeJSON(w, http.StatusOK, map[string]any{"cards": s.sched.Len()})
	}
}
