package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"survey-registry/internal/models"
	"survey-registry/internal/platform/logger"
	"survey-registry/internal/service"
	"survey-registry/internal/state"
	"survey-registry/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// SnapshotLoader fetches the latest saved snapshot
type SnapshotLoader interface {
	Load(ctx context.Context) (*models.Snapshot, error)
}

type Handler struct {
	State  *state.AppState
	Loader SnapshotLoader
	Logger *slog.Logger
}

func NewHandler(st *state.AppState, loader SnapshotLoader, log *slog.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{State: st, Loader: loader, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/api/status", h.GetStatus)
	r.Get("/api/people", h.ListPeople)
	r.Get("/api/people/{id}", h.GetPerson)
	r.Get("/api/report", h.GetReport)
	r.Get("/api/unmatched", h.GetUnmatched)
	r.Post("/api/reload", h.Reload)
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Status
// ============================================================================

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.State.GetSnapshot()
	resp := models.StatusResponse{Loaded: snap != nil}
	if snap != nil {
		resp.RunID = snap.RunID
		resp.GeneratedAt = snap.GeneratedAt
		resp.LoadedAt = h.State.LoadedAt()
		resp.People = len(snap.People)
		resp.Unmatched = len(snap.Report.Unmatched)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// People
// ============================================================================

// ListPeople pages through the registry. q filters by accent- and
// case-insensitive substring of name, email or handle.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	query := service.Normalize(r.URL.Query().Get("q"))
	offset := max(getIntParam(r, "offset", 0), 0)
	limit := getIntParam(r, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	var matched []models.PersonSummary
	for i := range snap.People {
		p := &snap.People[i]
		if query != "" && !personMatches(p, query) {
			continue
		}
		matched = append(matched, models.NewPersonSummary(p))
	}

	resp := models.PeopleResponse{Total: len(matched), Offset: offset, People: []models.PersonSummary{}}
	if offset < len(matched) {
		end := min(offset+limit, len(matched))
		resp.People = matched[offset:end]
	}
	writeJSON(w, http.StatusOK, resp)
}

func personMatches(p *models.CanonicalPerson, query string) bool {
	return strings.Contains(p.NormalizedName, query) ||
		strings.Contains(service.NormalizeEmail(p.Email), query) ||
		strings.Contains(strings.ToLower(p.Handle), query)
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	person, found := snap.FindPerson(chi.URLParam(r, "id"))
	if !found {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// ============================================================================
// Report
// ============================================================================

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Report)
}

func (h *Handler) GetUnmatched(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	unmatched := snap.Report.Unmatched
	if course := r.URL.Query().Get("course"); course != "" {
		filtered := []models.UnmatchedName{}
		for _, u := range unmatched {
			if u.Course == course {
				filtered = append(filtered, u)
			}
		}
		unmatched = filtered
	}
	if unmatched == nil {
		unmatched = []models.UnmatchedName{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"unmatched": unmatched})
}

// ============================================================================
// Reload
// ============================================================================

// Reload swaps in the latest snapshot from the configured store
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Loader.Load(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusServiceUnavailable, "no snapshot has been built yet")
			return
		}
		h.Logger.Error("reload snapshot", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	h.State.SetSnapshot(snap)
	h.Logger.Info("snapshot reloaded", "run_id", snap.RunID, "people", len(snap.People))
	writeJSON(w, http.StatusOK, models.ReloadResponse{RunID: snap.RunID, People: len(snap.People)})
}

// ============================================================================
// Helpers
// ============================================================================

func (h *Handler) snapshot(w http.ResponseWriter) (*models.Snapshot, bool) {
	snap := h.State.GetSnapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot loaded")
		return nil, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func getIntParam(r *http.Request, name string, defaultVal int) int {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
