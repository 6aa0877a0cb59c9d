package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/feldzeit/geoattend/internal/domain/event"
	"github.com/feldzeit/geoattend/internal/domain/session"
	"github.com/feldzeit/geoattend/internal/domain/telemetry"
	"github.com/feldzeit/geoattend/internal/domain/tracking"
	"github.com/feldzeit/geoattend/internal/repository"
)

// Handler serves the JSON API: geofence event ingest, the reconcile hook the
// app calls on foreground/resume, and the read-only diagnostic surface.
type Handler struct {
	tracking  *tracking.Service
	telemetry *telemetry.Service
	logger    *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(trackingSvc *tracking.Service, telemetrySvc *telemetry.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tracking:  trackingSvc,
		telemetry: telemetrySvc,
		logger:    logger,
	}
}

// Routes builds the route table with request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", h.handleEvent)
	mux.HandleFunc("POST /reconcile", h.handleReconcile)
	mux.HandleFunc("GET /telemetry", h.handleTelemetry)
	mux.HandleFunc("GET /sessions", h.handleSessions)
	mux.HandleFunc("GET /work-summary", h.handleWorkSummary)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return requestLogger(h.logger, mux)
}

type eventRequest struct {
	LocationID string    `json:"location_id"`
	EventType  string    `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	outcome, err := h.tracking.ProcessEvent(r.Context(), tracking.Callback{
		LocationID: req.LocationID,
		EventType:  event.Type(req.EventType),
		Timestamp:  req.Timestamp,
		Accuracy:   req.Accuracy,
	})
	if err != nil {
		if errors.Is(err, tracking.ErrInvalidEvent) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("event processing failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "event processing failed")
		return
	}

	h.writeJSON(w, http.StatusOK, outcome)
}

type reconcileResponse struct {
	Confirmed int `json:"confirmed"`
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	confirmed, err := h.tracking.Reconcile(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("reconcile failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "reconcile failed")
		return
	}
	h.writeJSON(w, http.StatusOK, reconcileResponse{Confirmed: confirmed})
}

func (h *Handler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	opts := event.ListOptions{
		LocationID: r.URL.Query().Get("location_id"),
		Limit:      queryInt(r, "limit"),
	}

	export, err := h.telemetry.EventSummary(r.Context(), opts)
	if err != nil {
		h.logger.Error("telemetry export failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "telemetry export failed")
		return
	}
	h.writeJSON(w, http.StatusOK, export)
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	opts := session.ListOptions{
		LocationID: r.URL.Query().Get("location_id"),
		Limit:      queryInt(r, "limit"),
	}

	sessions, err := h.telemetry.RecentSessions(r.Context(), opts)
	if err != nil {
		h.logger.Error("session listing failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "session listing failed")
		return
	}
	if sessions == nil {
		sessions = []session.TrackingSession{}
	}
	h.writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleWorkSummary(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		return
	}

	totals, err := h.telemetry.DailyTotals(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("work summary failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "work summary failed")
		return
	}
	if totals == nil {
		totals = []session.DailyTotal{}
	}
	h.writeJSON(w, http.StatusOK, totals)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encoding failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}
