// Package api exposes read-only HTTP handlers over the local archive.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/csvexport"
	"example.com/activityarchive/internal/domain"
	"example.com/activityarchive/internal/report"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// Handler serves archived activities and rendered reports.
type Handler struct {
	store     *archive.Store
	precision config.Precision
}

// NewHandler builds a Handler.
func NewHandler(store *archive.Store, precision config.Precision) *Handler {
	return &Handler{store: store, precision: precision}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.listActivities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/archive/bounds", h.bounds)
	mux.HandleFunc("/v1/reports/", h.reportByName)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = min(parsed, maxLimit)
		}
	}

	cursor, err := archive.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next := h.store.Page(cursor, limit)
	items := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		items = append(items, h.toActivityView(a))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: archive.EncodeCursor(next),
	})
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	rec, err := h.store.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
		case errors.Is(err, archive.ErrInvalidID):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid activity id")
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, ActivityDetailResponse{
		Activity: h.toActivityView(domain.FromRecord(rec)),
		Record:   rec,
	})
}

func (h *Handler) bounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	b := h.store.Bounds()
	resp := BoundsResponse{Files: h.store.Count()}
	if !b.Empty() {
		resp.Oldest = &b.Oldest
		resp.Newest = &b.Newest
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) reportByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var render func([]report.Entry) string
	switch strings.TrimPrefix(r.URL.Path, "/v1/reports/") {
	case "runs":
		render = report.RenderRunsByMonth
	case "activities":
		render = report.RenderActivityLog
	case "runs-flat":
		render = report.RenderRunLog
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown report")
		return
	}

	entries, err := report.EntriesFromArchive(h.store)
	if err != nil {
		if errors.Is(err, report.ErrMissingInput) {
			writeError(w, http.StatusServiceUnavailable, "archive_missing", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render(entries)))
}

// ActivityView exposes the derived, display-rounded columns of an activity.
type ActivityView struct {
	ActivityID      string     `json:"activity_id"`
	Type            string     `json:"type"`
	Name            string     `json:"name,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	DateLocal       string     `json:"date_local,omitempty"`
	StartTimeLocal  string     `json:"start_time_local,omitempty"`
	DistanceMi      string     `json:"distance_mi,omitempty"`
	MovingTimeMin   string     `json:"moving_time_min,omitempty"`
	ElapsedTimeMin  string     `json:"elapsed_time_min,omitempty"`
	TotalElevGainFt string     `json:"total_elev_gain_ft,omitempty"`
	AvgSpeedMPH     string     `json:"avg_speed_mph,omitempty"`
	PaceMMSS        string     `json:"pace_mmss,omitempty"`
	PaceMinPerMi    string     `json:"pace_min_per_mi,omitempty"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ActivityDetailResponse pairs the derived view with the archived record.
type ActivityDetailResponse struct {
	Activity ActivityView  `json:"activity"`
	Record   domain.Record `json:"record"`
}

// BoundsResponse describes the archive extent.
type BoundsResponse struct {
	Files  int        `json:"files"`
	Oldest *time.Time `json:"oldest,omitempty"`
	Newest *time.Time `json:"newest,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) toActivityView(a domain.Activity) ActivityView {
	row := csvexport.RowFromActivity(a, h.precision)
	view := ActivityView{
		ActivityID:      row.ID,
		Type:            row.Type,
		Name:            row.Name,
		DateLocal:       row.DateLocal,
		StartTimeLocal:  row.StartTimeLocal,
		DistanceMi:      row.DistanceMi,
		MovingTimeMin:   row.MovingTimeMin,
		ElapsedTimeMin:  row.ElapsedTimeMin,
		TotalElevGainFt: row.TotalElevGainFt,
		AvgSpeedMPH:     row.AvgSpeedMPH,
		PaceMMSS:        row.PaceMMSS,
		PaceMinPerMi:    row.PaceMinPerMi,
	}
	if !a.StartUTC.IsZero() {
		started := a.StartUTC
		view.StartedAt = &started
	}
	return view
}
