package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/domain"
)

func newTestHandler(t *testing.T) (*archive.Store, http.Handler) {
	t.Helper()
	store := archive.New(t.TempDir())
	records := []domain.Record{
		{"id": "1", "type": "Run", "name": "Easy", "start_date": "2026-01-01T13:00:00Z", "start_date_local": "2026-01-01T08:00:00Z", "distance": 8046.72, "moving_time": 2400},
		{"id": "2", "type": "Walk", "start_date": "2026-01-02T13:00:00Z", "start_date_local": "2026-01-02T08:00:00Z", "distance": 1609.344},
		{"id": "3", "type": "Run", "start_date": "2026-01-03T13:00:00Z", "start_date_local": "2026-01-03T08:00:00Z", "distance": 4828.032, "moving_time": 1500},
	}
	for _, rec := range records {
		require.NoError(t, store.WriteAtomic(rec.ID(), rec))
	}

	mux := http.NewServeMux()
	NewHandler(store, config.DefaultPrecision()).RegisterRoutes(mux)
	return store, mux
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestListActivitiesPaginates(t *testing.T) {
	_, h := newTestHandler(t)

	rr := get(t, h, "/v1/activities?limit=2")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var first ListActivitiesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.Len(t, first.Items, 2)
	require.Equal(t, "3", first.Items[0].ActivityID)
	require.Equal(t, "2", first.Items[1].ActivityID)
	require.NotEmpty(t, first.NextCursor)

	rr = get(t, h, "/v1/activities?limit=2&cursor="+first.NextCursor)
	require.Equal(t, http.StatusOK, rr.Code)
	var second ListActivitiesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	require.Len(t, second.Items, 1)
	require.Equal(t, "1", second.Items[0].ActivityID)
	require.Equal(t, "8:00", second.Items[0].PaceMMSS)
	require.Equal(t, "5", second.Items[0].DistanceMi)
	require.Empty(t, second.NextCursor)
}

func TestListActivitiesRejectsBadCursor(t *testing.T) {
	_, h := newTestHandler(t)
	rr := get(t, h, "/v1/activities?cursor=@@@@")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetActivity(t *testing.T) {
	_, h := newTestHandler(t)

	rr := get(t, h, "/v1/activities/2")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp ActivityDetailResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "Walk", resp.Activity.Type)
	require.Empty(t, resp.Activity.PaceMMSS)
	require.Equal(t, "Walk", resp.Record["type"])

	rr = get(t, h, "/v1/activities/404")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/activities/2", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestBounds(t *testing.T) {
	_, h := newTestHandler(t)
	rr := get(t, h, "/v1/archive/bounds")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp BoundsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Files)
	require.NotNil(t, resp.Newest)
	require.Equal(t, "2026-01-03T13:00:00Z", resp.Newest.Format("2006-01-02T15:04:05Z07:00"))
}

func TestReports(t *testing.T) {
	_, h := newTestHandler(t)

	rr := get(t, h, "/v1/reports/runs")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(rr.Body.String(), strings.Repeat("=", 46)+"\nJanuary 2026\n"))
	require.Contains(t, rr.Body.String(), "Runs: 2\n")

	rr = get(t, h, "/v1/reports/activities")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "2026-01-02 -- Walk --  1.00\n")

	rr = get(t, h, "/v1/reports/unknown")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthz(t *testing.T) {
	_, h := newTestHandler(t)
	rr := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}
