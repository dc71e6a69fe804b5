package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"aquaculture-platform/internal/features"
	"aquaculture-platform/internal/models"
	"aquaculture-platform/internal/repository"
	"aquaculture-platform/internal/services"
	"aquaculture-platform/pkg/logging"
	"aquaculture-platform/pkg/metrics"
)

var testMetrics = metrics.NewCollector("feature_handlers_test")

type stubRepo struct {
	readings map[string][]*models.SensorReading
	failTank string
	upserts  int
}

func (r *stubRepo) GetReadings(_ context.Context, tankID string, _, _ time.Time) ([]*models.SensorReading, error) {
	if tankID == r.failTank {
		return nil, errors.New("connection refused")
	}
	return r.readings[tankID], nil
}

func (r *stubRepo) GetTankMetadata(_ context.Context, tankID string) (*models.TankMetadata, error) {
	return nil, &repository.NotFoundError{Resource: "tank", ID: tankID}
}

func (r *stubRepo) UpsertFeatures(_ context.Context, rows []models.FeatureRow) error {
	r.upserts++
	return nil
}

func (r *stubRepo) HealthCheck(context.Context) error { return nil }

type noopCache struct{}

func (noopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func readingsAt(tankID string, start time.Time, n int) []*models.SensorReading {
	out := make([]*models.SensorReading, n)
	for i := range out {
		out[i] = &models.SensorReading{
			Time:         start.Add(time.Duration(i) * features.SampleInterval),
			SensorID:     "s-temp",
			TankID:       tankID,
			SensorType:   models.SensorTemperature,
			Value:        21.0,
			QualityScore: 0.9,
		}
	}
	return out
}

func newTestRouter(t *testing.T, repo *stubRepo) *mux.Router {
	t.Helper()

	logger := logging.NewStructuredLogger("feature-api-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)

	cfg := features.DefaultConfig()
	cfg.AggregationWindows = []string{"1H"}
	cfg.IncludeLagFeatures = false

	svc, err := services.NewFeatureService(repo, noopCache{}, cfg, logger, testMetrics)
	if err != nil {
		t.Fatalf("NewFeatureService() error = %v", err)
	}

	router := mux.NewRouter()
	NewFeatureHandler(svc, logger, testMetrics).RegisterRoutes(router)
	return router
}

func TestGetFeatures(t *testing.T) {
	target := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		readings: map[string][]*models.SensorReading{
			"tank-1": readingsAt("tank-1", target.Add(-30*time.Minute), 4),
		},
		failTank: "tank-bad",
	}
	router := newTestRouter(t, repo)

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantRows   int
	}{
		{
			name:       "with target time",
			url:        "/api/v1/tanks/tank-1/features?target_time=2024-06-15T12:00:00Z",
			wantStatus: http.StatusOK,
			wantRows:   4,
		},
		{
			name:       "no data",
			url:        "/api/v1/tanks/tank-unknown/features?target_time=2024-06-15T12:00:00Z",
			wantStatus: http.StatusOK,
			wantRows:   0,
		},
		{
			name:       "malformed target time",
			url:        "/api/v1/tanks/tank-1/features?target_time=yesterday",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "repository failure",
			url:        "/api/v1/tanks/tank-bad/features?target_time=2024-06-15T12:00:00Z",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				var errResp ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
					t.Fatalf("decode error response: %v", err)
				}
				if errResp.Code != tt.wantStatus {
					t.Errorf("error code = %d, want %d", errResp.Code, tt.wantStatus)
				}
				return
			}

			var resp FeatureResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Rows != tt.wantRows {
				t.Errorf("rows = %d, want %d", resp.Rows, tt.wantRows)
			}
		})
	}
}

func TestBatchFeatures(t *testing.T) {
	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		readings: map[string][]*models.SensorReading{
			"tank-1": readingsAt("tank-1", start.Add(-30*time.Minute), 3),
		},
	}
	router := newTestRouter(t, repo)

	body, _ := json.Marshal(BatchRequest{
		TankIDs:       []string{"tank-1"},
		Start:         start,
		End:           start,
		IntervalHours: 6,
		Save:          true,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/features/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp BatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RunID == "" {
		t.Error("run_id is empty")
	}
	if resp.Units != 1 || resp.Succeeded != 1 {
		t.Errorf("units/succeeded = %d/%d, want 1/1", resp.Units, resp.Succeeded)
	}
	if resp.Rows != 3 {
		t.Errorf("rows = %d, want 3", resp.Rows)
	}
	if !resp.Saved {
		t.Error("saved = false, want true")
	}
	if repo.upserts != 1 {
		t.Errorf("upsert calls = %d, want 1", repo.upserts)
	}
}

func TestBatchFeatures_Validation(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})
	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"tank_ids": [`},
		{"no tanks", `{"tank_ids": [], "interval_hours": 6}`},
		{"bad interval", `{"tank_ids": ["tank-1"], "interval_hours": 0}`},
		{
			"end before start",
			`{"tank_ids": ["tank-1"], "interval_hours": 6, "start": "` +
				start.Format(time.RFC3339) + `", "end": "` +
				start.Add(-time.Hour).Format(time.RFC3339) + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/features/batch", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if status["status"] != "healthy" {
		t.Errorf("status field = %q, want healthy", status["status"])
	}
}
