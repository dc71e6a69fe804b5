package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"aquaculture-platform/internal/services"
	"aquaculture-platform/pkg/logging"
	"aquaculture-platform/pkg/metrics"
)

// FeatureHandler handles feature-engineering API endpoints
type FeatureHandler struct {
	featureService *services.FeatureService
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(
	featureService *services.FeatureService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *FeatureHandler {
	return &FeatureHandler{
		featureService: featureService,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// FeatureResponse wraps one tank/time feature table
type FeatureResponse struct {
	TankID     string      `json:"tank_id"`
	TargetTime time.Time   `json:"target_time"`
	Rows       int         `json:"rows"`
	Data       interface{} `json:"data"`
}

// BatchRequest is the body of a batch feature-engineering call
type BatchRequest struct {
	TankIDs       []string  `json:"tank_ids"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	IntervalHours int       `json:"interval_hours"`
	Save          bool      `json:"save"`
}

// BatchResponse summarizes a batch run
type BatchResponse struct {
	RunID     string  `json:"run_id"`
	Units     int     `json:"units"`
	Succeeded int     `json:"succeeded"`
	Empty     int     `json:"empty"`
	Failed    int     `json:"failed"`
	Rows      int     `json:"rows"`
	Saved     bool    `json:"saved"`
	Duration  float64 `json:"duration_seconds"`
}

// GetFeatures handles GET /api/v1/tanks/{tank_id}/features
func (h *FeatureHandler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/v1/tanks/features").Observe(duration.Seconds())
	}()

	tankID := mux.Vars(r)["tank_id"]
	if tankID == "" {
		h.sendError(w, r, "tank_id is required", http.StatusBadRequest)
		return
	}

	targetTime := time.Now().UTC()
	if raw := r.URL.Query().Get("target_time"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.sendError(w, r, "invalid target_time, expected RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		targetTime = parsed
	}

	rows, err := h.featureService.EngineerFeatures(ctx, tankID, targetTime)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_FEATURES_ERROR] Feature engineering failed", logging.Fields{
			"tank_id":     tankID,
			"target_time": targetTime.Format(time.RFC3339),
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/v1/tanks/features")
		h.sendError(w, r, "failed to engineer features", http.StatusInternalServerError)
		return
	}

	response := FeatureResponse{
		TankID:     tankID,
		TargetTime: targetTime,
		Rows:       len(rows),
		Data:       rows,
	}

	h.metrics.RecordAPIRequest("/api/v1/tanks/features", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// BatchFeatures handles POST /api/v1/features/batch
func (h *FeatureHandler) BatchFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/v1/features/batch").Observe(duration.Seconds())
	}()

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.TankIDs) == 0 {
		h.sendError(w, r, "tank_ids is required", http.StatusBadRequest)
		return
	}
	if req.IntervalHours <= 0 {
		h.sendError(w, r, "interval_hours must be positive", http.StatusBadRequest)
		return
	}
	if req.End.Before(req.Start) {
		h.sendError(w, r, "end must not precede start", http.StatusBadRequest)
		return
	}

	result, err := h.featureService.BatchEngineerFeatures(ctx, req.TankIDs, req.Start, req.End, req.IntervalHours)
	if err != nil {
		h.logger.Error(ctx, "[API_BATCH_ERROR] Batch feature engineering failed", logging.Fields{
			"tanks": len(req.TankIDs),
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/v1/features/batch")
		h.sendError(w, r, "batch feature engineering failed", http.StatusInternalServerError)
		return
	}

	saved := false
	if req.Save && len(result.Rows) > 0 {
		if err := h.featureService.SaveFeatures(ctx, result.Rows); err != nil {
			h.logger.Error(ctx, "[API_BATCH_SAVE_ERROR] Failed to persist batch results", logging.Fields{
				"run_id": result.RunID,
				"rows":   len(result.Rows),
			}, err)
			h.metrics.RecordAPIError("persistence_error", "/api/v1/features/batch")
			h.sendError(w, r, "failed to persist batch results", http.StatusInternalServerError)
			return
		}
		saved = true
	}

	response := BatchResponse{
		RunID:     result.RunID,
		Units:     result.Units,
		Succeeded: result.Succeeded,
		Empty:     result.Empty,
		Failed:    result.Failed,
		Rows:      len(result.Rows),
		Saved:     saved,
		Duration:  result.Duration.Seconds(),
	}

	h.metrics.RecordAPIRequest("/api/v1/features/batch", "POST", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *FeatureHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *FeatureHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *FeatureHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all feature API routes
func (h *FeatureHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/tanks/{tank_id}/features", h.GetFeatures).Methods("GET")
	router.HandleFunc("/api/v1/features/batch", h.BatchFeatures).Methods("POST")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
