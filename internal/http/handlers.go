package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prospectly/email-enrichment-service/internal/lifecycle"
	"github.com/prospectly/email-enrichment-service/internal/models"
	"github.com/prospectly/email-enrichment-service/internal/service"
	"github.com/prospectly/email-enrichment-service/internal/traffic"
	"github.com/prospectly/email-enrichment-service/internal/validation"
)

const serviceName = "email-enrichment-service"

// HealthConfig holds thresholds for the health handler. DegradedWindow and
// DegradedErrorPct drive the passive upstream health signal: the handler
// never probes Apollo directly since match calls are credit-metered.
// StartTime feeds the uptime field in the health payload.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
	StartTime        time.Time
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	enrichment       *service.EnrichmentService
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(enrichment *service.EnrichmentService, healthConfig *HealthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		enrichment:   enrichment,
		healthConfig: healthConfig,
		logger:       logger,
	}
}

// PostEnrich handles POST /enrich: a single person plus an optional
// per-request API key override.
func (h *Handler) PostEnrich(w http.ResponseWriter, r *http.Request) {
	var req models.EnrichmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON payload", "")
		return
	}
	if err := validation.ValidateEnrichmentRequest(req); err != nil {
		writeValidationError(w, err.Error(), req.Person.LinkedInURL)
		return
	}

	result := h.enrichment.Enrich(r.Context(), req.Person, req.APIKeys)
	writeJSON(w, http.StatusOK, result)
}

// PostEnrichSimple handles POST /enrich/simple: a bare person payload with
// no key override. Kept for backwards compatibility.
func (h *Handler) PostEnrichSimple(w http.ResponseWriter, r *http.Request) {
	var person models.PersonInput
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		writeValidationError(w, "invalid JSON payload", "")
		return
	}
	if err := validation.ValidatePerson(person); err != nil {
		writeValidationError(w, err.Error(), person.LinkedInURL)
		return
	}

	result := h.enrichment.Enrich(r.Context(), person, nil)
	writeJSON(w, http.StatusOK, result)
}

// PostEnrichBulk handles POST /enrich/bulk: up to models.MaxBulkPeople
// people in one call. Results are index-aligned with the input.
func (h *Handler) PostEnrichBulk(w http.ResponseWriter, r *http.Request) {
	var req models.BulkEnrichmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON payload", "")
		return
	}
	if err := validation.ValidateBulkRequest(req); err != nil {
		writeValidationError(w, err.Error(), "")
		return
	}

	results := h.enrichment.EnrichBulk(r.Context(), req.People, req.APIKeys)
	writeJSON(w, http.StatusOK, models.BulkEnrichmentResponse{Results: results})
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := make(map[string]string)
	if result.status == "degraded" {
		checks["apolloApi"] = "unhealthy"
	} else {
		checks["apolloApi"] = "healthy"
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   serviceName,
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.healthConfig != nil && !h.healthConfig.StartTime.IsZero() {
		resp["uptime"] = time.Since(h.healthConfig.StartTime).Round(time.Second).String()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// computeHealthStatus determines current health in priority order:
// shutting-down > degraded (upstream error rate breach) > ok.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig != nil && h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 {
		errors, total := traffic.ErrorRate(h.healthConfig.DegradedWindow)
		if total > 0 {
			pct := float64(errors) * 100 / float64(total)
			if pct >= float64(h.healthConfig.DegradedErrorPct) {
				return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
			}
		}
	}
	return healthResult{"ok", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeValidationError writes a 400 response using the in-body result
// schema with error code validation_error.
func writeValidationError(w http.ResponseWriter, message, linkedinURL string) {
	writeJSON(w, http.StatusBadRequest, models.ErrorResult(models.ErrorCodeValidation, message, linkedinURL))
}
