package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/prospectly/email-enrichment-service/internal/client"
	"github.com/prospectly/email-enrichment-service/internal/models"
	"github.com/prospectly/email-enrichment-service/internal/observability"
	"github.com/prospectly/email-enrichment-service/internal/traffic"
)

// EnrichmentService turns person inputs into enrichment results. It resolves
// the API key (per-request override over the configured default), relays the
// lookup to the Apollo client, and maps outcomes onto the result schema.
type EnrichmentService struct {
	client client.EnrichmentClient
}

// NewEnrichmentService creates a new EnrichmentService backed by the given client.
func NewEnrichmentService(c client.EnrichmentClient) *EnrichmentService {
	return &EnrichmentService{client: c}
}

// loggerFromContext extracts a zap.Logger from request context if present.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// resolveKey returns the per-request key override when present, empty
// otherwise (the client then falls back to its configured key).
func resolveKey(keys *models.APIKeys) string {
	if keys != nil {
		return keys.Apollo
	}
	return ""
}

// Enrich looks up one person's email address.
func (s *EnrichmentService) Enrich(ctx context.Context, person models.PersonInput, keys *models.APIKeys) models.EnrichmentResult {
	logger := loggerFromContext(ctx)

	matched, err := s.client.Match(ctx, person, resolveKey(keys))
	result := s.toResult(matched, err, person.LinkedInURL)

	if logger != nil {
		if result.Success {
			logger.Info("email found",
				zap.String("linkedin_url", person.LinkedInURL),
				zap.String("source", result.Source))
		} else {
			logger.Info("no email found",
				zap.String("linkedin_url", person.LinkedInURL),
				zap.String("error", string(result.Error)))
		}
	}
	return result
}

// EnrichBulk looks up up to models.MaxBulkPeople people in one upstream
// call. Results are index-aligned with people. A request-level upstream
// failure yields the same error result for every person.
func (s *EnrichmentService) EnrichBulk(ctx context.Context, people []models.PersonInput, keys *models.APIKeys) []models.EnrichmentResult {
	logger := loggerFromContext(ctx)
	observability.BulkEnrichmentSize.Observe(float64(len(people)))

	outcomes, err := s.client.BulkMatch(ctx, people, resolveKey(keys))
	if err != nil {
		// Whole request failed upstream; every person gets the same error.
		results := make([]models.EnrichmentResult, len(people))
		for i, person := range people {
			results[i] = s.toResult(client.Person{}, err, person.LinkedInURL)
		}
		if logger != nil {
			logger.Info("bulk enrichment failed upstream",
				zap.Int("people", len(people)), zap.Error(err))
		}
		return results
	}

	results := make([]models.EnrichmentResult, len(people))
	successes := 0
	for i, person := range people {
		results[i] = s.toResult(outcomes[i].Person, outcomes[i].Err, person.LinkedInURL)
		if results[i].Success {
			successes++
		}
	}
	if logger != nil {
		logger.Info("bulk enrichment complete",
			zap.Int("people", len(people)), zap.Int("successful", successes))
	}
	return results
}

// toResult maps a client outcome onto the result schema and records
// per-outcome metrics plus the upstream health signal.
func (s *EnrichmentService) toResult(matched client.Person, err error, linkedinURL string) models.EnrichmentResult {
	if err == nil {
		traffic.RecordSuccess()
		observability.RecordEnrichmentOutcome("success")
		return models.SuccessResult(matched.Email, matched.LinkedInURL, matched.Name, matched.Title, matched.Company)
	}

	observability.ApolloAPIErrorsTotal.WithLabelValues(string(client.CategorizeError(err))).Inc()

	var code models.ErrorCode
	var message string
	switch {
	case errors.Is(err, client.ErrNoMatch):
		code, message = models.ErrorCodeNotFound, "No match found in Apollo"
		traffic.RecordSuccess() // upstream answered; a miss is not an upstream error
	case errors.Is(err, client.ErrNoEmail):
		code, message = models.ErrorCodeNotFound, "No email found in Apollo"
		traffic.RecordSuccess()
	case errors.Is(err, client.ErrInvalidAPIKey):
		code, message = models.ErrorCodeAuthError, "Invalid Apollo API key"
		traffic.RecordError()
	case errors.Is(err, client.ErrRateLimited):
		code, message = models.ErrorCodeRateLimit, "Apollo rate limit exceeded"
		traffic.RecordError()
	default:
		code, message = models.ErrorCodeAPIError, "Apollo API error: "+err.Error()
		traffic.RecordError()
	}

	observability.RecordEnrichmentOutcome(string(code))
	return models.ErrorResult(code, message, linkedinURL)
}
