package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prospectly/email-enrichment-service/internal/models"
	"github.com/prospectly/email-enrichment-service/internal/observability"
)

// EnrichmentClient is the outbound interface to the people-data provider.
// apiKey is passed per call because requests may carry a key override.
type EnrichmentClient interface {
	Match(ctx context.Context, person models.PersonInput, apiKey string) (Person, error)
	BulkMatch(ctx context.Context, people []models.PersonInput, apiKey string) ([]MatchOutcome, error)
	ValidateAPIKey(ctx context.Context) error
}

var (
	ErrInvalidAPIKey   = errors.New("invalid API key")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrNoMatch         = errors.New("no match found in Apollo")
	ErrNoEmail         = errors.New("no email found in Apollo")
)

// Person is the contact data extracted from a successful Apollo match.
type Person struct {
	Email       string
	Name        string
	Title       string
	Company     string
	LinkedInURL string
}

// MatchOutcome is one entry of a bulk match, index-aligned with the request.
// Exactly one of Person/Err is meaningful.
type MatchOutcome struct {
	Person Person
	Err    error
}

// ApolloClient calls the Apollo.io people match endpoints. One attempt per
// call, bounded by timeout; upstream errors pass through as sentinel errors.
type ApolloClient struct {
	apiKey  string
	apiURL  string
	timeout time.Duration
	client  *http.Client
}

func NewApolloClient(apiKey, apiURL string, timeout time.Duration) (*ApolloClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}

	return &ApolloClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// apolloPerson is the subset of Apollo's person object this service reads.
type apolloPerson struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	LinkedInURL  string `json:"linkedin_url"`
	Organization *struct {
		Name string `json:"name"`
	} `json:"organization"`
}

type apolloMatchResponse struct {
	Person *apolloPerson `json:"person"`
}

type apolloBulkResponse struct {
	Matches []*apolloPerson `json:"matches"`
}

// matchPayload maps our person schema to Apollo's expected fields.
type matchPayload struct {
	LinkedInURL          string `json:"linkedin_url"`
	RevealPersonalEmails bool   `json:"reveal_personal_emails"`
	FirstName            string `json:"first_name,omitempty"`
	LastName             string `json:"last_name,omitempty"`
	OrganizationName     string `json:"organization_name,omitempty"`
	Domain               string `json:"domain,omitempty"`
}

type bulkMatchPayload struct {
	Details              []matchPayload `json:"details"`
	RevealPersonalEmails bool           `json:"reveal_personal_emails"`
}

func buildMatchPayload(person models.PersonInput) matchPayload {
	first, last := person.SplitName()
	return matchPayload{
		LinkedInURL:          person.LinkedInURL,
		RevealPersonalEmails: true,
		FirstName:            first,
		LastName:             last,
		OrganizationName:     person.Company,
		Domain:               person.Domain,
	}
}

// Match enriches a single person via Apollo's people/match endpoint.
func (c *ApolloClient) Match(ctx context.Context, person models.PersonInput, apiKey string) (Person, error) {
	body, err := c.postJSON(ctx, "/people/match", apiKey, buildMatchPayload(person))
	if err != nil {
		return Person{}, err
	}

	var apiResp apolloMatchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return Person{}, fmt.Errorf("parse response: %w", err)
	}

	return extractPerson(apiResp.Person, person.LinkedInURL)
}

// BulkMatch enriches up to models.MaxBulkPeople people via Apollo's
// people/bulk_match endpoint. The returned slice is index-aligned with
// people; a request-level failure is returned as an error instead.
func (c *ApolloClient) BulkMatch(ctx context.Context, people []models.PersonInput, apiKey string) ([]MatchOutcome, error) {
	payload := bulkMatchPayload{
		Details:              make([]matchPayload, 0, len(people)),
		RevealPersonalEmails: true,
	}
	for _, person := range people {
		payload.Details = append(payload.Details, buildMatchPayload(person))
	}

	body, err := c.postJSON(ctx, "/people/bulk_match", apiKey, payload)
	if err != nil {
		return nil, err
	}

	var apiResp apolloBulkResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	outcomes := make([]MatchOutcome, len(people))
	for i, person := range people {
		var match *apolloPerson
		if i < len(apiResp.Matches) {
			match = apiResp.Matches[i]
		}
		p, err := extractPerson(match, person.LinkedInURL)
		outcomes[i] = MatchOutcome{Person: p, Err: err}
	}
	return outcomes, nil
}

// extractPerson converts an Apollo person object into a Person, enforcing
// that a match exists and carries an email.
func extractPerson(match *apolloPerson, linkedinURL string) (Person, error) {
	if match == nil {
		return Person{}, ErrNoMatch
	}
	if match.Email == "" {
		return Person{}, ErrNoEmail
	}
	p := Person{
		Email:       match.Email,
		Name:        match.Name,
		Title:       match.Title,
		LinkedInURL: match.LinkedInURL,
	}
	if p.LinkedInURL == "" {
		p.LinkedInURL = linkedinURL
	}
	if match.Organization != nil {
		p.Company = match.Organization.Name
	}
	return p, nil
}

// postJSON performs one POST to the Apollo API and returns the response body
// for 2xx responses. Status codes map to sentinel errors; no retries.
func (c *ApolloClient) postJSON(ctx context.Context, path, apiKey string, payload interface{}) ([]byte, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded, err := json.Marshal(payload)
	if err != nil {
		observability.ApolloAPICallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.apiURL+path, bytes.NewReader(encoded))
	if err != nil {
		observability.ApolloAPICallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, apiKey)

	corrID := extractCorrelationID(ctx)
	if corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.ApolloAPICallsTotal.WithLabelValues("error").Inc()
		observability.ApolloAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: request timeout: %v", ErrUpstreamFailure, err)
		}
		return nil, fmt.Errorf("%w: http request failed: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.ApolloAPICallsTotal.WithLabelValues(status).Inc()
	observability.ApolloAPIDuration.WithLabelValues(status).Observe(duration)

	if err := c.handleErrorResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func (c *ApolloClient) setHeaders(req *http.Request, apiKey string) {
	if apiKey == "" {
		apiKey = c.apiKey
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Api-Key", apiKey)
}

func (c *ApolloClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: invalid Apollo API key", ErrInvalidAPIKey)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: Apollo rate limit exceeded", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}

// ValidateAPIKey checks the configured key against Apollo's auth health
// endpoint. Called once at startup; a failure logs a warning, it does not
// prevent the service from starting.
func (c *ApolloClient) ValidateAPIKey(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/auth/health", nil)
	if err != nil {
		return fmt.Errorf("build validation request: %w", err)
	}
	c.setHeaders(req, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("validation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: API key is invalid or not activated", ErrInvalidAPIKey)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("validation failed: HTTP %d", resp.StatusCode)
	}

	return nil
}
