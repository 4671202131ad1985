package models

import "strings"

// MaxBulkPeople is the hard cap on people per bulk enrichment request.
const MaxBulkPeople = 10

// ProviderApollo is the only enrichment source this service talks to.
const ProviderApollo = "apollo"

// ErrorCode is the stable error discriminator returned in failed results.
type ErrorCode string

const (
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeRateLimit  ErrorCode = "rate_limit"
	ErrorCodeAuthError  ErrorCode = "auth_error"
	ErrorCodeAPIError   ErrorCode = "api_error"
	ErrorCodeValidation ErrorCode = "validation_error"
)

// PersonInput identifies a person to enrich. LinkedInURL is the primary key
// for matching; the remaining fields improve match quality when present.
type PersonInput struct {
	LinkedInURL string `json:"linkedin_url" validate:"required,linkedin_url"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Name        string `json:"name,omitempty"`
	Company     string `json:"company,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Title       string `json:"title,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// SplitName returns the first and last name for the person. Explicit
// FirstName/LastName win; otherwise Name is split on the first whitespace
// (last name may be empty for single-word names).
func (p PersonInput) SplitName() (first, last string) {
	first = strings.TrimSpace(p.FirstName)
	last = strings.TrimSpace(p.LastName)
	if first != "" || last != "" {
		return first, last
	}
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return "", ""
	}
	first = parts[0]
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}

// APIKeys carries optional per-request credentials that override the
// configured defaults.
type APIKeys struct {
	Apollo string `json:"apollo,omitempty"`
}

// EnrichmentRequest is the body for POST /enrich.
type EnrichmentRequest struct {
	Person  PersonInput `json:"person"`
	APIKeys *APIKeys    `json:"api_keys,omitempty"`
}

// BulkEnrichmentRequest is the body for POST /enrich/bulk.
type BulkEnrichmentRequest struct {
	People  []PersonInput `json:"people" validate:"required,min=1,max=10,dive"`
	APIKeys *APIKeys      `json:"api_keys,omitempty"`
}

// BulkEnrichmentResponse holds one result per input person, index-aligned.
type BulkEnrichmentResponse struct {
	Results []EnrichmentResult `json:"results"`
}

// EnrichmentResult is the in-body success/error union returned for every
// enrichment outcome. Success carries the contact fields; failure carries
// the error code and message. Enrichment failures (not found, upstream
// errors) are results, not HTTP errors.
type EnrichmentResult struct {
	Success     bool      `json:"success"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name,omitempty"`
	Title       string    `json:"title,omitempty"`
	Company     string    `json:"company,omitempty"`
	LinkedInURL string    `json:"linkedin_url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Error       ErrorCode `json:"error,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// SuccessResult builds a successful enrichment result sourced from Apollo.
func SuccessResult(email, linkedinURL, name, title, company string) EnrichmentResult {
	return EnrichmentResult{
		Success:     true,
		Email:       email,
		Name:        name,
		Title:       title,
		Company:     company,
		LinkedInURL: linkedinURL,
		Source:      ProviderApollo,
	}
}

// ErrorResult builds a failed enrichment result.
func ErrorResult(code ErrorCode, message, linkedinURL string) EnrichmentResult {
	return EnrichmentResult{
		Success:     false,
		Error:       code,
		Message:     message,
		LinkedInURL: linkedinURL,
	}
}
