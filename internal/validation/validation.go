package validation

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/prospectly/email-enrichment-service/internal/models"
)

// ErrTooManyPeople is returned when a bulk request exceeds models.MaxBulkPeople.
var ErrTooManyPeople = errors.New("too many people in bulk request")

// ErrNoPeople is returned when a bulk request carries an empty people list.
var ErrNoPeople = errors.New("people list is empty")

// ErrInvalidLinkedInURL is returned when linkedin_url is missing or does not
// look like a LinkedIn profile URL.
var ErrInvalidLinkedInURL = errors.New("linkedin_url must be a LinkedIn profile URL")

// validate is the shared validator instance. Struct tags on the request DTOs
// (required, min/max on the people list) plus the custom linkedin_url rule
// cover all structural checks.
var validate *validator.Validate

func init() {
	validate = validator.New()
	// RegisterValidation only fails for a blank tag name.
	if err := validate.RegisterValidation("linkedin_url", validateLinkedInURL); err != nil {
		panic(err)
	}
}

func validateLinkedInURL(fl validator.FieldLevel) bool {
	return IsLinkedInProfileURL(fl.Field().String())
}

// IsLinkedInProfileURL reports whether s is an http(s) URL on a linkedin.com
// host with a non-empty path (e.g. https://www.linkedin.com/in/jane-doe).
func IsLinkedInProfileURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return false
	}
	return strings.Trim(u.Path, "/") != ""
}

// ValidateEnrichmentRequest checks the structural shape of a single-person
// request. The returned error is suitable for a 400 validation_error response.
func ValidateEnrichmentRequest(req models.EnrichmentRequest) error {
	if err := validate.Struct(req); err != nil {
		return humanize(err)
	}
	return nil
}

// ValidatePerson checks a bare person payload (the /enrich/simple body).
func ValidatePerson(person models.PersonInput) error {
	if err := validate.Struct(person); err != nil {
		return humanize(err)
	}
	return nil
}

// ValidateBulkRequest checks a bulk request: 1..MaxBulkPeople people, each
// with a valid LinkedIn profile URL.
func ValidateBulkRequest(req models.BulkEnrichmentRequest) error {
	if len(req.People) == 0 {
		return ErrNoPeople
	}
	if len(req.People) > models.MaxBulkPeople {
		return ErrTooManyPeople
	}
	if err := validate.Struct(req); err != nil {
		return humanize(err)
	}
	return nil
}

// humanize maps validator errors onto the package sentinels so callers and
// tests can use errors.Is. Unrecognized tag failures pass through unchanged.
func humanize(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "linkedin_url":
			return ErrInvalidLinkedInURL
		case "required":
			if strings.HasSuffix(fe.StructNamespace(), "LinkedInURL") {
				return ErrInvalidLinkedInURL
			}
		case "max":
			if fe.StructField() == "People" {
				return ErrTooManyPeople
			}
		case "min":
			if fe.StructField() == "People" {
				return ErrNoPeople
			}
		}
	}
	return err
}
