package validation

import (
	"errors"
	"testing"

	"github.com/prospectly/email-enrichment-service/internal/models"
)

func TestIsLinkedInProfileURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"standard profile", "https://www.linkedin.com/in/jane-doe", true},
		{"no www", "https://linkedin.com/in/jane-doe", true},
		{"http scheme", "http://www.linkedin.com/in/jane-doe", true},
		{"regional subdomain", "https://uk.linkedin.com/in/jane-doe", true},
		{"trailing slash", "https://www.linkedin.com/in/jane-doe/", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"no path", "https://www.linkedin.com/", false},
		{"wrong host", "https://www.linkedout.com/in/jane-doe", false},
		{"lookalike host", "https://evillinkedin.com/in/jane-doe", false},
		{"no scheme", "www.linkedin.com/in/jane-doe", false},
		{"ftp scheme", "ftp://linkedin.com/in/jane-doe", false},
		{"not a url", "not a url at all", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLinkedInProfileURL(tt.url); got != tt.want {
				t.Errorf("IsLinkedInProfileURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidateEnrichmentRequest(t *testing.T) {
	valid := models.EnrichmentRequest{
		Person: models.PersonInput{LinkedInURL: "https://www.linkedin.com/in/jane-doe"},
	}
	if err := ValidateEnrichmentRequest(valid); err != nil {
		t.Errorf("ValidateEnrichmentRequest() unexpected error: %v", err)
	}

	missing := models.EnrichmentRequest{}
	if err := ValidateEnrichmentRequest(missing); !errors.Is(err, ErrInvalidLinkedInURL) {
		t.Errorf("ValidateEnrichmentRequest() error = %v, want ErrInvalidLinkedInURL", err)
	}

	badURL := models.EnrichmentRequest{
		Person: models.PersonInput{LinkedInURL: "https://example.com/in/jane"},
	}
	if err := ValidateEnrichmentRequest(badURL); !errors.Is(err, ErrInvalidLinkedInURL) {
		t.Errorf("ValidateEnrichmentRequest() error = %v, want ErrInvalidLinkedInURL", err)
	}
}

func TestValidatePerson(t *testing.T) {
	if err := ValidatePerson(models.PersonInput{LinkedInURL: "https://linkedin.com/in/jane"}); err != nil {
		t.Errorf("ValidatePerson() unexpected error: %v", err)
	}
	if err := ValidatePerson(models.PersonInput{}); !errors.Is(err, ErrInvalidLinkedInURL) {
		t.Errorf("ValidatePerson() error = %v, want ErrInvalidLinkedInURL", err)
	}
}

func TestValidateBulkRequest(t *testing.T) {
	person := models.PersonInput{LinkedInURL: "https://www.linkedin.com/in/jane-doe"}

	t.Run("valid at cap", func(t *testing.T) {
		people := make([]models.PersonInput, models.MaxBulkPeople)
		for i := range people {
			people[i] = person
		}
		if err := ValidateBulkRequest(models.BulkEnrichmentRequest{People: people}); err != nil {
			t.Errorf("ValidateBulkRequest() unexpected error: %v", err)
		}
	})

	t.Run("over cap", func(t *testing.T) {
		people := make([]models.PersonInput, models.MaxBulkPeople+1)
		for i := range people {
			people[i] = person
		}
		err := ValidateBulkRequest(models.BulkEnrichmentRequest{People: people})
		if !errors.Is(err, ErrTooManyPeople) {
			t.Errorf("ValidateBulkRequest() error = %v, want ErrTooManyPeople", err)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		err := ValidateBulkRequest(models.BulkEnrichmentRequest{})
		if !errors.Is(err, ErrNoPeople) {
			t.Errorf("ValidateBulkRequest() error = %v, want ErrNoPeople", err)
		}
	})

	t.Run("one bad person", func(t *testing.T) {
		people := []models.PersonInput{person, {LinkedInURL: "https://example.com/jane"}}
		err := ValidateBulkRequest(models.BulkEnrichmentRequest{People: people})
		if !errors.Is(err, ErrInvalidLinkedInURL) {
			t.Errorf("ValidateBulkRequest() error = %v, want ErrInvalidLinkedInURL", err)
		}
	})
}
