// services/classification_service_test.go
package services_test

import (
	"testing"

	"github.com/AI-Template-SDK/senso-metrics/internal/config"
	"github.com/AI-Template-SDK/senso-metrics/internal/models"
	"github.com/AI-Template-SDK/senso-metrics/services"
)

func newClassificationService(legacy map[string]string, extraSocial []string) services.ClassificationService {
	urls := services.NewURLService()
	text := services.NewTextService(50)
	patterns := services.NewPatternService()
	return services.NewClassificationService(urls, patterns, text, legacy, extraSocial)
}

func TestClassifyBrandRules(t *testing.T) {
	svc := newClassificationService(nil, nil)
	tracked := []string{"American Express", "Chase", "Capital One"}

	tests := []struct {
		name       string
		domain     string
		brand      string
		label      string
		confidence float64
	}{
		{
			name:       "exact variation domain",
			domain:     "americanexpress.com",
			brand:      "American Express",
			label:      "brand_domain_exact",
			confidence: 0.95,
		},
		{
			name:       "abbreviation domain",
			domain:     "amex.com",
			brand:      "American Express",
			label:      "brand_abbreviation_domain",
			confidence: 0.9,
		},
		{
			name:       "subdomain of brand root",
			domain:     "careers.americanexpress.com",
			brand:      "American Express",
			label:      "brand_root_domain",
			confidence: 0.85,
		},
		{
			name:       "single token exact",
			domain:     "chase.com",
			brand:      "Chase",
			label:      "brand_domain_exact",
			confidence: 0.95,
		},
		{
			name:       "prefix variation",
			domain:     "capitalonecafe.com",
			brand:      "Capital One",
			label:      "brand_domain_prefix",
			confidence: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Classify(tt.domain, tracked, "American Express")
			if result.Type != models.CitationTypeBrand {
				t.Fatalf("type = %q, expected brand (label %q)", result.Type, result.Label)
			}
			if result.Brand != tt.brand {
				t.Errorf("brand = %q, expected %q", result.Brand, tt.brand)
			}
			if result.Label != tt.label {
				t.Errorf("label = %q, expected %q", result.Label, tt.label)
			}
			if result.Confidence != tt.confidence {
				t.Errorf("confidence = %f, expected %f", result.Confidence, tt.confidence)
			}
		})
	}
}

func TestClassifyBrandFuzzyDomain(t *testing.T) {
	svc := newClassificationService(nil, nil)

	// "welsfrg" sits at similarity 0.7 against "wellsfargo", the floor of
	// the fuzzy rule, and matches no stronger rule first.
	result := svc.Classify("welsfrg.com", []string{"Wells Fargo"}, "Wells Fargo")
	if result.Type != models.CitationTypeBrand || result.Brand != "Wells Fargo" {
		t.Fatalf("expected a fuzzy brand classification, got %+v", result)
	}
	if result.Label != "brand_domain_fuzzy" {
		t.Errorf("label = %q, expected brand_domain_fuzzy", result.Label)
	}
	if result.Confidence < 0.59 || result.Confidence >= 0.85 {
		t.Errorf("fuzzy confidence should scale with similarity, got %f", result.Confidence)
	}
}

func TestClassifySocial(t *testing.T) {
	svc := newClassificationService(nil, []string{"community.example"})
	tracked := []string{"American Express"}

	tests := []struct {
		domain     string
		label      string
		confidence float64
	}{
		{domain: "facebook.com", label: "social_platform", confidence: 0.95},
		{domain: "m.facebook.com", label: "social_platform_subdomain", confidence: 0.9},
		{domain: "reddit.com", label: "social_platform", confidence: 0.95},
		{domain: "community.example", label: "social_platform", confidence: 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			result := svc.Classify(tt.domain, tracked, "American Express")
			if result.Type != models.CitationTypeSocial {
				t.Fatalf("type = %q, expected social (label %q)", result.Type, result.Label)
			}
			if result.Label != tt.label {
				t.Errorf("label = %q, expected %q", result.Label, tt.label)
			}
			if result.Confidence != tt.confidence {
				t.Errorf("confidence = %f, expected %f", result.Confidence, tt.confidence)
			}
		})
	}
}

func TestClassifyEarned(t *testing.T) {
	svc := newClassificationService(nil, nil)
	tracked := []string{"American Express"}

	tests := []struct {
		domain     string
		label      string
		confidence float64
	}{
		{domain: "nytimes.com", label: "news_media", confidence: 0.85},
		{domain: "nerdwallet.com", label: "review_site", confidence: 0.8},
		{domain: "consumerfinance.gov", label: "industry_publication", confidence: 0.75},
		{domain: "randomblog.net", label: "third_party_editorial", confidence: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			result := svc.Classify(tt.domain, tracked, "American Express")
			if result.Type != models.CitationTypeEarned {
				t.Fatalf("type = %q, expected earned (label %q)", result.Type, result.Label)
			}
			if result.Label != tt.label {
				t.Errorf("label = %q, expected %q", result.Label, tt.label)
			}
			if result.Confidence != tt.confidence {
				t.Errorf("confidence = %f, expected %f", result.Confidence, tt.confidence)
			}
		})
	}
}

func TestClassifyLegacyDomains(t *testing.T) {
	legacy := config.Load().LegacyDomainMap
	svc := newClassificationService(legacy, nil)

	t.Run("legacy entry for tracked brand", func(t *testing.T) {
		result := svc.Classify("bankofamerica.com", []string{"Bank of America"}, "Bank of America")
		if result.Type != models.CitationTypeBrand || result.Brand != "Bank of America" {
			t.Fatalf("expected brand classification, got %+v", result)
		}
	})

	t.Run("legacy entry tolerates brand name drift", func(t *testing.T) {
		drifted := newClassificationService(map[string]string{"firstusa.com": "Bank One"}, nil)
		result := drifted.Classify("firstusa.com", []string{"Bank One Co"}, "Bank One Co")
		if result.Type != models.CitationTypeBrand || result.Brand != "Bank One Co" {
			t.Fatalf("a close brand name should still accept the table entry, got %+v", result)
		}
		if result.Label != "brand_legacy_domain" || result.Confidence != 0.85 {
			t.Errorf("expected brand_legacy_domain at 0.85, got %+v", result)
		}
	})

	t.Run("legacy entry for untracked brand is rejected", func(t *testing.T) {
		result := svc.Classify("wellsfargo.com", []string{"American Express"}, "American Express")
		if result.Type != models.CitationTypeUnknown {
			t.Fatalf("expected unknown, got %+v", result)
		}
		if result.Label != "legacy_domain_mismatch" {
			t.Errorf("label = %q, expected legacy_domain_mismatch", result.Label)
		}
		if result.Confidence != 0 {
			t.Errorf("unknown classification must have zero confidence, got %f", result.Confidence)
		}
	})
}

func TestClassifyCitations(t *testing.T) {
	svc := newClassificationService(config.Load().LegacyDomainMap, nil)
	tracked := []string{"American Express", "Chase"}

	citations := []models.Citation{
		{Domain: "amex.com", Type: models.CitationTypeUnknown, Confidence: 0.8},
		{Domain: "facebook.com", Type: models.CitationTypeUnknown, Confidence: 0.8},
		{Domain: "wellsfargo.com", Type: models.CitationTypeUnknown, Confidence: 0.8},
	}

	classified := svc.ClassifyCitations(citations, tracked, "American Express")
	if len(classified) != 3 {
		t.Fatalf("expected 3 citations back, got %d", len(classified))
	}
	if classified[0].Type != models.CitationTypeBrand || classified[0].Brand != "American Express" {
		t.Errorf("amex.com should attribute to American Express: %+v", classified[0])
	}
	if classified[1].Type != models.CitationTypeSocial {
		t.Errorf("facebook.com should classify social: %+v", classified[1])
	}
	if classified[2].Type != models.CitationTypeUnknown {
		t.Errorf("wellsfargo.com should be rejected via the legacy table: %+v", classified[2])
	}
	if classified[2].Confidence != 0 || classified[2].Domain != "" {
		t.Errorf("unknown citations must blank confidence and domain: %+v", classified[2])
	}
}
