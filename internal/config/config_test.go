// internal/config/config_test.go
package config_test

import (
	"reflect"
	"testing"

	"github.com/AI-Template-SDK/senso-metrics/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	if cfg.SmallSamplePromptThreshold != 20 {
		t.Errorf("prompt threshold = %d, expected 20", cfg.SmallSamplePromptThreshold)
	}
	if cfg.SmallSampleCitationThreshold != 10 {
		t.Errorf("citation threshold = %d, expected 10", cfg.SmallSampleCitationThreshold)
	}
	if cfg.FuzzyMatchThreshold != 0.7 {
		t.Errorf("fuzzy threshold = %f, expected 0.7", cfg.FuzzyMatchThreshold)
	}
	if cfg.MaxLevenshteinInput != 50 {
		t.Errorf("levenshtein cap = %d, expected 50", cfg.MaxLevenshteinInput)
	}
	if cfg.MaxWorkers != 4 {
		t.Errorf("max workers = %d, expected 4", cfg.MaxWorkers)
	}
	if cfg.WeightVisibilityByConfidence {
		t.Error("confidence weighting should default off")
	}
	if cfg.LegacyDomainMap["amex.com"] != "American Express" {
		t.Errorf("default legacy table missing amex.com: %v", cfg.LegacyDomainMap)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SMALL_SAMPLE_PROMPT_THRESHOLD", "30")
	t.Setenv("FUZZY_MATCH_THRESHOLD", "0.85")
	t.Setenv("MAX_WORKERS", "8")
	t.Setenv("WEIGHT_VISIBILITY_BY_CONFIDENCE", "true")

	cfg := config.Load()
	if cfg.SmallSamplePromptThreshold != 30 {
		t.Errorf("prompt threshold = %d, expected 30", cfg.SmallSamplePromptThreshold)
	}
	if cfg.FuzzyMatchThreshold != 0.85 {
		t.Errorf("fuzzy threshold = %f, expected 0.85", cfg.FuzzyMatchThreshold)
	}
	if cfg.MaxWorkers != 8 {
		t.Errorf("max workers = %d, expected 8", cfg.MaxWorkers)
	}
	if !cfg.WeightVisibilityByConfidence {
		t.Error("expected confidence weighting enabled")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_WORKERS", "not-a-number")
	t.Setenv("FUZZY_MATCH_THRESHOLD", "also-bad")

	cfg := config.Load()
	if cfg.MaxWorkers != 4 {
		t.Errorf("max workers = %d, expected default 4", cfg.MaxWorkers)
	}
	if cfg.FuzzyMatchThreshold != 0.7 {
		t.Errorf("fuzzy threshold = %f, expected default 0.7", cfg.FuzzyMatchThreshold)
	}
}

func TestParseLegacyDomainMap(t *testing.T) {
	t.Run("custom pairs replace the default table", func(t *testing.T) {
		t.Setenv("LEGACY_DOMAIN_MAP", "Amex.com=American Express, acme.io=Acme")
		cfg := config.Load()
		expected := map[string]string{
			"amex.com": "American Express",
			"acme.io":  "Acme",
		}
		if !reflect.DeepEqual(cfg.LegacyDomainMap, expected) {
			t.Errorf("legacy map = %v, expected %v", cfg.LegacyDomainMap, expected)
		}
	})

	t.Run("none empties the table", func(t *testing.T) {
		t.Setenv("LEGACY_DOMAIN_MAP", "none")
		cfg := config.Load()
		if len(cfg.LegacyDomainMap) != 0 {
			t.Errorf("expected empty legacy map, got %v", cfg.LegacyDomainMap)
		}
	})

	t.Run("malformed pairs are skipped", func(t *testing.T) {
		t.Setenv("LEGACY_DOMAIN_MAP", "acme.io=Acme,garbage,=missing")
		cfg := config.Load()
		expected := map[string]string{"acme.io": "Acme"}
		if !reflect.DeepEqual(cfg.LegacyDomainMap, expected) {
			t.Errorf("legacy map = %v, expected %v", cfg.LegacyDomainMap, expected)
		}
	})
}

func TestParseExtraSocialDomains(t *testing.T) {
	t.Setenv("EXTRA_SOCIAL_DOMAINS", "Forum.Example.com, chat.example.org, forum.example.com,")
	cfg := config.Load()

	expected := []string{"chat.example.org", "forum.example.com"}
	if !reflect.DeepEqual(cfg.ExtraSocialDomains, expected) {
		t.Errorf("extra social domains = %v, expected %v", cfg.ExtraSocialDomains, expected)
	}
}
