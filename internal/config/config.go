// internal/config/config.go
package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
)

// Config carries the engine tunables. Every value has a default that matches
// the documented metric contract, so Load() works with an empty environment.
type Config struct {
	Environment string

	// Smoothing thresholds for small samples.
	SmallSamplePromptThreshold   int     // blend visibility toward the 50% prior below this many prompts
	SmallSampleCitationThreshold int     // blend citation share toward the equal-split prior below this many citations
	FuzzyMatchThreshold          float64 // minimum normalized Levenshtein similarity for a fuzzy match
	MaxLevenshteinInput          int     // per-string cap for the full DP comparison

	// WeightVisibilityByConfidence multiplies raw visibility by the mean
	// detection confidence when set.
	WeightVisibilityByConfidence bool

	// MaxWorkers bounds the per-response extraction fan-out.
	MaxWorkers int

	// LegacyDomainMap is the deprecated well-known-domain fallback used by the
	// citation classifier. Injected here rather than hardcoded in the
	// classifier so deployments can override or empty it.
	LegacyDomainMap map[string]string

	// ExtraSocialDomains extends the curated social platform list.
	ExtraSocialDomains []string
}

// defaultLegacyDomainMap is the historical hardcoded table. It only ever
// resolves when the mapped brand is fuzzily similar to the target brand.
func defaultLegacyDomainMap() map[string]string {
	return map[string]string{
		"amex.com":          "American Express",
		"chase.com":         "Chase",
		"wellsfargo.com":    "Wells Fargo",
		"bankofamerica.com": "Bank of America",
		"citi.com":          "Citi",
		"capitalone.com":    "Capital One",
	}
}

func Load() *Config {
	config := &Config{
		Environment:                  getEnv("ENVIRONMENT", "development"),
		SmallSamplePromptThreshold:   getEnvInt("SMALL_SAMPLE_PROMPT_THRESHOLD", 20),
		SmallSampleCitationThreshold: getEnvInt("SMALL_SAMPLE_CITATION_THRESHOLD", 10),
		FuzzyMatchThreshold:          getEnvFloat("FUZZY_MATCH_THRESHOLD", 0.7),
		MaxLevenshteinInput:          getEnvInt("MAX_LEVENSHTEIN_INPUT", 50),
		WeightVisibilityByConfidence: getEnvBool("WEIGHT_VISIBILITY_BY_CONFIDENCE", false),
		MaxWorkers:                   getEnvInt("MAX_WORKERS", 4),
	}

	config.LegacyDomainMap = parseLegacyDomainMap(os.Getenv("LEGACY_DOMAIN_MAP"))
	config.ExtraSocialDomains = parseDomainList(os.Getenv("EXTRA_SOCIAL_DOMAINS"))

	return config
}

// parseLegacyDomainMap parses "domain=brand,domain=brand" pairs. An empty
// value keeps the historical default table; the literal "none" empties it.
func parseLegacyDomainMap(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultLegacyDomainMap()
	}
	if strings.EqualFold(raw, "none") {
		return map[string]string{}
	}

	table := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		domain := strings.ToLower(strings.TrimSpace(parts[0]))
		brand := strings.TrimSpace(parts[1])
		if domain == "" || brand == "" {
			continue
		}
		table[domain] = brand
	}
	return table
}

func parseDomainList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	seen := make(map[string]bool)
	var domains []string
	for _, entry := range strings.Split(raw, ",") {
		domain := strings.ToLower(strings.TrimSpace(entry))
		if domain == "" || seen[domain] {
			continue
		}
		seen[domain] = true
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
