// services/interfaces.go
package services

import (
	"github.com/AI-Template-SDK/senso-metrics/internal/models"
	"github.com/invopop/jsonschema"
)

// TextService splits response text into sentences and provides the capped
// string-similarity primitive the detector and classifier share.
type TextService interface {
	SplitSentences(text string) []models.SentenceRecord
	CountWords(text string) int
	Similarity(a, b string) float64
}

// PatternService derives a BrandPatternSet from a brand display name.
// Generation is pure; repeated calls for the same name return identical sets.
type PatternService interface {
	GeneratePatterns(brandName string) *models.BrandPatternSet
	// QuickMention is the cheap case-insensitive substring pre-check used to
	// gate the full detection pass.
	QuickMention(text string, set *models.BrandPatternSet) bool
}

// DetectionResult is the tagged outcome of one detection attempt.
type DetectionResult struct {
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method,omitempty"`
}

// DetectionService decides, per sentence, whether a brand is present and with
// what confidence, and folds sentence-level results into a BrandDetection.
type DetectionService interface {
	DetectInSentence(sentence string, set *models.BrandPatternSet) DetectionResult
	DetectBrand(sentences []models.SentenceRecord, set *models.BrandPatternSet) models.BrandDetection
	DepthOfMention(detection *models.BrandDetection, totalSentences, totalWords int) float64
}

// SentimentService scores polarity toward a brand across the sentences that
// mention it.
type SentimentService interface {
	ScoreBrand(sentences []models.SentenceRecord, set *models.BrandPatternSet) models.SentimentResult
}

// URLValidation is the outcome of validating one raw URL. Invalid inputs
// never produce an error, just Valid=false.
type URLValidation struct {
	Valid      bool   `json:"valid"`
	CleanedURL string `json:"cleaned_url,omitempty"`
	Domain     string `json:"domain,omitempty"`
}

// URLService validates raw URLs and normalizes domains.
type URLService interface {
	Validate(raw string) URLValidation
	// RootDomain returns the eTLD+1 for a hostname, falling back to the last
	// two labels when the public suffix list cannot resolve it.
	RootDomain(domain string) string
}

// CitationService scans response text for citation candidates with multiple
// extraction strategies and deduplicates them.
type CitationService interface {
	ExtractCitations(responseText string, provided []models.CitationCandidate, provider string) ([]models.Citation, []models.CitationMarker)
}

// Classification labels one cited domain.
type Classification struct {
	Type       models.CitationType `json:"type"`
	Brand      string              `json:"brand,omitempty"`
	Confidence float64             `json:"confidence"`
	Label      string              `json:"label"`
}

// ClassificationService labels citations as brand-owned, social, earned, or
// unknown. The brand check is restricted to the target brand's own pattern set
// so a competitor's domain is never labeled "brand" for the wrong brand.
type ClassificationService interface {
	Classify(domain string, trackedBrands []string, targetBrand string) Classification
	// ClassifyCitations attributes each citation to the first tracked brand
	// whose pattern set owns its domain, then falls back to the social/earned
	// buckets. Citations are returned in input order.
	ClassifyCitations(citations []models.Citation, trackedBrands []string, targetBrand string) []models.Citation
}

// ExtractionService runs the full per-response pipeline: sentence split,
// per-brand detection, sentiment, depth, citation extraction and
// classification.
type ExtractionService interface {
	ProcessResponse(req *models.ResponseRequest) *models.ResponseExtraction
	// ProcessResponses fans the per-response work out across a bounded worker
	// pool. Results preserve input order, so output is deterministic
	// regardless of scheduling.
	ProcessResponses(reqs []*models.ResponseRequest) []*models.ResponseExtraction
}

// AggregationService folds per-response extractions into per-brand metrics.
// It is the single stateful reduction of the engine and must only run once all
// per-response results are available (ranks and smoothing need the complete
// sample).
type AggregationService interface {
	Aggregate(input *models.AggregationInput) (*models.AggregationResult, error)
	ScoreResponse(extraction *models.ResponseExtraction, brandName string) models.ResponseScore
}

// GenerateSchema generates a strict JSON schema for the engine's output
// contract types, for consumers that validate structured payloads.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}

// Schemas for the two output contracts, generated once at init.
var (
	ResponseExtractionSchema = GenerateSchema[models.ResponseExtraction]()
	AggregationResultSchema  = GenerateSchema[models.AggregationResult]()
)
