// internal/models/models.go
package models

import (
	"github.com/google/uuid"
)

// BrandPatternSet holds everything derived from a brand display name that the
// detection and classification services match against. It is regenerated purely
// from the name, so it can be rebuilt at any time and two generations for the
// same name are byte-identical.
type BrandPatternSet struct {
	BrandName string `json:"brand_name"`

	// Tokens are the significant name tokens left after stripping stop words
	// and legal suffixes, in original order.
	Tokens []string `json:"tokens"`

	// Abbreviations is sorted by descending length, then lexicographically.
	Abbreviations []string `json:"abbreviations"`

	// AbbreviationFor maps each abbreviation back to the brand display name.
	AbbreviationFor map[string]string `json:"abbreviation_for"`

	// NameVariations are the domain-shaped variations derived from the name
	// tokens only (no abbreviations). Sorted by descending length, then
	// lexicographically.
	NameVariations []string `json:"name_variations"`

	// DomainVariations is the union of NameVariations and every abbreviation
	// of length 2-15, sorted the same way.
	DomainVariations []string `json:"domain_variations"`

	// TextPatterns is sorted by descending length so consumers can rely on
	// longest-match-first iteration.
	TextPatterns []string `json:"text_patterns"`
}

// SentenceRecord is one sentence of a model response.
type SentenceRecord struct {
	Text      string `json:"text"`
	Position  int    `json:"position"` // 0-indexed
	WordCount int    `json:"word_count"`
}

// CitationType classifies who owns a cited domain (PESO-style split).
type CitationType string

const (
	CitationTypeBrand   CitationType = "brand"
	CitationTypeSocial  CitationType = "social"
	CitationTypeEarned  CitationType = "earned"
	CitationTypeUnknown CitationType = "unknown"
)

// Citation is a single cited URL extracted from a response.
// Invariant: Type == CitationTypeUnknown implies Confidence == 0 and Domain == "".
type Citation struct {
	CitationID uuid.UUID    `json:"citation_id"`
	RawURL     string       `json:"raw_url"`
	CleanedURL string       `json:"cleaned_url,omitempty"`
	Domain     string       `json:"domain,omitempty"`
	Type       CitationType `json:"type"`
	Brand      string       `json:"brand,omitempty"` // tracked brand the citation is attributed to
	Confidence float64      `json:"confidence"`
	Label      string       `json:"label"`
	SourceText string       `json:"source_text,omitempty"`
	Position   int          `json:"position"` // first-seen offset in the response text
	Provider   string       `json:"provider,omitempty"`
}

// CitationMarker is a numbered reference ("[3]") that never resolved to an
// inline URL. Markers are tracked separately from citations and are exempt
// from URL validation.
type CitationMarker struct {
	Number     int     `json:"number"`
	Confidence float64 `json:"confidence"`
	SourceText string  `json:"source_text"`
	Position   int     `json:"position"`
}

// CitationCandidate is a provider-supplied citation (e.g. Perplexity's
// structured citations field). URL may be empty when only link text is known.
type CitationCandidate struct {
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

// SentimentResult is the polarity of a response toward one brand.
type SentimentResult struct {
	Score   float64  `json:"score"` // -1..1
	Label   string   `json:"label"` // positive, negative, neutral, mixed
	Drivers []string `json:"drivers,omitempty"`
}

// BrandDetection is the per-response detection record for one tracked brand.
type BrandDetection struct {
	BrandName            string           `json:"brand_name"`
	Mentioned            bool             `json:"mentioned"`
	FirstPosition        *int             `json:"first_position,omitempty"` // 1-indexed sentence
	MentionCount         int              `json:"mention_count"`
	Sentences            []SentenceRecord `json:"sentences,omitempty"`
	DetectionConfidences []float64        `json:"detection_confidences,omitempty"`

	// DepthOfMention and Sentiment ride on the detection record because the
	// per-brand aggregation consumes them alongside it.
	DepthOfMention float64          `json:"depth_of_mention"` // 0..100
	Sentiment      *SentimentResult `json:"sentiment,omitempty"`
}

// ResponseRequest is the per-response input contract: raw model output, the
// brands to track, and any provider-supplied citation candidates.
type ResponseRequest struct {
	ResponseText       string              `json:"response_text"`
	TrackedBrands      []string            `json:"tracked_brands"`
	TargetBrand        string              `json:"target_brand,omitempty"`
	CitationCandidates []CitationCandidate `json:"citation_candidates,omitempty"`
	Provider           string              `json:"provider,omitempty"`
}

// ResponseExtraction is the full per-response output. It is transient: the
// aggregation consumes it immediately, nothing mutates it afterwards.
type ResponseExtraction struct {
	ResponseText    string           `json:"response_text"`
	TotalSentences  int              `json:"total_sentences"`
	TotalWords      int              `json:"total_words"`
	BrandDetections []BrandDetection `json:"brand_detections"`
	Citations       []Citation       `json:"citations"`
	Markers         []CitationMarker `json:"markers,omitempty"`
}

// Prompt is one unique prompt issued to the model providers.
type Prompt struct {
	PromptID uuid.UUID `json:"prompt_id"`
	Text     string    `json:"text"`
}

// ResponseRecord ties one model response back to the prompt that produced it.
type ResponseRecord struct {
	ResponseID uuid.UUID           `json:"response_id"`
	PromptID   uuid.UUID           `json:"prompt_id"`
	Provider   string              `json:"provider,omitempty"`
	Extraction *ResponseExtraction `json:"extraction"`
}

// AggregationInput is the full cross-response input for one aggregation run.
type AggregationInput struct {
	TrackedBrands []string         `json:"tracked_brands"`
	Prompts       []Prompt         `json:"prompts"`
	Responses     []ResponseRecord `json:"responses"`
}

// ConfidenceInterval is a 95% Wald interval, clamped to the metric's range.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// AggregatedBrandMetric is the cross-response metric set for one brand.
// Recomputed idempotently on every aggregation run, never mutated in place.
type AggregatedBrandMetric struct {
	BrandName string `json:"brand_name"`

	VisibilityScore    float64             `json:"visibility_score"` // 0..100
	VisibilityInterval *ConfidenceInterval `json:"visibility_interval,omitempty"`
	VisibilityMin      float64             `json:"visibility_min"`
	VisibilityMax      float64             `json:"visibility_max"`
	SampleSize         int                 `json:"sample_size"`

	DepthOfMention float64 `json:"depth_of_mention"` // 0..100
	AvgPosition    float64 `json:"avg_position"`     // >= 0

	CitationShare         float64             `json:"citation_share"` // 0..100
	CitationShareInterval *ConfidenceInterval `json:"citation_share_interval,omitempty"`

	SentimentScore float64 `json:"sentiment_score"` // -100..100

	TotalAppearances int `json:"total_appearances"`
	TotalMentions    int `json:"total_mentions"`

	// Ranks maps metric name to the brand's competition rank (ties share a
	// rank, the next distinct value takes its 1-indexed position).
	Ranks map[string]int `json:"ranks"`
}

// AggregationTotals summarizes the sample an aggregation ran over.
type AggregationTotals struct {
	TotalPrompts   int `json:"total_prompts"`
	TotalResponses int `json:"total_responses"`
	TotalCitations int `json:"total_citations"`
	TotalWords     int `json:"total_words"`
	SkippedRecords int `json:"skipped_records"`
}

// AggregationResult is the full output of one aggregation run. BrandMetrics
// follows the order of AggregationInput.TrackedBrands.
type AggregationResult struct {
	BrandMetrics []AggregatedBrandMetric `json:"brand_metrics"`
	Totals       AggregationTotals       `json:"totals"`
	Insights     []string                `json:"insights"`
}

// ResponseScore is the simple per-response overall score for one brand
// (distinct from the aggregate metrics).
type ResponseScore struct {
	BrandName      string  `json:"brand_name"`
	Mentioned      bool    `json:"mentioned"`
	Score          float64 `json:"score"`
	PositionRank   int     `json:"position_rank,omitempty"` // order of first appearance among tracked brands
	HasBrandCite   bool    `json:"has_brand_citation"`
	HasEarnedCite  bool    `json:"has_earned_citation"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
}
