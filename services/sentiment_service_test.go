// services/sentiment_service_test.go
package services_test

import (
	"math"
	"testing"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
	"github.com/AI-Template-SDK/senso-metrics/services"
)

func TestScoreBrand(t *testing.T) {
	sentiment := services.NewSentimentService()
	patterns := services.NewPatternService()
	chase := patterns.GeneratePatterns("Chase")

	tests := []struct {
		name     string
		sentence string
		expected float64
		label    string
	}{
		{
			name:     "positive keyword",
			sentence: "Chase is a reliable issuer",
			expected: 0.4,
			label:    "positive",
		},
		{
			name:     "negative keyword",
			sentence: "Chase fees are expensive",
			expected: -0.4,
			label:    "negative",
		},
		{
			name:     "negation flips and dampens",
			sentence: "This Chase card is not reliable",
			expected: -0.2,
			label:    "negative",
		},
		{
			name:     "negated negative",
			sentence: "Chase is not expensive",
			expected: 0.2,
			label:    "positive",
		},
		{
			name:     "no keywords",
			sentence: "Chase issues several cards",
			expected: 0,
			label:    "neutral",
		},
		{
			name:     "two positives",
			sentence: "Chase rewards are generous and the app is convenient",
			expected: 0.8,
			label:    "positive",
		},
		{
			name:     "negation flips every keyword",
			sentence: "Never was this Chase card reliable or rewarding",
			expected: -0.4,
			label:    "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sentiment.ScoreBrand([]models.SentenceRecord{{Text: tt.sentence, Position: 0, WordCount: 5}}, chase)
			if math.Abs(result.Score-tt.expected) > 1e-9 {
				t.Errorf("score = %f, expected %f", result.Score, tt.expected)
			}
			if result.Label != tt.label {
				t.Errorf("label = %q, expected %q", result.Label, tt.label)
			}
		})
	}
}

func TestScoreBrandMixedSentiment(t *testing.T) {
	sentiment := services.NewSentimentService()
	patterns := services.NewPatternService()
	chase := patterns.GeneratePatterns("Chase")

	// One clearly positive and one clearly negative sentence cancel out in
	// the mean but still read as mixed, not neutral.
	sentences := []models.SentenceRecord{
		{Text: "Chase is reliable", Position: 0},
		{Text: "Chase is expensive", Position: 1},
	}
	result := sentiment.ScoreBrand(sentences, chase)
	if math.Abs(result.Score) > 1e-9 {
		t.Errorf("score = %f, expected 0 for balanced sentiment", result.Score)
	}
	if result.Label != "mixed" {
		t.Errorf("label = %q, expected mixed", result.Label)
	}
}

func TestScoreBrandIgnoresUnrelatedSentences(t *testing.T) {
	sentiment := services.NewSentimentService()
	patterns := services.NewPatternService()
	chase := patterns.GeneratePatterns("Chase")

	sentences := []models.SentenceRecord{
		{Text: "Visa offers excellent perks", Position: 0},
	}
	result := sentiment.ScoreBrand(sentences, chase)
	if result.Score != 0 || result.Label != "neutral" {
		t.Errorf("sentiment from sentences that never name the brand should not count: %+v", result)
	}
	if len(result.Drivers) != 0 {
		t.Errorf("expected no drivers, got %v", result.Drivers)
	}
}

func TestScoreBrandDrivers(t *testing.T) {
	sentiment := services.NewSentimentService()
	patterns := services.NewPatternService()
	chase := patterns.GeneratePatterns("Chase")

	sentences := []models.SentenceRecord{
		{Text: "Chase rewards are generous and secure", Position: 0},
		{Text: "Chase has a branch nearby", Position: 1},
		{Text: "Chase support is not reliable", Position: 2},
	}
	result := sentiment.ScoreBrand(sentences, chase)

	if len(result.Drivers) == 0 {
		t.Fatal("expected at least one driver sentence")
	}
	if result.Drivers[0] != "Chase rewards are generous and secure" {
		t.Errorf("expected strongest sentence first, got %q", result.Drivers[0])
	}
	for _, driver := range result.Drivers {
		if driver == "Chase has a branch nearby" {
			t.Errorf("neutral sentence should not be a driver: %q", driver)
		}
	}
}

func TestScoreBrandNoSentences(t *testing.T) {
	sentiment := services.NewSentimentService()
	patterns := services.NewPatternService()
	chase := patterns.GeneratePatterns("Chase")

	result := sentiment.ScoreBrand(nil, chase)
	if result.Score != 0 || result.Label != "neutral" {
		t.Errorf("expected neutral zero result, got %+v", result)
	}
}
