// services/sentiment_service.go
package services

import (
	"strings"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
)

const (
	keywordSentimentWeight = 0.4
	sentimentLabelCutoff   = 0.1
	sentenceLabelCutoff    = 0.2
	maxSentimentDrivers    = 5
)

var positiveKeywords = map[string]bool{
	"excellent": true, "great": true, "good": true, "best": true,
	"amazing": true, "outstanding": true, "superior": true, "leading": true,
	"innovative": true, "reliable": true, "trusted": true, "recommended": true,
	"popular": true, "top": true, "strong": true, "impressive": true,
	"valuable": true, "effective": true, "efficient": true, "secure": true,
	"convenient": true, "competitive": true, "generous": true, "flexible": true,
	"rewarding": true,
}

var negativeKeywords = map[string]bool{
	"poor": true, "bad": true, "worst": true, "terrible": true,
	"awful": true, "disappointing": true, "unreliable": true, "weak": true,
	"expensive": true, "costly": true, "limited": true, "restrictive": true,
	"confusing": true, "complicated": true, "slow": true, "outdated": true,
	"hidden": true, "predatory": true, "misleading": true, "inferior": true,
}

var negationWords = map[string]bool{
	"not": true, "no": true, "never": true, "none": true, "neither": true,
	"nor": true, "without": true, "barely": true, "hardly": true,
	"scarcely": true, "rarely": true, "seldom": true, "isn't": true,
	"wasn't": true, "aren't": true, "don't": true, "doesn't": true,
	"didn't": true, "can't": true, "cannot": true, "won't": true,
	"wouldn't": true, "shouldn't": true, "couldn't": true,
}

type sentimentService struct{}

// NewSentimentService creates the keyword based sentiment scorer. Scores are
// deterministic functions of the sentence text, with no model calls involved.
func NewSentimentService() SentimentService {
	return &sentimentService{}
}

func (s *sentimentService) ScoreBrand(sentences []models.SentenceRecord, set *models.BrandPatternSet) models.SentimentResult {
	// Sentiment in sentences that never name the brand is not the brand's.
	relevant := selectBrandSentences(sentences, set)
	if len(relevant) == 0 {
		return models.SentimentResult{Label: "neutral"}
	}

	type scored struct {
		sentence models.SentenceRecord
		score    float64
	}
	all := make([]scored, 0, len(relevant))

	var total float64
	hasPositive, hasNegative := false, false
	for _, sentence := range relevant {
		score := scoreSentence(sentence.Text)
		total += score
		if score > sentenceLabelCutoff {
			hasPositive = true
		} else if score < -sentenceLabelCutoff {
			hasNegative = true
		}
		all = append(all, scored{sentence: sentence, score: score})
	}
	mean := total / float64(len(relevant))

	label := "neutral"
	switch {
	case mean > sentimentLabelCutoff:
		label = "positive"
	case mean < -sentimentLabelCutoff:
		label = "negative"
	case hasPositive && hasNegative:
		label = "mixed"
	}

	// Drivers prefer strongly scored sentences, in position order.
	var drivers []string
	for _, entry := range all {
		if entry.score > sentenceLabelCutoff || entry.score < -sentenceLabelCutoff {
			drivers = append(drivers, entry.sentence.Text)
		}
	}
	if len(drivers) < maxSentimentDrivers {
		for _, entry := range all {
			if len(drivers) >= maxSentimentDrivers {
				break
			}
			if entry.score != 0 && !containsString(drivers, entry.sentence.Text) {
				drivers = append(drivers, entry.sentence.Text)
			}
		}
	}
	if len(drivers) > maxSentimentDrivers {
		drivers = drivers[:maxSentimentDrivers]
	}

	return models.SentimentResult{
		Score:   clampScore(mean),
		Label:   label,
		Drivers: drivers,
	}
}

func selectBrandSentences(sentences []models.SentenceRecord, set *models.BrandPatternSet) []models.SentenceRecord {
	if set == nil {
		return nil
	}
	var selected []models.SentenceRecord
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence.Text)
		for _, pattern := range set.TextPatterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				selected = append(selected, sentence)
				break
			}
		}
	}
	return selected
}

// scoreSentence sums keyword weights for one sentence. A negation word
// anywhere in the sentence flips every matched keyword and halves its
// magnitude, so "not reliable" lands at -0.2 rather than +0.4.
func scoreSentence(text string) float64 {
	words := tokenizeSentence(text)
	negated := false
	for _, word := range words {
		if negationWords[word] {
			negated = true
			break
		}
	}
	var score float64
	for _, word := range words {
		weight := 0.0
		if positiveKeywords[word] {
			weight = keywordSentimentWeight
		} else if negativeKeywords[word] {
			weight = -keywordSentimentWeight
		}
		if weight == 0 {
			continue
		}
		if negated {
			weight = -weight / 2
		}
		score += weight
	}
	return clampScore(score)
}

func tokenizeSentence(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		trimmed := strings.TrimFunc(field, func(r rune) bool {
			return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'')
		})
		if trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
}

func clampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
