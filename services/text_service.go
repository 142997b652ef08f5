// services/text_service.go
package services

import (
	"strings"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
)

type textService struct {
	maxLevenshteinInput int
}

// NewTextService creates the sentence splitter / similarity helper.
// maxLevenshteinInput caps the full dynamic-programming comparison; longer
// strings fall back to a length-difference heuristic.
func NewTextService(maxLevenshteinInput int) TextService {
	if maxLevenshteinInput <= 0 {
		maxLevenshteinInput = 50
	}
	return &textService{maxLevenshteinInput: maxLevenshteinInput}
}

// SplitSentences splits on '.', '!' and '?', trims whitespace and drops empty
// fragments. This is a deliberate simplification: no abbreviation or
// sentence-boundary NLP, which keeps the splitter pure and reproducible.
func (s *textService) SplitSentences(text string) []models.SentenceRecord {
	if strings.TrimSpace(text) == "" {
		return []models.SentenceRecord{}
	}

	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]models.SentenceRecord, 0, len(raw))
	for _, fragment := range raw {
		trimmed := strings.TrimSpace(fragment)
		if trimmed == "" {
			continue
		}
		sentences = append(sentences, models.SentenceRecord{
			Text:      trimmed,
			Position:  len(sentences),
			WordCount: len(strings.Fields(trimmed)),
		})
	}
	return sentences
}

func (s *textService) CountWords(text string) int {
	return len(strings.Fields(text))
}

// Similarity returns the normalized Levenshtein similarity of two strings
// (1 - distance/maxLen), case-insensitive. Two early exits keep it cheap:
// strings whose lengths differ by more than 50% are treated as maximally
// dissimilar, and strings longer than the configured cap skip the full matrix
// in favor of a length-difference heuristic.
func (s *textService) Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	la, lb := len(a), len(b)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	minLen := la
	if lb < minLen {
		minLen = lb
	}

	// Length difference beyond 50% of the longer string cannot reach the
	// match threshold, skip the matrix entirely.
	if float64(maxLen-minLen) > 0.5*float64(maxLen) {
		return 0
	}

	if la > s.maxLevenshteinInput || lb > s.maxLevenshteinInput {
		return 1 - float64(maxLen-minLen)/float64(maxLen)
	}

	distance := levenshteinDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// levenshteinDistance is the classic two-row dynamic program over bytes.
func levenshteinDistance(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
