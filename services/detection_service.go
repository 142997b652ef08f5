// services/detection_service.go
package services

import (
	"math"
	"strings"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
)

const (
	exactMatchConfidence     = 1.0
	abbreviationConfidence   = 0.9
	partialMatchConfidence   = 0.85
	partialDistantConfidence = 0.7
	fuzzyConfidenceFactor    = 0.9
	variationMatchConfidence = 0.8
	maxFuzzyBrandLength      = 30
	maxFuzzySentenceLength   = 200
	minVariationBrandLength  = 10
	partialSpanLimit         = 10
	fuzzyTokenWindow         = 5
	fuzzyBigramWindow        = 3
)

type detectionService struct {
	text           TextService
	fuzzyThreshold float64
}

// NewDetectionService creates the brand mention detector. Strategies run in a
// fixed order (exact, abbreviation, partial, fuzzy, variation) and the first
// hit wins, so a sentence always yields the same method and confidence.
func NewDetectionService(text TextService, fuzzyThreshold float64) DetectionService {
	if fuzzyThreshold <= 0 || fuzzyThreshold > 1 {
		fuzzyThreshold = 0.7
	}
	return &detectionService{
		text:           text,
		fuzzyThreshold: fuzzyThreshold,
	}
}

func (s *detectionService) DetectInSentence(sentence string, set *models.BrandPatternSet) DetectionResult {
	if set == nil || strings.TrimSpace(sentence) == "" {
		return DetectionResult{}
	}
	lower := strings.ToLower(sentence)

	if s.matchExact(lower, set) {
		return DetectionResult{Detected: true, Confidence: exactMatchConfidence, Method: "exact"}
	}
	if s.matchAbbreviation(lower, set) {
		return DetectionResult{Detected: true, Confidence: abbreviationConfidence, Method: "abbreviation"}
	}
	if conf, method, ok := s.matchPartial(lower, set); ok {
		return DetectionResult{Detected: true, Confidence: conf, Method: method}
	}
	if conf, ok := s.matchFuzzy(lower, set); ok {
		return DetectionResult{Detected: true, Confidence: conf, Method: "fuzzy"}
	}
	if s.matchVariation(lower, set) {
		return DetectionResult{Detected: true, Confidence: variationMatchConfidence, Method: "variation"}
	}
	return DetectionResult{}
}

func (s *detectionService) DetectBrand(sentences []models.SentenceRecord, set *models.BrandPatternSet) models.BrandDetection {
	detection := models.BrandDetection{
		BrandName: set.BrandName,
	}
	for _, sentence := range sentences {
		result := s.DetectInSentence(sentence.Text, set)
		if !result.Detected {
			continue
		}
		if detection.FirstPosition == nil {
			pos := sentence.Position + 1
			detection.FirstPosition = &pos
		}
		detection.Mentioned = true
		detection.MentionCount++
		detection.Sentences = append(detection.Sentences, sentence)
		detection.DetectionConfidences = append(detection.DetectionConfidences, result.Confidence)
	}
	return detection
}

// DepthOfMention weighs each mentioning sentence by its word count with an
// exponential decay over sentence position, normalized to the full response
// length. Early, substantial mentions score highest.
func (s *detectionService) DepthOfMention(detection *models.BrandDetection, totalSentences, totalWords int) float64 {
	if detection == nil || !detection.Mentioned || totalSentences == 0 || totalWords == 0 {
		return 0
	}
	var weighted float64
	for _, sentence := range detection.Sentences {
		// 1-indexed position: a single-sentence response decays by exp(-1).
		decay := math.Exp(-float64(sentence.Position+1) / float64(totalSentences))
		weighted += float64(sentence.WordCount) * decay
	}
	return 100 * weighted / float64(totalWords)
}

// matchExact only considers full-name forms, bounded by non-alphanumeric
// characters so "Visa" never matches inside "Visalia". Single tokens fall
// through to the partial strategy and abbreviations to the abbreviation
// strategy, so a weaker signal never reports full confidence.
func (s *detectionService) matchExact(lowerSentence string, set *models.BrandPatternSet) bool {
	name := strings.ToLower(set.BrandName)
	if containsWord(lowerSentence, name) {
		return true
	}
	fullLen := 0
	for _, token := range set.Tokens {
		fullLen += len(token)
	}
	for _, variation := range set.NameVariations {
		if len(variation) < fullLen {
			continue
		}
		if containsWord(lowerSentence, variation) {
			return true
		}
	}
	return false
}

func (s *detectionService) matchAbbreviation(lowerSentence string, set *models.BrandPatternSet) bool {
	for _, abbr := range set.Abbreviations {
		if containsWord(lowerSentence, strings.ToLower(abbr)) {
			return true
		}
	}
	return false
}

// matchPartial requires every significant token of a multi-token brand to
// appear as a separate whole word. Tokens clustered within a ten word span
// read as a split-up mention; scattered tokens score lower.
func (s *detectionService) matchPartial(lowerSentence string, set *models.BrandPatternSet) (float64, string, bool) {
	if len(set.Tokens) < 2 {
		return 0, "", false
	}
	words := sentenceWords(lowerSentence)
	first, last := -1, -1
	for _, token := range set.Tokens {
		pos := -1
		for i, word := range words {
			if word == token {
				pos = i
				break
			}
		}
		if pos < 0 {
			return 0, "", false
		}
		if first < 0 || pos < first {
			first = pos
		}
		if pos > last {
			last = pos
		}
	}
	if last-first+1 <= partialSpanLimit {
		return partialMatchConfidence, "partial", true
	}
	return partialDistantConfidence, "partial-distant", true
}

// sentenceWords splits a lowercased sentence into words with surrounding
// punctuation stripped.
func sentenceWords(lowerSentence string) []string {
	fields := strings.Fields(lowerSentence)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		words = append(words, strings.TrimFunc(field, func(r rune) bool {
			return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
		}))
	}
	return words
}

// matchFuzzy compares the brand name against the leading words of the
// sentence. Long brands and long sentences are skipped to keep the edit
// distance cost bounded.
func (s *detectionService) matchFuzzy(lowerSentence string, set *models.BrandPatternSet) (float64, bool) {
	name := strings.ToLower(set.BrandName)
	if len(name) > maxFuzzyBrandLength || len(lowerSentence) > maxFuzzySentenceLength {
		return 0, false
	}
	words := strings.Fields(lowerSentence)

	var candidates []string
	for i, word := range words {
		if i >= fuzzyTokenWindow {
			break
		}
		candidates = append(candidates, word)
	}
	for i := 0; i+1 < len(words) && i < fuzzyBigramWindow; i++ {
		candidates = append(candidates, words[i]+" "+words[i+1])
	}

	for _, candidate := range candidates {
		sim := s.text.Similarity(name, candidate)
		if sim >= s.fuzzyThreshold {
			return sim * fuzzyConfidenceFactor, true
		}
	}
	return 0, false
}

// matchVariation catches common rephrasings of long descriptive brand names,
// like "Bank of America" written as "Bank for America" or with articles
// dropped.
func (s *detectionService) matchVariation(lowerSentence string, set *models.BrandPatternSet) bool {
	name := strings.ToLower(set.BrandName)
	if len(name) <= minVariationBrandLength {
		return false
	}
	for _, variant := range nameRephrasings(name) {
		if variant != name && containsWord(lowerSentence, variant) {
			return true
		}
	}
	return false
}

func nameRephrasings(lowerName string) []string {
	words := strings.Fields(lowerName)
	var variants []string

	swap := func(from, to string) {
		changed := false
		out := make([]string, len(words))
		for i, word := range words {
			if word == from {
				out[i] = to
				changed = true
			} else {
				out[i] = word
			}
		}
		if changed {
			variants = append(variants, strings.Join(out, " "))
		}
	}
	swap("for", "of")
	swap("of", "for")
	swap("a", "your")
	swap("your", "a")

	if len(words) > 1 && words[0] == "the" {
		variants = append(variants, strings.Join(words[1:], " "))
	}

	var noArticles []string
	for _, word := range words {
		if word == "the" || word == "a" || word == "an" {
			continue
		}
		noArticles = append(noArticles, word)
	}
	if len(noArticles) > 0 && len(noArticles) < len(words) {
		variants = append(variants, strings.Join(noArticles, " "))
	}
	return variants
}

// containsWord reports whether word appears in s bounded by non-alphanumeric
// characters on both sides.
func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(s[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		leftOK := idx == 0 || !isAlnum(s[idx-1])
		rightOK := end == len(s) || !isAlnum(s[end])
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
