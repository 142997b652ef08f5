// services/pattern_service.go
package services

import (
	"sort"
	"strings"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
	gocache "github.com/patrickmn/go-cache"
)

// nameStopWords are articles and prepositions dropped from brand names before
// pattern generation.
var nameStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "of": true, "a": true, "an": true,
	"in": true, "at": true, "on": true, "to": true, "by": true, "with": true,
}

// legalSuffixes are corporate suffixes that carry no matching signal.
var legalSuffixes = map[string]bool{
	"inc": true, "corp": true, "corporation": true, "ltd": true, "llc": true,
	"co": true, "company": true, "group": true, "holdings": true,
	"limited": true, "plc": true,
}

// commonProductWords are generic product terms that would match far too much
// text on their own, so they never become standalone token patterns.
var commonProductWords = map[string]bool{
	"card": true, "credit": true, "debit": true, "rewards": true,
	"cashback": true, "travel": true, "business": true, "personal": true,
	"premium": true, "elite": true, "gold": true, "silver": true,
	"platinum": true, "diamond": true, "black": true, "blue": true,
	"red": true, "green": true, "white": true,
}

// productIndicators mark product-line names ("X Card", "X Rewards") whose
// parent brand deserves its own patterns.
var productIndicators = []string{
	"card", "credit", "debit", "rewards", "cashback", "travel", "business",
}

type patternService struct {
	cache *gocache.Cache
}

// NewPatternService creates the pattern generator. Generated sets are
// memoized per brand name; since generation is pure, a cache hit returns a
// set identical to a fresh generation. Callers must treat returned sets as
// read-only.
func NewPatternService() PatternService {
	return &patternService{
		cache: gocache.New(gocache.NoExpiration, gocache.NoExpiration),
	}
}

func (s *patternService) GeneratePatterns(brandName string) *models.BrandPatternSet {
	key := strings.TrimSpace(brandName)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.BrandPatternSet)
	}

	set := generatePatternSet(key)
	s.cache.Set(key, set, gocache.NoExpiration)
	return set
}

func (s *patternService) QuickMention(text string, set *models.BrandPatternSet) bool {
	if set == nil || text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, pattern := range set.TextPatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func generatePatternSet(brandName string) *models.BrandPatternSet {
	tokens := significantTokens(brandName)
	originalTokens := significantOriginalTokens(brandName)

	abbreviations := generateAbbreviations(tokens)
	nameVariations := generateNameVariations(tokens)

	domainVariations := append([]string{}, nameVariations...)
	for _, abbr := range abbreviations {
		if len(abbr) >= 2 && len(abbr) <= 15 {
			domainVariations = append(domainVariations, abbr)
		}
	}
	domainVariations = dedupeAndSort(domainVariations)

	textPatterns := generateTextPatterns(brandName, tokens, originalTokens, abbreviations)

	abbreviationFor := make(map[string]string, len(abbreviations))
	for _, abbr := range abbreviations {
		abbreviationFor[abbr] = brandName
	}

	return &models.BrandPatternSet{
		BrandName:        brandName,
		Tokens:           tokens,
		Abbreviations:    dedupeAndSort(abbreviations),
		AbbreviationFor:  abbreviationFor,
		NameVariations:   dedupeAndSort(nameVariations),
		DomainVariations: domainVariations,
		TextPatterns:     textPatterns,
	}
}

// significantTokens lowercases the name, splits on non-alphanumeric runs and
// drops stop words, legal suffixes and tokens of length <= 2.
func significantTokens(name string) []string {
	raw := splitAlnum(strings.ToLower(name))
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) <= 2 || nameStopWords[token] || legalSuffixes[token] {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// significantOriginalTokens mirrors significantTokens but preserves the
// original casing, for case-form expansion of token patterns.
func significantOriginalTokens(name string) []string {
	raw := splitAlnum(name)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		lower := strings.ToLower(token)
		if len(lower) <= 2 || nameStopWords[lower] || legalSuffixes[lower] {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

func splitAlnum(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
}

func generateAbbreviations(tokens []string) []string {
	seen := make(map[string]bool)
	var abbreviations []string
	add := func(abbr string) {
		if abbr == "" || seen[abbr] {
			return
		}
		seen[abbr] = true
		abbreviations = append(abbreviations, abbr)
	}

	if len(tokens) >= 2 {
		// Full acronym, and the two-token acronym when it differs.
		var full strings.Builder
		for _, token := range tokens {
			full.WriteByte(token[0])
		}
		add(full.String())

		twoToken := string(tokens[0][0]) + string(tokens[1][0])
		if twoToken != full.String() {
			add(twoToken)
		}
	}

	// Vowel-bounded syllable prefixes for long tokens.
	for _, token := range tokens {
		if len(token) <= 6 {
			continue
		}
		for _, prefix := range syllablePrefixes(token, 2) {
			add(prefix)
		}
	}

	if len(tokens) > 1 && len(tokens[0]) >= 3 {
		add(tokens[0])
	}

	if len(tokens) >= 2 {
		joined := tokens[0] + tokens[1]
		add(joined)
		if len(joined) > 8 {
			add(joined[:8])
		}

		// First letter plus short prefixes of each subsequent token.
		first := string(tokens[0][0])
		for _, token := range tokens[1:] {
			for n := 3; n <= 5 && n <= len(token); n++ {
				add(first + token[:n])
			}
		}

		// First syllable of each of the first two tokens joined
		// ("american express" -> "amex").
		firstSyl := firstSyllablePrefix(tokens[0])
		secondSyl := firstSyllablePrefix(tokens[1])
		if firstSyl != "" && secondSyl != "" {
			add(firstSyl + secondSyl)
		}
	}

	return abbreviations
}

// syllablePrefixes returns prefixes of token that end on a consonant directly
// following a vowel, 2-6 characters long, at most max per token.
func syllablePrefixes(token string, max int) []string {
	var prefixes []string
	for i := 1; i < len(token) && len(prefixes) < max; i++ {
		if isVowel(token[i-1]) && !isVowel(token[i]) {
			prefix := token[:i+1]
			if len(prefix) >= 2 && len(prefix) <= 6 {
				prefixes = append(prefixes, prefix)
			}
		}
	}
	return prefixes
}

func firstSyllablePrefix(token string) string {
	prefixes := syllablePrefixes(token, 1)
	if len(prefixes) == 0 {
		return ""
	}
	return prefixes[0]
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func generateNameVariations(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var variations []string
	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variations = append(variations, v)
	}

	for _, sep := range []string{"", "-", ".", "_", " "} {
		add(strings.Join(tokens, sep))
	}
	add(tokens[0])
	if len(tokens) >= 2 {
		first2 := tokens[:2]
		add(strings.Join(first2, ""))
		add(strings.Join(first2, "-"))
		add(strings.Join(first2, "."))
	}
	return variations
}

func generateTextPatterns(brandName string, tokens, originalTokens, abbreviations []string) []string {
	seen := make(map[string]bool)
	var patterns []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		patterns = append(patterns, p)
	}
	addCaseForms := func(p string) {
		add(p)
		add(strings.ToLower(p))
		add(strings.ToUpper(p))
		add(titleCase(p))
	}

	addCaseForms(brandName)

	stripped := stripSpecialChars(brandName)
	if stripped != brandName {
		addCaseForms(stripped)
	}

	for _, token := range originalTokens {
		if commonProductWords[strings.ToLower(token)] {
			continue
		}
		addCaseForms(token)
	}

	if len(originalTokens) >= 2 {
		addCaseForms(originalTokens[0] + " " + originalTokens[1])
	}

	for _, abbr := range abbreviations {
		add(strings.ToLower(abbr))
		add(strings.ToUpper(abbr))
		add(titleCase(abbr))
	}

	// Product-line names keep patterns for the parent brand as well, so
	// "Sapphire Travel Card" still matches plain "Sapphire" mentions.
	for i, token := range tokens {
		if !isProductIndicator(token) || i == 0 {
			continue
		}
		parent := strings.Join(tokens[:i], " ")
		add(parent)
		add(titleCase(parent))
		add(parent + " " + token)
		add(strings.Join(tokens[:i], "") + token)
		break
	}

	sortByLengthDesc(patterns)
	return patterns
}

func isProductIndicator(token string) bool {
	for _, indicator := range productIndicators {
		if token == indicator {
			return true
		}
	}
	return false
}

func stripSpecialChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// dedupeAndSort removes duplicates and applies the canonical ordering:
// descending length, then lexicographic. Every consumer that iterates a
// pattern collection relies on this ordering for determinism.
func dedupeAndSort(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sortByLengthDesc(out)
	return out
}

func sortByLengthDesc(values []string) {
	sort.Slice(values, func(i, j int) bool {
		if len(values[i]) != len(values[j]) {
			return len(values[i]) > len(values[j])
		}
		return values[i] < values[j]
	})
}
