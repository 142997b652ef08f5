// services/citation_service.go
package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
	"github.com/google/uuid"
	"mvdan.cc/xurls/v2"
)

const (
	providerCitationConfidence     = 1.0
	providerBareCitationConfidence = 0.95
	markdownCitationConfidence     = 0.9
	htmlCitationConfidence         = 0.9
	bareURLCitationConfidence      = 0.8
	phraseCitationConfidence       = 0.8
	resolvedMarkerConfidence       = 0.9
	inlineMarkerConfidence         = 0.7
)

var (
	markdownLinkRegex    = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	htmlAnchorRegex      = regexp.MustCompile(`(?is)<a\s+[^>]*href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	referenceDefRegex    = regexp.MustCompile(`(?m)^\s*\[(\d+)\]:\s*(\S+)`)
	numberedURLRegex     = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+(https?://\S+)`)
	inlineMarkerRegex    = regexp.MustCompile(`\[(\d+)\]`)
	parenMarkerRegex     = regexp.MustCompile(`\((\d+(?:\s*,\s*\d+)*)\)`)
	phraseAnchoredRegex  = regexp.MustCompile(`(?im)(?:source|references?|see also|learn more)\s*[:\-]\s*(\S+)`)
	imageExtensionRegex  = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|svg|webp|ico|bmp)(\?|$)`)
	strictURLExtractor   = xurls.Strict()
	relaxedURLExtractor  = xurls.Relaxed()
)

type citationService struct {
	urls URLService
}

// NewCitationService creates the citation extractor. Extraction strategies
// run in priority order: provider-supplied candidates, markdown links, HTML
// anchors, phrase-anchored references, then bare URLs. Duplicate URLs keep
// the first (highest confidence) hit.
func NewCitationService(urls URLService) CitationService {
	return &citationService{urls: urls}
}

// rawCandidate is a URL found by one strategy before validation and dedupe.
type rawCandidate struct {
	url        string
	sourceText string
	position   int
	confidence float64
}

func (s *citationService) ExtractCitations(responseText string, provided []models.CitationCandidate, provider string) ([]models.Citation, []models.CitationMarker) {
	var candidates []rawCandidate

	// Provider-supplied candidates sort before everything found in text.
	for i, candidate := range provided {
		confidence := providerBareCitationConfidence
		if strings.TrimSpace(candidate.Text) != "" {
			confidence = providerCitationConfidence
		}
		candidates = append(candidates, rawCandidate{
			url:        candidate.URL,
			sourceText: candidate.Text,
			position:   i,
			confidence: confidence,
		})
	}

	base := len(provided)
	resolvedCandidates, resolved := extractResolvedMarkers(responseText, base)
	candidates = append(candidates, extractMarkdownLinks(responseText, base)...)
	candidates = append(candidates, extractHTMLAnchors(responseText, base)...)
	candidates = append(candidates, resolvedCandidates...)
	candidates = append(candidates, extractPhraseAnchored(responseText, base)...)
	candidates = append(candidates, extractBareURLs(responseText, base)...)

	seen := make(map[string]bool)
	var citations []models.Citation
	for _, candidate := range candidates {
		if imageExtensionRegex.MatchString(candidate.url) {
			continue
		}
		validation := s.urls.Validate(candidate.url)
		key := validation.CleanedURL
		if !validation.Valid {
			key = candidate.url
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		citation := models.Citation{
			CitationID: uuid.New(),
			RawURL:     candidate.url,
			Type:       models.CitationTypeUnknown,
			SourceText: candidate.sourceText,
			Position:   candidate.position,
			Provider:   provider,
		}
		if validation.Valid {
			citation.CleanedURL = validation.CleanedURL
			citation.Domain = validation.Domain
			citation.Confidence = candidate.confidence
		}
		// Invalid URLs stay in the batch as unknown citations with zero
		// confidence instead of aborting or vanishing.
		citations = append(citations, citation)
	}

	sort.SliceStable(citations, func(i, j int) bool {
		return citations[i].Position < citations[j].Position
	})

	markers := extractMarkers(responseText, resolved)
	return citations, markers
}

func extractMarkdownLinks(text string, base int) []rawCandidate {
	var candidates []rawCandidate
	for _, match := range markdownLinkRegex.FindAllStringSubmatchIndex(text, -1) {
		candidates = append(candidates, rawCandidate{
			url:        text[match[4]:match[5]],
			sourceText: text[match[2]:match[3]],
			position:   base + match[0],
			confidence: markdownCitationConfidence,
		})
	}
	return candidates
}

func extractHTMLAnchors(text string, base int) []rawCandidate {
	var candidates []rawCandidate
	for _, match := range htmlAnchorRegex.FindAllStringSubmatchIndex(text, -1) {
		candidates = append(candidates, rawCandidate{
			url:        text[match[2]:match[3]],
			sourceText: strings.TrimSpace(text[match[4]:match[5]]),
			position:   base + match[0],
			confidence: htmlCitationConfidence,
		})
	}
	return candidates
}

func extractPhraseAnchored(text string, base int) []rawCandidate {
	var candidates []rawCandidate
	for _, match := range phraseAnchoredRegex.FindAllStringSubmatchIndex(text, -1) {
		candidates = append(candidates, rawCandidate{
			url:        text[match[2]:match[3]],
			position:   base + match[0],
			confidence: phraseCitationConfidence,
		})
	}
	return candidates
}

// extractBareURLs runs the strict matcher first, then the relaxed one to pick
// up schemeless "www." URLs the strict pass misses.
func extractBareURLs(text string, base int) []rawCandidate {
	var candidates []rawCandidate
	covered := make(map[int]bool)
	for _, match := range strictURLExtractor.FindAllStringIndex(text, -1) {
		covered[match[0]] = true
		candidates = append(candidates, rawCandidate{
			url:        text[match[0]:match[1]],
			position:   base + match[0],
			confidence: bareURLCitationConfidence,
		})
	}
	for _, match := range relaxedURLExtractor.FindAllStringIndex(text, -1) {
		if covered[match[0]] {
			continue
		}
		raw := text[match[0]:match[1]]
		if !strings.HasPrefix(strings.ToLower(raw), "www.") {
			continue
		}
		candidates = append(candidates, rawCandidate{
			url:        raw,
			position:   base + match[0],
			confidence: bareURLCitationConfidence,
		})
	}
	return candidates
}

// extractResolvedMarkers turns reference definitions ("[1]: url") and
// numbered list entries ("1. url") into citation candidates and reports
// which marker numbers they resolve.
func extractResolvedMarkers(text string, base int) ([]rawCandidate, map[int]bool) {
	resolved := make(map[int]bool)
	var candidates []rawCandidate
	for _, re := range []*regexp.Regexp{referenceDefRegex, numberedURLRegex} {
		for _, match := range re.FindAllStringSubmatchIndex(text, -1) {
			number, err := strconv.Atoi(text[match[2]:match[3]])
			if err != nil {
				continue
			}
			resolved[number] = true
			candidates = append(candidates, rawCandidate{
				url:        text[match[4]:match[5]],
				position:   base + match[0],
				confidence: resolvedMarkerConfidence,
			})
		}
	}
	return candidates, resolved
}

// extractMarkers collects the numeric markers that never resolved to an
// inline URL. The first occurrence per number wins.
func extractMarkers(text string, resolved map[int]bool) []models.CitationMarker {
	byNumber := make(map[int]models.CitationMarker)
	record := func(number int, confidence float64, sourceText string, position int) {
		if resolved[number] {
			return
		}
		existing, ok := byNumber[number]
		if ok && existing.Confidence >= confidence {
			return
		}
		byNumber[number] = models.CitationMarker{
			Number:     number,
			Confidence: confidence,
			SourceText: sourceText,
			Position:   position,
		}
	}

	for _, match := range inlineMarkerRegex.FindAllStringSubmatchIndex(text, -1) {
		// "[1](url)" is a markdown link, not a marker.
		if match[1] < len(text) && text[match[1]] == '(' {
			continue
		}
		// "[1]: url" was already handled as a reference definition.
		if match[1] < len(text) && text[match[1]] == ':' {
			continue
		}
		number, err := strconv.Atoi(text[match[2]:match[3]])
		if err != nil {
			continue
		}
		record(number, inlineMarkerConfidence, text[match[0]:match[1]], match[0])
	}
	for _, match := range parenMarkerRegex.FindAllStringSubmatchIndex(text, -1) {
		group := text[match[2]:match[3]]
		for _, part := range strings.Split(group, ",") {
			number, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || number == 0 || number > 200 {
				continue
			}
			record(number, inlineMarkerConfidence, text[match[0]:match[1]], match[0])
		}
	}

	markers := make([]models.CitationMarker, 0, len(byNumber))
	for _, marker := range byNumber {
		markers = append(markers, marker)
	}
	sort.Slice(markers, func(i, j int) bool {
		return markers[i].Number < markers[j].Number
	})
	return markers
}
