// services/classification_service.go
package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AI-Template-SDK/senso-metrics/internal/models"
)

const (
	brandDomainExactConfidence     = 0.95
	brandDomainPrefixConfidence    = 0.9
	brandAbbreviationConfidence    = 0.9
	brandRootDomainConfidence      = 0.85
	brandLegacyDomainConfidence    = 0.85
	brandAbbreviationPartialConf   = 0.8
	brandDomainContainsConfidence  = 0.75
	brandPatternMatchConfidence    = 0.75
	brandFuzzyConfidenceFactor     = 0.85
	brandFuzzyThreshold            = 0.7
	socialExactConfidence          = 0.95
	socialSubdomainConfidence      = 0.9
	earnedNewsConfidence           = 0.85
	earnedReviewConfidence         = 0.8
	earnedIndustryConfidence       = 0.75
	earnedDefaultConfidence        = 0.7
	minPrefixVariationLength       = 5
)

// genericDomainWords are too common across the industry to anchor a prefix
// match on their own ("bankof..." would otherwise claim every bank domain).
var genericDomainWords = map[string]bool{
	"bank": true, "card": true, "credit": true, "financial": true,
	"money": true, "capital": true, "express": true, "one": true,
}

var socialPlatformDomains = []string{
	"facebook.com", "twitter.com", "x.com", "instagram.com", "linkedin.com",
	"youtube.com", "tiktok.com", "reddit.com", "pinterest.com",
	"snapchat.com", "whatsapp.com", "telegram.org", "discord.com",
	"twitch.tv", "medium.com", "tumblr.com", "quora.com", "threads.net",
	"mastodon.social", "bsky.app", "weibo.com", "vk.com", "flickr.com",
	"vimeo.com", "soundcloud.com", "substack.com", "patreon.com",
	"nextdoor.com", "meetup.com", "slideshare.net", "dailymotion.com",
	"clubhouse.com", "wechat.com", "line.me", "kakao.com",
}

var (
	newsMediaRegex = regexp.MustCompile(`(?i)(news|times|post|journal|tribune|herald|gazette|daily|weekly|press|media|wire|cnn|bbc|reuters|bloomberg|forbes|wsj|nytimes|cnbc|axios|politico)`)
	reviewSiteRegex = regexp.MustCompile(`(?i)(review|compare|comparison|rating|ranked|versus|top10|top-|best-|nerdwallet|bankrate|creditkarma|wallethub|trustpilot|capterra|g2\.)`)
	industryRegex   = regexp.MustCompile(`(?i)(institute|association|foundation|research|university|academy|council|bureau)`)
)

type classificationService struct {
	urls          URLService
	patterns      PatternService
	text          TextService
	legacyDomains map[string]string
	socialDomains map[string]bool
}

// NewClassificationService creates the citation classifier. Brand rules run
// before social and earned checks; the legacy domain table overrides pattern
// matching for domains whose names have drifted from the brand.
func NewClassificationService(urls URLService, patterns PatternService, text TextService, legacyDomains map[string]string, extraSocialDomains []string) ClassificationService {
	social := make(map[string]bool, len(socialPlatformDomains)+len(extraSocialDomains))
	for _, domain := range socialPlatformDomains {
		social[domain] = true
	}
	for _, domain := range extraSocialDomains {
		social[strings.ToLower(strings.TrimSpace(domain))] = true
	}
	delete(social, "")

	normalized := make(map[string]string, len(legacyDomains))
	for domain, brand := range legacyDomains {
		normalized[strings.ToLower(strings.TrimSpace(domain))] = brand
	}

	return &classificationService{
		urls:          urls,
		patterns:      patterns,
		text:          text,
		legacyDomains: normalized,
		socialDomains: social,
	}
}

func (s *classificationService) Classify(domain string, trackedBrands []string, targetBrand string) Classification {
	host := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	if host == "" {
		return Classification{Type: models.CitationTypeUnknown, Label: "empty_domain"}
	}
	root := s.urls.RootDomain(host)

	for _, brand := range trackedBrands {
		if result, ok := s.classifyAsBrand(host, root, brand); ok {
			return result
		}
	}
	if targetBrand != "" && !containsFold(trackedBrands, targetBrand) {
		if result, ok := s.classifyAsBrand(host, root, targetBrand); ok {
			return result
		}
	}

	// The legacy table catches domains whose names drifted too far from the
	// brand for pattern matching. A table entry for an untracked brand means
	// the domain belongs to someone we are not measuring, so it is rejected
	// rather than falling through to the earned bucket.
	if legacyBrand, ok := s.legacyDomains[root]; ok {
		for _, brand := range trackedBrands {
			if s.legacyBrandMatches(brand, legacyBrand) {
				return Classification{
					Type:       models.CitationTypeBrand,
					Brand:      brand,
					Confidence: brandLegacyDomainConfidence,
					Label:      "brand_legacy_domain",
				}
			}
		}
		if targetBrand != "" && s.legacyBrandMatches(targetBrand, legacyBrand) {
			return Classification{
				Type:       models.CitationTypeBrand,
				Brand:      targetBrand,
				Confidence: brandLegacyDomainConfidence,
				Label:      "brand_legacy_domain",
			}
		}
		return Classification{Type: models.CitationTypeUnknown, Label: "legacy_domain_mismatch"}
	}

	if result, ok := s.classifyAsSocial(host, root); ok {
		return result
	}
	return s.classifyAsEarned(host, root)
}

func (s *classificationService) ClassifyCitations(citations []models.Citation, trackedBrands []string, targetBrand string) []models.Citation {
	classified := make([]models.Citation, len(citations))
	for i, citation := range citations {
		result := s.Classify(citation.Domain, trackedBrands, targetBrand)
		switch result.Type {
		case models.CitationTypeBrand, models.CitationTypeSocial, models.CitationTypeEarned, models.CitationTypeUnknown:
		default:
			fmt.Printf("[ClassifyCitations] Unrecognized citation type %q for %s, coercing to earned\n", result.Type, citation.Domain)
			result.Type = models.CitationTypeEarned
			result.Confidence = earnedDefaultConfidence
			result.Label = "third_party_editorial"
		}
		citation.Type = result.Type
		citation.Brand = result.Brand
		citation.Label = result.Label
		citation.Confidence = result.Confidence
		if result.Type == models.CitationTypeUnknown {
			citation.Domain = ""
		}
		classified[i] = citation
	}
	return classified
}

func (s *classificationService) classifyAsBrand(host, root, brand string) (Classification, bool) {
	set := s.patterns.GeneratePatterns(brand)
	rootBase := strings.SplitN(root, ".", 2)[0]
	isSubdomain := host != root

	hit := func(confidence float64, label string) (Classification, bool) {
		return Classification{
			Type:       models.CitationTypeBrand,
			Brand:      brand,
			Confidence: confidence,
			Label:      label,
		}, true
	}

	for _, variation := range set.NameVariations {
		if rootBase == variation {
			if isSubdomain {
				return hit(brandRootDomainConfidence, "brand_root_domain")
			}
			return hit(brandDomainExactConfidence, "brand_domain_exact")
		}
	}
	for _, variation := range set.NameVariations {
		if len(variation) >= minPrefixVariationLength && !genericDomainWords[variation] &&
			strings.HasPrefix(rootBase, variation) {
			return hit(brandDomainPrefixConfidence, "brand_domain_prefix")
		}
	}
	for _, variation := range set.NameVariations {
		if strings.Contains(rootBase, variation) && 2*len(variation) >= len(rootBase) {
			return hit(brandDomainContainsConfidence, "brand_domain_contains")
		}
	}
	for _, abbr := range set.Abbreviations {
		lowerAbbr := strings.ToLower(abbr)
		if rootBase == lowerAbbr {
			return hit(brandAbbreviationConfidence, "brand_abbreviation_domain")
		}
		if strings.HasPrefix(rootBase, lowerAbbr) && len(rootBase) < len(lowerAbbr)+10 && len(lowerAbbr) >= 3 {
			return hit(brandAbbreviationPartialConf, "brand_abbreviation_partial")
		}
	}
	for _, pattern := range set.TextPatterns {
		compact := strings.ReplaceAll(strings.ToLower(pattern), " ", "")
		if len(compact) >= 4 && strings.Contains(rootBase, compact) {
			return hit(brandPatternMatchConfidence, "brand_pattern_match")
		}
	}
	for _, variation := range set.NameVariations {
		if len(variation) < minPrefixVariationLength {
			continue
		}
		sim := s.text.Similarity(rootBase, variation)
		if sim >= brandFuzzyThreshold {
			return hit(sim*brandFuzzyConfidenceFactor, "brand_domain_fuzzy")
		}
	}
	return Classification{}, false
}

func (s *classificationService) classifyAsSocial(host, root string) (Classification, bool) {
	if s.socialDomains[root] || s.socialDomains[host] {
		confidence := socialExactConfidence
		label := "social_platform"
		if host != root {
			confidence = socialSubdomainConfidence
			label = "social_platform_subdomain"
		}
		return Classification{
			Type:       models.CitationTypeSocial,
			Confidence: confidence,
			Label:      label,
		}, true
	}
	return Classification{}, false
}

func (s *classificationService) classifyAsEarned(host, root string) Classification {
	if newsMediaRegex.MatchString(root) {
		return Classification{Type: models.CitationTypeEarned, Confidence: earnedNewsConfidence, Label: "news_media"}
	}
	if reviewSiteRegex.MatchString(host) {
		return Classification{Type: models.CitationTypeEarned, Confidence: earnedReviewConfidence, Label: "review_site"}
	}
	if strings.HasSuffix(root, ".org") || strings.HasSuffix(root, ".edu") ||
		strings.HasSuffix(root, ".gov") || industryRegex.MatchString(root) {
		return Classification{Type: models.CitationTypeEarned, Confidence: earnedIndustryConfidence, Label: "industry_publication"}
	}
	return Classification{Type: models.CitationTypeEarned, Confidence: earnedDefaultConfidence, Label: "third_party_editorial"}
}

// legacyBrandMatches accepts a legacy table entry when the mapped brand is
// the measured brand up to minor naming drift, such as a trailing "Inc".
func (s *classificationService) legacyBrandMatches(brand, legacyBrand string) bool {
	if strings.EqualFold(brand, legacyBrand) {
		return true
	}
	return s.text.Similarity(strings.ToLower(brand), strings.ToLower(legacyBrand)) >= brandFuzzyThreshold
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
