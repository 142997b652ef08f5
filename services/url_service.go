// services/url_service.go
package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"
)

type urlService struct{}

// NewURLService creates the URL validator and normalizer used by citation
// extraction and classification.
func NewURLService() URLService {
	return &urlService{}
}

func (s *urlService) Validate(rawURL string) URLValidation {
	trimmed := strings.TrimSpace(rawURL)
	trimmed = strings.TrimRight(trimmed, ")]}.,;!?'\"")
	if trimmed == "" {
		return URLValidation{}
	}

	withScheme := trimmed
	if !strings.HasPrefix(withScheme, "http://") && !strings.HasPrefix(withScheme, "https://") {
		withScheme = "https://" + withScheme
	}

	parsed, err := url.Parse(withScheme)
	if err != nil {
		fmt.Printf("[ValidateURL] Unparseable URL rejected: %s\n", rawURL)
		return URLValidation{}
	}

	host := strings.ToLower(parsed.Hostname())
	if !validHost(host) {
		return URLValidation{}
	}

	cleaned := cleanURL(parsed)
	domain := strings.TrimPrefix(host, "www.")

	return URLValidation{
		Valid:      true,
		CleanedURL: cleaned,
		Domain:     domain,
	}
}

// RootDomain resolves the registrable domain ("docs.example.co.uk" ->
// "example.co.uk"). When the public suffix list cannot resolve the host the
// last two labels are used instead.
func (s *urlService) RootDomain(domain string) string {
	host := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	if host == "" {
		return ""
	}
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		labels := strings.Split(host, ".")
		if len(labels) >= 2 {
			return labels[len(labels)-2] + "." + labels[len(labels)-1]
		}
		return host
	}
	return root
}

func validHost(host string) bool {
	if host == "" || host == "localhost" {
		return false
	}
	if strings.Contains(host, "..") {
		return false
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") ||
		strings.HasPrefix(host, "-") || strings.HasSuffix(host, "-") {
		return false
	}
	if isIPv4Shaped(host) {
		return validPublicIPv4(host)
	}
	if !strings.Contains(host, ".") {
		return false
	}
	labels := strings.Split(host, ".")
	if !validTLD(labels[len(labels)-1]) {
		return false
	}
	return true
}

func isIPv4Shaped(host string) bool {
	for _, c := range host {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return strings.Contains(host, ".")
}

// validPublicIPv4 rejects malformed addresses and reserved ranges: "this
// host" (0/8), loopback (127/8), link-local (169.254/16), multicast (224/4),
// reserved (240/4) and the broadcast address.
func validPublicIPv4(host string) bool {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	octets := make([]int, 4)
	for i, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return false
		}
		octets[i] = n
	}
	switch {
	case octets[0] == 0:
		return false
	case octets[0] == 127:
		return false
	case octets[0] == 169 && octets[1] == 254:
		return false
	case octets[0] >= 224:
		return false
	case octets[0] == 255 && octets[1] == 255 && octets[2] == 255 && octets[3] == 255:
		return false
	}
	return true
}

// validTLD accepts alphanumeric and hyphenated labels of two or more
// characters, which covers punycode TLDs like "xn--p1ai".
func validTLD(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

// cleanURL strips tracking parameters, the fragment, and a trailing slash so
// the same destination always canonicalizes to one string.
func cleanURL(parsed *url.URL) string {
	query := parsed.Query()
	for key := range query {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") || lower == "fbclid" || lower == "gclid" ||
			lower == "msclkid" || lower == "ref" {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()
	parsed.Fragment = ""

	cleaned := parsed.String()
	if strings.HasSuffix(cleaned, "/") && parsed.Path == "/" && parsed.RawQuery == "" {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}
	return cleaned
}
