package crawler

import (
	"net/url"
	"regexp"
	"strings"
)

// reservedPathChars are characters unsafe in directory names. They include
// the path separator, so nested URL paths flatten into a single directory.
var reservedPathChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// NormalizeURL reduces a URL to its canonical deduplication key: the query
// string and fragment are dropped and all trailing slashes are stripped. The
// result of applying NormalizeURL twice equals applying it once.
//
// Malformed input falls through to a best-effort trim; validation happens at
// crawl setup, not here.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return strings.TrimRight(u.String(), "/")
}

// SameDomain reports whether rawURL points at the same host[:port] as
// seedURL. The comparison is case-sensitive and an empty or unparseable host
// on either side is never a match.
func SameDomain(rawURL, seedURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	seed, err := url.Parse(seedURL)
	if err != nil || seed.Host == "" {
		return false
	}
	return u.Host == seed.Host
}

// PathKey derives the filesystem-safe directory name for a normalized URL.
// The empty path maps to "home"; otherwise the path is percent-decoded,
// reserved characters are replaced with "-", and the result is lower-cased.
//
// PathKey is deterministic but not injective: distinct paths can collapse to
// the same key after sanitization.
func PathKey(normalizedURL string) string {
	u, err := url.Parse(normalizedURL)
	var p string
	if err != nil {
		p = normalizedURL
	} else {
		p = u.Path
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "home"
	}
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	p = reservedPathChars.ReplaceAllString(p, "-")
	return strings.ToLower(p)
}
