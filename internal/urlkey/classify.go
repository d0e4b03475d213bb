package urlkey

import (
	"net/url"
	"regexp"
	"strings"
)

// publisherSuffixes maps a canonical host suffix to its publisher tag.
var publisherSuffixes = map[string]string{
	"lenta.ru": "lenta.ru",
	"rbc.ru":   "rbc.ru",
}

var excludedPathSegments = []string{
	"/tags/", "/tag/", "/search/", "/auth/", "/user/", "/account/",
	"/amp/", "/video/", "/gallery/", "/photo/", "/subscribe/",
}

var rbcExcludedHostPrefixes = []string{"quote.", "trends.", "plus."}

var (
	lentaArticleRe = regexp.MustCompile(`^/news/\d{4}/\d{2}/\d{2}/[^/]+/?$`)
	rbcArticleRe   = regexp.MustCompile(`^/[a-zA-Z0-9_-]+/\d{2}/\d{2}/\d{4}/.*$`)
)

// Publisher maps the canonical URL's host to a publisher tag by
// suffix match. The second return value is false for unknown hosts.
func Publisher(canonicalURL string) (string, bool) {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return "", false
	}

	host := u.Host
	for suffix, tag := range publisherSuffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return tag, true
		}
	}

	return "", false
}

// IsExcludedPath reports whether path starts with one of the
// universally excluded sections (tags, search, auth, ...). Anchored
// to the start of the path, matching the original's EXCLUDE_PATH_RE:
// a path merely containing one of these segments further along (e.g.
// an article path like /technology/12/01/2024/video/12345) is not
// excluded.
func IsExcludedPath(path string) bool {
	for _, seg := range excludedPathSegments {
		if strings.HasPrefix(path, seg) {
			return true
		}
	}

	return false
}

// IsArticle is a pure function of the canonical URL deciding whether
// it names an article page rather than a listing/index page.
func IsArticle(canonicalURL string) bool {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return false
	}

	if IsExcludedPath(u.Path) {
		return false
	}

	switch {
	case u.Host == "lenta.ru" || strings.HasSuffix(u.Host, ".lenta.ru"):
		return lentaArticleRe.MatchString(u.Path)
	case u.Host == "rbc.ru" || strings.HasSuffix(u.Host, ".rbc.ru"):
		for _, prefix := range rbcExcludedHostPrefixes {
			if strings.HasPrefix(u.Host, prefix) {
				return false
			}
		}

		return rbcArticleRe.MatchString(u.Path)
	default:
		return false
	}
}
