package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vkarelin/newscrawl/internal/urlkey"
)

var skippedSchemes = []string{"javascript:", "mailto:", "tel:"}

// ExtractLinks collects every anchor href in html, resolves it
// against base, canonicalizes it, and keeps only URLs that belong to
// a known publisher and are not under an excluded section. Order is
// first-seen; the result is capped at limit entries.
func ExtractLinks(base *url.URL, html string, limit int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	links := make([]string, 0, limit)

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(links) >= limit {
			return false
		}

		href, ok := s.Attr("href")
		if !ok || href == "" || isSkippedScheme(href) {
			return true
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return true
		}

		canon, err := urlkey.Canonicalize(resolved.String())
		if err != nil {
			return true
		}

		if _, ok := urlkey.Publisher(canon); !ok {
			return true
		}

		if u, err := url.Parse(canon); err == nil && urlkey.IsExcludedPath(u.Path) {
			return true
		}

		if seen[canon] {
			return true
		}

		seen[canon] = true
		links = append(links, canon)

		return true
	})

	return links
}

func isSkippedScheme(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}

	return false
}
