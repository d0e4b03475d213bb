// Package urlkey canonicalizes and classifies the URLs the crawler
// discovers: turning arbitrary input into a stable key, mapping the
// key to a publisher tag, and deciding whether it names an article.
package urlkey

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var trackingPrefixes = []string{"utm_", "gclid", "fbclid", "yclid"}

var collapseSlashes = regexp.MustCompile(`/{2,}`)

// Canonicalize turns raw into the stable key used everywhere else in
// the engine: lowercase scheme/host, no leading www., collapsed
// slashes, no trailing slash (except the root), tracking params
// stripped, remaining query sorted, fragment dropped.
func Canonicalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme == "" {
		u.Scheme = "https"
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	u.Host = host

	path := collapseSlashes.ReplaceAllString(u.Path, "/")
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	if path == "" {
		path = "/"
	}

	u.Path = path

	u.RawQuery = canonicalQuery(u.Query())
	u.Fragment = ""

	return u.String(), nil
}

func canonicalQuery(values url.Values) string {
	type pair struct{ k, v string }

	pairs := make([]pair, 0, len(values))

	for k, vs := range values {
		if isTracking(k) {
			continue
		}

		for _, v := range vs {
			pairs = append(pairs, pair{k, v})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}

		return pairs[i].v < pairs[j].v
	})

	q := url.Values{}
	for _, p := range pairs {
		q.Add(p.k, p.v)
	}

	return q.Encode()
}

func isTracking(key string) bool {
	lower := strings.ToLower(key)
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	return false
}
