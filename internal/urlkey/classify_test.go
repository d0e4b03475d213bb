package urlkey

import "testing"

func TestIsArticle(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://lenta.ru/news/2024/01/05/foo", true},
		{"https://lenta.ru/tags/war", false},
		{"https://quote.rbc.ru/news/article/12/01/2024/abc", false},
		{"https://rbc.ru/politics/12/01/2024/abc", true},
		{"https://lenta.ru/", false},
		// An excluded segment appearing after the date, not at the
		// start of the path, must not disqualify an otherwise valid
		// article URL.
		{"https://rbc.ru/technology/12/01/2024/video/12345", true},
		{"https://rbc.ru/video/some-clip", false},
	}

	for _, tt := range tests {
		canon, err := Canonicalize(tt.url)
		if err != nil {
			t.Fatalf("Canonicalize(%q): %v", tt.url, err)
		}

		if got := IsArticle(canon); got != tt.want {
			t.Errorf("IsArticle(%q) = %v, want %v", canon, got, tt.want)
		}
	}
}

func TestIsExcludedPathAnchoredAtStart(t *testing.T) {
	if !IsExcludedPath("/video/12345") {
		t.Error(`"/video/12345" should be excluded (starts with /video/)`)
	}

	if IsExcludedPath("/technology/12/01/2024/video/12345") {
		t.Error(`"/technology/.../video/12345" should not be excluded: /video/ is not a path prefix`)
	}
}

func TestPublisher(t *testing.T) {
	tag, ok := Publisher("https://lenta.ru/news/2024/01/05/foo")
	if !ok || tag != "lenta.ru" {
		t.Errorf("Publisher(lenta.ru) = %q, %v", tag, ok)
	}

	if _, ok := Publisher("https://example.com/"); ok {
		t.Error("Publisher(example.com) should be unknown")
	}
}
