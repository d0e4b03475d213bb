package urlkey

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "uppercase scheme and host, tracking params, query sort, fragment",
			in:   "HTTP://www.Lenta.RU//news/2024/01/05/foo/?utm_source=x&b=2&a=1#top",
			want: "http://lenta.ru/news/2024/01/05/foo?a=1&b=2",
		},
		{
			name: "root path kept as single slash",
			in:   "https://lenta.ru/",
			want: "https://lenta.ru/",
		},
		{
			name: "missing scheme defaults to https",
			in:   "lenta.ru/news/2024/01/05/foo",
			want: "https://lenta.ru/news/2024/01/05/foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			if err != nil {
				t.Fatalf("Canonicalize(%q) error: %v", tt.in, err)
			}

			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"HTTP://www.Lenta.RU//news/2024/01/05/foo/?utm_source=x&b=2&a=1#top",
		"https://rbc.ru/politics/12/01/2024/abc?gclid=1&z=9",
	}

	for _, in := range inputs {
		once, err := Canonicalize(in)
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", in, err)
		}

		twice, err := Canonicalize(once)
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", once, err)
		}

		if once != twice {
			t.Errorf("not idempotent: canon(%q) = %q, canon of that = %q", in, once, twice)
		}
	}
}

func TestCanonicalizeTrackingInvariant(t *testing.T) {
	a, err := Canonicalize("https://lenta.ru/news/2024/01/05/foo?b=2&a=1")
	if err != nil {
		t.Fatal(err)
	}

	b, err := Canonicalize("https://lenta.ru/news/2024/01/05/foo?utm_source=x&a=1&fbclid=y&b=2")
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Errorf("tracking params should not change canonical form: %q != %q", a, b)
	}
}
