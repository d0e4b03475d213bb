// Package extract turns a fetched page's HTML into article text (for
// pages the URL classifier recognizes as articles) and into a list of
// outbound links to feed back into the frontier.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vkarelin/newscrawl/internal/urlkey"
)

const minParagraphLen = 40

var bodySelectors = map[string][]string{
	"lenta.ru": {
		"div.topic-body__content",
		"div.topic-body",
		"div[data-testid='topic-body']",
		"article",
		"main",
	},
	"rbc.ru": {
		"div.article__text",
		"div.article__content",
		"article",
		"main",
	},
}

var defaultBodySelectors = []string{"article", "main"}

var stripSelectors = []string{"script", "style", "noscript", "svg", "form"}

// Extractor implements store.Extractor: it dispatches to a
// publisher-specific ordered selector list per §4.2.
type Extractor struct{}

// NewExtractor returns a ready-to-use content extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// ExtractArticle parses html, strips non-content subtrees, and
// returns "title\n\nbody" (or whichever half is non-empty) using the
// selector list for the publisher canonicalURL belongs to.
func (e *Extractor) ExtractArticle(canonicalURL, html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find(strings.Join(stripSelectors, ", ")).Remove()

	title := collapseWhitespace(doc.Find("h1").First().Text())

	publisher, _ := urlkey.Publisher(canonicalURL)
	body := extractBody(doc, selectorsFor(publisher))

	switch {
	case title != "" && body != "":
		return title + "\n\n" + body
	case title != "":
		return title
	default:
		return body
	}
}

func selectorsFor(publisher string) []string {
	if sel, ok := bodySelectors[publisher]; ok {
		return sel
	}

	return defaultBodySelectors
}

func extractBody(doc *goquery.Document, selectors []string) string {
	var node *goquery.Selection

	for _, sel := range selectors {
		if found := doc.Find(sel); found.Length() > 0 {
			node = found.First()
			break
		}
	}

	if node == nil {
		return ""
	}

	var paragraphs []string

	node.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if len(text) >= minParagraphLen {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n")
	}

	return blockText(node)
}

// blockText falls back to the body node's full text content, with a
// newline between each direct child block instead of one run-on line.
func blockText(node *goquery.Selection) string {
	var blocks []string

	node.Contents().Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return collapseWhitespace(node.Text())
	}

	return strings.Join(blocks, "\n")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
