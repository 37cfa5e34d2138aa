package analyzer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FallbackTitle is used when the page has no <title>.
const FallbackTitle = "Untitled Page"

// Page is the parsed view of a document that every check reads from.
// It is built once per analysis and never mutated by checks.
type Page struct {
	URL             *url.URL
	Doc             *goquery.Document
	Title           string
	MetaDescription string
	BodyText        string
	Headings        []string // h1-h3 text in document order
	SchemaBlocks    int      // parseable application/ld+json blocks
	SchemaTypes     []string // lowercased, deduplicated, sorted
}

// NewPage parses HTML from r for the given normalized URL.
func NewPage(pageURL string, r io.Reader) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return newPageFromDocument(u, doc), nil
}

// NewPageFromString is a convenience wrapper around NewPage.
func NewPageFromString(pageURL, html string) (*Page, error) {
	return NewPage(pageURL, strings.NewReader(html))
}

func newPageFromDocument(u *url.URL, doc *goquery.Document) *Page {
	p := &Page{
		URL:   u,
		Doc:   doc,
		Title: collapseWhitespace(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		p.MetaDescription = collapseWhitespace(desc)
	}

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		p.Headings = append(p.Headings, collapseWhitespace(s.Text()))
	})

	p.SchemaBlocks, p.SchemaTypes = extractSchemaTypes(doc)
	p.BodyText = bodyText(doc)
	return p
}

// bodyText returns visible body text without scripts and styles. The
// document is cloned so the original stays intact for selector checks.
func bodyText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	var b strings.Builder
	body.Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
		b.WriteByte(' ')
	})
	return collapseWhitespace(b.String())
}

// extractSchemaTypes parses every JSON-LD block and collects @type values.
// Blocks that fail to parse are skipped without affecting the others.
func extractSchemaTypes(doc *goquery.Document) (int, []string) {
	blocks := 0
	seen := map[string]bool{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return
		}
		blocks++
		collectTypes(data, seen)
	})

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return blocks, types
}

func collectTypes(v any, seen map[string]bool) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			collectTypes(item, seen)
		}
	case map[string]any:
		switch t := node["@type"].(type) {
		case string:
			addType(t, seen)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					addType(s, seen)
				}
			}
		}
		for key, child := range node {
			if key == "@type" || key == "@context" {
				continue
			}
			collectTypes(child, seen)
		}
	}
}

func addType(t string, seen map[string]bool) {
	t = strings.ToLower(strings.TrimSpace(t))
	// schema.org IRIs are reduced to the bare type name
	if i := strings.LastIndexAny(t, "/#"); i >= 0 {
		t = t[i+1:]
	}
	if t != "" {
		seen[t] = true
	}
}

// HasSchemaType reports whether any parsed type equals one of want.
func (p *Page) HasSchemaType(want ...string) bool {
	for _, t := range p.SchemaTypes {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}

// HasSchemaTypeContaining reports whether any parsed type contains sub.
func (p *Page) HasSchemaTypeContaining(sub string) bool {
	for _, t := range p.SchemaTypes {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}

// Hostname returns the page host without a leading "www.".
func (p *Page) Hostname() string {
	return strings.TrimPrefix(strings.ToLower(p.URL.Hostname()), "www.")
}
