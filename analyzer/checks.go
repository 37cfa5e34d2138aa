package analyzer

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Thresholds for the HTML checks.
const (
	MinQuestionHeadings  = 2
	MinH2Headings        = 2
	MinListItems         = 3
	MinParagraphChars    = 20
	IdealParagraphChars  = 500
	MaxParagraphChars    = 700
	MinExternalCitations = 2
	MinDescriptionChars  = 120
	MaxDescriptionChars  = 160
	MinTitleChars        = 30
	MaxTitleChars        = 60
	MinOrderedListItems  = 3
)

// checkFunc evaluates a single rubric item against a page.
type checkFunc func(p *Page) Check

// htmlChecks is the ordered registry of checks that need only the page.
// Order here is the order of Analysis.Checks.
var htmlChecks = []checkFunc{
	// Schema Markup
	checkJSONLD,
	checkFAQSchema,
	checkArticleSchema,
	checkAuthorSchema,
	// Content Structure
	checkQuestionHeadings,
	checkHeadingHierarchy,
	checkStructuredLists,
	checkParagraphLength,
	checkSummarySection,
	// E-E-A-T Signals
	checkAuthorAttribution,
	checkAuthorBio,
	checkExternalCitations,
	checkPublicationDate,
	// Meta & Technical
	checkMetaDescription,
	checkTitle,
	checkViewport,
	checkCanonical,
	checkHTTPS,
	// AI Snippet Optimization
	checkDefinitions,
	checkStepByStep,
	checkStatistics,
}

// EvaluateHTML runs every HTML check in registry order.
func EvaluateHTML(p *Page) []Check {
	checks := make([]Check, 0, len(htmlChecks)+len(metricsChecks))
	for _, fn := range htmlChecks {
		checks = append(checks, fn(p))
	}
	return checks
}

// binary builds a check that is either fully passed or failed.
func binary(name string, cat Category, max int, ok bool, passDetails, failDetails, rec string) Check {
	if ok {
		return Check{Name: name, Category: cat, Passed: true, Score: max, MaxScore: max, Details: passDetails}
	}
	return Check{Name: name, Category: cat, Score: 0, MaxScore: max, Details: failDetails, Recommendation: rec}
}

// graded builds a check with partial credit. Passed only on full score.
func graded(name string, cat Category, score, max int, details, rec string) Check {
	score = clamp(score, 0, max)
	c := Check{Name: name, Category: cat, Score: score, MaxScore: max, Passed: score == max && max > 0, Details: details}
	if score < max {
		c.Recommendation = rec
	}
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Schema Markup

func checkJSONLD(p *Page) Check {
	return binary("JSON-LD Schema Present", CategorySchema, 8,
		p.SchemaBlocks > 0,
		fmt.Sprintf("Found %d JSON-LD %s (types: %s)", p.SchemaBlocks, plural(p.SchemaBlocks, "block", "blocks"), typesOrNone(p.SchemaTypes)),
		"No valid JSON-LD structured data found",
		"Add JSON-LD structured data (schema.org) so AI engines can understand the page entities")
}

func typesOrNone(types []string) string {
	if len(types) == 0 {
		return "none"
	}
	return strings.Join(types, ", ")
}

func checkFAQSchema(p *Page) Check {
	return binary("FAQ Schema", CategorySchema, 7,
		p.HasSchemaTypeContaining("faq"),
		"FAQPage schema detected",
		"No FAQ schema found",
		"Add FAQPage schema with question/answer pairs; AI answer engines extract these directly")
}

func checkArticleSchema(p *Page) Check {
	return binary("Article/HowTo Schema", CategorySchema, 5,
		p.HasSchemaType(ArticleSchemaTypes...),
		"Article or HowTo schema detected",
		"No Article, NewsArticle, BlogPosting or HowTo schema found",
		"Mark up the main content with Article, BlogPosting or HowTo schema")
}

func checkAuthorSchema(p *Page) Check {
	return binary("Author/Organization Schema", CategorySchema, 5,
		p.HasSchemaType(AuthorSchemaTypes...),
		"Person or Organization schema detected",
		"No Person or Organization schema found",
		"Add Person or Organization schema to identify who is behind the content")
}

// Content Structure

func checkQuestionHeadings(p *Page) Check {
	n := 0
	for _, h := range p.Headings {
		if IsQuestionHeading(h) {
			n++
		}
	}
	score := 0
	switch {
	case n >= MinQuestionHeadings:
		score = 8
	case n == 1:
		score = 4
	}
	return graded("Question-Based Headings", CategoryContent, score, 8,
		fmt.Sprintf("Found %d question-based %s", n, plural(n, "heading", "headings")),
		"Phrase more H2/H3 headings as the questions users ask (What, How, Why...)")
}

func checkHeadingHierarchy(p *Page) Check {
	h1 := p.Doc.Find("h1").Length()
	h2 := p.Doc.Find("h2").Length()
	score := 0
	switch {
	case h1 == 1 && h2 >= MinH2Headings:
		score = 5
	case h1 == 1:
		score = 3
	}
	rec := "Use exactly one H1 followed by at least two H2 sections"
	if h1 == 1 {
		rec = "Break the content into at least two H2 sections"
	} else if h1 > 1 {
		rec = "Multiple H1 headings found - keep a single H1 and use H2 for sections"
	}
	return graded("Heading Hierarchy", CategoryContent, score, 5,
		fmt.Sprintf("%d H1, %d H2 %s", h1, h2, plural(h2, "heading", "headings")),
		rec)
}

func checkStructuredLists(p *Page) Check {
	n := p.Doc.Find("ul li, ol li").Length()
	return binary("Structured Lists", CategoryContent, 5,
		n >= MinListItems,
		fmt.Sprintf("Found %d list items", n),
		fmt.Sprintf("Only %d list %s found", n, plural(n, "item", "items")),
		"Use bulleted or numbered lists to present options, features and steps")
}

func checkParagraphLength(p *Page) Check {
	total, count := 0, 0
	p.Doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		n := utf8.RuneCountInString(collapseWhitespace(s.Text()))
		if n > MinParagraphChars {
			total += n
			count++
		}
	})
	if count == 0 {
		return graded("Paragraph Length", CategoryContent, 0, 4,
			"No substantial paragraphs found",
			"Write the content in short, self-contained paragraphs")
	}
	avg := total / count
	score := 0
	switch {
	case avg < IdealParagraphChars:
		score = 4
	case avg < MaxParagraphChars:
		score = 2
	}
	return graded("Paragraph Length", CategoryContent, score, 4,
		fmt.Sprintf("Average paragraph length is %d characters across %d %s", avg, count, plural(count, "paragraph", "paragraphs")),
		"Shorten paragraphs to under 500 characters so each can be quoted on its own")
}

func checkSummarySection(p *Page) Check {
	hasTOC := p.Doc.Find(tocSelector).Length() > 0
	hasPhrase := HasSummaryPhrase(p.BodyText)
	details := "No table of contents or summary section found"
	switch {
	case hasTOC:
		details = "Table of contents or summary element found"
	case hasPhrase:
		details = "Summary or key takeaways section found"
	}
	return binary("Summary/TL;DR Section", CategoryContent, 3,
		hasTOC || hasPhrase,
		details, details,
		"Add a TL;DR, key takeaways box or table of contents near the top")
}

// E-E-A-T Signals

func checkAuthorAttribution(p *Page) Check {
	return binary("Author Attribution", CategoryEEAT, 5,
		p.Doc.Find(authorSelector).Length() > 0 || HasByline(p.BodyText),
		"Author attribution found",
		"No author attribution found",
		"Show a visible byline naming the author")
}

func checkAuthorBio(p *Page) Check {
	return binary("Author Bio", CategoryEEAT, 5,
		p.Doc.Find(authorBioSelector).Length() > 0 || HasAboutAuthor(p.BodyText),
		"Author bio section found",
		"No author bio found",
		"Add a short author bio describing credentials and experience")
}

func checkExternalCitations(p *Page) Check {
	n := countExternalLinks(p)
	score := 0
	switch {
	case n >= MinExternalCitations:
		score = 5
	case n == 1:
		score = 2
	}
	return graded("External Citations", CategoryEEAT, score, 5,
		fmt.Sprintf("Found %d external %s", n, plural(n, "citation", "citations")),
		"Cite at least two authoritative external sources")
}

// countExternalLinks counts anchors with an http(s) link to another hostname.
func countExternalLinks(p *Page) int {
	host := p.Hostname()
	n := 0
	p.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := p.URL.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		linkHost := strings.TrimPrefix(strings.ToLower(abs.Hostname()), "www.")
		if linkHost == "" || linkHost == host {
			return
		}
		n++
	})
	return n
}

func checkPublicationDate(p *Page) Check {
	return binary("Publication Date", CategoryEEAT, 5,
		p.Doc.Find(publishDateSelector).Length() > 0 || HasDate(p.BodyText),
		"Publication date found",
		"No publication date found",
		"Display a publication or last-updated date")
}

// Meta & Technical

func checkMetaDescription(p *Page) Check {
	n := utf8.RuneCountInString(p.MetaDescription)
	score := 0
	switch {
	case n >= MinDescriptionChars && n <= MaxDescriptionChars:
		score = 4
	case n > 0:
		score = 2
	}
	details := "No meta description found"
	if n > 0 {
		details = fmt.Sprintf("Meta description is %d characters", n)
	}
	return graded("Meta Description", CategoryTechnical, score, 4, details,
		"Write a meta description between 120 and 160 characters")
}

func checkTitle(p *Page) Check {
	n := utf8.RuneCountInString(p.Title)
	score := 0
	switch {
	case n >= MinTitleChars && n <= MaxTitleChars:
		score = 4
	case n > 0:
		score = 2
	}
	details := "No title tag found"
	if n > 0 {
		details = fmt.Sprintf("Title is %d characters", n)
	}
	return graded("Title Optimization", CategoryTechnical, score, 4, details,
		"Keep the title between 30 and 60 characters")
}

func checkViewport(p *Page) Check {
	return binary("Mobile Viewport", CategoryTechnical, 3,
		p.Doc.Find(`meta[name="viewport"]`).Length() > 0,
		"Viewport meta tag present",
		"No viewport meta tag found",
		`Add <meta name="viewport" content="width=device-width, initial-scale=1">`)
}

func checkCanonical(p *Page) Check {
	href, _ := p.Doc.Find(`link[rel="canonical"]`).First().Attr("href")
	href = strings.TrimSpace(href)
	return binary("Canonical URL", CategoryTechnical, 2,
		href != "",
		"Canonical URL: "+href,
		"No canonical link found",
		`Add a <link rel="canonical"> tag pointing at the preferred URL`)
}

func checkHTTPS(p *Page) Check {
	return binary("HTTPS", CategoryTechnical, 2,
		strings.EqualFold(p.URL.Scheme, "https"),
		"Page is served over HTTPS",
		"Page is not served over HTTPS",
		"Serve the page over HTTPS")
}

// AI Snippet Optimization

func checkDefinitions(p *Page) Check {
	return binary("Definition Statements", CategorySnippet, 5,
		HasDefinition(p.BodyText),
		"Clear definition statements found",
		"No clear definition statements found",
		`Open key sections with a one-sentence definition ("X is a ... that ...")`)
}

func checkStepByStep(p *Page) Check {
	ordered := p.Doc.Find("ol li").Length()
	ok := HasNumberedSteps(p.BodyText) || ordered >= MinOrderedListItems
	return binary("Step-by-Step Content", CategorySnippet, 5, ok,
		"Step-by-step instructions found",
		"No step-by-step content found",
		"Present processes as numbered steps")
}

func checkStatistics(p *Page) Check {
	return binary("Statistics & Data", CategorySnippet, 5,
		HasStatistics(p.BodyText),
		"Statistics or numeric data found",
		"No statistics or numeric data found",
		"Back claims with concrete numbers, percentages or sourced data")
}
