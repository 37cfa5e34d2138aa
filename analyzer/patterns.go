package analyzer

import (
	"regexp"
	"strings"
)

// QuestionWords are the openers that make a heading read as a question.
var QuestionWords = []string{
	"what", "how", "why", "when", "where", "who", "which",
	"can", "does", "do", "is", "are", "should", "will",
}

// SummaryPhrases mark an inline summary section in body text.
var SummaryPhrases = []string{"key takeaway", "quick summary", "tldr", "tl;dr"}

// Article-like and author-like JSON-LD types, lowercased.
var (
	ArticleSchemaTypes = []string{"article", "newsarticle", "blogposting", "howto"}
	AuthorSchemaTypes  = []string{"person", "author", "organization"}
)

var (
	// questionHeadingPattern matches a heading that opens with a question word.
	questionHeadingPattern = regexp.MustCompile(`(?i)^(?:` + strings.Join(QuestionWords, "|") + `)\b`)

	// definitionPattern matches sentences that define a term.
	definitionPattern = regexp.MustCompile(`(?i)\b(?:is defined as|refers to|is a term for|is known as|means that|(?:is|are) (?:a|an) (?:[a-z-]+ ){0,3}(?:that|which|used|for|of|where|designed))\b`)

	// numberedStepPattern matches "Step 1", "step two" and similar.
	numberedStepPattern = regexp.MustCompile(`(?i)\bstep\s*(?:\d+|one|two|three|four|five)\b`)

	// statisticsPattern matches percentages, currency amounts and scale words.
	statisticsPattern = regexp.MustCompile(`(?i)(?:\d+(?:\.\d+)?\s?(?:%|percent\b)|[$€£]\s?\d[\d,]*(?:\.\d+)?|\b\d+(?:\.\d+)?\s?(?:thousand|million|billion|trillion)\b)`)

	// bylinePattern matches explicit author phrasing in text.
	bylinePattern = regexp.MustCompile(`(?i)\b(?:written by|authored by|posted by|author:)\s*[a-z]`)

	// nameBylinePattern matches "By Jane Doe" with capitalized names.
	nameBylinePattern = regexp.MustCompile(`\b[Bb]y\s+[A-Z][a-z]+(?:\s+[A-Z]\.?)?\s+[A-Z][a-z]+`)

	// aboutAuthorPattern matches an author bio heading.
	aboutAuthorPattern = regexp.MustCompile(`(?i)\babout the author\b`)

	// monthDatePattern matches "March 5, 2024", "5 March 2024" and "Mar 2024".
	monthDatePattern = regexp.MustCompile(`(?i)\b(?:\d{1,2}\s+)?(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(?:\d{1,2}(?:st|nd|rd|th)?,?\s+)?\d{4}\b`)

	// numericDatePattern matches ISO and slash/dot separated dates.
	numericDatePattern = regexp.MustCompile(`\b(?:\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[/.]\d{1,2}[/.]\d{4})\b`)

	// summaryPattern matches the summary phrases in body text.
	summaryPattern = regexp.MustCompile(`(?i)(?:` + quoteAll(SummaryPhrases) + `)`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Selectors for element-based signals.
const (
	tocSelector         = `[class*="toc"], [id*="toc"], [class*="table-of-contents"], [id*="table-of-contents"], [class*="summary"], [class*="takeaway"]`
	authorSelector      = `[rel="author"], [itemprop="author"], [class*="author"], meta[name="author"], [class*="byline"]`
	authorBioSelector   = `[class*="author-bio"], [class*="author-info"], [class*="about-author"], [id*="author-bio"], [class*="bio"]`
	publishDateSelector = `time[datetime], [itemprop="datePublished"], meta[property="article:published_time"], [class*="publish"], [class*="post-date"], [class*="entry-date"]`
)

// IsQuestionHeading reports whether a heading reads as a question.
func IsQuestionHeading(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return strings.Contains(text, "?") || questionHeadingPattern.MatchString(text)
}

// HasDefinition reports whether text contains a definition statement.
func HasDefinition(text string) bool { return definitionPattern.MatchString(text) }

// HasNumberedSteps reports whether text contains numbered step phrasing.
func HasNumberedSteps(text string) bool { return numberedStepPattern.MatchString(text) }

// HasStatistics reports whether text contains numeric data.
func HasStatistics(text string) bool { return statisticsPattern.MatchString(text) }

// HasByline reports whether text contains an author byline.
func HasByline(text string) bool {
	return bylinePattern.MatchString(text) || nameBylinePattern.MatchString(text)
}

// HasAboutAuthor reports whether text contains an "about the author" section.
func HasAboutAuthor(text string) bool { return aboutAuthorPattern.MatchString(text) }

// HasDate reports whether text contains a month-name or numeric date.
func HasDate(text string) bool {
	return monthDatePattern.MatchString(text) || numericDatePattern.MatchString(text)
}

// HasSummaryPhrase reports whether text contains a summary phrase.
func HasSummaryPhrase(text string) bool { return summaryPattern.MatchString(text) }

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
