package analyzer

import (
	"testing"

	"github.com/geo-optimizer/backend/provider"
)

const richURL = "https://www.example.com/geo-guide"

// richHTML satisfies every HTML check at full credit.
const richHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>What Is Generative Engine Optimization? A Guide</title>
  <meta name="description" content="Learn how generative engine optimization helps your content get cited by AI answer engines, with practical steps, examples and a readiness checklist.">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="canonical" href="https://example.com/geo-guide">
  <script type="application/ld+json">
  {"@context":"https://schema.org","@graph":[
    {"@type":"BlogPosting","headline":"GEO","author":{"@type":"Person","name":"Jane Doe"}},
    {"@type":"FAQPage","mainEntity":[]}
  ]}
  </script>
  <script type="application/ld+json">{ this is not json </script>
</head>
<body>
  <h1>Generative Engine Optimization</h1>
  <nav class="table-of-contents"><a href="#what">What</a></nav>
  <p class="byline">By Jane Doe, published <time datetime="2024-03-05">March 5, 2024</time></p>
  <h2 id="what">What is GEO?</h2>
  <p>Generative engine optimization is a practice that helps content get cited by AI answer engines. Around 40% of searches now show an AI summary.</p>
  <h2>How does it work?</h2>
  <ol>
    <li>Step 1: audit your pages</li>
    <li>Add structured data</li>
    <li>Answer questions directly</li>
  </ol>
  <ul><li>Faster citations</li></ul>
  <p>See the <a href="https://research.example.org/study">original study</a>, a <a href="https://another.org/report#top">follow-up report</a> and our <a href="/pricing">pricing</a>.</p>
  <div class="author-bio"><h3>About the author</h3><p>Jane Doe has written about search for ten years.</p></div>
</body>
</html>`

// bareHTML fails every HTML check.
const bareHTML = `<html><head></head><body><p>hello</p></body></html>`

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func fullMetrics() *provider.Metrics {
	return &provider.Metrics{
		DomainRank:      intPtr(1000),
		OrganicTraffic:  floatPtr(25000),
		OrganicKeywords: intPtr(640),
		OnPageScore:     floatPtr(87.4),
		LoadTimeMs:      floatPtr(1830),
	}
}

func mustPage(t *testing.T, pageURL, html string) *Page {
	t.Helper()
	p, err := NewPageFromString(pageURL, html)
	if err != nil {
		t.Fatalf("NewPageFromString: %v", err)
	}
	return p
}

func findCheck(t *testing.T, checks []Check, name string) Check {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}
