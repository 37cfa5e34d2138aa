package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/geo-optimizer/backend/analyzer"
)

//go:embed templates/email.html
var emailSource string

var emailTemplate = template.Must(template.New("email").Parse(emailSource))

// EmailSubject is the subject line used for report emails.
func EmailSubject(a *analyzer.Analysis) string {
	return fmt.Sprintf("Your GEO Readiness Report: %s (%d%%)", a.Grade, a.Percentage)
}

// EmailHTML renders the summary email body for a.
func EmailHTML(a *analyzer.Analysis) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, newView(a)); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
