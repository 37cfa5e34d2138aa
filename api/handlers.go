package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/geo-optimizer/backend/logging"
	"github.com/geo-optimizer/backend/mailer"
	"github.com/geo-optimizer/backend/middleware"
	"github.com/geo-optimizer/backend/report"
	"github.com/geo-optimizer/backend/stats"
)

// User-facing messages for classified fetch failures.
const (
	msgDomainNotFound = "Domain not found. Please check the URL and try again."
	msgAccessDenied   = "Access denied. The website is blocking automated requests."
	msgPageNotFound   = "Page not found (404). Please check the URL and try again."
	msgTimeout        = "Request timed out. The website took too long to respond."
	msgURLRequired    = "URL is required"
	msgInvalidURL     = "Invalid URL provided"

	msgInvalidRequest   = "Invalid request body"
	msgInvalidEmail     = "Invalid email address"
	msgMailUnconfigured = "Email service not configured"
	msgReportFailed     = "Failed to generate report"
	msgSendFailed       = "Failed to send report email"
)

// statisticsResponse extends the request statistics with the persisted
// monthly usage counters.
type statisticsResponse struct {
	logging.Snapshot
	Monthly *stats.MonthlyStats `json:"monthly,omitempty"`
	Months  []string            `json:"months,omitempty"`
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type sendReportRequest struct {
	Email    string             `json:"email"`
	Analysis *analyzer.Analysis `json:"analysis"`
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// fetchErrorMessage returns the client message for a classified fetch error.
func fetchErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, analyzer.ErrDomainNotFound):
		return msgDomainNotFound, true
	case errors.Is(err, analyzer.ErrAccessDenied):
		return msgAccessDenied, true
	case errors.Is(err, analyzer.ErrPageNotFound):
		return msgPageNotFound, true
	case errors.Is(err, analyzer.ErrTimeout):
		return msgTimeout, true
	case errors.Is(err, analyzer.ErrInvalidURL):
		return msgInvalidURL, true
	}
	return "", false
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatistics(c *gin.Context) {
	var resp statisticsResponse
	if s.deps.Statistics != nil {
		resp.Snapshot = s.deps.Statistics.Snapshot()
	}
	if s.deps.Storage != nil {
		current := s.deps.Storage.GetCurrentStats()
		resp.Monthly = &current
		resp.Months = s.deps.Storage.GetAllMonths()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, msgInvalidURL)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		errorJSON(c, http.StatusBadRequest, msgURLRequired)
		return
	}
	if normalized, err := analyzer.NormalizeURL(req.URL); err == nil {
		c.Set(middleware.AnalysisURLKey, normalized)
	}

	analysis, err := s.deps.Analyzer.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		if msg, ok := fetchErrorMessage(err); ok {
			errorJSON(c, http.StatusBadRequest, msg)
			return
		}
		s.deps.Logger.Error("analysis failed", zap.String("url", req.URL), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "Failed to analyze URL: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, analysis)
}

type configurable interface {
	Configured() bool
}

func (s *Server) mailConfigured() bool {
	if s.deps.Sender == nil {
		return false
	}
	if cfg, ok := s.deps.Sender.(configurable); ok {
		return cfg.Configured()
	}
	return true
}

func (s *Server) handleSendReport(c *gin.Context) {
	var req sendReportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Analysis == nil {
		errorJSON(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := mailer.ValidateAddress(req.Email); err != nil {
		errorJSON(c, http.StatusBadRequest, msgInvalidEmail)
		return
	}
	if !s.mailConfigured() {
		errorJSON(c, http.StatusInternalServerError, msgMailUnconfigured)
		return
	}

	// Derived fields are recomputed from the posted checks.
	a := analyzer.Aggregate(req.Analysis.URL, req.Analysis.Title, req.Analysis.Checks, req.Analysis.SEOMetrics)
	a.AnalyzedAt = req.Analysis.AnalyzedAt

	pdf, err := report.PDF(a)
	if err != nil {
		s.deps.Logger.Error("pdf render failed", zap.String("url", a.URL), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, msgReportFailed)
		return
	}
	html, err := report.EmailHTML(a)
	if err != nil {
		s.deps.Logger.Error("email render failed", zap.String("url", a.URL), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, msgReportFailed)
		return
	}

	err = s.deps.Sender.Send(c.Request.Context(), mailer.Message{
		To:      req.Email,
		Subject: report.EmailSubject(a),
		HTML:    html,
		Attachments: []mailer.Attachment{{
			Filename: report.Filename(a, s.deps.Now()),
			Content:  pdf,
		}},
	})
	if s.deps.Metrics != nil {
		s.deps.Metrics.ReportSent(err)
	}
	if err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			errorJSON(c, http.StatusInternalServerError, msgMailUnconfigured)
			return
		}
		s.deps.Logger.Error("report delivery failed", zap.String("url", a.URL), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, msgSendFailed)
		return
	}

	if s.deps.Statistics != nil {
		s.deps.Statistics.TrackReport()
	}
	if s.deps.Storage != nil {
		s.deps.Storage.RecordReport()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
