// Package report builds audit reports and exports them to JSON, CSV and
// XLSX.
package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/page-audit/auditor/internal/analysis"
	"github.com/page-audit/auditor/internal/rules"
	"github.com/page-audit/auditor/internal/scoring"
)

// AISuggestions is an externally generated improvement-suggestion block.
// Content is carried verbatim; this package never interprets or rewrites it.
type AISuggestions struct {
	Provider    string          `json:"provider,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt,omitempty"`
	Content     json.RawMessage `json:"content"`
}

// Report is one complete audit outcome, ready for export or storage.
type Report struct {
	ID          string                 `json:"id"`
	URL         string                 `json:"url"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Analysis    *analysis.PageAnalysis `json:"analysis"`
	Score       *scoring.SEOScore      `json:"score"`
	Issues      []scoring.SEOIssue     `json:"issues"`
	Suggestions *AISuggestions         `json:"suggestions,omitempty"`
}

// New assembles a report from an evaluated analysis.
func New(url string, a *analysis.PageAnalysis, score *scoring.SEOScore, issues []scoring.SEOIssue) *Report {
	return &Report{
		ID:          uuid.New().String(),
		URL:         url,
		GeneratedAt: time.Now(),
		Analysis:    a,
		Score:       score,
		Issues:      issues,
	}
}

// Attach adds an externally produced suggestion block to the report.
func (r *Report) Attach(s *AISuggestions) {
	r.Suggestions = s
}

// IssueCount returns the number of issues at or above the given severity.
func (r *Report) IssueCount(min rules.Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity >= min {
			count++
		}
	}
	return count
}
