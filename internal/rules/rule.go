// Package rules defines the weighted rule catalog evaluated against a page
// analysis.
package rules

import (
	"fmt"

	"github.com/page-audit/auditor/internal/analysis"
)

// Severity ranks how damaging a failed rule is. The ordinal order drives
// issue sorting and the critical scoring penalty.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so severities serialize as
// their names.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting the names
// MarshalText produces so exported reports decode back losslessly.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "critical":
		*s = SeverityCritical
	case "high":
		*s = SeverityHigh
	case "medium":
		*s = SeverityMedium
	case "low":
		*s = SeverityLow
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Category groups rules and composite scores.
type Category string

const (
	CategoryTechnical   Category = "technical"
	CategoryContent     Category = "content"
	CategoryPerformance Category = "performance"
)

// Categories lists all rule categories in scoring order.
var Categories = []Category{CategoryTechnical, CategoryContent, CategoryPerformance}

// RuleResult is the outcome of evaluating one rule against one analysis.
// Ephemeral; produced per evaluation.
type RuleResult struct {
	Passed         bool
	Score          float64 // 0-100
	Severity       Severity
	Message        string
	Recommendation string
	Current        string
	Expected       string
	Impact         string
	Locator        string
}

// Rule is a named, weighted, categorized predicate over a PageAnalysis.
// Rules are registered once and never mutated; custom rules may be added
// but existing ones are replaced wholesale, not altered.
type Rule struct {
	ID       string
	Category Category
	Weight   float64
	Severity Severity

	// Check must be total over fully-defaulted analyses. A panicking check
	// is treated by the scorer as a failure with the rule's declared
	// severity, never propagated.
	Check func(a *analysis.PageAnalysis) RuleResult
}

// pass builds a passing result with full score.
func pass(message string) RuleResult {
	return RuleResult{Passed: true, Score: 100, Message: message}
}

// passScore builds a passing result with a reduced score, for soft findings
// that should dampen the category mean without raising an issue.
func passScore(score float64, message string) RuleResult {
	return RuleResult{Passed: true, Score: score, Message: message}
}

// fail builds a failing result. The scorer fills Severity from the rule
// declaration when the check leaves it zero.
func fail(score float64, message string) RuleResult {
	return RuleResult{Passed: false, Score: score, Message: message}
}
