// Package scoring converts rule outcomes into scores and an ordered issue
// list.
package scoring

import (
	"log/slog"
	"sort"
	"time"

	"github.com/page-audit/auditor/internal/analysis"
	"github.com/page-audit/auditor/internal/rules"
)

// Category importance weights for the overall score. Two near-duplicate
// weighting schemes circulated historically (0.45/0.35/0.20 and
// 0.40/0.35/0.25); this table is the canonical one. Technical remains the
// heaviest, and performance keeps enough weight to matter.
var CategoryWeights = map[rules.Category]float64{
	rules.CategoryTechnical:   0.40,
	rules.CategoryContent:     0.35,
	rules.CategoryPerformance: 0.25,
}

const (
	// criticalPenalty multiplies a failed critical rule's score before it
	// enters the category mean.
	criticalPenalty = 0.8

	// bonusThreshold and bonusMultiplier reward categories with
	// near-perfect means.
	bonusThreshold  = 90.0
	bonusMultiplier = 1.1
)

// SEOScore is the composite audit score. Every field is in [0,100]. Scores
// are recomputed from scratch on each evaluation, never patched.
type SEOScore struct {
	Overall     float64   `json:"overall"`
	Technical   float64   `json:"technical"`
	Content     float64   `json:"content"`
	Performance float64   `json:"performance"`
	Timestamp   time.Time `json:"timestamp"`
}

// SEOIssue describes one failed rule. Ordering in the issue list is derived:
// severity descending, then rule weight descending, ties broken by rule
// registration order.
type SEOIssue struct {
	ID             string         `json:"id"`
	Category       rules.Category `json:"category"`
	Severity       rules.Severity `json:"severity"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Recommendation string         `json:"recommendation"`
	CurrentValue   string         `json:"currentValue"`
	ExpectedValue  string         `json:"expectedValue"`
	Impact         string         `json:"impact"`
	Locator        string         `json:"locator,omitempty"`
}

// Scorer evaluates a rule registry against page analyses. The registry is
// injected so independent page contexts can hold independent catalogs.
type Scorer struct {
	registry *rules.Registry
	log      *slog.Logger
}

// NewScorer creates a scorer over the given registry.
func NewScorer(registry *rules.Registry, log *slog.Logger) *Scorer {
	if log == nil {
		log = slog.Default()
	}
	return &Scorer{registry: registry, log: log}
}

// evaluated pairs a rule with its result and position for ordering.
type evaluated struct {
	rule   rules.Rule
	result rules.RuleResult
	order  int
}

// Evaluate runs every registered rule once and returns the composite score
// plus the ordered issue list.
func (s *Scorer) Evaluate(a *analysis.PageAnalysis) (*SEOScore, []SEOIssue) {
	results := s.runRules(a)

	score := &SEOScore{
		Technical:   s.categoryScore(results, rules.CategoryTechnical),
		Content:     s.categoryScore(results, rules.CategoryContent),
		Performance: s.categoryScore(results, rules.CategoryPerformance),
		Timestamp:   time.Now(),
	}
	score.Overall = OverallScore(score.Technical, score.Content, score.Performance)

	return score, s.issues(results)
}

// CategoryScores returns just the per-category scores.
func (s *Scorer) CategoryScores(a *analysis.PageAnalysis) map[rules.Category]float64 {
	results := s.runRules(a)
	out := make(map[rules.Category]float64, len(rules.Categories))
	for _, cat := range rules.Categories {
		out[cat] = s.categoryScore(results, cat)
	}
	return out
}

// OverallScore combines category scores using the canonical importance
// weights, clamped to [0,100].
func OverallScore(technical, content, performance float64) float64 {
	overall := technical*CategoryWeights[rules.CategoryTechnical] +
		content*CategoryWeights[rules.CategoryContent] +
		performance*CategoryWeights[rules.CategoryPerformance]
	return clamp(overall)
}

// runRules evaluates every rule exactly once. A panicking predicate is
// recovered and counted as a failure with the rule's declared severity, so
// no rule weight is ever silently lost from the mean.
func (s *Scorer) runRules(a *analysis.PageAnalysis) []evaluated {
	all := s.registry.All()
	results := make([]evaluated, 0, len(all))

	for i, rule := range all {
		res := s.safeCheck(rule, a)
		if res.Severity == 0 {
			res.Severity = rule.Severity
		}
		results = append(results, evaluated{rule: rule, result: res, order: i})
	}
	return results
}

func (s *Scorer) safeCheck(rule rules.Rule, a *analysis.PageAnalysis) (res rules.RuleResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("rule predicate panicked, treating as failed",
				"rule", rule.ID,
				"panic", r,
			)
			res = rules.RuleResult{
				Passed:   false,
				Score:    0,
				Severity: rule.Severity,
				Message:  "Rule evaluation failed",
			}
		}
	}()
	return rule.Check(a)
}

// categoryScore computes the weighted mean of rule scores in one category,
// applying the critical penalty to failed critical rules and the bonus
// multiplier to near-perfect categories.
func (s *Scorer) categoryScore(results []evaluated, cat rules.Category) float64 {
	var weightSum, scoreSum float64

	for _, e := range results {
		if e.rule.Category != cat {
			continue
		}
		score := e.result.Score
		if !e.result.Passed && e.result.Severity == rules.SeverityCritical {
			score *= criticalPenalty
		}
		scoreSum += score * e.rule.Weight
		weightSum += e.rule.Weight
	}

	if weightSum == 0 {
		return 0
	}

	mean := scoreSum / weightSum
	if mean > bonusThreshold {
		mean *= bonusMultiplier
	}
	return clamp(mean)
}

// issues builds one issue per failed rule, totally ordered by severity
// descending then weight descending. The sort is stable, so equal keys keep
// registration order. Consumers depend on this ordering.
func (s *Scorer) issues(results []evaluated) []SEOIssue {
	failed := make([]evaluated, 0, len(results))
	for _, e := range results {
		if !e.result.Passed {
			failed = append(failed, e)
		}
	}

	sort.SliceStable(failed, func(i, j int) bool {
		if failed[i].result.Severity != failed[j].result.Severity {
			return failed[i].result.Severity > failed[j].result.Severity
		}
		if failed[i].rule.Weight != failed[j].rule.Weight {
			return failed[i].rule.Weight > failed[j].rule.Weight
		}
		return failed[i].order < failed[j].order
	})

	issues := make([]SEOIssue, 0, len(failed))
	for _, e := range failed {
		issues = append(issues, SEOIssue{
			ID:             e.rule.ID,
			Category:       e.rule.Category,
			Severity:       e.result.Severity,
			Title:          issueTitle(e.rule.ID),
			Description:    e.result.Message,
			Recommendation: e.result.Recommendation,
			CurrentValue:   e.result.Current,
			ExpectedValue:  e.result.Expected,
			Impact:         e.result.Impact,
			Locator:        e.result.Locator,
		})
	}
	return issues
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
