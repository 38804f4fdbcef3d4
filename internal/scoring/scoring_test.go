package scoring

import (
	"testing"

	"github.com/page-audit/auditor/internal/analysis"
	"github.com/page-audit/auditor/internal/extract"
	"github.com/page-audit/auditor/internal/rules"
	"github.com/page-audit/auditor/internal/testutil"
)

func fixedResult(passed bool, score float64) func(*analysis.PageAnalysis) rules.RuleResult {
	return func(*analysis.PageAnalysis) rules.RuleResult {
		return rules.RuleResult{Passed: passed, Score: score, Message: "fixed"}
	}
}

func registryOf(t *testing.T, defs ...rules.Rule) *rules.Registry {
	t.Helper()
	r := rules.NewEmptyRegistry()
	for _, def := range defs {
		testutil.MustNotFail(t, r.Register(def))
	}
	return r
}

func TestCategoryWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range CategoryWeights {
		sum += w
	}
	testutil.Assert(t, sum).IsCloseTo(1.0, 1e-9)
}

func TestOverallScoreWeighting(t *testing.T) {
	testutil.Assert(t, OverallScore(100, 100, 100)).Equals(100.0)
	testutil.Assert(t, OverallScore(0, 0, 0)).Equals(0.0)
	// 0.40*50 + 0.35*100 + 0.25*80 = 75
	testutil.Assert(t, OverallScore(50, 100, 80)).IsCloseTo(75, 1e-9)
}

func TestEvaluateScoreBounds(t *testing.T) {
	scorer := NewScorer(rules.NewRegistry(), nil)

	// Worst case: zero analysis fails nearly everything.
	score, issues := scorer.Evaluate(&analysis.PageAnalysis{})
	for name, v := range map[string]float64{
		"overall": score.Overall, "technical": score.Technical,
		"content": score.Content, "performance": score.Performance,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s score %f out of [0,100]", name, v)
		}
	}
	testutil.Assert(t, len(issues)).IsGreaterThan(5)
	if score.Timestamp.IsZero() {
		t.Error("score timestamp not set")
	}
}

func TestCategoryScoreWeightedMean(t *testing.T) {
	reg := registryOf(t,
		rules.Rule{ID: "a", Category: rules.CategoryContent, Weight: 3, Severity: rules.SeverityLow, Check: fixedResult(true, 100)},
		rules.Rule{ID: "b", Category: rules.CategoryContent, Weight: 1, Severity: rules.SeverityLow, Check: fixedResult(false, 20)},
	)
	scorer := NewScorer(reg, nil)

	scores := scorer.CategoryScores(&analysis.PageAnalysis{})
	// (100*3 + 20*1) / 4 = 80
	testutil.Assert(t, scores[rules.CategoryContent]).IsCloseTo(80, 1e-9)
	// Categories with no rules contribute zero, not NaN.
	testutil.Assert(t, scores[rules.CategoryTechnical]).Equals(0.0)
}

func TestCriticalPenalty(t *testing.T) {
	reg := registryOf(t,
		rules.Rule{ID: "crit", Category: rules.CategoryTechnical, Weight: 1, Severity: rules.SeverityCritical, Check: fixedResult(false, 50)},
	)
	scorer := NewScorer(reg, nil)

	scores := scorer.CategoryScores(&analysis.PageAnalysis{})
	// Failed critical: 50 * 0.8 = 40.
	testutil.Assert(t, scores[rules.CategoryTechnical]).IsCloseTo(40, 1e-9)
}

func TestNearPerfectBonusClamped(t *testing.T) {
	reg := registryOf(t,
		rules.Rule{ID: "good", Category: rules.CategoryContent, Weight: 1, Severity: rules.SeverityLow, Check: fixedResult(true, 95)},
	)
	scorer := NewScorer(reg, nil)

	scores := scorer.CategoryScores(&analysis.PageAnalysis{})
	// 95 > 90 earns the bonus: 95 * 1.1 = 104.5, clamped to 100.
	testutil.Assert(t, scores[rules.CategoryContent]).Equals(100.0)
}

func TestIssueOrdering(t *testing.T) {
	failWith := func(sev rules.Severity) func(*analysis.PageAnalysis) rules.RuleResult {
		return func(*analysis.PageAnalysis) rules.RuleResult {
			return rules.RuleResult{Passed: false, Score: 0, Severity: sev, Message: "x"}
		}
	}
	// Registration order deliberately interleaves severities and weights.
	reg := registryOf(t,
		rules.Rule{ID: "low_heavy", Category: rules.CategoryContent, Weight: 5, Severity: rules.SeverityLow, Check: failWith(rules.SeverityLow)},
		rules.Rule{ID: "crit_light", Category: rules.CategoryTechnical, Weight: 1, Severity: rules.SeverityCritical, Check: failWith(rules.SeverityCritical)},
		rules.Rule{ID: "high_a", Category: rules.CategoryTechnical, Weight: 2, Severity: rules.SeverityHigh, Check: failWith(rules.SeverityHigh)},
		rules.Rule{ID: "crit_heavy", Category: rules.CategoryTechnical, Weight: 3, Severity: rules.SeverityCritical, Check: failWith(rules.SeverityCritical)},
		rules.Rule{ID: "high_b", Category: rules.CategoryContent, Weight: 2, Severity: rules.SeverityHigh, Check: failWith(rules.SeverityHigh)},
		rules.Rule{ID: "passes", Category: rules.CategoryContent, Weight: 9, Severity: rules.SeverityCritical, Check: fixedResult(true, 100)},
	)
	scorer := NewScorer(reg, nil)

	_, issues := scorer.Evaluate(&analysis.PageAnalysis{})

	got := make([]string, len(issues))
	for i, issue := range issues {
		got[i] = issue.ID
	}
	// Severity desc, then weight desc, then registration order; passing rules
	// never appear.
	want := []string{"crit_heavy", "crit_light", "high_a", "high_b", "low_heavy"}
	if len(got) != len(want) {
		t.Fatalf("issues = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("issues = %v, want %v", got, want)
		}
	}
}

func TestPanickingRuleCountsAsFailure(t *testing.T) {
	reg := registryOf(t,
		rules.Rule{ID: "boom", Category: rules.CategoryTechnical, Weight: 2, Severity: rules.SeverityHigh,
			Check: func(*analysis.PageAnalysis) rules.RuleResult { panic("bad predicate") }},
		rules.Rule{ID: "fine", Category: rules.CategoryTechnical, Weight: 2, Severity: rules.SeverityLow, Check: fixedResult(true, 100)},
	)
	scorer := NewScorer(reg, nil)

	score, issues := scorer.Evaluate(&analysis.PageAnalysis{})

	testutil.Assert(t, issues).HasLength(1)
	testutil.Assert(t, issues[0].ID).Equals("boom")
	if issues[0].Severity != rules.SeverityHigh {
		t.Errorf("panicked rule severity = %v, want declared severity", issues[0].Severity)
	}
	// (0*2 + 100*2) / 4 = 50: the panicked rule's weight still counts.
	testutil.Assert(t, score.Technical).IsCloseTo(50, 1e-9)
}

func TestSeverityFilledFromDeclaration(t *testing.T) {
	reg := registryOf(t,
		rules.Rule{ID: "implicit", Category: rules.CategoryContent, Weight: 1, Severity: rules.SeverityMedium,
			Check: fixedResult(false, 10)},
	)
	scorer := NewScorer(reg, nil)

	_, issues := scorer.Evaluate(&analysis.PageAnalysis{})
	testutil.Assert(t, issues).HasLength(1)
	if issues[0].Severity != rules.SeverityMedium {
		t.Errorf("severity = %v, want declared medium", issues[0].Severity)
	}
}

func TestIssueTitlesCoverCatalog(t *testing.T) {
	for _, rule := range rules.NewRegistry().All() {
		title := issueTitle(rule.ID)
		testutil.Assert(t, title).Named(rule.ID).IsNotEmpty()
	}
}

func TestEvaluateRealisticGoodPage(t *testing.T) {
	good := &analysis.PageAnalysis{
		URL: "https://example.com/guide",
		Meta: extract.MetaTags{
			Title:       "A Complete Guide To Everything Relevant",
			Description: "This description is comfortably inside the recommended length window for meta descriptions, carrying a useful summary of the page for search result snippets.",
			Canonical:   "https://example.com/guide",
			Viewport:    "width=device-width, initial-scale=1",
			Language:    "en",
			OpenGraph:   map[string]string{"title": "Guide"},
		},
		Headings: extract.HeadingStats{
			H1:        []string{"The Guide"},
			H2:        []string{"Part One", "Part Two"},
			Hierarchy: []extract.Heading{{Level: 1}, {Level: 2}, {Level: 2}},
		},
		Content: extract.ContentStats{
			WordCount:        900,
			SentenceCount:    60,
			ReadabilityScore: 65,
			KeywordDensity:   map[string]float64{"guide": 2.5},
			TextHTMLRatio:    22,
		},
		Images: extract.ImageStats{Total: 4, WithAlt: 4, GoodAlt: 4},
		Links:  extract.LinkStats{Total: 12, Internal: 8, External: 4},
		Performance: extract.PerformanceStats{
			Measured: true, PageSize: 90 * 1024,
			LoadTimeMs: 1400, DOMReadyMs: 700,
			ResourceCount: 30, LargestPaintMs: 1600, LayoutShift: 0.02,
		},
	}

	scorer := NewScorer(rules.NewRegistry(), nil)
	score, issues := scorer.Evaluate(good)

	testutil.Assert(t, score.Overall).Named("overall").IsGreaterThan(80)
	for _, issue := range issues {
		if issue.Severity == rules.SeverityCritical {
			t.Errorf("well-formed page raised critical issue %s", issue.ID)
		}
	}
}
