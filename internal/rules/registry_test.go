package rules

import (
	"encoding/json"
	"testing"

	"github.com/page-audit/auditor/internal/analysis"
	"github.com/page-audit/auditor/internal/testutil"
)

func alwaysPass(a *analysis.PageAnalysis) RuleResult {
	return pass("ok")
}

func TestNewRegistryPreloadsCatalog(t *testing.T) {
	r := NewRegistry()

	testutil.Assert(t, r.Len()).IsGreaterThan(20)
	for _, cat := range Categories {
		if len(r.ByCategory(cat)) == 0 {
			t.Errorf("category %s has no rules", cat)
		}
		testutil.Assert(t, r.TotalWeight(cat)).Named(string(cat)).IsGreaterThan(0)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := NewEmptyRegistry()

	cases := []struct {
		name string
		rule Rule
	}{
		{"empty id", Rule{Category: CategoryTechnical, Weight: 1, Check: alwaysPass}},
		{"zero weight", Rule{ID: "x", Category: CategoryTechnical, Weight: 0, Check: alwaysPass}},
		{"negative weight", Rule{ID: "x", Category: CategoryTechnical, Weight: -1, Check: alwaysPass}},
		{"nil check", Rule{ID: "x", Category: CategoryTechnical, Weight: 1}},
		{"bad category", Rule{ID: "x", Category: "style", Weight: 1, Check: alwaysPass}},
	}
	for _, tc := range cases {
		if err := r.Register(tc.rule); err == nil {
			t.Errorf("%s: expected registration error", tc.name)
		}
	}
	testutil.Assert(t, r.Len()).Equals(0)
}

func TestRegisterReplacesInPlace(t *testing.T) {
	r := NewEmptyRegistry()

	testutil.MustNotFail(t, r.Register(Rule{ID: "first", Category: CategoryTechnical, Weight: 1, Check: alwaysPass}))
	testutil.MustNotFail(t, r.Register(Rule{ID: "second", Category: CategoryContent, Weight: 1, Check: alwaysPass}))
	testutil.MustNotFail(t, r.Register(Rule{ID: "first", Category: CategoryTechnical, Weight: 5, Check: alwaysPass}))

	testutil.Assert(t, r.Len()).Equals(2)

	all := r.All()
	testutil.Assert(t, all[0].ID).Named("order preserved").Equals("first")
	testutil.Assert(t, all[0].Weight).Named("replaced weight").Equals(5.0)
}

func TestGetAndAllCopy(t *testing.T) {
	r := NewEmptyRegistry()
	testutil.MustNotFail(t, r.Register(Rule{ID: "only", Category: CategoryContent, Weight: 2, Check: alwaysPass}))

	rule, ok := r.Get("only")
	testutil.Assert(t, ok).IsTrue()
	testutil.Assert(t, rule.Weight).Equals(2.0)

	if _, ok := r.Get("missing"); ok {
		t.Error("Get returned a rule for an unknown ID")
	}

	// Mutating the returned slice must not affect the registry.
	all := r.All()
	all[0].ID = "mutated"
	again, _ := r.Get("only")
	testutil.Assert(t, again.ID).Equals("only")
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	for _, sev := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		encoded, err := json.Marshal(sev)
		testutil.MustNotFail(t, err)
		testutil.Assert(t, string(encoded)).Equals(`"` + sev.String() + `"`)

		var decoded Severity
		testutil.MustNotFail(t, json.Unmarshal(encoded, &decoded))
		if decoded != sev {
			t.Errorf("round trip changed %v to %v", sev, decoded)
		}
	}
}

func TestSeverityRejectsUnknownName(t *testing.T) {
	var sev Severity
	err := json.Unmarshal([]byte(`"catastrophic"`), &sev)
	testutil.AssertError(t, err).HasError().ContainsMessage("catastrophic")
}

func TestMustRegisterPanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid rule")
		}
	}()
	NewEmptyRegistry().MustRegister(Rule{})
}
