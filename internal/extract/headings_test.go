package extract

import (
	"testing"

	"github.com/page-audit/auditor/internal/testutil"
)

func TestHeadingsDocumentOrder(t *testing.T) {
	html := testutil.NewHTMLBuilder().
		H1("Main Topic").
		H2("First Section").
		Heading(3, "Detail").
		H2("Second Section").
		Build()

	h := Headings(mustSnapshot(t, "https://example.com/", html))

	testutil.Assert(t, h.H1).HasLength(1)
	testutil.Assert(t, h.H2).HasLength(2)
	testutil.Assert(t, h.H3).HasLength(1)
	testutil.Assert(t, h.Count()).Equals(4)

	want := []int{1, 2, 3, 2}
	for i, heading := range h.Hierarchy {
		if heading.Level != want[i] {
			t.Errorf("hierarchy[%d].Level = %d, want %d", i, heading.Level, want[i])
		}
	}
	testutil.Assert(t, h.Hierarchy[0].Text).Equals("Main Topic")
}

func TestHeadingsLocators(t *testing.T) {
	html := testutil.NewHTMLBuilder().
		H2("One").
		H2("Two").
		Build()

	h := Headings(mustSnapshot(t, "https://example.com/", html))

	testutil.Assert(t, h.Hierarchy[0].Locator).Equals("h2:nth-of-type(1)")
	testutil.Assert(t, h.Hierarchy[1].Locator).Equals("h2:nth-of-type(2)")
}

func TestHeadingsCountInvariant(t *testing.T) {
	html := testutil.NewHTMLBuilder().
		H1("A").H2("B").H2("C").Heading(4, "D").Heading(6, "E").
		Build()

	h := Headings(mustSnapshot(t, "https://example.com/", html))

	perLevel := 0
	for level := 1; level <= 6; level++ {
		perLevel += len(h.ByLevel(level))
	}
	testutil.Assert(t, perLevel).Named("per-level sum").Equals(len(h.Hierarchy))
}

func TestHeadingsNoneYieldsEmptySlices(t *testing.T) {
	h := Headings(mustSnapshot(t, "https://example.com/", "<html><body><p>text</p></body></html>"))

	testutil.Assert(t, h.Count()).Equals(0)
	testutil.Assert(t, h.H1).IsNotNil()
	testutil.Assert(t, h.Hierarchy).IsNotNil()
}

func TestByLevelOutOfRange(t *testing.T) {
	var h HeadingStats
	if h.ByLevel(0) != nil || h.ByLevel(7) != nil {
		t.Error("ByLevel outside 1..6 should return nil")
	}
}
