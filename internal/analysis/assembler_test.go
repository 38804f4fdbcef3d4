package analysis

import (
	"context"
	"sync"
	"testing"

	"github.com/page-audit/auditor/internal/config"
	"github.com/page-audit/auditor/internal/page"
	"github.com/page-audit/auditor/internal/testutil"
)

const assemblerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Assembler Test Page With A Real Title</title>
  <meta name="description" content="A page used to exercise the assembler.">
</head>
<body>
  <h1>Main</h1>
  <h2>Section</h2>
  <p>Some words in a paragraph. Another sentence follows here.</p>
  <a href="/other">internal</a>
  <img src="/pic.jpg" alt="A picture with a decent alt text">
</body>
</html>`

func testSnapshot(t *testing.T) *page.Snapshot {
	t.Helper()
	snap, err := page.New("https://example.com/page", []byte(assemblerHTML))
	testutil.MustNotFail(t, err)
	return snap
}

func TestAnalyzeFullDefaults(t *testing.T) {
	asm := NewAssembler(nil, nil)

	a, err := asm.Analyze(context.Background(), testSnapshot(t), config.DefaultAnalysisOptions())
	testutil.MustNotFail(t, err)

	testutil.Assert(t, a.URL).Equals("https://example.com/page")
	if a.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	testutil.Assert(t, a.Meta.Title).Contains("Assembler Test Page")
	testutil.Assert(t, a.Headings.H1).HasLength(1)
	testutil.Assert(t, a.Content.WordCount).IsGreaterThan(0)
	testutil.Assert(t, a.Images.Total).Equals(1)
	testutil.Assert(t, a.Links.Internal).Equals(1)
	testutil.Assert(t, a.Performance.Measured).IsFalse()
	testutil.Assert(t, asm.State().String()).Equals("idle")
}

func TestAnalyzeDisabledSectionsStayZero(t *testing.T) {
	asm := NewAssembler(nil, nil)

	opts := config.AnalysisOptions{IncludeMetaTags: true}
	a, err := asm.Analyze(context.Background(), testSnapshot(t), opts)
	testutil.MustNotFail(t, err)

	testutil.Assert(t, a.Meta.Title).IsNotEmpty()
	testutil.Assert(t, a.Headings.Count()).Equals(0)
	testutil.Assert(t, a.Content.WordCount).Equals(0)
	testutil.Assert(t, a.Images.Total).Equals(0)
}

func TestAnalyzeNilSnapshot(t *testing.T) {
	asm := NewAssembler(nil, nil)

	_, err := asm.Analyze(context.Background(), nil, config.DefaultAnalysisOptions())
	if err == nil {
		t.Fatal("expected error for nil snapshot")
	}
}

func TestAnalyzeAborted(t *testing.T) {
	asm := NewAssembler(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := asm.Analyze(ctx, testSnapshot(t), config.DefaultAnalysisOptions())
	if err != ErrAborted {
		t.Fatalf("err = %v, want ErrAborted", err)
	}
	if a != nil {
		t.Error("aborted analysis must not return a partial result")
	}
	// A failed run must not wedge the assembler.
	_, err = asm.Analyze(context.Background(), testSnapshot(t), config.DefaultAnalysisOptions())
	testutil.MustNotFail(t, err)
}

func TestAnalyzeBusy(t *testing.T) {
	asm := NewAssembler(nil, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	asm.progress = func(stage string, percent int, message string) {
		once.Do(func() {
			close(started)
			<-release
		})
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := asm.Analyze(context.Background(), testSnapshot(t), config.DefaultAnalysisOptions())
		errCh <- err
	}()

	<-started
	_, err := asm.Analyze(context.Background(), testSnapshot(t), config.DefaultAnalysisOptions())
	if err != ErrBusy {
		t.Errorf("concurrent analyze err = %v, want ErrBusy", err)
	}

	close(release)
	testutil.MustNotFail(t, <-errCh)
}

func TestAnalyzeProgressSequence(t *testing.T) {
	var percents []int
	asm := NewAssembler(nil, func(stage string, percent int, message string) {
		percents = append(percents, percent)
	})

	_, err := asm.Analyze(context.Background(), testSnapshot(t), config.DefaultAnalysisOptions())
	testutil.MustNotFail(t, err)

	// Six stages plus the final 100.
	testutil.Assert(t, percents).HasLength(7)
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress went backwards: %v", percents)
		}
	}
	testutil.Assert(t, percents[len(percents)-1]).Equals(100)
}

func TestReanalyzeMergesSections(t *testing.T) {
	asm := NewAssembler(nil, nil)
	snap := testSnapshot(t)

	prev, err := asm.Analyze(context.Background(), snap, config.DefaultAnalysisOptions())
	testutil.MustNotFail(t, err)

	changed, err := page.New("https://example.com/page", []byte(`<!DOCTYPE html>
<html lang="en">
<head><title>A Different Title After The Change</title></head>
<body><h1>Main</h1><p>words</p></body></html>`))
	testutil.MustNotFail(t, err)

	next, err := asm.Reanalyze(context.Background(), changed, prev, Sections{Meta: true})
	testutil.MustNotFail(t, err)

	testutil.Assert(t, next.Meta.Title).Contains("Different Title")
	// Untouched sections keep the previous records verbatim.
	testutil.Assert(t, next.Content.WordCount).Equals(prev.Content.WordCount)
	testutil.Assert(t, next.Images.Total).Equals(prev.Images.Total)
	if !next.Timestamp.After(prev.Timestamp) && !next.Timestamp.Equal(prev.Timestamp) {
		t.Error("re-analysis timestamp should not precede the previous one")
	}
	if prev.Meta.Title == next.Meta.Title {
		t.Error("previous record must not be mutated by re-analysis")
	}
}

func TestReanalyzeNilPrevRunsFull(t *testing.T) {
	asm := NewAssembler(nil, nil)

	a, err := asm.Reanalyze(context.Background(), testSnapshot(t), nil, Sections{Meta: true})
	testutil.MustNotFail(t, err)

	// Full analysis regardless of the requested sections.
	testutil.Assert(t, a.Headings.H1).HasLength(1)
	testutil.Assert(t, a.Content.WordCount).IsGreaterThan(0)
}

func TestSafeExtractRecoversPanic(t *testing.T) {
	asm := NewAssembler(nil, nil)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic escaped safeExtract: %v", r)
		}
	}()
	asm.safeExtract("meta", "https://example.com/", func() {
		panic("extractor blew up")
	})
}

func TestSectionsUnionAndAny(t *testing.T) {
	a := Sections{Meta: true}
	b := Sections{Content: true, Performance: true}

	u := a.Union(b)
	testutil.Assert(t, u.Meta).IsTrue()
	testutil.Assert(t, u.Content).IsTrue()
	testutil.Assert(t, u.Performance).IsTrue()
	testutil.Assert(t, u.Headings).IsFalse()

	testutil.Assert(t, Sections{}.Any()).IsFalse()
	testutil.Assert(t, u.Any()).IsTrue()
}
