package analysis

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/page-audit/auditor/internal/config"
	"github.com/page-audit/auditor/internal/extract"
	"github.com/page-audit/auditor/internal/page"
)

// stage describes one extractor group for progress reporting.
type stage struct {
	name    string
	message string
}

var stages = []stage{
	{"meta", "Extracting meta tags"},
	{"headings", "Extracting heading structure"},
	{"content", "Measuring content"},
	{"images", "Inventorying images"},
	{"links", "Classifying links"},
	{"performance", "Reading performance timings"},
}

// Assembler orchestrates the metric extractors and produces PageAnalysis
// records. At most one analysis may be in flight per assembler; a second
// request is rejected with ErrBusy rather than queued.
type Assembler struct {
	log      *slog.Logger
	progress ProgressFunc
	state    atomic.Int32
}

// NewAssembler creates an assembler. progress may be nil.
func NewAssembler(log *slog.Logger, progress ProgressFunc) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{log: log, progress: progress}
}

// State returns the current life-cycle state.
func (a *Assembler) State() State {
	return State(a.state.Load())
}

// Analyze runs the enabled extractors over the snapshot and returns a fresh,
// fully-defaulted PageAnalysis. A failed extractor contributes its zero-value
// sub-record and is logged, never surfaced. Cancelling ctx aborts the run
// with ErrAborted and no result.
func (a *Assembler) Analyze(ctx context.Context, snap *page.Snapshot, opts config.AnalysisOptions) (*PageAnalysis, error) {
	return a.run(ctx, snap, sectionsFromOptions(opts), nil)
}

// Reanalyze re-runs only the flagged sections and merges the fresh
// sub-records into a shallow copy of prev with a new timestamp. Sections not
// flagged keep prev's sub-records unchanged. A nil prev degenerates to a
// full analysis.
func (a *Assembler) Reanalyze(ctx context.Context, snap *page.Snapshot, prev *PageAnalysis, secs Sections) (*PageAnalysis, error) {
	if prev == nil {
		return a.run(ctx, snap, AllSections(), nil)
	}
	return a.run(ctx, snap, secs, prev)
}

func (a *Assembler) run(ctx context.Context, snap *page.Snapshot, secs Sections, prev *PageAnalysis) (*PageAnalysis, error) {
	if snap == nil || snap.Doc == nil {
		return nil, ErrAssembly
	}

	// Failed counts as ready: the error was surfaced to the caller and the
	// engine does not retry on its own.
	if !a.state.CompareAndSwap(int32(StateIdle), int32(StateAnalyzing)) &&
		!a.state.CompareAndSwap(int32(StateFailed), int32(StateAnalyzing)) {
		return nil, ErrBusy
	}

	result, err := a.assemble(ctx, snap, secs, prev)
	if err != nil {
		a.state.Store(int32(StateFailed))
		return nil, err
	}

	a.state.Store(int32(StateIdle))
	return result, nil
}

func (a *Assembler) assemble(ctx context.Context, snap *page.Snapshot, secs Sections, prev *PageAnalysis) (*PageAnalysis, error) {
	result := &PageAnalysis{
		URL:       snap.RawURL,
		Timestamp: time.Now(),
	}
	if prev != nil {
		// Shallow copy: untouched sections stay reference-identical.
		copied := *prev
		result = &copied
		result.Timestamp = time.Now()
	}

	runners := []struct {
		stage   stage
		enabled bool
		extract func()
	}{
		{stages[0], secs.Meta, func() { result.Meta = extract.Meta(snap) }},
		{stages[1], secs.Headings, func() { result.Headings = extract.Headings(snap) }},
		{stages[2], secs.Content, func() { result.Content = extract.Content(snap) }},
		{stages[3], secs.Images, func() { result.Images = extract.Images(snap) }},
		{stages[4], secs.Links, func() { result.Links = extract.Links(snap) }},
		{stages[5], secs.Performance, func() { result.Performance = extract.Performance(snap) }},
	}

	for i, r := range runners {
		select {
		case <-ctx.Done():
			return nil, ErrAborted
		default:
		}

		a.emitProgress(r.stage, i*100/len(runners))

		if !r.enabled {
			continue
		}
		a.safeExtract(r.stage.name, snap.RawURL, r.extract)
	}

	select {
	case <-ctx.Done():
		return nil, ErrAborted
	default:
	}

	a.emitProgress(stage{"done", "Analysis complete"}, 100)
	return result, nil
}

// safeExtract runs one extractor, recovering panics so a single failed
// extractor never blocks the rest of the report. The section keeps its
// zero-value default on failure.
func (a *Assembler) safeExtract(name, url string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("extractor failed, substituting defaults",
				"extractor", name,
				"url", url,
				"panic", r,
			)
		}
	}()
	fn()
}

func (a *Assembler) emitProgress(s stage, percent int) {
	if a.progress != nil {
		a.progress(s.name, percent, s.message)
	}
}

func sectionsFromOptions(opts config.AnalysisOptions) Sections {
	return Sections{
		Meta:        opts.IncludeMetaTags,
		Headings:    opts.IncludeHeadings,
		Content:     opts.IncludeContent,
		Images:      opts.IncludeImages,
		Links:       opts.IncludeLinks,
		Performance: opts.IncludePerformance,
	}
}
