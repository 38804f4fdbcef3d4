// Package audit wires the assembler, rule catalog, scorer, cache and change
// monitor into the audit engine.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/page-audit/auditor/internal/analysis"
	"github.com/page-audit/auditor/internal/cache"
	"github.com/page-audit/auditor/internal/config"
	"github.com/page-audit/auditor/internal/monitor"
	"github.com/page-audit/auditor/internal/monitoring"
	"github.com/page-audit/auditor/internal/page"
	"github.com/page-audit/auditor/internal/rules"
	"github.com/page-audit/auditor/internal/scoring"
)

// Result is the outcome of one audit: the analysis plus its evaluation.
type Result struct {
	Analysis *analysis.PageAnalysis `json:"analysis"`
	Score    *scoring.SEOScore      `json:"score"`
	Issues   []scoring.SEOIssue     `json:"issues"`
	CacheHit bool                   `json:"cache_hit"`
}

// SnapshotFunc re-acquires the current document state, used by the realtime
// loop to capture the page after a significant change.
type SnapshotFunc func(ctx context.Context) (*page.Snapshot, error)

// Engine is the per-page-context audit pipeline. One engine holds one rule
// registry, one cache and one last-analysis reference; independent page
// contexts get independent engines.
type Engine struct {
	cfg      *config.Config
	asm      *analysis.Assembler
	registry *rules.Registry
	scorer   *scoring.Scorer
	cache    *cache.Manager
	mon      *monitor.Monitor
	log      *slog.Logger

	mu   sync.Mutex
	last *analysis.PageAnalysis
}

// NewEngine builds an engine from configuration. progress may be nil.
func NewEngine(cfg *config.Config, registry *rules.Registry, progress analysis.ProgressFunc, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if registry == nil {
		registry = rules.NewRegistry()
	}
	return &Engine{
		cfg:      cfg,
		asm:      analysis.NewAssembler(log, progress),
		registry: registry,
		scorer:   scoring.NewScorer(registry, log),
		cache:    cache.NewManager(cfg.CacheTTL, cfg.CacheMaxEntries),
		mon:      monitor.New(cfg.ChangeDebounce, cfg.TextChangeThreshold, log),
		log:      log,
	}
}

// Registry returns the engine's rule registry, for registering custom rules.
func (e *Engine) Registry() *rules.Registry {
	return e.registry
}

// Monitor returns the engine's change monitor, for feeding document
// observations from the hosting environment.
func (e *Engine) Monitor() *monitor.Monitor {
	return e.mon
}

// CacheStats exposes cache counters for diagnostics endpoints.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// LastAnalysis returns the most recent completed analysis, or nil.
func (e *Engine) LastAnalysis() *analysis.PageAnalysis {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Audit analyzes the snapshot and evaluates it against the rule catalog.
// With caching enabled an unchanged document (same URL and fingerprint)
// returns the identical analysis record without extractor work; the score is
// recomputed either way, since scores are derived, never stored.
//
// An aborted analysis surfaces ErrAborted and writes nothing to the cache.
func (e *Engine) Audit(ctx context.Context, snap *page.Snapshot, opts config.AnalysisOptions) (*Result, error) {
	start := time.Now()
	fingerprint := snap.Fingerprint()

	if opts.UseCache && !opts.ForceRefresh {
		if cached := e.cache.Get(snap.RawURL, fingerprint); cached != nil {
			monitoring.CacheHits.Inc()
			monitoring.AuditsTotal.WithLabelValues("cached").Inc()
			score, issues := e.scorer.Evaluate(cached)
			return &Result{Analysis: cached, Score: score, Issues: issues, CacheHit: true}, nil
		}
		monitoring.CacheMisses.Inc()
	}

	monitoring.AnalysesInFlight.Inc()
	result, err := e.asm.Analyze(ctx, snap, opts)
	monitoring.AnalysesInFlight.Dec()

	if err != nil {
		monitoring.AuditsTotal.WithLabelValues(statusLabel(err)).Inc()
		return nil, err
	}

	if opts.UseCache {
		e.cache.Put(snap.RawURL, fingerprint, result)
	}

	e.mu.Lock()
	e.last = result
	e.mu.Unlock()

	if opts.EnableRealtime {
		e.mon.SetBaseline(monitor.FactsFromSnapshot(snap))
	}

	score, issues := e.scorer.Evaluate(result)
	monitoring.AuditsTotal.WithLabelValues("success").Inc()
	monitoring.AuditDuration.Observe(time.Since(start).Seconds())

	return &Result{Analysis: result, Score: score, Issues: issues}, nil
}

// Run consumes significant-change events until ctx is cancelled, performing
// incremental re-analysis of only the affected sections. acquire re-captures
// the document; without a prior analysis the re-analysis degenerates to a
// full one. onResult may be nil.
func (e *Engine) Run(ctx context.Context, acquire SnapshotFunc, opts config.AnalysisOptions, onResult func(*Result)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-e.mon.Events():
			if !ok {
				return nil
			}
			res, err := e.reauditSections(ctx, acquire, ev.Sections, opts)
			if err != nil {
				e.log.Warn("incremental re-analysis failed", "error", err)
				continue
			}
			if onResult != nil {
				onResult(res)
			}
		}
	}
}

func (e *Engine) reauditSections(ctx context.Context, acquire SnapshotFunc, secs analysis.Sections, opts config.AnalysisOptions) (*Result, error) {
	snap, err := acquire(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	prev := e.last
	e.mu.Unlock()

	// A significant change makes cached analyses for this URL stale.
	e.cache.Invalidate(snap.RawURL)

	result, err := e.asm.Reanalyze(ctx, snap, prev, secs)
	if err != nil {
		return nil, err
	}
	monitoring.IncrementalAnalyses.Inc()

	if opts.UseCache {
		e.cache.Put(snap.RawURL, snap.Fingerprint(), result)
	}

	e.mu.Lock()
	e.last = result
	e.mu.Unlock()

	score, issues := e.scorer.Evaluate(result)
	return &Result{Analysis: result, Score: score, Issues: issues}, nil
}

// Close stops the change monitor and clears the cache.
func (e *Engine) Close() {
	e.mon.Stop()
	e.cache.Clear()
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, analysis.ErrBusy):
		return "busy"
	case errors.Is(err, analysis.ErrAborted):
		return "aborted"
	default:
		return "failed"
	}
}
