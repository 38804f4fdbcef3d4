// Package monitor classifies document mutations and emits debounced
// significant-change events. The monitor knows nothing about the analysis
// pipeline; it publishes typed events on a channel the engine subscribes to,
// keeping the pipeline testable without a live document.
package monitor

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/page-audit/auditor/internal/analysis"
	"github.com/page-audit/auditor/internal/page"
)

// Facts is the cheap set of document facts the monitor compares between
// observations.
type Facts struct {
	Title        string
	HeadingCount int
	ImageCount   int
	TextLength   int
}

// FactsFromSnapshot reads the monitored facts from a snapshot.
func FactsFromSnapshot(snap *page.Snapshot) Facts {
	return Facts{
		Title:        snap.Title(),
		HeadingCount: snap.HeadingCount(),
		ImageCount:   snap.Doc.Find("img").Length(),
		TextLength:   snap.TextLength(),
	}
}

// ChangeEvent is a coalesced significant-change notification. Sections is
// the union of the analysis sections affected by every mutation in the
// debounce window.
type ChangeEvent struct {
	Sections analysis.Sections
	Facts    Facts
	At       time.Time
}

// Monitor observes document facts and emits debounced change events.
type Monitor struct {
	mu sync.Mutex

	debounce      time.Duration
	textThreshold float64
	log           *slog.Logger

	baseline    *Facts
	pending     analysis.Sections
	latestFacts Facts
	timer       *time.Timer

	events  chan ChangeEvent
	dropped int64
	stopped bool
}

// New creates a monitor. debounce is the trailing-edge coalescing window;
// textThreshold is the relative text-length change treated as significant
// (0.05 = 5%).
func New(debounce time.Duration, textThreshold float64, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		debounce:      debounce,
		textThreshold: textThreshold,
		log:           log,
		events:        make(chan ChangeEvent, 8),
	}
}

// Events returns the significant-change event channel.
func (m *Monitor) Events() <-chan ChangeEvent {
	return m.events
}

// SetBaseline records the facts of the last fully analyzed document state.
// Subsequent observations are classified against this baseline.
func (m *Monitor) SetBaseline(f Facts) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseline = &f
}

// Observe classifies one mutation batch. Non-significant batches are
// dropped silently; significant ones are coalesced into at most one event
// per debounce window. Without a baseline the first observation only
// establishes one.
func (m *Monitor) Observe(f Facts) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	if m.baseline == nil {
		m.baseline = &f
		return
	}

	sections := m.Classify(*m.baseline, f)
	if !sections.Any() {
		return
	}

	m.pending = m.pending.Union(sections)
	m.latestFacts = f

	if m.timer == nil {
		m.timer = time.AfterFunc(m.debounce, m.fire)
	} else {
		m.timer.Reset(m.debounce)
	}
}

// Classify maps a fact delta to the affected analysis sections. An empty
// section set means the mutation batch is not significant.
func (m *Monitor) Classify(before, after Facts) analysis.Sections {
	var s analysis.Sections

	if before.Title != after.Title {
		s.Meta = true
	}
	if before.HeadingCount != after.HeadingCount {
		s.Headings = true
	}
	if before.ImageCount != after.ImageCount {
		s.Images = true
	}
	if relativeChange(before.TextLength, after.TextLength) > m.textThreshold {
		s.Content = true
		s.Performance = true // text volume moves page size
	}

	return s
}

// fire emits the coalesced event and advances the baseline to the emitted
// state so later drift is measured against it.
func (m *Monitor) fire() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped || !m.pending.Any() {
		return
	}

	ev := ChangeEvent{
		Sections: m.pending,
		Facts:    m.latestFacts,
		At:       time.Now(),
	}
	m.pending = analysis.Sections{}
	baseline := m.latestFacts
	m.baseline = &baseline
	m.timer = nil

	// The send stays under the lock Stop holds while closing the channel;
	// once past the stopped check the channel cannot close before the send.
	select {
	case m.events <- ev:
	default:
		m.dropped++
		m.log.Warn("change event dropped, subscriber too slow")
	}
}

// Stop stops the monitor and closes the event channel. Observe calls after
// Stop are no-ops.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	close(m.events)
}

func relativeChange(before, after int) float64 {
	if before == 0 {
		if after == 0 {
			return 0
		}
		return 1
	}
	return math.Abs(float64(after-before)) / float64(before)
}
