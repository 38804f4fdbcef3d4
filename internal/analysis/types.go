// Package analysis assembles extractor output into immutable page analyses.
package analysis

import (
	"time"

	"github.com/page-audit/auditor/internal/extract"
)

// PageAnalysis is the complete quantitative description of one page at one
// point in time. Every field is always present with a zero/empty default;
// records are never mutated after assembly, a re-analysis produces a new
// record that supersedes the old one.
type PageAnalysis struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`

	Meta        extract.MetaTags         `json:"metaTags"`
	Headings    extract.HeadingStats     `json:"headings"`
	Content     extract.ContentStats     `json:"content"`
	Images      extract.ImageStats       `json:"images"`
	Links       extract.LinkStats        `json:"links"`
	Performance extract.PerformanceStats `json:"performance"`
}

// Sections flags the analysis sections affected by a document change. The
// change monitor produces one; the assembler re-runs only the flagged
// extractors during incremental analysis.
type Sections struct {
	Meta        bool
	Headings    bool
	Content     bool
	Images      bool
	Links       bool
	Performance bool
}

// AllSections returns a Sections value with every flag set.
func AllSections() Sections {
	return Sections{
		Meta:        true,
		Headings:    true,
		Content:     true,
		Images:      true,
		Links:       true,
		Performance: true,
	}
}

// Any reports whether at least one section is flagged.
func (s Sections) Any() bool {
	return s.Meta || s.Headings || s.Content || s.Images || s.Links || s.Performance
}

// Union merges two section sets.
func (s Sections) Union(o Sections) Sections {
	return Sections{
		Meta:        s.Meta || o.Meta,
		Headings:    s.Headings || o.Headings,
		Content:     s.Content || o.Content,
		Images:      s.Images || o.Images,
		Links:       s.Links || o.Links,
		Performance: s.Performance || o.Performance,
	}
}

// ProgressFunc receives progress callbacks during a full analysis. Stages
// correspond one to one with the six extractor groups.
type ProgressFunc func(stage string, percent int, message string)

// State is the assembler life-cycle state for one page context.
type State int32

const (
	StateIdle State = iota
	StateAnalyzing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
