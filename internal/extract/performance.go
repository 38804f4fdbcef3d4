package extract

import (
	"github.com/page-audit/auditor/internal/page"
)

// PerformanceStats holds load-performance facts. When Measured is false the
// page was acquired without a timing source and every timing field is zero;
// consumers must treat them as unavailable, not as instant loads. The
// Core-Web-Vitals proxies are best-effort estimates from the renderer, not
// field data.
type PerformanceStats struct {
	Measured bool `json:"measured"`

	PageSize      int   `json:"page_size"`
	LoadTimeMs    int64 `json:"load_time_ms"`
	DOMReadyMs    int64 `json:"dom_ready_ms"`
	TTFBMs        int64 `json:"ttfb_ms"`
	ResourceCount int   `json:"resource_count"`

	FirstPaintMs   float64 `json:"first_paint_ms"`
	LargestPaintMs float64 `json:"largest_paint_ms"`
	LayoutShift    float64 `json:"layout_shift"`
	InputDelayMs   float64 `json:"input_delay_ms"`
}

// Performance extracts timing facts from the snapshot. It never fails: a
// snapshot without timing yields an all-zero record with Measured=false.
func Performance(snap *page.Snapshot) PerformanceStats {
	stats := PerformanceStats{
		PageSize: snap.HTMLSize,
	}

	t := snap.Timing
	if !t.Measured {
		return stats
	}

	stats.Measured = true
	stats.LoadTimeMs = t.LoadTime.Milliseconds()
	stats.DOMReadyMs = t.DOMReady.Milliseconds()
	stats.TTFBMs = t.TTFB.Milliseconds()
	stats.FirstPaintMs = t.FirstPaint
	stats.LargestPaintMs = t.LargestPaint
	stats.LayoutShift = t.LayoutShift
	stats.InputDelayMs = t.InputDelay

	stats.ResourceCount = t.ResourceCount
	if stats.ResourceCount == 0 {
		stats.ResourceCount = len(snap.Resources)
	}

	return stats
}
