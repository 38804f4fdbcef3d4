package extract

import (
	"testing"
	"time"

	"github.com/page-audit/auditor/internal/page"
	"github.com/page-audit/auditor/internal/testutil"
)

func TestPerformanceUnmeasured(t *testing.T) {
	snap := mustSnapshot(t, "https://example.com/", "<html><body></body></html>")

	p := Performance(snap)

	testutil.Assert(t, p.Measured).IsFalse()
	testutil.Assert(t, p.LoadTimeMs).Equals(int64(0))
	testutil.Assert(t, p.LargestPaintMs).Equals(0.0)
	// Page size is known regardless of timing availability.
	testutil.Assert(t, p.PageSize).Equals(snap.HTMLSize)
}

func TestPerformanceMeasured(t *testing.T) {
	snap := mustSnapshot(t, "https://example.com/", "<html><body></body></html>")
	snap.Timing = page.Timing{
		Measured:      true,
		LoadTime:      1800 * time.Millisecond,
		DOMReady:      900 * time.Millisecond,
		TTFB:          120 * time.Millisecond,
		FirstPaint:    600,
		LargestPaint:  1400,
		LayoutShift:   0.04,
		InputDelay:    12,
		ResourceCount: 23,
	}

	p := Performance(snap)

	testutil.Assert(t, p.Measured).IsTrue()
	testutil.Assert(t, p.LoadTimeMs).Equals(int64(1800))
	testutil.Assert(t, p.DOMReadyMs).Equals(int64(900))
	testutil.Assert(t, p.TTFBMs).Equals(int64(120))
	testutil.Assert(t, p.FirstPaintMs).Equals(600.0)
	testutil.Assert(t, p.LargestPaintMs).Equals(1400.0)
	testutil.Assert(t, p.LayoutShift).Equals(0.04)
	testutil.Assert(t, p.ResourceCount).Equals(23)
}

func TestPerformanceResourceCountFallback(t *testing.T) {
	snap := mustSnapshot(t, "https://example.com/", "<html><body></body></html>")
	snap.Timing = page.Timing{Measured: true}
	snap.Resources = []page.Resource{{URL: "a"}, {URL: "b"}}

	p := Performance(snap)
	testutil.Assert(t, p.ResourceCount).Equals(2)
}
