package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/page-audit/auditor/internal/config"
	"github.com/page-audit/auditor/internal/page"
)

// Renderer acquires snapshots through headless Chromium, capturing the
// post-JavaScript DOM, per-resource network data and real navigation timing.
type Renderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	slots       chan struct{}
	cfg         *config.Config
}

// timingRecord mirrors the JSON object produced by the timing script. All
// durations are milliseconds.
type timingRecord struct {
	LoadTime     float64 `json:"loadTime"`
	DOMReady     float64 `json:"domReady"`
	TTFB         float64 `json:"ttfb"`
	FirstPaint   float64 `json:"firstPaint"`
	LargestPaint float64 `json:"largestPaint"`
	LayoutShift  float64 `json:"layoutShift"`
	InputDelay   float64 `json:"inputDelay"`
}

// Observers are registered with buffered:true so entries recorded before the
// script runs are still delivered. The short timeout lets buffered entries
// flush before the values are read.
const timingScript = `
(() => new Promise(resolve => {
	const nav = performance.getEntriesByType('navigation')[0];
	const fp = performance.getEntriesByType('paint')
		.find(e => e.name === 'first-contentful-paint');
	let lcp = 0, cls = 0, fid = 0;
	try {
		new PerformanceObserver(list => {
			for (const e of list.getEntries()) lcp = Math.max(lcp, e.startTime);
		}).observe({type: 'largest-contentful-paint', buffered: true});
		new PerformanceObserver(list => {
			for (const e of list.getEntries()) if (!e.hadRecentInput) cls += e.value;
		}).observe({type: 'layout-shift', buffered: true});
		new PerformanceObserver(list => {
			for (const e of list.getEntries())
				fid = Math.max(fid, e.processingStart - e.startTime);
		}).observe({type: 'first-input', buffered: true});
	} catch (err) {}
	setTimeout(() => resolve({
		loadTime: nav ? nav.loadEventEnd - nav.startTime : 0,
		domReady: nav ? nav.domContentLoadedEventEnd - nav.startTime : 0,
		ttfb: nav ? nav.responseStart - nav.startTime : 0,
		firstPaint: fp ? fp.startTime : 0,
		largestPaint: lcp,
		layoutShift: cls,
		inputDelay: fid,
	}), 100);
}))()
`

// NewRenderer starts a shared browser allocator with a bounded number of
// concurrent tabs.
func NewRenderer(cfg *config.Config) (*Renderer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ChromiumPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromiumPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	slots := make(chan struct{}, cfg.RenderPoolSize)
	for i := 0; i < cfg.RenderPoolSize; i++ {
		slots <- struct{}{}
	}

	return &Renderer{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		slots:       slots,
		cfg:         cfg,
	}, nil
}

// Acquire renders the URL in a fresh tab and returns the resulting snapshot.
func (r *Renderer) Acquire(ctx context.Context, rawURL string) (*page.Snapshot, error) {
	select {
	case <-r.slots:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { r.slots <- struct{}{} }()

	tabCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, r.cfg.Timeout)
	defer timeoutCancel()

	// Tie the tab to the caller's context so cancellation propagates.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-tabCtx.Done():
		}
	}()

	collector := newResourceCollector()
	chromedp.ListenTarget(tabCtx, collector.handle)

	var html string
	var timing timingRecord

	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
		chromedp.Evaluate(timingScript, &timing, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render failed for %s: %w", rawURL, err)
	}

	snap, err := page.New(rawURL, []byte(html))
	if err != nil {
		return nil, err
	}

	snap.Timing = page.Timing{
		Measured:      true,
		LoadTime:      msToDuration(timing.LoadTime),
		DOMReady:      msToDuration(timing.DOMReady),
		TTFB:          msToDuration(timing.TTFB),
		FirstPaint:    timing.FirstPaint,
		LargestPaint:  timing.LargestPaint,
		LayoutShift:   timing.LayoutShift,
		InputDelay:    timing.InputDelay,
		ResourceCount: collector.count(),
	}
	snap.Resources = collector.resources()
	return snap, nil
}

// Close shuts the shared browser allocator down.
func (r *Renderer) Close() {
	r.allocCancel()
}

func msToDuration(ms float64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// resourceCollector accumulates per-request network data from CDP events.
// Response metadata arrives on EventResponseReceived; the final transfer
// size only on EventLoadingFinished.
type resourceCollector struct {
	mu       sync.Mutex
	pending  map[network.RequestID]*page.Resource
	finished []page.Resource
}

func newResourceCollector() *resourceCollector {
	return &resourceCollector{
		pending: make(map[network.RequestID]*page.Resource),
	}
}

func (c *resourceCollector) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		c.mu.Lock()
		c.pending[e.RequestID] = &page.Resource{
			URL:      e.Response.URL,
			Type:     string(e.Type),
			MimeType: e.Response.MimeType,
			Status:   int(e.Response.Status),
		}
		c.mu.Unlock()
	case *network.EventLoadingFinished:
		c.mu.Lock()
		if res, ok := c.pending[e.RequestID]; ok {
			res.Size = int64(e.EncodedDataLength)
			c.finished = append(c.finished, *res)
			delete(c.pending, e.RequestID)
		}
		c.mu.Unlock()
	case *network.EventLoadingFailed:
		c.mu.Lock()
		delete(c.pending, e.RequestID)
		c.mu.Unlock()
	}
}

func (c *resourceCollector) resources() []page.Resource {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]page.Resource, len(c.finished))
	copy(out, c.finished)
	// Requests still pending when the page settled count too, without a size.
	for _, res := range c.pending {
		out = append(out, *res)
	}
	return out
}

func (c *resourceCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.finished) + len(c.pending)
}
