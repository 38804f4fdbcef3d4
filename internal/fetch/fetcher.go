// Package fetch acquires page snapshots, either over plain HTTP or through
// headless Chromium when real navigation timing is wanted.
package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"github.com/page-audit/auditor/internal/config"
	"github.com/page-audit/auditor/internal/page"
)

// Acquirer produces a snapshot of the current state of a URL.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL string) (*page.Snapshot, error)
}

// Fetcher acquires snapshots over plain HTTP. It measures wall-clock load
// and first-byte time but has no paint or layout data; those fields stay
// zero and downstream consumers see them as unavailable.
type Fetcher struct {
	client      *http.Client
	cfg         *config.Config
	maxBodySize int64
}

// NewFetcher creates an HTTP fetcher with a pooled transport.
func NewFetcher(cfg *config.Config) *Fetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cfg:         cfg,
		maxBodySize: cfg.MaxBodySize,
	}
}

// Acquire fetches the URL and parses it into a snapshot.
func (f *Fetcher) Acquire(ctx context.Context, rawURL string) (*page.Snapshot, error) {
	start := time.Now()
	var ttfb time.Duration

	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			ttfb = time.Since(start)
		},
	}
	ctx = httptrace.WithClientTrace(ctx, trace)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch returned status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	snap, err := page.New(rawURL, body)
	if err != nil {
		return nil, err
	}

	snap.Timing = page.Timing{
		Measured: true,
		LoadTime: time.Since(start),
		TTFB:     ttfb,
	}
	return snap, nil
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(io.LimitReader(reader, f.maxBodySize))
}
