package fetch

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/page-audit/auditor/internal/config"
	"github.com/page-audit/auditor/internal/testutil"
)

const fetchedHTML = `<!DOCTYPE html>
<html lang="en">
<head><title>Fetched Page</title></head>
<body><h1>Hello</h1><p>Fetched over plain HTTP.</p></body>
</html>`

func newFetcherServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherAcquire(t *testing.T) {
	var gotUA string
	srv := newFetcherServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(fetchedHTML))
	})

	cfg := config.DefaultConfig()
	f := NewFetcher(cfg)

	snap, err := f.Acquire(context.Background(), srv.URL+"/page")
	testutil.MustNotFail(t, err)

	testutil.Assert(t, snap.Title()).Equals("Fetched Page")
	testutil.Assert(t, snap.HTMLSize).Equals(len(fetchedHTML))
	testutil.Assert(t, gotUA).Equals(cfg.UserAgent)

	// Plain HTTP measures wall-clock timing only; paint metrics stay zero.
	testutil.Assert(t, snap.Timing.Measured).IsTrue()
	testutil.Assert(t, int64(snap.Timing.LoadTime)).Named("load time").IsGreaterThan(0)
	testutil.Assert(t, int64(snap.Timing.TTFB)).Named("ttfb").IsGreaterThan(0)
	testutil.Assert(t, snap.Timing.LargestPaint).Equals(0.0)
}

func TestFetcherDecodesGzip(t *testing.T) {
	srv := newFetcherServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			t.Error("fetcher did not advertise gzip")
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/html")
		gz := gzip.NewWriter(w)
		gz.Write([]byte(fetchedHTML))
		gz.Close()
	})

	f := NewFetcher(config.DefaultConfig())
	snap, err := f.Acquire(context.Background(), srv.URL)
	testutil.MustNotFail(t, err)
	testutil.Assert(t, snap.Title()).Equals("Fetched Page")
}

func TestFetcherRejectsErrorStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		srv := newFetcherServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		f := NewFetcher(config.DefaultConfig())
		_, err := f.Acquire(context.Background(), srv.URL)
		testutil.AssertError(t, err).HasError().ContainsMessage("status")
	}
}

func TestFetcherCapsBodySize(t *testing.T) {
	srv := newFetcherServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>"))
		w.Write([]byte(strings.Repeat("x", 1<<20)))
		w.Write([]byte("</body></html>"))
	})

	cfg := config.DefaultConfig()
	cfg.MaxBodySize = 4096
	f := NewFetcher(cfg)

	snap, err := f.Acquire(context.Background(), srv.URL)
	testutil.MustNotFail(t, err)
	testutil.Assert(t, snap.HTMLSize).Equals(4096)
}

func TestFetcherHonorsContext(t *testing.T) {
	srv := newFetcherServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	f := NewFetcher(config.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Acquire(ctx, srv.URL)
	testutil.AssertError(t, err).HasError()
}

func TestNewAcquirerHTTPMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AcquireMode = config.AcquireHTTP

	acq, err := NewAcquirer(cfg, nil)
	testutil.MustNotFail(t, err)
	if _, ok := acq.(*Fetcher); !ok {
		t.Fatalf("http mode built %T, want *Fetcher", acq)
	}
}

func TestNewAcquirerRejectsUnknownMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AcquireMode = "teleport"

	_, err := NewAcquirer(cfg, nil)
	testutil.AssertError(t, err).HasError().ContainsMessage("teleport")
}
