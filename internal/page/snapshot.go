// Package page models an immutable snapshot of a fetched document.
package page

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Timing holds load timing for a snapshot. Measured is false only when no
// timing source observed the fetch at all (a snapshot parsed from raw
// bytes). A plain HTTP fetch sets Measured with wall-clock load and
// first-byte times but leaves the paint fields zero; consumers treat a zero
// paint reading as unavailable, not as a real measurement.
type Timing struct {
	Measured bool `json:"measured"`

	// Navigation timing.
	LoadTime time.Duration `json:"load_time"`
	DOMReady time.Duration `json:"dom_ready"`
	TTFB     time.Duration `json:"ttfb"`

	// Paint and responsiveness proxies, milliseconds unless noted.
	// Best-effort estimates, not authoritative field measurements.
	FirstPaint    float64 `json:"first_paint"`
	LargestPaint  float64 `json:"largest_paint"`
	LayoutShift   float64 `json:"layout_shift"` // unitless CLS score
	InputDelay    float64 `json:"input_delay"`
	ResourceCount int     `json:"resource_count"`
}

// Resource describes a sub-resource the renderer observed loading.
type Resource struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	MimeType string `json:"mime_type"`
	Status   int    `json:"status"`
	Size     int64  `json:"size"`
}

// Snapshot is a parsed, immutable capture of a single document. Extractors
// read it concurrently without synchronization.
type Snapshot struct {
	RawURL    string
	URL       *url.URL
	Doc       *goquery.Document
	HTMLSize  int
	FetchedAt time.Time
	Timing    Timing
	Resources []Resource
}

// New parses htmlBody into a snapshot for rawURL.
func New(rawURL string, htmlBody []byte) (*Snapshot, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &Snapshot{
		RawURL:    rawURL,
		URL:       parsed,
		Doc:       doc,
		HTMLSize:  len(htmlBody),
		FetchedAt: time.Now(),
	}, nil
}

// Title returns the trimmed <title> text.
func (s *Snapshot) Title() string {
	return strings.TrimSpace(s.Doc.Find("title").First().Text())
}

// HeadingCount returns the number of h1-h6 elements.
func (s *Snapshot) HeadingCount() int {
	return s.Doc.Find("h1, h2, h3, h4, h5, h6").Length()
}

// TextLength returns the length of the document body text.
func (s *Snapshot) TextLength() int {
	return len(s.Doc.Find("body").Text())
}

// Fingerprint digests a small set of document facts (title, heading count,
// text length) into a cheap change-detection key. Equal fingerprints mean
// "no meaningful change" for caching purposes; they are not content hashes.
func (s *Snapshot) Fingerprint() string {
	return Fingerprint(s.Title(), s.HeadingCount(), s.TextLength())
}

// Fingerprint computes the digest from raw document facts. Exposed so the
// change monitor can fingerprint observed facts without a full snapshot.
func Fingerprint(title string, headingCount, textLength int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d", title, headingCount, textLength)
	return fmt.Sprintf("%016x", h.Sum64())
}
