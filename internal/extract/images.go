package extract

import (
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/page-audit/auditor/internal/page"
)

// Alt text inside this open interval is considered descriptive.
const (
	goodAltMin = 10
	goodAltMax = 125
)

// Images larger than this are flagged as oversized when a real byte size is
// known from the renderer.
const oversizedImageBytes = 100 * 1024

// ImageRef identifies an image plus whatever size information was observed.
type ImageRef struct {
	URL     string `json:"url"`
	Size    int64  `json:"size"`
	Locator string `json:"locator"`
}

// ImageStats is the image inventory of a page.
type ImageStats struct {
	Total      int `json:"total"`
	WithAlt    int `json:"with_alt"`
	WithoutAlt int `json:"without_alt"`
	EmptyAlt   int `json:"empty_alt"`
	GoodAlt    int `json:"good_alt"`

	Formats map[string]int `json:"formats"`

	// Oversized is populated only when the renderer observed real byte
	// sizes; without a decode path the field stays empty rather than
	// carrying guesses.
	Oversized []ImageRef `json:"oversized"`

	BrokenCandidates []string `json:"broken_candidates"`
}

// Images extracts the image inventory from the snapshot.
func Images(snap *page.Snapshot) ImageStats {
	stats := ImageStats{
		Formats:          make(map[string]int),
		Oversized:        make([]ImageRef, 0),
		BrokenCandidates: make([]string, 0),
	}

	sizes := resourceSizes(snap)

	snap.Doc.Find("img").Each(func(i int, s *goquery.Selection) {
		stats.Total++
		locator := fmt.Sprintf("img:nth-of-type(%d)", i+1)

		src, hasSrc := s.Attr("src")
		src = strings.TrimSpace(src)
		if !hasSrc || src == "" || src == "#" {
			stats.BrokenCandidates = append(stats.BrokenCandidates, locator)
		}

		alt, hasAlt := s.Attr("alt")
		switch {
		case !hasAlt:
			stats.WithoutAlt++
		case strings.TrimSpace(alt) == "":
			stats.EmptyAlt++
			stats.WithAlt++
		default:
			stats.WithAlt++
			if n := len(alt); n > goodAltMin && n < goodAltMax {
				stats.GoodAlt++
			}
		}

		if format := imageFormat(src); format != "" {
			stats.Formats[format]++
		}

		if size, ok := sizes[resolveRef(snap, src)]; ok && size > oversizedImageBytes {
			stats.Oversized = append(stats.Oversized, ImageRef{
				URL:     src,
				Size:    size,
				Locator: locator,
			})
		}
	})

	return stats
}

// resourceSizes indexes renderer-observed image byte sizes by URL. Empty when
// the page was acquired without a renderer.
func resourceSizes(snap *page.Snapshot) map[string]int64 {
	sizes := make(map[string]int64)
	for _, res := range snap.Resources {
		if res.Type == "Image" || strings.HasPrefix(res.MimeType, "image/") {
			sizes[res.URL] = res.Size
		}
	}
	return sizes
}

func resolveRef(snap *page.Snapshot, src string) string {
	if src == "" || snap.URL == nil {
		return src
	}
	ref, err := snap.URL.Parse(src)
	if err != nil {
		return src
	}
	return ref.String()
}

func imageFormat(src string) string {
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "data:image/") {
		rest := strings.TrimPrefix(src, "data:image/")
		if i := strings.IndexAny(rest, ";,"); i > 0 {
			return rest[:i]
		}
		return ""
	}

	// Strip query/fragment before reading the extension.
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(src), "."))
	switch ext {
	case "jpg", "jpeg":
		return "jpeg"
	case "png", "gif", "webp", "svg", "avif", "ico", "bmp":
		return ext
	}
	return ""
}
