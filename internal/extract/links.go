package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/page-audit/auditor/internal/page"
)

// linkClass partitions a link: a link is exactly one of internal, external,
// or other (anchor/mailto/tel/unparseable).
type linkClass int

const (
	classOther linkClass = iota
	classInternal
	classExternal
	classAnchor
	classMailto
	classTel
)

// LinkStats is the link inventory of a page.
type LinkStats struct {
	Total    int `json:"total"`
	Internal int `json:"internal"`
	External int `json:"external"`
	Anchor   int `json:"anchor"`
	Mailto   int `json:"mailto"`
	Tel      int `json:"tel"`
	Nofollow int `json:"nofollow"`

	InternalURLs []string `json:"internal_urls"`
	ExternalURLs []string `json:"external_urls"`

	// BrokenCandidates is a narrow syntactic check: placeholder hrefs and
	// cross-origin localhost targets. False negatives are acceptable.
	BrokenCandidates []string `json:"broken_candidates"`
}

// Links extracts and classifies every anchor element on the page.
func Links(snap *page.Snapshot) LinkStats {
	stats := LinkStats{
		InternalURLs:     make([]string, 0),
		ExternalURLs:     make([]string, 0),
		BrokenCandidates: make([]string, 0),
	}

	snap.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		stats.Total++

		if rel, ok := s.Attr("rel"); ok && containsToken(rel, "nofollow") {
			stats.Nofollow++
		}

		switch classifyHref(href, snap.URL) {
		case classInternal:
			stats.Internal++
			stats.InternalURLs = append(stats.InternalURLs, href)
		case classExternal:
			stats.External++
			stats.ExternalURLs = append(stats.ExternalURLs, href)
		case classAnchor:
			stats.Anchor++
		case classMailto:
			stats.Mailto++
		case classTel:
			stats.Tel++
		}

		if isBrokenCandidate(href, snap.URL) {
			stats.BrokenCandidates = append(stats.BrokenCandidates, href)
		}
	})

	return stats
}

// classifyHref decides the partition for one href. Internal covers relative
// URLs, pure fragments resolve to anchor, and absolute URLs on the page's own
// hostname count as internal.
func classifyHref(href string, base *url.URL) linkClass {
	switch {
	case strings.HasPrefix(href, "#"):
		return classAnchor
	case strings.HasPrefix(href, "mailto:"):
		return classMailto
	case strings.HasPrefix(href, "tel:"):
		return classTel
	}

	u, err := url.Parse(href)
	if err != nil {
		return classOther
	}

	if u.Scheme == "" && u.Host == "" {
		// Relative path on the current origin.
		return classInternal
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "" {
		return classOther
	}

	host := u.Hostname()
	if host == "" || (base != nil && strings.EqualFold(host, base.Hostname())) {
		return classInternal
	}
	return classExternal
}

// isBrokenCandidate flags hrefs that are almost certainly dead ends:
// bare "#", javascript:void(0), and cross-origin localhost targets.
func isBrokenCandidate(href string, base *url.URL) bool {
	if href == "#" {
		return true
	}
	normalized := strings.ReplaceAll(strings.ToLower(href), " ", "")
	if strings.HasPrefix(normalized, "javascript:void(0)") {
		return true
	}

	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return false
	}
	// A localhost link is only suspect when the audited page itself is not
	// served from localhost.
	return base == nil || (base.Hostname() != "localhost" && base.Hostname() != "127.0.0.1")
}

func containsToken(list, token string) bool {
	for _, t := range strings.Fields(list) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}
