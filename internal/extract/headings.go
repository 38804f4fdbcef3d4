package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/page-audit/auditor/internal/page"
)

// Heading is one entry of the flattened heading hierarchy, in document order.
// Locator is a CSS-selector-like reference for external highlighting; the
// engine never interprets it.
type Heading struct {
	Level   int    `json:"level"`
	Text    string `json:"text"`
	Locator string `json:"locator"`
}

// HeadingStats holds per-level heading texts plus the flattened hierarchy.
// Invariant: len(Hierarchy) equals the sum of the per-level counts.
type HeadingStats struct {
	H1 []string `json:"h1"`
	H2 []string `json:"h2"`
	H3 []string `json:"h3"`
	H4 []string `json:"h4"`
	H5 []string `json:"h5"`
	H6 []string `json:"h6"`

	Hierarchy []Heading `json:"hierarchy"`
}

// Count returns the total number of headings.
func (h HeadingStats) Count() int {
	return len(h.Hierarchy)
}

// ByLevel returns the heading texts for a level in 1..6, nil otherwise.
func (h HeadingStats) ByLevel(level int) []string {
	switch level {
	case 1:
		return h.H1
	case 2:
		return h.H2
	case 3:
		return h.H3
	case 4:
		return h.H4
	case 5:
		return h.H5
	case 6:
		return h.H6
	}
	return nil
}

// Headings extracts the heading structure in document order.
func Headings(snap *page.Snapshot) HeadingStats {
	stats := HeadingStats{
		H1:        make([]string, 0),
		H2:        make([]string, 0),
		H3:        make([]string, 0),
		H4:        make([]string, 0),
		H5:        make([]string, 0),
		H6:        make([]string, 0),
		Hierarchy: make([]Heading, 0),
	}

	perLevel := make(map[int]int, 6)

	snap.Doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := headingLevel(goquery.NodeName(s))
		if level == 0 {
			return
		}

		text := strings.TrimSpace(s.Text())
		perLevel[level]++

		switch level {
		case 1:
			stats.H1 = append(stats.H1, text)
		case 2:
			stats.H2 = append(stats.H2, text)
		case 3:
			stats.H3 = append(stats.H3, text)
		case 4:
			stats.H4 = append(stats.H4, text)
		case 5:
			stats.H5 = append(stats.H5, text)
		case 6:
			stats.H6 = append(stats.H6, text)
		}

		stats.Hierarchy = append(stats.Hierarchy, Heading{
			Level:   level,
			Text:    text,
			Locator: fmt.Sprintf("h%d:nth-of-type(%d)", level, perLevel[level]),
		})
	})

	return stats
}

func headingLevel(nodeName string) int {
	if len(nodeName) != 2 || nodeName[0] != 'h' {
		return 0
	}
	level := int(nodeName[1] - '0')
	if level < 1 || level > 6 {
		return 0
	}
	return level
}
