// Package extract implements the per-concern metric extractors. Each
// extractor is a pure function over an immutable page snapshot: no shared
// state, no errors, absent elements yield zero values.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/page-audit/auditor/internal/page"
)

// MetaTags holds the document head facts relevant to SEO.
type MetaTags struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Keywords       string            `json:"keywords"`
	Canonical      string            `json:"canonical"`
	Robots         string            `json:"robots"`
	Viewport       string            `json:"viewport"`
	Charset        string            `json:"charset"`
	Language       string            `json:"language"`
	OpenGraph      map[string]string `json:"open_graph"`
	TwitterCard    map[string]string `json:"twitter_card"`
	StructuredData []string          `json:"structured_data"`
}

// Meta extracts head metadata from the snapshot.
func Meta(snap *page.Snapshot) MetaTags {
	m := MetaTags{
		OpenGraph:      make(map[string]string),
		TwitterCard:    make(map[string]string),
		StructuredData: make([]string, 0),
	}

	doc := snap.Doc

	m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	m.Description, _ = doc.Find("meta[name='description']").First().Attr("content")
	m.Keywords, _ = doc.Find("meta[name='keywords']").First().Attr("content")
	m.Robots, _ = doc.Find("meta[name='robots']").First().Attr("content")
	m.Viewport, _ = doc.Find("meta[name='viewport']").First().Attr("content")
	m.Canonical, _ = doc.Find("link[rel='canonical']").First().Attr("href")

	if charset, ok := doc.Find("meta[charset]").First().Attr("charset"); ok {
		m.Charset = charset
	}
	if lang, ok := doc.Find("html").First().Attr("lang"); ok {
		m.Language = strings.TrimSpace(lang)
	}

	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if !strings.HasPrefix(prop, "og:") {
			return
		}
		if content, ok := s.Attr("content"); ok {
			m.OpenGraph[strings.TrimPrefix(prop, "og:")] = content
		}
	})

	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if !strings.HasPrefix(name, "twitter:") {
			return
		}
		if content, ok := s.Attr("content"); ok {
			m.TwitterCard[strings.TrimPrefix(name, "twitter:")] = content
		}
	})

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		if payload := strings.TrimSpace(s.Text()); payload != "" {
			m.StructuredData = append(m.StructuredData, payload)
		}
	})

	return m
}
