package testutil

import (
	"fmt"
	"strings"
)

// PageLink is a link added to a built test page.
type PageLink struct {
	Href string
	Text string
	Rel  string
}

// PageImage is an image added to a built test page. HasAlt distinguishes a
// missing alt attribute from an empty one.
type PageImage struct {
	Src    string
	Alt    string
	HasAlt bool
}

// HTMLBuilder builds test HTML documents.
type HTMLBuilder struct {
	lang       string
	title      string
	metaDesc   string
	keywords   string
	canonical  string
	robots     string
	viewport   string
	charset    string
	openGraph  map[string]string
	headings   []string
	paragraphs []string
	links      []PageLink
	images     []PageImage
	bodyExtra  string
}

// NewHTMLBuilder creates an empty builder.
func NewHTMLBuilder() *HTMLBuilder {
	return &HTMLBuilder{openGraph: make(map[string]string)}
}

// Lang sets the html lang attribute.
func (b *HTMLBuilder) Lang(lang string) *HTMLBuilder {
	b.lang = lang
	return b
}

// Title sets the page title.
func (b *HTMLBuilder) Title(title string) *HTMLBuilder {
	b.title = title
	return b
}

// MetaDescription sets the meta description.
func (b *HTMLBuilder) MetaDescription(desc string) *HTMLBuilder {
	b.metaDesc = desc
	return b
}

// Keywords sets the meta keywords.
func (b *HTMLBuilder) Keywords(kw string) *HTMLBuilder {
	b.keywords = kw
	return b
}

// Canonical sets the canonical link.
func (b *HTMLBuilder) Canonical(url string) *HTMLBuilder {
	b.canonical = url
	return b
}

// Robots sets the robots meta tag.
func (b *HTMLBuilder) Robots(directives string) *HTMLBuilder {
	b.robots = directives
	return b
}

// Viewport sets the viewport meta tag.
func (b *HTMLBuilder) Viewport(content string) *HTMLBuilder {
	b.viewport = content
	return b
}

// Charset sets the charset meta tag.
func (b *HTMLBuilder) Charset(cs string) *HTMLBuilder {
	b.charset = cs
	return b
}

// OpenGraph adds an og: meta property.
func (b *HTMLBuilder) OpenGraph(property, content string) *HTMLBuilder {
	b.openGraph[property] = content
	return b
}

// Heading adds a heading of the given level.
func (b *HTMLBuilder) Heading(level int, text string) *HTMLBuilder {
	b.headings = append(b.headings, fmt.Sprintf("  <h%d>%s</h%d>", level, text, level))
	return b
}

// H1 adds an h1 heading.
func (b *HTMLBuilder) H1(text string) *HTMLBuilder {
	return b.Heading(1, text)
}

// H2 adds an h2 heading.
func (b *HTMLBuilder) H2(text string) *HTMLBuilder {
	return b.Heading(2, text)
}

// Paragraph adds a body paragraph.
func (b *HTMLBuilder) Paragraph(text string) *HTMLBuilder {
	b.paragraphs = append(b.paragraphs, text)
	return b
}

// Paragraphs adds n copies of a paragraph, for reaching word-count
// thresholds.
func (b *HTMLBuilder) Paragraphs(n int, text string) *HTMLBuilder {
	for i := 0; i < n; i++ {
		b.Paragraph(text)
	}
	return b
}

// Link adds a link.
func (b *HTMLBuilder) Link(href, text string) *HTMLBuilder {
	b.links = append(b.links, PageLink{Href: href, Text: text})
	return b
}

// LinkWithRel adds a link with a rel attribute.
func (b *HTMLBuilder) LinkWithRel(href, text, rel string) *HTMLBuilder {
	b.links = append(b.links, PageLink{Href: href, Text: text, Rel: rel})
	return b
}

// Img adds an image with an alt attribute.
func (b *HTMLBuilder) Img(src, alt string) *HTMLBuilder {
	b.images = append(b.images, PageImage{Src: src, Alt: alt, HasAlt: true})
	return b
}

// ImgNoAlt adds an image without an alt attribute.
func (b *HTMLBuilder) ImgNoAlt(src string) *HTMLBuilder {
	b.images = append(b.images, PageImage{Src: src})
	return b
}

// Body appends raw body markup.
func (b *HTMLBuilder) Body(content string) *HTMLBuilder {
	b.bodyExtra += content
	return b
}

// Build renders the document.
func (b *HTMLBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	if b.lang != "" {
		fmt.Fprintf(&sb, "<html lang=%q>\n", b.lang)
	} else {
		sb.WriteString("<html>\n")
	}
	sb.WriteString("<head>\n")

	if b.charset != "" {
		fmt.Fprintf(&sb, "  <meta charset=%q>\n", b.charset)
	}
	if b.title != "" {
		fmt.Fprintf(&sb, "  <title>%s</title>\n", b.title)
	}
	if b.metaDesc != "" {
		fmt.Fprintf(&sb, "  <meta name=\"description\" content=%q>\n", b.metaDesc)
	}
	if b.keywords != "" {
		fmt.Fprintf(&sb, "  <meta name=\"keywords\" content=%q>\n", b.keywords)
	}
	if b.robots != "" {
		fmt.Fprintf(&sb, "  <meta name=\"robots\" content=%q>\n", b.robots)
	}
	if b.viewport != "" {
		fmt.Fprintf(&sb, "  <meta name=\"viewport\" content=%q>\n", b.viewport)
	}
	if b.canonical != "" {
		fmt.Fprintf(&sb, "  <link rel=\"canonical\" href=%q>\n", b.canonical)
	}
	for property, content := range b.openGraph {
		fmt.Fprintf(&sb, "  <meta property=%q content=%q>\n", property, content)
	}

	sb.WriteString("</head>\n<body>\n")

	for _, h := range b.headings {
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	for _, p := range b.paragraphs {
		fmt.Fprintf(&sb, "  <p>%s</p>\n", p)
	}
	for _, link := range b.links {
		if link.Rel != "" {
			fmt.Fprintf(&sb, "  <a href=%q rel=%q>%s</a>\n", link.Href, link.Rel, link.Text)
		} else {
			fmt.Fprintf(&sb, "  <a href=%q>%s</a>\n", link.Href, link.Text)
		}
	}
	for _, img := range b.images {
		if img.HasAlt {
			fmt.Fprintf(&sb, "  <img src=%q alt=%q>\n", img.Src, img.Alt)
		} else {
			fmt.Fprintf(&sb, "  <img src=%q>\n", img.Src)
		}
	}
	if b.bodyExtra != "" {
		sb.WriteString(b.bodyExtra)
		sb.WriteString("\n")
	}

	sb.WriteString("</body>\n</html>")
	return sb.String()
}
