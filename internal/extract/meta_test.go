package extract

import (
	"testing"

	"github.com/page-audit/auditor/internal/page"
	"github.com/page-audit/auditor/internal/testutil"
)

func mustSnapshot(t *testing.T, rawURL, html string) *page.Snapshot {
	t.Helper()
	snap, err := page.New(rawURL, []byte(html))
	testutil.MustNotFail(t, err)
	return snap
}

func TestMetaFullHead(t *testing.T) {
	html := testutil.NewHTMLBuilder().
		Lang("en-US").
		Charset("utf-8").
		Title("A Perfectly Reasonable Page Title Here").
		MetaDescription("A description of the page.").
		Keywords("go, auditing").
		Canonical("https://example.com/page").
		Robots("index, follow").
		Viewport("width=device-width, initial-scale=1").
		OpenGraph("og:title", "Share Title").
		OpenGraph("og:image", "https://example.com/hero.png").
		Build()

	m := Meta(mustSnapshot(t, "https://example.com/page", html))

	testutil.Assert(t, m.Title).Named("title").Equals("A Perfectly Reasonable Page Title Here")
	testutil.Assert(t, m.Description).Named("description").Equals("A description of the page.")
	testutil.Assert(t, m.Keywords).Named("keywords").Equals("go, auditing")
	testutil.Assert(t, m.Canonical).Named("canonical").Equals("https://example.com/page")
	testutil.Assert(t, m.Robots).Named("robots").Equals("index, follow")
	testutil.Assert(t, m.Viewport).Named("viewport").Contains("width=device-width")
	testutil.Assert(t, m.Charset).Named("charset").Equals("utf-8")
	testutil.Assert(t, m.Language).Named("language").Equals("en-US")
	testutil.Assert(t, m.OpenGraph).Named("open graph").HasLength(2)
	testutil.Assert(t, m.OpenGraph["title"]).Equals("Share Title")
}

func TestMetaEmptyHeadDefaults(t *testing.T) {
	m := Meta(mustSnapshot(t, "https://example.com/", "<html><head></head><body></body></html>"))

	testutil.Assert(t, m.Title).IsEmpty()
	testutil.Assert(t, m.Description).IsEmpty()
	testutil.Assert(t, m.OpenGraph).Named("open graph").IsNotNil()
	testutil.Assert(t, m.OpenGraph).HasLength(0)
	testutil.Assert(t, m.TwitterCard).Named("twitter card").IsNotNil()
	testutil.Assert(t, m.StructuredData).Named("structured data").IsNotNil()
}

func TestMetaTwitterAndStructuredData(t *testing.T) {
	html := `<html><head>
	<meta name="twitter:card" content="summary">
	<meta name="twitter:site" content="@example">
	<script type="application/ld+json">{"@type":"Article"}</script>
	</head><body></body></html>`

	m := Meta(mustSnapshot(t, "https://example.com/", html))

	testutil.Assert(t, m.TwitterCard).HasLength(2)
	testutil.Assert(t, m.TwitterCard["card"]).Equals("summary")
	testutil.Assert(t, m.StructuredData).HasLength(1)
	testutil.Assert(t, m.StructuredData[0]).Contains("Article")
}

func TestMetaTitleTrimmed(t *testing.T) {
	html := "<html><head><title>\n  Padded Title  \n</title></head><body></body></html>"
	m := Meta(mustSnapshot(t, "https://example.com/", html))
	testutil.Assert(t, m.Title).Equals("Padded Title")
}
