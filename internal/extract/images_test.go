package extract

import (
	"testing"

	"github.com/page-audit/auditor/internal/page"
	"github.com/page-audit/auditor/internal/testutil"
)

func TestImagesAltAccounting(t *testing.T) {
	html := testutil.NewHTMLBuilder().
		Img("/a.jpg", "A descriptive alt text").
		Img("/b.png", "").
		ImgNoAlt("/c.webp").
		Build()

	img := Images(mustSnapshot(t, "https://example.com/", html))

	testutil.Assert(t, img.Total).Named("total").Equals(3)
	testutil.Assert(t, img.WithAlt).Named("with alt").Equals(2)
	testutil.Assert(t, img.WithoutAlt).Named("without alt").Equals(1)
	testutil.Assert(t, img.EmptyAlt).Named("empty alt").Equals(1)
	testutil.Assert(t, img.GoodAlt).Named("good alt").Equals(1)
}

func TestImagesGoodAltWindow(t *testing.T) {
	html := testutil.NewHTMLBuilder().
		Img("/short.jpg", "tiny").                        // too short
		Img("/good.jpg", "A hero image of the product."). // inside window
		Build()

	img := Images(mustSnapshot(t, "https://example.com/", html))
	testutil.Assert(t, img.GoodAlt).Equals(1)
}

func TestImagesFormats(t *testing.T) {
	html := testutil.NewHTMLBuilder().
		Img("/a.jpg", "x").
		Img("/b.JPEG?v=2", "x").
		Img("/c.webp", "x").
		Img("data:image/png;base64,AAAA", "x").
		Img("/noext", "x").
		Build()

	img := Images(mustSnapshot(t, "https://example.com/", html))

	testutil.Assert(t, img.Formats["jpeg"]).Named("jpeg").Equals(2)
	testutil.Assert(t, img.Formats["webp"]).Named("webp").Equals(1)
	testutil.Assert(t, img.Formats["png"]).Named("png").Equals(1)
}

func TestImagesBrokenCandidates(t *testing.T) {
	html := `<html><body>
		<img alt="no src at all">
		<img src="" alt="empty src">
		<img src="#" alt="hash src">
		<img src="/real.png" alt="fine">
	</body></html>`

	img := Images(mustSnapshot(t, "https://example.com/", html))
	testutil.Assert(t, img.BrokenCandidates).HasLength(3)
}

func TestImagesOversizedFromResources(t *testing.T) {
	html := testutil.NewHTMLBuilder().
		Img("/hero.jpg", "A big hero image for the page").
		Img("/icon.png", "A small icon").
		Build()

	snap := mustSnapshot(t, "https://example.com/", html)
	snap.Resources = []page.Resource{
		{URL: "https://example.com/hero.jpg", Type: "Image", Size: 500 * 1024},
		{URL: "https://example.com/icon.png", Type: "Image", Size: 2 * 1024},
	}

	img := Images(snap)

	testutil.Assert(t, img.Oversized).HasLength(1)
	testutil.Assert(t, img.Oversized[0].URL).Equals("/hero.jpg")
	testutil.Assert(t, img.Oversized[0].Locator).Equals("img:nth-of-type(1)")
}

func TestImagesNoResourceDataNoOversized(t *testing.T) {
	html := testutil.NewHTMLBuilder().Img("/huge.jpg", "maybe huge, who knows").Build()

	img := Images(mustSnapshot(t, "https://example.com/", html))
	testutil.Assert(t, img.Oversized).IsEmpty()
}
