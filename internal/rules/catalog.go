package rules

import (
	"fmt"
	"strings"

	"github.com/page-audit/auditor/internal/analysis"
)

// Rule IDs for the built-in catalog.
const (
	RuleMissingTitle       = "missing_title"
	RuleTitleLength        = "title_length"
	RuleMissingMetaDesc    = "missing_meta_description"
	RuleMetaDescLength     = "meta_description_length"
	RuleMissingCanonical   = "missing_canonical"
	RuleRobotsNoindex      = "robots_noindex"
	RuleMissingViewport    = "missing_viewport"
	RuleMissingH1          = "missing_h1"
	RuleMultipleH1         = "multiple_h1"
	RuleHeadingHierarchy   = "heading_hierarchy"
	RuleMissingLang        = "missing_lang"
	RuleMissingOpenGraph   = "missing_open_graph"
	RuleNotHTTPS           = "not_https"
	RuleThinContent        = "thin_content"
	RuleLowReadability     = "low_readability"
	RuleImagesAlt          = "images_alt"
	RuleOversizedImages    = "oversized_images"
	RuleKeywordStuffing    = "keyword_stuffing"
	RuleTextHTMLRatio      = "text_html_ratio"
	RuleNoInternalLinks    = "no_internal_links"
	RuleExcessiveExternal  = "excessive_external_links"
	RuleBrokenLinks        = "broken_link_candidates"
	RulePageSize           = "page_size"
	RuleLoadTime           = "load_time"
	RuleDOMReady           = "dom_ready_time"
	RuleResourceCount      = "resource_count"
	RuleLargestPaint       = "largest_contentful_paint"
	RuleLayoutShift        = "cumulative_layout_shift"
)

// Limits collects the thresholds the built-in catalog checks against.
var Limits = struct {
	TitleMinLength      int
	TitleMaxLength      int
	MetaDescMinLength   int
	MetaDescMaxLength   int
	ThinContentWords    int
	MinReadability      float64
	MaxMissingAltRatio  float64
	MaxKeywordDensity   float64
	MinTextHTMLRatio    float64
	MaxExternalLinks    int
	MaxPageSizeBytes    int
	MaxLoadTimeMs       int64
	MaxDOMReadyMs       int64
	MaxResourceCount    int
	MaxLargestPaintMs   float64
	MaxLayoutShift      float64
}{
	TitleMinLength:     30,
	TitleMaxLength:     60,
	MetaDescMinLength:  120,
	MetaDescMaxLength:  160,
	ThinContentWords:   300,
	MinReadability:     30,
	MaxMissingAltRatio: 0.10,
	MaxKeywordDensity:  5.0,
	MinTextHTMLRatio:   10,
	MaxExternalLinks:   50,
	MaxPageSizeBytes:   2 * 1024 * 1024,
	MaxLoadTimeMs:      3000,
	MaxDOMReadyMs:      1500,
	MaxResourceCount:   80,
	MaxLargestPaintMs:  2500,
	MaxLayoutShift:     0.1,
}

// builtinRules returns the fixed catalog. Relative severities follow the
// usual SEO impact ordering: indexability blockers are critical, primary
// on-page signals high, quality signals medium, hygiene low.
func builtinRules() []Rule {
	rules := make([]Rule, 0, 32)
	rules = append(rules, technicalRules()...)
	rules = append(rules, contentRules()...)
	rules = append(rules, performanceRules()...)
	return rules
}

func technicalRules() []Rule {
	return []Rule{
		{
			ID: RuleMissingTitle, Category: CategoryTechnical, Weight: 3, Severity: SeverityCritical,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if strings.TrimSpace(a.Meta.Title) != "" {
					return pass("Page has a title tag")
				}
				r := fail(0, "Page has no title tag")
				r.Recommendation = "Add a descriptive <title> tag between 30 and 60 characters"
				r.Current = "no title"
				r.Expected = "a title of 30-60 characters"
				r.Impact = "Search engines rely on the title as the primary ranking and display signal"
				r.Locator = "head > title"
				return r
			},
		},
		{
			ID: RuleTitleLength, Category: CategoryTechnical, Weight: 2, Severity: SeverityHigh,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				n := len(strings.TrimSpace(a.Meta.Title))
				if n >= Limits.TitleMinLength && n <= Limits.TitleMaxLength {
					return pass(fmt.Sprintf("Title length is %d characters", n))
				}
				score := 40.0
				if n == 0 {
					score = 0
				}
				r := fail(score, fmt.Sprintf("Title length %d is outside %d-%d characters",
					n, Limits.TitleMinLength, Limits.TitleMaxLength))
				r.Recommendation = "Rewrite the title to fit the 30-60 character window"
				r.Current = fmt.Sprintf("current title length: %d characters", n)
				r.Expected = fmt.Sprintf("%d-%d characters", Limits.TitleMinLength, Limits.TitleMaxLength)
				r.Impact = "Truncated or vague titles reduce click-through from result pages"
				r.Locator = "head > title"
				return r
			},
		},
		{
			ID: RuleMissingMetaDesc, Category: CategoryTechnical, Weight: 2, Severity: SeverityHigh,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if strings.TrimSpace(a.Meta.Description) != "" {
					return pass("Page has a meta description")
				}
				r := fail(0, "Page has no meta description")
				r.Recommendation = "Add a meta description of 120-160 characters summarizing the page"
				r.Current = "no meta description"
				r.Expected = "a description of 120-160 characters"
				r.Impact = "Search engines substitute arbitrary page text in the result snippet"
				r.Locator = "meta[name=description]"
				return r
			},
		},
		{
			ID: RuleMetaDescLength, Category: CategoryTechnical, Weight: 1.5, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				n := len(strings.TrimSpace(a.Meta.Description))
				if n == 0 {
					// Absence is RuleMissingMetaDesc's finding; this rule
					// only judges a description that exists.
					return passScore(50, "No meta description to measure")
				}
				if n >= Limits.MetaDescMinLength && n <= Limits.MetaDescMaxLength {
					return pass(fmt.Sprintf("Meta description length is %d characters", n))
				}
				r := fail(40, fmt.Sprintf("Meta description length %d is outside %d-%d characters",
					n, Limits.MetaDescMinLength, Limits.MetaDescMaxLength))
				r.Recommendation = "Adjust the meta description to 120-160 characters"
				r.Current = fmt.Sprintf("current description length: %d characters", n)
				r.Expected = fmt.Sprintf("%d-%d characters", Limits.MetaDescMinLength, Limits.MetaDescMaxLength)
				r.Impact = "Descriptions outside the window are truncated or padded in snippets"
				r.Locator = "meta[name=description]"
				return r
			},
		},
		{
			ID: RuleMissingCanonical, Category: CategoryTechnical, Weight: 1, Severity: SeverityLow,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if strings.TrimSpace(a.Meta.Canonical) != "" {
					return pass("Page declares a canonical URL")
				}
				r := fail(50, "Page has no canonical link")
				r.Recommendation = "Add <link rel=\"canonical\"> pointing at the preferred URL"
				r.Current = "no canonical link"
				r.Expected = "a self-referencing canonical URL"
				r.Impact = "Parameter and mirror URLs can split ranking signals across duplicates"
				r.Locator = "link[rel=canonical]"
				return r
			},
		},
		{
			ID: RuleRobotsNoindex, Category: CategoryTechnical, Weight: 3, Severity: SeverityCritical,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				robots := strings.ToLower(a.Meta.Robots)
				if !strings.Contains(robots, "noindex") {
					return pass("Page is indexable")
				}
				r := fail(0, "Robots meta tag contains noindex")
				r.Recommendation = "Remove noindex unless this page is intentionally hidden from search"
				r.Current = fmt.Sprintf("robots: %q", a.Meta.Robots)
				r.Expected = "no noindex directive"
				r.Impact = "The page is excluded from search indexes entirely"
				r.Locator = "meta[name=robots]"
				return r
			},
		},
		{
			ID: RuleMissingViewport, Category: CategoryTechnical, Weight: 1.5, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if strings.Contains(strings.ToLower(a.Meta.Viewport), "width=") {
					return pass("Page declares a viewport")
				}
				r := fail(30, "Page has no usable viewport meta tag")
				r.Recommendation = "Add <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">"
				r.Current = fmt.Sprintf("viewport: %q", a.Meta.Viewport)
				r.Expected = "a viewport declaring width=device-width"
				r.Impact = "Mobile rendering falls back to desktop layout, hurting mobile rankings"
				r.Locator = "meta[name=viewport]"
				return r
			},
		},
		{
			ID: RuleMissingH1, Category: CategoryTechnical, Weight: 3, Severity: SeverityCritical,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if len(a.Headings.H1) > 0 {
					return pass("Page has an H1 heading")
				}
				r := fail(0, "Page has no H1 heading")
				r.Recommendation = "Add exactly one H1 stating the page topic"
				r.Current = "0 H1 headings"
				r.Expected = "exactly 1 H1 heading"
				r.Impact = "The main topic signal of the page is missing"
				r.Locator = "h1"
				return r
			},
		},
		{
			ID: RuleMultipleH1, Category: CategoryTechnical, Weight: 1, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				n := len(a.Headings.H1)
				if n <= 1 {
					return pass("At most one H1 heading")
				}
				r := fail(40, fmt.Sprintf("Page has %d H1 headings", n))
				r.Recommendation = "Keep one H1 and demote the others to H2"
				r.Current = fmt.Sprintf("%d H1 headings", n)
				r.Expected = "exactly 1 H1 heading"
				r.Impact = "Multiple H1s dilute the topical focus of the page"
				r.Locator = "h1"
				return r
			},
		},
		{
			ID: RuleHeadingHierarchy, Category: CategoryTechnical, Weight: 1, Severity: SeverityLow,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				skip, locator := firstHierarchySkip(a)
				if skip == "" {
					return pass("Heading levels descend without gaps")
				}
				r := fail(50, "Heading hierarchy skips levels: "+skip)
				r.Recommendation = "Nest headings without skipping levels (H1 then H2 then H3)"
				r.Current = skip
				r.Expected = "each heading at most one level below its predecessor"
				r.Impact = "Assistive tech and crawlers misread the document outline"
				r.Locator = locator
				return r
			},
		},
		{
			ID: RuleMissingLang, Category: CategoryTechnical, Weight: 1, Severity: SeverityLow,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if a.Meta.Language != "" {
					return pass(fmt.Sprintf("Document language is %q", a.Meta.Language))
				}
				r := fail(50, "Document declares no language")
				r.Recommendation = "Add a lang attribute to the <html> element"
				r.Current = "no lang attribute"
				r.Expected = "an html lang attribute"
				r.Impact = "Language targeting and screen-reader pronunciation are guesswork"
				r.Locator = "html"
				return r
			},
		},
		{
			ID: RuleMissingOpenGraph, Category: CategoryTechnical, Weight: 0.5, Severity: SeverityLow,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if len(a.Meta.OpenGraph) > 0 {
					return pass("Page carries Open Graph metadata")
				}
				r := fail(50, "Page has no Open Graph metadata")
				r.Recommendation = "Add og:title, og:description and og:image for link sharing"
				r.Current = "0 og: properties"
				r.Expected = "at least og:title and og:description"
				r.Impact = "Shared links render without preview title or image"
				r.Locator = "meta[property^=og]"
				return r
			},
		},
		{
			ID: RuleNotHTTPS, Category: CategoryTechnical, Weight: 2, Severity: SeverityHigh,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if strings.HasPrefix(strings.ToLower(a.URL), "https://") {
					return pass("Page is served over HTTPS")
				}
				r := fail(0, "Page is not served over HTTPS")
				r.Recommendation = "Serve the page over HTTPS and redirect the HTTP variant"
				r.Current = a.URL
				r.Expected = "an https:// URL"
				r.Impact = "Browsers mark the page insecure and search engines prefer HTTPS"
				return r
			},
		},
	}
}

func contentRules() []Rule {
	return []Rule{
		{
			ID: RuleThinContent, Category: CategoryContent, Weight: 2.5, Severity: SeverityHigh,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				wc := a.Content.WordCount
				if wc >= Limits.ThinContentWords {
					return pass(fmt.Sprintf("Page has %d words", wc))
				}
				score := float64(wc) / float64(Limits.ThinContentWords) * 60
				r := fail(score, fmt.Sprintf("Thin content: only %d words", wc))
				r.Recommendation = fmt.Sprintf("Expand the page to at least %d words of substantive text", Limits.ThinContentWords)
				r.Current = fmt.Sprintf("%d words", wc)
				r.Expected = fmt.Sprintf("at least %d words", Limits.ThinContentWords)
				r.Impact = "Thin pages rarely rank for competitive queries"
				return r
			},
		},
		{
			ID: RuleLowReadability, Category: CategoryContent, Weight: 1.5, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if a.Content.WordCount == 0 {
					return passScore(50, "No text to measure readability")
				}
				score := a.Content.ReadabilityScore
				if score >= Limits.MinReadability {
					return pass(fmt.Sprintf("Readability score is %.0f", score))
				}
				r := fail(score, fmt.Sprintf("Readability score %.0f is below %.0f", score, Limits.MinReadability))
				r.Recommendation = "Shorten sentences and prefer simpler wording"
				r.Current = fmt.Sprintf("readability score: %.0f", score)
				r.Expected = fmt.Sprintf("a score of at least %.0f", Limits.MinReadability)
				r.Impact = "Hard-to-read copy increases bounce rate"
				return r
			},
		},
		{
			ID: RuleImagesAlt, Category: CategoryContent, Weight: 2, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				total := a.Images.Total
				if total == 0 {
					return pass("No images on the page")
				}
				missing := a.Images.WithoutAlt + a.Images.EmptyAlt
				ratio := float64(missing) / float64(total)
				if ratio <= Limits.MaxMissingAltRatio {
					return pass(fmt.Sprintf("%d of %d images lack alt text", missing, total))
				}
				r := fail((1-ratio)*80, fmt.Sprintf("%d of %d images lack alt text", missing, total))
				r.Recommendation = "Add descriptive alt text to every content image"
				r.Current = fmt.Sprintf("%d of %d images missing alt text", missing, total)
				r.Expected = fmt.Sprintf("at most %.0f%% of images without alt text", Limits.MaxMissingAltRatio*100)
				r.Impact = "Images are invisible to image search and screen readers"
				r.Locator = "img:not([alt])"
				return r
			},
		},
		{
			ID: RuleOversizedImages, Category: CategoryContent, Weight: 1, Severity: SeverityLow,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				n := len(a.Images.Oversized)
				if n == 0 {
					return pass("No oversized images observed")
				}
				r := fail(40, fmt.Sprintf("%d images exceed the size budget", n))
				r.Recommendation = "Compress or resize large images and serve modern formats"
				r.Current = fmt.Sprintf("%d oversized images", n)
				r.Expected = "images under 100 KB"
				r.Impact = "Heavy images slow rendering, especially on mobile"
				r.Locator = a.Images.Oversized[0].Locator
				return r
			},
		},
		{
			ID: RuleKeywordStuffing, Category: CategoryContent, Weight: 1, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				top, density := maxDensity(a.Content.KeywordDensity)
				if density <= Limits.MaxKeywordDensity {
					return pass("Keyword density is within bounds")
				}
				r := fail(30, fmt.Sprintf("Keyword %q has density %.2f%%", top, density))
				r.Recommendation = "Vary the wording; keep any single keyword below 5% density"
				r.Current = fmt.Sprintf("%q at %.2f%%", top, density)
				r.Expected = fmt.Sprintf("at most %.0f%% per keyword", Limits.MaxKeywordDensity)
				r.Impact = "Stuffed copy reads as spam to readers and ranking systems"
				return r
			},
		},
		{
			ID: RuleTextHTMLRatio, Category: CategoryContent, Weight: 1, Severity: SeverityLow,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				ratio := a.Content.TextHTMLRatio
				if ratio >= Limits.MinTextHTMLRatio {
					return pass(fmt.Sprintf("Text/HTML ratio is %.1f%%", ratio))
				}
				r := fail(ratio/Limits.MinTextHTMLRatio*70, fmt.Sprintf("Text/HTML ratio %.1f%% is below %.0f%%", ratio, Limits.MinTextHTMLRatio))
				r.Recommendation = "Reduce markup overhead or add substantive text"
				r.Current = fmt.Sprintf("text/HTML ratio: %.1f%%", ratio)
				r.Expected = fmt.Sprintf("at least %.0f%%", Limits.MinTextHTMLRatio)
				r.Impact = "Markup-heavy pages waste crawl budget on boilerplate"
				return r
			},
		},
		{
			ID: RuleNoInternalLinks, Category: CategoryContent, Weight: 1.5, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				n := a.Links.Internal
				if n > 0 {
					return pass(fmt.Sprintf("Page has %d internal links", n))
				}
				r := fail(20, "Page has no internal links")
				r.Recommendation = "Link to related pages on the same site"
				r.Current = "0 internal links"
				r.Expected = "at least 1 internal link"
				r.Impact = "Orphaned pages pass no link equity and are harder to crawl"
				return r
			},
		},
		{
			ID: RuleExcessiveExternal, Category: CategoryContent, Weight: 1, Severity: SeverityLow,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				n := a.Links.External
				if n <= Limits.MaxExternalLinks {
					return pass(fmt.Sprintf("Page has %d external links", n))
				}
				r := fail(40, fmt.Sprintf("Page has %d external links", n))
				r.Recommendation = "Trim external links to the genuinely relevant ones"
				r.Current = fmt.Sprintf("%d external links", n)
				r.Expected = fmt.Sprintf("at most %d external links", Limits.MaxExternalLinks)
				r.Impact = "Excessive outbound linking dilutes the page's own authority"
				return r
			},
		},
		{
			ID: RuleBrokenLinks, Category: CategoryContent, Weight: 1.5, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				n := len(a.Links.BrokenCandidates)
				if n == 0 {
					return pass("No broken link candidates")
				}
				r := fail(40, fmt.Sprintf("%d links look broken", n))
				r.Recommendation = "Replace placeholder hrefs and localhost links with real targets"
				r.Current = fmt.Sprintf("%d broken candidates, e.g. %q", n, a.Links.BrokenCandidates[0])
				r.Expected = "0 placeholder or dead-end links"
				r.Impact = "Dead ends waste crawl budget and frustrate visitors"
				return r
			},
		},
	}
}

func performanceRules() []Rule {
	return []Rule{
		{
			ID: RulePageSize, Category: CategoryPerformance, Weight: 2, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				size := a.Performance.PageSize
				if size <= Limits.MaxPageSizeBytes {
					return pass(fmt.Sprintf("Page size is %d KB", size/1024))
				}
				r := fail(30, fmt.Sprintf("Page size %d KB exceeds %d KB", size/1024, Limits.MaxPageSizeBytes/1024))
				r.Recommendation = "Minify markup, defer scripts and compress responses"
				r.Current = fmt.Sprintf("%d KB", size/1024)
				r.Expected = fmt.Sprintf("at most %d KB", Limits.MaxPageSizeBytes/1024)
				r.Impact = "Large documents delay first render on slow connections"
				return r
			},
		},
		{
			ID: RuleLoadTime, Category: CategoryPerformance, Weight: 2, Severity: SeverityHigh,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if !a.Performance.Measured {
					return pass("Load time not measured")
				}
				ms := a.Performance.LoadTimeMs
				if ms <= Limits.MaxLoadTimeMs {
					return pass(fmt.Sprintf("Load time is %d ms", ms))
				}
				r := fail(20, fmt.Sprintf("Load time %d ms exceeds %d ms", ms, Limits.MaxLoadTimeMs))
				r.Recommendation = "Cut blocking resources and improve server response time"
				r.Current = fmt.Sprintf("%d ms", ms)
				r.Expected = fmt.Sprintf("at most %d ms", Limits.MaxLoadTimeMs)
				r.Impact = "Slow loads measurably increase abandonment"
				return r
			},
		},
		{
			ID: RuleDOMReady, Category: CategoryPerformance, Weight: 1, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if !a.Performance.Measured {
					return pass("DOM-ready time not measured")
				}
				ms := a.Performance.DOMReadyMs
				if ms <= Limits.MaxDOMReadyMs {
					return pass(fmt.Sprintf("DOM ready in %d ms", ms))
				}
				r := fail(30, fmt.Sprintf("DOM ready took %d ms, budget is %d ms", ms, Limits.MaxDOMReadyMs))
				r.Recommendation = "Defer non-critical scripts so parsing finishes sooner"
				r.Current = fmt.Sprintf("%d ms", ms)
				r.Expected = fmt.Sprintf("at most %d ms", Limits.MaxDOMReadyMs)
				r.Impact = "Late DOM readiness delays all interactivity"
				return r
			},
		},
		{
			ID: RuleResourceCount, Category: CategoryPerformance, Weight: 1, Severity: SeverityLow,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				if !a.Performance.Measured {
					return pass("Resource count not measured")
				}
				n := a.Performance.ResourceCount
				if n <= Limits.MaxResourceCount {
					return pass(fmt.Sprintf("Page loads %d resources", n))
				}
				r := fail(40, fmt.Sprintf("Page loads %d resources, budget is %d", n, Limits.MaxResourceCount))
				r.Recommendation = "Bundle assets and drop unused third-party scripts"
				r.Current = fmt.Sprintf("%d resources", n)
				r.Expected = fmt.Sprintf("at most %d resources", Limits.MaxResourceCount)
				r.Impact = "Every request adds connection and scheduling overhead"
				return r
			},
		},
		{
			ID: RuleLargestPaint, Category: CategoryPerformance, Weight: 1.5, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				lcp := a.Performance.LargestPaintMs
				if !a.Performance.Measured || lcp == 0 {
					return pass("Largest paint not measured")
				}
				if lcp <= Limits.MaxLargestPaintMs {
					return pass(fmt.Sprintf("Largest paint at %.0f ms", lcp))
				}
				r := fail(30, fmt.Sprintf("Largest paint %.0f ms exceeds %.0f ms", lcp, Limits.MaxLargestPaintMs))
				r.Recommendation = "Preload the hero image and inline critical CSS"
				r.Current = fmt.Sprintf("%.0f ms", lcp)
				r.Expected = fmt.Sprintf("at most %.0f ms", Limits.MaxLargestPaintMs)
				r.Impact = "Late main-content paint is a Core Web Vitals failure"
				return r
			},
		},
		{
			ID: RuleLayoutShift, Category: CategoryPerformance, Weight: 1, Severity: SeverityMedium,
			Check: func(a *analysis.PageAnalysis) RuleResult {
				cls := a.Performance.LayoutShift
				if !a.Performance.Measured || cls == 0 {
					return pass("Layout shift not measured")
				}
				if cls <= Limits.MaxLayoutShift {
					return pass(fmt.Sprintf("Layout shift is %.3f", cls))
				}
				r := fail(30, fmt.Sprintf("Layout shift %.3f exceeds %.2f", cls, Limits.MaxLayoutShift))
				r.Recommendation = "Reserve dimensions for images, ads and embeds"
				r.Current = fmt.Sprintf("%.3f", cls)
				r.Expected = fmt.Sprintf("at most %.2f", Limits.MaxLayoutShift)
				r.Impact = "Shifting layout causes misclicks and a Core Web Vitals failure"
				return r
			},
		},
	}
}

// firstHierarchySkip finds the first heading that jumps more than one level
// below its predecessor, e.g. an H4 directly after an H2.
func firstHierarchySkip(a *analysis.PageAnalysis) (string, string) {
	prev := 0
	for _, h := range a.Headings.Hierarchy {
		if prev > 0 && h.Level > prev+1 {
			return fmt.Sprintf("H%d follows H%d", h.Level, prev), h.Locator
		}
		prev = h.Level
	}
	return "", ""
}

func maxDensity(density map[string]float64) (string, float64) {
	top := ""
	max := 0.0
	for token, d := range density {
		if d > max || (d == max && token < top) {
			top = token
			max = d
		}
	}
	return top, max
}
