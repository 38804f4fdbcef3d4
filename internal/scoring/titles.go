package scoring

import "strings"

// issueTitles maps rule IDs to display titles. Lookup is deterministic; an
// unknown (custom) rule falls back to a humanized form of its ID.
var issueTitles = map[string]string{
	"missing_title":             "Missing title tag",
	"title_length":              "Title length out of range",
	"missing_meta_description":  "Missing meta description",
	"meta_description_length":   "Meta description length out of range",
	"missing_canonical":         "Missing canonical link",
	"robots_noindex":            "Page blocked by noindex",
	"missing_viewport":          "Missing viewport meta tag",
	"missing_h1":                "Missing H1 heading",
	"multiple_h1":               "Multiple H1 headings",
	"heading_hierarchy":         "Broken heading hierarchy",
	"missing_lang":              "Missing language declaration",
	"missing_open_graph":        "Missing Open Graph metadata",
	"not_https":                 "Page not served over HTTPS",
	"thin_content":              "Thin content",
	"low_readability":           "Low readability",
	"images_alt":                "Images missing alt text",
	"oversized_images":          "Oversized images",
	"keyword_stuffing":          "Keyword stuffing",
	"text_html_ratio":           "Low text to HTML ratio",
	"no_internal_links":         "No internal links",
	"excessive_external_links":  "Too many external links",
	"broken_link_candidates":    "Broken link candidates",
	"page_size":                 "Page too large",
	"load_time":                 "Slow page load",
	"dom_ready_time":            "Slow DOM readiness",
	"resource_count":            "Too many resources",
	"largest_contentful_paint":  "Slow largest contentful paint",
	"cumulative_layout_shift":   "Excessive layout shift",
}

func issueTitle(ruleID string) string {
	if title, ok := issueTitles[ruleID]; ok {
		return title
	}
	// Humanize custom rule IDs: "my_custom_rule" -> "My custom rule".
	words := strings.ReplaceAll(ruleID, "_", " ")
	if words == "" {
		return ruleID
	}
	return strings.ToUpper(words[:1]) + words[1:]
}
