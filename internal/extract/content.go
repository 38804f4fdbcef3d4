package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/page-audit/auditor/internal/page"
)

// ContentStats holds the textual content metrics of a page.
type ContentStats struct {
	WordCount        int                `json:"word_count"`
	SentenceCount    int                `json:"sentence_count"`
	ReadabilityScore float64            `json:"readability_score"`
	KeywordDensity   map[string]float64 `json:"keyword_density"`
	ParagraphCount   int                `json:"paragraph_count"`
	ListCount        int                `json:"list_count"`
	TextHTMLRatio    float64            `json:"text_html_ratio"` // percent
	Language         string             `json:"language"`
	InternalLinks    int                `json:"internal_links"`
	ExternalLinks    int                `json:"external_links"`
}

const (
	// Tokens shorter than this never count as keywords.
	minKeywordLength = 2

	// Keyword map keeps the top N tokens by density.
	maxKeywords = 20
)

var (
	cjkRunes    = regexp.MustCompile(`[\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}]`)
	sentenceEnd = regexp.MustCompile(`[.!?\x{2026}\x{3002}\x{FF01}\x{FF1F}]+`)
)

// Content extracts textual content statistics. Script, style and noscript
// subtrees are stripped before any measurement.
func Content(snap *page.Snapshot) ContentStats {
	stats := ContentStats{
		KeywordDensity: make(map[string]float64),
	}

	body := snap.Doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	text := body.Text()

	stats.WordCount = countWords(text)
	stats.SentenceCount = countSentences(text)
	stats.ReadabilityScore = readability(text, stats.WordCount, stats.SentenceCount)
	stats.KeywordDensity = keywordDensity(text)

	stats.ParagraphCount = snap.Doc.Find("p").Length()
	stats.ListCount = snap.Doc.Find("ul, ol").Length()

	if snap.HTMLSize > 0 {
		ratio := float64(len(strings.TrimSpace(text))) / float64(snap.HTMLSize) * 100
		stats.TextHTMLRatio = math.Round(ratio*100) / 100
	}

	if lang, ok := snap.Doc.Find("html").First().Attr("lang"); ok {
		stats.Language = normalizeLang(lang)
	}

	snap.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		switch classifyHref(strings.TrimSpace(href), snap.URL) {
		case classInternal:
			stats.InternalLinks++
		case classExternal:
			stats.ExternalLinks++
		}
	})

	return stats
}

// countWords applies the mixed-script contract: one CJK character counts as
// one word-equivalent and one Latin token counts as one word.
func countWords(text string) int {
	cjk := len(cjkRunes.FindAllString(text, -1))

	latin := cjkRunes.ReplaceAllString(text, " ")
	words := 0
	for _, token := range strings.Fields(latin) {
		if hasLetterOrDigit(token) {
			words++
		}
	}

	return cjk + words
}

// countSentences counts terminal punctuation runs, never returning less
// than 1 so readability division stays defined.
func countSentences(text string) int {
	n := len(sentenceEnd.FindAllString(text, -1))
	if n < 1 {
		return 1
	}
	return n
}

// readability computes a Flesch-Reading-Ease style score:
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words), clamped to
// [0,100]. Syllables are estimated from vowel groups, which is good enough
// for a heuristic signal and deterministic across runs.
func readability(text string, words, sentences int) float64 {
	if words == 0 {
		return 0
	}

	syllables := 0
	latin := cjkRunes.ReplaceAllString(text, " ")
	for _, token := range strings.Fields(latin) {
		if hasLetterOrDigit(token) {
			syllables += estimateSyllables(token)
		}
	}

	score := 206.835 - 1.015*(float64(words)/float64(sentences)) - 84.6*(float64(syllables)/float64(words))
	return clamp(score, 0, 100)
}

// estimateSyllables counts vowel groups in a token, with the common silent-e
// adjustment. Minimum one syllable per word.
func estimateSyllables(word string) int {
	word = strings.ToLower(word)

	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

// keywordDensity tokenizes the text (case-folded, stop words removed, minimum
// token length 2), keeps tokens occurring at least twice, and reports density
// as a percentage rounded to two decimals for the top tokens by density.
func keywordDensity(text string) map[string]float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return map[string]float64{}
	}

	freq := make(map[string]int)
	for _, t := range tokens {
		freq[t]++
	}

	type kw struct {
		token string
		count int
	}
	candidates := make([]kw, 0, len(freq))
	for token, count := range freq {
		if count >= 2 {
			candidates = append(candidates, kw{token, count})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].token < candidates[j].token
	})
	if len(candidates) > maxKeywords {
		candidates = candidates[:maxKeywords]
	}

	total := float64(len(tokens))
	density := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		density[c.token] = math.Round(float64(c.count)/total*10000) / 100
	}
	return density
}

// tokenize lowercases, strips punctuation, drops stop words and short or
// purely numeric tokens. CJK characters tokenize individually, matching the
// word-count contract.
func tokenize(text string) []string {
	var tokens []string

	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, f := range fields {
		if cjkRunes.MatchString(f) {
			for _, r := range f {
				if cjkRunes.MatchString(string(r)) {
					tokens = append(tokens, string(r))
				}
			}
			continue
		}
		if len(f) < minKeywordLength || isNumeric(f) || stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}

	return tokens
}

func normalizeLang(lang string) string {
	lang = strings.TrimSpace(strings.ToLower(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stopWords filters high-frequency function words out of keyword candidates.
// English plus a small multilingual set; kept short on purpose.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "his": true, "him": true, "how": true, "its": true,
	"may": true, "new": true, "now": true, "old": true, "see": true,
	"two": true, "who": true, "did": true, "get": true, "use": true,
	"with": true, "this": true, "that": true, "from": true, "they": true,
	"will": true, "have": true, "been": true, "were": true, "what": true,
	"when": true, "your": true, "more": true, "some": true, "them": true,
	"than": true, "then": true, "into": true, "only": true, "over": true,
	"also": true, "just": true, "about": true, "which": true, "their": true,
	"there": true, "would": true, "could": true, "should": true, "other": true,
	"these": true, "those": true, "where": true, "being": true, "after": true,
	"before": true, "between": true, "under": true, "while": true,
	"und": true, "der": true, "die": true, "das": true, "les": true,
	"des": true, "una": true, "por": true, "para": true, "los": true,
	"van": true, "het": true, "een": true, "och": true, "med": true,
}
