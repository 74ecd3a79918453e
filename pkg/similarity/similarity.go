// Package similarity extracts plain text from structured content and scores
// how close two texts are using normalized edit distance.
package similarity

import (
	"html"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
)

// MaxComparableRunes caps the text length fed into the O(n*m) edit-distance
// computation. Longer inputs are truncated and the score is computed over
// the prefixes.
const MaxComparableRunes = 10000

// bluemonday policies are safe for concurrent use after construction.
var stripPolicy = bluemonday.StrictPolicy()

// ExtractText walks structured content and concatenates its textual leaf
// values, stripping markup. Content that parses as JSON (block-editor
// documents) is traversed recursively and every string leaf contributes;
// anything else is treated as HTML/plain text. Returns "" when there is no
// extractable text.
func ExtractText(content string) string {
	if content == "" {
		return ""
	}

	var parts []string
	if gjson.Valid(content) {
		collectText(gjson.Parse(content), &parts)
	} else {
		parts = append(parts, stripMarkup(content))
	}

	// Collapse runs of whitespace and trim
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(v gjson.Result, parts *[]string) {
	switch v.Type {
	case gjson.String:
		if s := stripMarkup(v.String()); s != "" {
			*parts = append(*parts, s)
		}
	case gjson.JSON:
		v.ForEach(func(_, child gjson.Result) bool {
			collectText(child, parts)
			return true
		})
	}
}

func stripMarkup(s string) string {
	return html.UnescapeString(stripPolicy.Sanitize(s))
}

// WordCount counts whitespace-separated words in the content's extracted
// text.
func WordCount(content string) int {
	return len(strings.Fields(ExtractText(content)))
}

// Score computes a normalized similarity in [0,1] between two texts:
// 1.0 when both are empty, 0.0 when exactly one is empty, and otherwise
// (maxLen - levenshtein(a, b)) / maxLen over runes. The metric is symmetric
// and reflexive.
func Score(a, b string) float64 {
	a = truncateRunes(a, MaxComparableRunes)
	b = truncateRunes(b, MaxComparableRunes)

	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	lenA := len([]rune(a))
	lenB := len([]rune(b))
	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}

	distance := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-distance) / float64(maxLen)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
