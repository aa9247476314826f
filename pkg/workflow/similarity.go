package workflow

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultSimilarityThreshold is the ratio above which two questions count as the same question.
const DefaultSimilarityThreshold = 0.7

// Normalize lowercases text, drops everything except letters, digits, underscores and whitespace, then trims.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, lowered)
	return strings.TrimSpace(stripped)
}

// Ratio returns 2*M/T where M is the number of runes in matching diff runs and T is the
// combined rune length of both strings. Two empty strings are identical (ratio 1).
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	matched := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += utf8.RuneCountInString(d.Text)
		}
	}
	return 2 * float64(matched) / float64(total)
}

// IsSimilar reports whether candidate is a near-duplicate of any entry in existing.
// The threshold is exclusive.
func IsSimilar(candidate string, existing []string, threshold float64) bool {
	_, ok := FindSimilar(candidate, existing, threshold)
	return ok
}

// FindSimilar returns the first existing entry whose ratio against candidate exceeds threshold.
func FindSimilar(candidate string, existing []string, threshold float64) (string, bool) {
	if len(existing) == 0 {
		return "", false
	}

	normalized := Normalize(candidate)
	for _, prior := range existing {
		if Ratio(normalized, Normalize(prior)) > threshold {
			return prior, true
		}
	}
	return "", false
}
