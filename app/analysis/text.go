package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Ellipsis marks text that was cut short.
const Ellipsis = "…"

// Truncate caps s at max runes. Longer input keeps max-1 runes plus Ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	return string(runes[:max-1]) + Ellipsis
}

// RuneLen counts characters, not bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	out := nonEmpty(values)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

// wordPattern builds a case-insensitive alternation that only matches whole words.
// Longer terms are tried first so phrases win over their prefixes.
func wordPattern(terms []string) (*regexp.Regexp, error) {
	terms = lowerAll(terms)
	if len(terms) == 0 {
		return regexp.Compile(`$^`)
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i]) > len(terms[j])
	})

	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}

	return regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(quoted, "|") + `)(?:[^\p{L}\p{N}]|$)`)
}

func containsAny(lowerText string, lowerTerms []string) bool {
	for _, term := range lowerTerms {
		if strings.Contains(lowerText, term) {
			return true
		}
	}
	return false
}
