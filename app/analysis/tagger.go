package analysis

import (
	"strings"

	"golang.org/x/text/cases"
)

// Tagger maps keyword membership to a deduplicated set of domain tags.
// A cases.Caser is stateful, so each call folds with its own.
type Tagger struct {
	rules []TagRule
}

func NewTagger(rules []TagRule) *Tagger {
	caser := cases.Fold()

	folded := make([]TagRule, 0, len(rules))
	for _, r := range rules {
		keyword := strings.TrimSpace(r.Keyword)
		tag := strings.TrimSpace(r.Tag)
		if keyword == "" || tag == "" {
			continue
		}
		folded = append(folded, TagRule{Keyword: caser.String(keyword), Tag: tag})
	}

	return &Tagger{rules: folded}
}

// Run returns matched tags in table order. No match is an empty, non-nil set.
func (t *Tagger) Run(text string) []string {
	tags := []string{}
	if text == "" {
		return tags
	}

	folded := cases.Fold().String(text)
	seen := make(map[string]bool)

	for _, rule := range t.rules {
		if seen[rule.Tag] {
			continue
		}
		if strings.Contains(folded, rule.Keyword) {
			seen[rule.Tag] = true
			tags = append(tags, rule.Tag)
		}
	}

	return tags
}
