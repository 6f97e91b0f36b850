package feed

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
)

// Filterer applies per-feed include/exclude rules before items reach aggregation.
// Matching is case-folded substring membership.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run marks items rejected by the feed's rules. Exclusions are checked before inclusions.
func (f *Filterer) Run(items []Item, feedConfig *Config) []Item {
	if len(feedConfig.Filters) == 0 {
		return items
	}

	fold := cases.Fold()
	out := make([]Item, len(items))

	for i, item := range items {
		for _, rule := range feedConfig.Filters {
			haystack := fold.String(fieldText(item, rule.Field))

			if term, hit := firstMatch(haystack, rule.Excludes, fold); hit {
				item.IsFiltered = true
				item.FilterReason = fmt.Sprintf("%s contains excluded term %q", rule.Field, term)
				break
			}
			if len(rule.Includes) > 0 {
				if _, hit := firstMatch(haystack, rule.Includes, fold); !hit {
					item.IsFiltered = true
					item.FilterReason = fmt.Sprintf("%s matches none of %v", rule.Field, rule.Includes)
					break
				}
			}
		}

		if item.IsFiltered {
			slog.Debug("Item filtered", "feed", feedConfig.Name, "title", item.Title, "reason", item.FilterReason)
		}
		out[i] = item
	}

	return out
}

// Accepted returns the items that passed filtering.
func Accepted(items []Item) []Item {
	accepted := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.IsFiltered {
			accepted = append(accepted, item)
		}
	}
	return accepted
}

func firstMatch(haystack string, terms []string, fold cases.Caser) (string, bool) {
	for _, term := range terms {
		if term != "" && strings.Contains(haystack, fold.String(term)) {
			return term, true
		}
	}
	return "", false
}

// fieldText resolves a filter field name; "body" spans title, content and description.
func fieldText(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "body":
		return strings.Join([]string{item.Title, item.Content, item.Description}, " ")
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	}
	return ""
}
