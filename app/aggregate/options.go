package aggregate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOptions = errors.New("invalid aggregation options")
	ErrNotConfigured  = errors.New("aggregation pipeline is not configured")
)

type View string

const (
	ViewNews   View = "news"
	ViewEvents View = "events"
	ViewQuotes View = "quotes"
)

var AllViews = []View{ViewNews, ViewEvents, ViewQuotes}

const (
	DefaultWindowDays = 7
	MaxWindowDays     = 365
	DefaultLimit      = 120
	MaxLimit          = 300
	SummaryMaxLength  = 300
	PlaceholderLink   = "#"
)

// Options are the caller overrides for one run. Zero values select the defaults;
// an empty Keywords list gates on the ministry aliases.
type Options struct {
	Views      []View
	WindowDays int
	Keywords   []string
	Limit      int
}

// ParseViews reads a comma separated list such as "news,quotes".
func ParseViews(s string) ([]View, error) {
	var views []View
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}

		v := View(part)
		if !v.valid() {
			return nil, fmt.Errorf("unknown view %q: %w", part, ErrInvalidOptions)
		}
		views = append(views, v)
	}
	return views, nil
}

func (v View) valid() bool {
	return v == ViewNews || v == ViewEvents || v == ViewQuotes
}

// normalized validates o and fills in defaults.
func (o Options) normalized() (Options, error) {
	if o.WindowDays < 0 || o.WindowDays > MaxWindowDays {
		return o, fmt.Errorf("window of %d days is out of range: %w", o.WindowDays, ErrInvalidOptions)
	}
	if o.Limit < 0 {
		return o, fmt.Errorf("negative limit %d: %w", o.Limit, ErrInvalidOptions)
	}
	for _, v := range o.Views {
		if !v.valid() {
			return o, fmt.Errorf("unknown view %q: %w", v, ErrInvalidOptions)
		}
	}

	if o.WindowDays == 0 {
		o.WindowDays = DefaultWindowDays
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if len(o.Views) == 0 {
		o.Views = AllViews
	}

	var keywords []string
	for _, k := range o.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	o.Keywords = keywords

	return o, nil
}

func (o Options) wants(v View) bool {
	for _, selected := range o.Views {
		if selected == v {
			return true
		}
	}
	return false
}
