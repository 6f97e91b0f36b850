package aggregate

import "time"

// RawItem is one feed entry as handed over by the feed collaborator.
// BodyFields and DateFields are listed in priority order; the first non-empty value wins.
type RawItem struct {
	Source     string
	Title      string
	Link       string
	BodyFields []string
	DateFields []string
}

// SourceBatch is the outcome of polling one feed. A batch with Err set contributes no items.
type SourceBatch struct {
	Name  string
	Items []RawItem
	Err   error
}

type NewsRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	Link        string    `json:"link"`
	Summary     string    `json:"summary"`
	Entities    []string  `json:"entities"`
}

type EventRecord struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Date               time.Time `json:"date"`
	Location           string    `json:"location"`
	AttendedByMinister bool      `json:"attendedByMinister"`
	Source             string    `json:"source"`
	Tags               []string  `json:"tags"`
	Summary            string    `json:"summary"`
	Link               string    `json:"link"`
}

type QuoteRecord struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Speaker string    `json:"speaker"`
	Date    time.Time `json:"date"`
	Context string    `json:"context"`
	Link    string    `json:"link"`
	Tags    []string  `json:"tags"`
}

type Counts struct {
	News   int `json:"news"`
	Events int `json:"events"`
	Quotes int `json:"quotes"`
}

type Meta struct {
	WindowDays    int       `json:"windowDays"`
	GeneratedAt   time.Time `json:"generatedAt"`
	Sources       []string  `json:"sources"`
	Counts        Counts    `json:"counts"`
	FailedSources int       `json:"failedSources"`
}

// Result holds the three collections. Unselected collections are empty, never nil.
type Result struct {
	News   []NewsRecord  `json:"news"`
	Events []EventRecord `json:"events"`
	Quotes []QuoteRecord `json:"quotes"`
	Meta   Meta          `json:"meta"`
}

// EmptyResult is the well-formed response handed out when aggregation fails.
func EmptyResult(windowDays int, now time.Time) *Result {
	return &Result{
		News:   []NewsRecord{},
		Events: []EventRecord{},
		Quotes: []QuoteRecord{},
		Meta: Meta{
			WindowDays:  windowDays,
			GeneratedAt: now.UTC(),
			Sources:     []string{},
		},
	}
}
