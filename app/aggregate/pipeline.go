// Package aggregate turns raw feed items into the news, events and quotes
// collections. A run is a pure function of the batches, the options and the
// reference time: the same inputs in any order produce the same result.
package aggregate

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/lysyi3m/menhub-monitor/app/analysis"
)

type Pipeline struct {
	analyzer *analysis.Analyzer
}

func NewPipeline(a *analysis.Analyzer) *Pipeline {
	return &Pipeline{analyzer: a}
}

func (p *Pipeline) Run(batches []SourceBatch, opts Options, now time.Time) (*Result, error) {
	if p == nil || p.analyzer == nil {
		return nil, ErrNotConfigured
	}

	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	cutoff := now.AddDate(0, 0, -opts.WindowDays)

	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = lower(p.analyzer.Vocabulary.MinistryAliases)
	}

	result := EmptyResult(opts.WindowDays, now)
	sources := make(map[string]bool)

	for _, batch := range batches {
		if batch.Err != nil {
			result.Meta.FailedSources++
			slog.Warn("Source skipped", "source", batch.Name, "error", batch.Err)
			continue
		}
		if batch.Name != "" {
			sources[batch.Name] = true
		}

		for _, item := range batch.Items {
			if item.Source == "" {
				item.Source = batch.Name
			}
			p.process(item, opts, keywords, now, cutoff, result)
		}
	}

	result.News = dedupe(result.News, newsKey, func(r NewsRecord) string { return r.ID })
	result.Events = dedupe(result.Events, eventKey, func(r EventRecord) string { return r.ID })
	result.Quotes = dedupe(result.Quotes, quoteKey, func(r QuoteRecord) string { return r.ID })

	// Items sharing link, source and time share an ID even when their titles differ.
	result.News = dedupe(result.News, func(r NewsRecord) string { return r.ID }, newsKey)
	result.Events = dedupe(result.Events, func(r EventRecord) string { return r.ID }, eventKey)
	result.Quotes = dedupe(result.Quotes, func(r QuoteRecord) string { return r.ID }, quoteKey)

	sort.Slice(result.News, func(i, j int) bool {
		return newer(result.News[i].PublishedAt, result.News[j].PublishedAt, result.News[i].ID, result.News[j].ID)
	})
	sort.Slice(result.Events, func(i, j int) bool {
		return newer(result.Events[i].Date, result.Events[j].Date, result.Events[i].ID, result.Events[j].ID)
	})
	sort.Slice(result.Quotes, func(i, j int) bool {
		return newer(result.Quotes[i].Date, result.Quotes[j].Date, result.Quotes[i].ID, result.Quotes[j].ID)
	})

	result.News = capped(result.News, opts.Limit)
	result.Events = capped(result.Events, opts.Limit)
	result.Quotes = capped(result.Quotes, opts.Limit)

	for name := range sources {
		result.Meta.Sources = append(result.Meta.Sources, name)
	}
	sort.Strings(result.Meta.Sources)

	result.Meta.Counts = Counts{
		News:   len(result.News),
		Events: len(result.Events),
		Quotes: len(result.Quotes),
	}

	return result, nil
}

// process runs one item through normalize, tag, event inference and quote
// selection, appending whatever records it yields.
func (p *Pipeline) process(item RawItem, opts Options, keywords []string, now, cutoff time.Time, result *Result) {
	a := p.analyzer

	title := a.Normalizer.Run(item.Title)
	body := a.Normalizer.Run(firstNonEmpty(item.BodyFields))
	text := strings.TrimSpace(title + " " + body)

	if !containsAny(strings.ToLower(text), keywords) {
		return
	}

	publishedAt := ParseTimestamp(item.DateFields, now)
	if publishedAt.Before(cutoff) {
		return
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = PlaceholderLink
	}

	summary := body
	if summary == "" {
		summary = title
	}
	summary = analysis.Truncate(summary, SummaryMaxLength)

	id := NewsID(link, item.Source, publishedAt)
	tags := a.Tagger.Run(text)

	if opts.wants(ViewNews) {
		result.News = append(result.News, NewsRecord{
			ID:          id,
			Title:       title,
			Source:      item.Source,
			PublishedAt: publishedAt,
			Link:        link,
			Summary:     summary,
			Entities:    tags,
		})
	}

	if opts.wants(ViewEvents) && a.Events.LooksLikeEvent(title, body) {
		date := a.Events.EventDate(publishedAt, text)
		if !date.Before(cutoff) {
			result.Events = append(result.Events, EventRecord{
				ID:                 id + ":event",
				Title:              title,
				Date:               date,
				Location:           a.Events.GuessLocation(text),
				AttendedByMinister: a.Events.AttendedByMinister(text),
				Source:             item.Source,
				Tags:               tags,
				Summary:            summary,
				Link:               link,
			})
		}
	}

	if opts.wants(ViewQuotes) {
		if winner, ok := a.Quotes.Best(text); ok {
			context := title
			if context == "" {
				context = item.Source
			}

			result.Quotes = append(result.Quotes, QuoteRecord{
				ID:      id + ":quote",
				Text:    winner.Text,
				Speaker: a.Vocabulary.SpeakerLabel,
				Date:    publishedAt,
				Context: context,
				Link:    link,
				Tags:    tags,
			})
		}
	}
}

// NewsID is stable for a given link, source and publication time.
func NewsID(link, source string, publishedAt time.Time) string {
	name := link + "|" + source + "|" + publishedAt.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// ParseTimestamp parses the first non-empty field permissively. Missing or
// unparseable values fall back to now.
func ParseTimestamp(fields []string, now time.Time) time.Time {
	raw := firstNonEmpty(fields)
	if raw == "" {
		return now.UTC()
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		slog.Debug("Unparseable timestamp", "value", raw, "error", err)
		return now.UTC()
	}
	return t.UTC()
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func lower(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
