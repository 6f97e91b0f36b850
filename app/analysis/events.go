package analysis

import (
	"regexp"
	"strings"
	"time"
)

var numericDateRegex = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?\b`)

// EventDetector classifies news items as attendable occurrences.
type EventDetector struct {
	eventTerms      []string
	aliases         []string
	futureMarkers   *regexp.Regexp
	monthDate       *regexp.Regexp
	location        *regexp.Regexp
	unknownLocation string
}

func NewEventDetector(v Vocabulary) (*EventDetector, error) {
	future, err := wordPattern(v.FutureMarkers)
	if err != nil {
		return nil, err
	}

	monthDate, err := monthPattern(v.MonthNames)
	if err != nil {
		return nil, err
	}

	location, err := locationPattern(v.LocationPrepositions)
	if err != nil {
		return nil, err
	}

	return &EventDetector{
		eventTerms:      lowerAll(v.EventTerms),
		aliases:         lowerAll(v.MinistryAliases),
		futureMarkers:   future,
		monthDate:       monthDate,
		location:        location,
		unknownLocation: v.UnknownLocation,
	}, nil
}

func (d *EventDetector) LooksLikeEvent(title, summary string) bool {
	text := strings.ToLower(title + " " + summary)

	return containsAny(text, d.eventTerms) ||
		d.futureMarkers.MatchString(text) ||
		numericDateRegex.MatchString(text) ||
		d.monthDate.MatchString(text)
}

// GuessLocation returns the capitalized phrase after the first "di"/"ke".
func (d *EventDetector) GuessLocation(text string) string {
	m := d.location.FindStringSubmatch(text)
	if m == nil {
		return d.unknownLocation
	}

	loc := strings.TrimRight(strings.TrimSpace(m[1]), ".,;:")
	if loc == "" {
		return d.unknownLocation
	}
	return loc
}

func (d *EventDetector) HasFutureMarker(text string) bool {
	return d.futureMarkers.MatchString(text)
}

// EventDate moves publishedAt one calendar day forward when the text speaks about the future.
func (d *EventDetector) EventDate(publishedAt time.Time, text string) time.Time {
	if d.HasFutureMarker(text) {
		return publishedAt.AddDate(0, 0, 1)
	}
	return publishedAt
}

func (d *EventDetector) AttendedByMinister(text string) bool {
	return containsAny(strings.ToLower(text), d.aliases)
}

func monthPattern(months []string) (*regexp.Regexp, error) {
	months = lowerAll(months)
	if len(months) == 0 {
		return regexp.Compile(`$^`)
	}

	quoted := make([]string, len(months))
	for i, m := range months {
		quoted[i] = regexp.QuoteMeta(m)
	}

	return regexp.Compile(`(?i)\b\d{1,2}\s+(?:` + strings.Join(quoted, "|") + `)(?:\s+\d{4})?\b`)
}

// locationPattern matches a preposition followed by one to four capitalized words.
func locationPattern(prepositions []string) (*regexp.Regexp, error) {
	var quoted []string
	for _, p := range lowerAll(prepositions) {
		quoted = append(quoted, regexp.QuoteMeta(p), regexp.QuoteMeta(strings.ToUpper(p[:1])+p[1:]))
	}

	return regexp.Compile(`(?:^|\s)(?:` + strings.Join(quoted, "|") + `)\s+(\p{Lu}[\p{L}\-'.]*(?:\s+\p{Lu}[\p{L}\-'.]*){0,3})`)
}
