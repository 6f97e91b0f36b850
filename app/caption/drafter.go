// Package caption drafts social-media captions from extracted quotes.
package caption

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lysyi3m/menhub-monitor/app/analysis"
)

var (
	ErrUnknownStyle = errors.New("unknown caption style")
	ErrEmptyText    = errors.New("caption text is empty")
)

type Style string

const (
	StyleX         Style = "x"
	StyleInstagram Style = "instagram"
	StyleFacebook  Style = "facebook"
)

// Limits holds the maximum caption length in runes per style.
var Limits = map[Style]int{
	StyleX:         280,
	StyleInstagram: 2200,
	StyleFacebook:  5000,
}

const (
	baseHashtag    = "#Kemenhub"
	defaultSpeaker = "Menhub"
	minQuoteRunes  = 40
)

type Request struct {
	Style   Style    `json:"style"`
	Text    string   `json:"text"`
	Speaker string   `json:"speaker"`
	Context string   `json:"context"`
	Tags    []string `json:"tags"`
	Link    string   `json:"link"`
}

type Draft struct {
	Style     Style    `json:"style"`
	Caption   string   `json:"caption"`
	Length    int      `json:"length"`
	Hashtags  []string `json:"hashtags"`
	Truncated bool     `json:"truncated"`
}

// Drafter is safe for concurrent use. A cases.Caser is not, so Hashtags builds its own.
type Drafter struct{}

func NewDrafter() *Drafter {
	return &Drafter{}
}

// Run builds a caption that fits the style limit. The context line is dropped
// before the quote gets shorter than minQuoteRunes.
func (d *Drafter) Run(req Request) (Draft, error) {
	style := Style(strings.ToLower(strings.TrimSpace(string(req.Style))))
	if style == "" {
		style = StyleX
	}
	limit, ok := Limits[style]
	if !ok {
		return Draft{}, fmt.Errorf("%q: %w", req.Style, ErrUnknownStyle)
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Draft{}, ErrEmptyText
	}

	speaker := strings.TrimSpace(req.Speaker)
	if speaker == "" {
		speaker = defaultSpeaker
	}

	link := strings.TrimSpace(req.Link)
	if link == "#" {
		link = ""
	}

	p := parts{
		speaker:  speaker,
		context:  strings.TrimSpace(req.Context),
		hashtags: d.Hashtags(req.Tags),
		link:     link,
	}

	draft := Draft{Style: style, Hashtags: p.hashtags}

	caption := p.build(text)
	if analysis.RuneLen(caption) > limit {
		draft.Truncated = true
		caption = p.fit(text, limit)
	}

	draft.Caption = caption
	draft.Length = analysis.RuneLen(caption)

	return draft, nil
}

// Hashtags turns tags into CamelCase hashtags led by the ministry tag.
func (d *Drafter) Hashtags(tags []string) []string {
	title := cases.Title(language.Indonesian)
	out := []string{baseHashtag}
	seen := map[string]bool{strings.ToLower(baseHashtag): true}

	for _, tag := range tags {
		words := strings.FieldsFunc(tag, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(words) == 0 {
			continue
		}

		var b strings.Builder
		b.WriteByte('#')
		for _, w := range words {
			if isUpper(w) {
				b.WriteString(w)
				continue
			}
			b.WriteString(title.String(strings.ToLower(w)))
		}

		hashtag := b.String()
		if key := strings.ToLower(hashtag); !seen[key] {
			seen[key] = true
			out = append(out, hashtag)
		}
	}

	return out
}

type parts struct {
	speaker  string
	context  string
	hashtags []string
	link     string
}

func (p parts) build(text string) string {
	lines := []string{"“" + text + "”", "- " + p.speaker}
	if p.context != "" {
		lines = append(lines, "", p.context)
	}
	if p.link != "" {
		lines = append(lines, p.link)
	}
	lines = append(lines, "", strings.Join(p.hashtags, " "))

	return strings.Join(lines, "\n")
}

func (p parts) fit(text string, limit int) string {
	if room := limit - analysis.RuneLen(p.build("")); room >= minQuoteRunes {
		return p.build(analysis.Truncate(text, room))
	}

	p.context = ""
	if room := limit - analysis.RuneLen(p.build("")); room >= 1 {
		return p.build(analysis.Truncate(text, room))
	}

	return analysis.Truncate(p.build(text), limit)
}

// isUpper keeps acronyms such as KAI or ASDP intact.
func isUpper(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 1
}
