package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segmenter splits normalized text into sentences. A boundary is a terminal
// mark followed by whitespace and then an uppercase letter or an opening quote.
// Abbreviations such as "Dr. Budi" over-split; that is accepted.
type Segmenter struct{}

func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

func (s *Segmenter) Run(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0

	for i, r := range text {
		if !isTerminal(r) {
			continue
		}

		end := i + utf8.RuneLen(r)
		next := end
		for next < len(text) {
			ws, size := utf8.DecodeRuneInString(text[next:])
			if !unicode.IsSpace(ws) {
				break
			}
			next += size
		}

		if next == end || next >= len(text) {
			continue
		}

		lead, _ := utf8.DecodeRuneInString(text[next:])
		if !unicode.IsUpper(lead) && !isOpeningQuote(lead) {
			continue
		}

		if sentence := strings.TrimSpace(text[start:end]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = next
	}

	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}

	if len(sentences) == 0 {
		return []string{text}
	}

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isOpeningQuote(r rune) bool {
	switch r {
	case '"', '“', '„', '«', '\'', '‘':
		return true
	}
	return false
}
