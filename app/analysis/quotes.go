package analysis

import (
	"regexp"
	"sort"
	"strings"
)

const (
	MinQuoteLength    = 8
	MaxQuoteLength    = 400
	MinSentenceLength = 30
	MaxQuoteOutput    = 280
	quoteKeep         = 277
)

var (
	straightQuoteRegex = regexp.MustCompile(`"([^"]+)"`)
	curlyQuoteRegex    = regexp.MustCompile(`“([^”]+)”`)
)

// QuoteExtractor finds quotation candidates in three tiers: enclosed
// fragments, attributed sentences, and a single ministry-mention fallback.
type QuoteExtractor struct {
	segmenter   *Segmenter
	scorer      *Scorer
	aliases     []string
	speechVerbs *regexp.Regexp
}

func NewQuoteExtractor(v Vocabulary, segmenter *Segmenter, scorer *Scorer) (*QuoteExtractor, error) {
	verbs, err := wordPattern(v.SpeechVerbs)
	if err != nil {
		return nil, err
	}

	return &QuoteExtractor{
		segmenter:   segmenter,
		scorer:      scorer,
		aliases:     lowerAll(v.MinistryAliases),
		speechVerbs: verbs,
	}, nil
}

// ExtractQuoted returns enclosed fragments in order of appearance, duplicates included.
func (q *QuoteExtractor) ExtractQuoted(text string) []string {
	type match struct {
		start int
		text  string
	}

	var matches []match
	for _, re := range []*regexp.Regexp{straightQuoteRegex, curlyQuoteRegex} {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			inner := cleanFragment(text[idx[2]:idx[3]])
			if n := RuneLen(inner); n < MinQuoteLength || n > MaxQuoteLength {
				continue
			}
			matches = append(matches, match{start: idx[0], text: inner})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})

	fragments := make([]string, len(matches))
	for i, m := range matches {
		fragments[i] = m.text
	}
	return fragments
}

// ExtractAttributed returns sentences that name the ministry and carry a speech verb.
func (q *QuoteExtractor) ExtractAttributed(text string) []string {
	var out []string
	for _, sentence := range q.segmenter.Run(text) {
		if !q.inBand(sentence) || !q.mentionsMinistry(sentence) {
			continue
		}
		if !q.speechVerbs.MatchString(sentence) {
			continue
		}
		out = append(out, sentence)
	}
	return out
}

// Fallback returns the first sentence that merely mentions the ministry.
func (q *QuoteExtractor) Fallback(text string) (string, bool) {
	for _, sentence := range q.segmenter.Run(text) {
		if q.inBand(sentence) && q.mentionsMinistry(sentence) {
			return sentence, true
		}
	}
	return "", false
}

// Best picks the winning candidate. Enclosed fragments are preferred; attributed
// sentences are only considered when none exist, and the fallback only when both tiers are empty.
func (q *QuoteExtractor) Best(text string) (Candidate, bool) {
	fragments := q.ExtractQuoted(text)
	if len(fragments) == 0 {
		fragments = q.ExtractAttributed(text)
	}
	if len(fragments) == 0 {
		if sentence, ok := q.Fallback(text); ok {
			fragments = []string{sentence}
		}
	}
	if len(fragments) == 0 {
		return Candidate{}, false
	}

	candidates := make([]Candidate, len(fragments))
	for i, f := range fragments {
		candidates[i] = q.scorer.Run(f)
	}

	winner := SelectBest(candidates)
	if RuneLen(winner.Text) > MaxQuoteOutput {
		winner.Text = string([]rune(winner.Text)[:quoteKeep]) + Ellipsis
	}
	return winner, true
}

// SelectBest orders by score descending, then shorter text, then original position.
func SelectBest(candidates []Candidate) Candidate {
	if len(candidates) == 0 {
		return Candidate{}
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return RuneLen(sorted[i].Text) < RuneLen(sorted[j].Text)
	})

	return sorted[0]
}

func (q *QuoteExtractor) mentionsMinistry(text string) bool {
	return containsAny(strings.ToLower(text), q.aliases)
}

func (q *QuoteExtractor) inBand(sentence string) bool {
	n := RuneLen(sentence)
	return n >= MinSentenceLength && n <= MaxQuoteLength
}

func cleanFragment(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ",;: ")
}
