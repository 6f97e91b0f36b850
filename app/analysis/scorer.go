package analysis

import (
	"regexp"
	"strings"
)

// Signal names reported in Candidate.Reasons.
const (
	ReasonDirectQuotes     = "direct-quotes"
	ReasonMentionsMinistry = "mentions-ministry"
	ReasonSpeechVerb       = "speech-verb"
	ReasonGoodLength       = "good-length"
	ReasonContentful       = "contentful"
)

const (
	weightDirectQuotes     = 4
	weightMentionsMinistry = 3
	weightSpeechVerb       = 2
	weightGoodLength       = 2
	weightContentful       = 1

	idealMinLength = 40
	idealMaxLength = 220
)

var (
	enclosedRegex = regexp.MustCompile(`"[^"]+"|“[^”]+”`)
	urlRegex      = regexp.MustCompile(`(?i)\bhttps?://|\bwww\.`)
)

// Candidate is a scored span competing to become the quote of a news item.
type Candidate struct {
	Text    string
	Score   int
	Reasons []string
}

// Scorer applies independent additive signals to a fragment.
type Scorer struct {
	aliases     []string
	boilerplate []string
	speechVerbs *regexp.Regexp
}

func NewScorer(v Vocabulary) (*Scorer, error) {
	verbs, err := wordPattern(v.SpeechVerbs)
	if err != nil {
		return nil, err
	}

	return &Scorer{
		aliases:     lowerAll(v.MinistryAliases),
		boilerplate: lowerAll(v.BoilerplateMarkers),
		speechVerbs: verbs,
	}, nil
}

func (s *Scorer) Run(fragment string) Candidate {
	c := Candidate{Text: fragment}
	lower := strings.ToLower(fragment)

	if enclosedRegex.MatchString(fragment) {
		c.add(ReasonDirectQuotes, weightDirectQuotes)
	}
	if containsAny(lower, s.aliases) {
		c.add(ReasonMentionsMinistry, weightMentionsMinistry)
	}
	if s.speechVerbs.MatchString(fragment) {
		c.add(ReasonSpeechVerb, weightSpeechVerb)
	}
	if n := RuneLen(fragment); n >= idealMinLength && n <= idealMaxLength {
		c.add(ReasonGoodLength, weightGoodLength)
	}
	if !urlRegex.MatchString(fragment) && !containsAny(lower, s.boilerplate) {
		c.add(ReasonContentful, weightContentful)
	}

	return c
}

func (c *Candidate) add(reason string, weight int) {
	c.Score += weight
	c.Reasons = append(c.Reasons, reason)
}
