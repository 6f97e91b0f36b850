// Package analysis holds the heuristic text pipeline: normalization, sentence
// segmentation, quotation extraction and scoring, domain tagging and event inference.
//
// Every component is built from a Vocabulary, so rule lists can be swapped for
// tests or another newsroom without touching code. All components are pure
// and safe to share between goroutines once constructed.
package analysis

import (
	"fmt"
)

// Analyzer bundles the components built from one Vocabulary.
type Analyzer struct {
	Vocabulary Vocabulary

	Normalizer *Normalizer
	Segmenter  *Segmenter
	Scorer     *Scorer
	Quotes     *QuoteExtractor
	Tagger     *Tagger
	Events     *EventDetector
}

func New(v Vocabulary) (*Analyzer, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	scorer, err := NewScorer(v)
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer: %w", err)
	}

	segmenter := NewSegmenter()

	quotes, err := NewQuoteExtractor(v, segmenter, scorer)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote extractor: %w", err)
	}

	events, err := NewEventDetector(v)
	if err != nil {
		return nil, fmt.Errorf("failed to build event detector: %w", err)
	}

	return &Analyzer{
		Vocabulary: v,
		Normalizer: NewNormalizer(NormalizeOptions{
			DecodeEntities:  v.DecodeEntities,
			CanonicalQuotes: v.CanonicalQuotes,
		}),
		Segmenter: segmenter,
		Scorer:    scorer,
		Quotes:    quotes,
		Tagger:    NewTagger(v.Tags),
		Events:    events,
	}, nil
}

// MentionsMinistry reports whether text names the ministry or minister.
func (a *Analyzer) MentionsMinistry(text string) bool {
	return a.Events.AttendedByMinister(text)
}
