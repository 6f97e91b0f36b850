package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses RSS, Atom or JSON feed data. Items repeating an earlier title and link are dropped.
func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       strings.TrimSpace(feed.Title),
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	seen := make(map[string]bool, len(feed.Items))
	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		normalized := p.normalizeItem(item)
		normalized.ContentHash = p.generateContentHash(normalized)
		if seen[normalized.ContentHash] {
			continue
		}
		seen[normalized.ContentHash] = true

		items = append(items, normalized)
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		Content:     item.Content,
		Categories:  item.Categories,
		PublishedAt: item.PublishedParsed,
		UpdatedAt:   item.UpdatedParsed,
	}

	if item.PublishedParsed == nil && item.Published != "" {
		normalized.RawDates = append(normalized.RawDates, item.Published)
	}
	if item.UpdatedParsed == nil && item.Updated != "" {
		normalized.RawDates = append(normalized.RawDates, item.Updated)
	}
	if item.DublinCoreExt != nil {
		normalized.RawDates = append(normalized.RawDates, item.DublinCoreExt.Date...)
	}

	return normalized
}

func (p *Parser) generateContentHash(item Item) string {
	content := fmt.Sprintf("%s|%s",
		item.Title,
		item.Link)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToRaw hands the item to the aggregation pipeline. Body and date candidates
// keep their priority order: content before description, published before updated.
func (i Item) ToRaw(source string) aggregate.RawItem {
	var dates []string
	if i.PublishedAt != nil {
		dates = append(dates, i.PublishedAt.UTC().Format(time.RFC3339))
	}
	if i.UpdatedAt != nil {
		dates = append(dates, i.UpdatedAt.UTC().Format(time.RFC3339))
	}
	dates = append(dates, i.RawDates...)

	return aggregate.RawItem{
		Source:     source,
		Title:      i.Title,
		Link:       i.Link,
		BodyFields: []string{i.Content, i.Description},
		DateFields: dates,
	}
}
