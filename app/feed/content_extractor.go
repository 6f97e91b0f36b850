package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// MinBodyLength is the body length below which an item's article page is worth fetching.
const MinBodyLength = 200

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run returns the readable text of an article page.
func (e *ContentExtractor) Run(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	u, _ := url.Parse(pageURL)

	article, err := readability.FromReader(bytes.NewReader(data), u)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(text))

	return text, nil
}

// NeedsExtraction reports whether the item body is too thin to analyze.
func NeedsExtraction(item Item) bool {
	if item.Link == "" {
		return false
	}
	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}
	return len([]rune(strings.TrimSpace(body))) < MinBodyLength
}
