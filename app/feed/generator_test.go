package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
)

func TestGeneratorRun(t *testing.T) {
	generator := NewGenerator()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	news := []aggregate.NewsRecord{
		{
			ID:          "id-1",
			Title:       "Menhub resmikan terminal <baru>",
			Source:      "ANTARA",
			PublishedAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			Link:        "https://example.id/berita/1",
			Summary:     "Peresmian terminal & dermaga.",
			Entities:    []string{"Menhub", "Darat"},
		},
		{
			ID:          "id-2",
			Title:       "Kemenhub siapkan armada",
			Source:      "Kompas",
			PublishedAt: time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC),
			Link:        aggregate.PlaceholderLink,
		},
	}

	rss, err := generator.Run(Channel{
		Title:       "Menhub Monitor",
		Link:        "https://monitor.example.id",
		SelfURL:     "https://monitor.example.id/feeds/news.xml",
		Description: "Berita Kementerian Perhubungan",
		Version:     "test",
		Language:    "id",
	}, news, now)
	if err != nil {
		t.Fatalf("Failed to generate RSS: %v", err)
	}

	var doc struct {
		Channel struct {
			Title         string `xml:"title"`
			LastBuildDate string `xml:"lastBuildDate"`
			Items         []struct {
				GUID       string   `xml:"guid"`
				Title      string   `xml:"title"`
				Link       string   `xml:"link"`
				Categories []string `xml:"category"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal([]byte(rss), &doc); err != nil {
		t.Fatalf("Generated RSS is not valid XML: %v", err)
	}

	if doc.Channel.Title != "Menhub Monitor" {
		t.Errorf("Expected channel title 'Menhub Monitor', got '%s'", doc.Channel.Title)
	}
	if doc.Channel.LastBuildDate != news[0].PublishedAt.Format(time.RFC1123Z) {
		t.Errorf("Expected lastBuildDate of newest record, got '%s'", doc.Channel.LastBuildDate)
	}
	if len(doc.Channel.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(doc.Channel.Items))
	}

	first := doc.Channel.Items[0]
	if first.Title != "Menhub resmikan terminal <baru>" {
		t.Errorf("Expected escaped title to round trip, got '%s'", first.Title)
	}
	if first.GUID != "id-1" {
		t.Errorf("Expected guid 'id-1', got '%s'", first.GUID)
	}
	if len(first.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(first.Categories))
	}

	if doc.Channel.Items[1].Link != "" {
		t.Errorf("Expected placeholder link to be omitted, got '%s'", doc.Channel.Items[1].Link)
	}
	if !strings.Contains(rss, `<atom:link href="https://monitor.example.id/feeds/news.xml"`) {
		t.Error("Expected self link in channel")
	}
}

func TestGeneratorRunEmpty(t *testing.T) {
	generator := NewGenerator()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	rss, err := generator.Run(Channel{Title: "Menhub Monitor"}, nil, now)
	if err != nil {
		t.Fatalf("Failed to generate RSS: %v", err)
	}

	if !strings.Contains(rss, "<lastBuildDate>"+now.Format(time.RFC1123Z)+"</lastBuildDate>") {
		t.Error("Expected lastBuildDate to fall back to now")
	}
	if strings.Contains(rss, "<item>") {
		t.Error("Expected no items")
	}
}
