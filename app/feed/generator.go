package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/menhub-monitor/app/aggregate"
)

// Channel describes the RSS channel wrapping an aggregated news collection.
type Channel struct {
	Title       string
	Link        string
	SelfURL     string
	Description string
	Version     string
	Language    string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders news records as RSS 2.0. lastBuildDate is the newest record, or now when empty.
func (g *Generator) Run(channel Channel, news []aggregate.NewsRecord, now time.Time) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", channel.Description, 4)

	if channel.SelfURL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfURL)))
	}

	lastBuildDate := now
	if len(news) > 0 {
		lastBuildDate = news[0].PublishedAt
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Menhub-Monitor/%s", channel.Version), 4)
	g.writeElement(&buf, "language", channel.Language, 4)

	for _, record := range news {
		g.writeItem(&buf, record)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, record aggregate.NewsRecord) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(record.ID))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", record.Title, 6)

	if g.isURL(record.Link) {
		g.writeElement(buf, "link", record.Link, 6)
	}

	g.writeElement(buf, "description", record.Summary, 6)
	g.writeElement(buf, "pubDate", record.PublishedAt.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "author", record.Source, 6)

	for _, entity := range record.Entities {
		g.writeElement(buf, "category", entity, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
