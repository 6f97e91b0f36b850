package analysis

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	blockRegex = regexp.MustCompile(`(?is)<(script|style|noscript)\b[^>]*>.*?</(?:script|style|noscript)\s*>`)
	tagRegex   = regexp.MustCompile(`(?s)<[A-Za-z!/][^>]*>`)
)

var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&#34;", `"`,
	"&#x22;", `"`,
	"&ldquo;", "“",
	"&rdquo;", "”",
	"&#8220;", "“",
	"&#8221;", "”",
	"&#39;", "'",
	"&#x27;", "'",
	"&apos;", "'",
	"&lsquo;", "‘",
	"&rsquo;", "’",
	"&#8216;", "‘",
	"&#8217;", "’",
	"&nbsp;", " ",
	"&#160;", " ",
	"&amp;", "&",
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‟", `"`,
	"«", `"`,
	"»", `"`,
	"″", `"`,
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
)

type NormalizeOptions struct {
	DecodeEntities  bool
	CanonicalQuotes bool
}

// Normalizer turns feed markup into a single line of plain text.
type Normalizer struct {
	opts NormalizeOptions
}

func NewNormalizer(opts NormalizeOptions) *Normalizer {
	return &Normalizer{opts: opts}
}

// Run never fails: the result holds no markup, no angle brackets and no whitespace runs.
func (n *Normalizer) Run(raw string) string {
	if raw == "" {
		return ""
	}

	text := blockRegex.ReplaceAllString(raw, " ")
	text = tagRegex.ReplaceAllString(text, " ")

	if n.opts.DecodeEntities {
		text = entityReplacer.Replace(text)
	}
	if n.opts.CanonicalQuotes {
		text = quoteReplacer.Replace(text)
	}

	// Unclosed tags and decoded text can leave stray brackets behind.
	text = strings.NewReplacer("<", " ", ">", " ").Replace(text)
	text = norm.NFC.String(text)

	return strings.Join(strings.Fields(text), " ")
}
