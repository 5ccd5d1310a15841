// Package mailtext prepares email bodies for prompting and indexing.
package mailtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FromHTML strips an HTML email body down to plain text. Script and style
// contents are dropped; block-level elements are separated by newlines so
// the result reads like the rendered message. On unparsable input the raw
// string is returned unchanged.
func FromHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style, head").Remove()

	// Only leaf blocks contribute text, so nested containers don't repeat it.
	const blocks = "p, div, li, td, h1, h2, h3, h4, h5, h6, blockquote"
	var builder strings.Builder
	doc.Find(blocks).Each(func(_ int, sel *goquery.Selection) {
		if sel.Find(blocks).Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			builder.WriteString(text)
			builder.WriteString("\n")
		}
	})

	out := collapseWhitespace(builder.String())
	if out == "" {
		// No block-level structure; fall back to the full document text.
		out = collapseWhitespace(doc.Text())
	}
	return out
}

// BodyText returns the best available plain-text body for an email: the
// text part when present, otherwise the HTML part stripped to text.
func BodyText(bodyText, bodyHTML string) string {
	if strings.TrimSpace(bodyText) != "" {
		return bodyText
	}
	if bodyHTML != "" {
		return FromHTML(bodyHTML)
	}
	return ""
}

// Truncate shortens s to at most maxRunes runes, cutting on a rune boundary.
// Providers enforce context limits; the completion client never truncates,
// so callers bound prompt bodies here.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
