package uitest

import (
	"strings"

	"golang.org/x/net/html"
)

// extractMaxChars bounds the text handed back to a failure report; a full
// page source can otherwise dwarf the rest of the prompt.
const extractMaxChars = 8000

// ExtractText strips tags from rawHTML and returns its visible text,
// collapsing script/style content and adding line breaks at block
// boundaries so the result reads like a rendered page rather than a
// run-on string.
func ExtractText(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var b strings.Builder
	var skip bool

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return truncate(strings.TrimSpace(b.String()))
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" || tag == "head" {
				skip = true
			}
			if isBlockTag(tag) {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" || tag == "head" {
				skip = false
			}
		case html.TextToken:
			if !skip {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					if b.Len() > 0 {
						b.WriteByte(' ')
					}
					b.WriteString(text)
				}
			}
		}
	}
}

func truncate(s string) string {
	if len(s) <= extractMaxChars {
		return s
	}
	return s[:extractMaxChars] + "\n... (truncated)"
}

func isBlockTag(tag string) bool {
	switch tag {
	case "div", "p", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "table", "tr", "td", "th",
		"section", "article", "header", "footer", "nav",
		"blockquote", "pre", "hr":
		return true
	}
	return false
}
