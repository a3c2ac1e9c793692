// Package render prepares agent replies for Telegram delivery. Telegram
// renders only a small HTML tag subset and rejects the whole message
// when anything else appears, so replies are sanitized down to that
// subset before sending.
package render

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

// allowedTags is the tag subset Telegram's HTML parse mode accepts.
var allowedTags = map[string]bool{
	"b":          true,
	"strong":     true,
	"i":          true,
	"em":         true,
	"u":          true,
	"ins":        true,
	"s":          true,
	"strike":     true,
	"del":        true,
	"tg-spoiler": true,
	"a":          true,
	"code":       true,
	"pre":        true,
	"blockquote": true,
}

// blockTags are unwrapped but still terminate a line.
var blockTags = map[string]bool{
	"p":   true,
	"div": true,
	"li":  true,
	"ul":  true,
	"ol":  true,
	"h1":  true,
	"h2":  true,
	"h3":  true,
	"h4":  true,
	"h5":  true,
	"h6":  true,
	"tr":  true,
}

// skipTags are dropped together with their contents.
var skipTags = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

// Sanitize rewrites s into HTML Telegram accepts. Supported tags are
// kept, unsupported ones are unwrapped so their text survives, and
// scripts and styles are dropped entirely. On a parse failure the
// whole input is escaped as plain text.
func Sanitize(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return Escape(s)
	}

	var b strings.Builder
	for _, node := range doc.Selection.Nodes {
		renderNode(&b, node)
	}
	return strings.TrimSpace(b.String())
}

// Escape escapes s for literal inclusion in an HTML-mode message.
func Escape(s string) string {
	return html.EscapeString(s)
}

func renderNode(b *strings.Builder, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case xhtml.ElementNode:
		tag := strings.ToLower(n.Data)
		if skipTags[tag] {
			return
		}
		if tag == "br" {
			b.WriteString("\n")
			return
		}
		// Telegram only knows span as a spoiler carrier.
		if tag == "span" && hasClass(n, "tg-spoiler") {
			tag = "tg-spoiler"
		}
		if allowedTags[tag] {
			b.WriteString("<" + tag + openAttrs(n, tag) + ">")
			renderChildren(b, n)
			b.WriteString("</" + tag + ">")
			return
		}
		renderChildren(b, n)
		if blockTags[tag] && !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
	default:
		renderChildren(b, n)
	}
}

func renderChildren(b *strings.Builder, n *xhtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}

// openAttrs returns the attributes Telegram honors for tag: the href of
// a link and the language class of a code block.
func openAttrs(n *xhtml.Node, tag string) string {
	for _, attr := range n.Attr {
		switch {
		case tag == "a" && attr.Key == "href":
			return ` href="` + html.EscapeString(attr.Val) + `"`
		case tag == "code" && attr.Key == "class" && strings.HasPrefix(attr.Val, "language-"):
			return ` class="` + html.EscapeString(attr.Val) + `"`
		}
	}
	return ""
}

func hasClass(n *xhtml.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
