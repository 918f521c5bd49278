package feed

import (
	"html"
	"regexp"
	"strings"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/xmltree"
)

// renderContent turns a content-bearing node into an HTML string. A node
// with character data returns it verbatim: feeds that escape their markup
// arrive here already decoded by the XML layer. A purely structured node
// (genuine nested markup) is re-serialized under a synthetic <div> wrapper
// with no declaration and no pretty-printing.
func renderContent(n *xmltree.Node) string {
	if n == nil {
		return ""
	}
	if n.Text != "" {
		return n.Text
	}
	if len(n.Children) > 0 || n.HasAttrs() {
		return n.WrapXML("div")
	}
	return ""
}

// tagPattern matches angle-bracket tags non-greedily, across newlines.
var tagPattern = regexp.MustCompile(`(?s)<.*?>`)

// snippet strips markup from an HTML string, decodes entities and trims the
// result. No length limit applies.
func snippet(content string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(content, "")))
}
