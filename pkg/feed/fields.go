package feed

import (
	"strings"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/xmltree"
)

// FieldDecl maps a source element name onto a destination key. An empty Dest
// copies under the source name. Declarations are applied in list order and a
// later declaration for the same destination overwrites an earlier one; the
// built-in tables rely on that to let Dublin-Core-qualified names take
// precedence over their bare variants.
type FieldDecl struct {
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
}

// Decl declares a field copied under its own name.
func Decl(name string) FieldDecl {
	return FieldDecl{Source: name}
}

// Renamed declares a field copied under a different name.
func Renamed(source, dest string) FieldDecl {
	return FieldDecl{Source: source, Dest: dest}
}

// CustomFields carries caller-supplied declarations appended after the
// built-in feed and item tables.
type CustomFields struct {
	Feed []FieldDecl `json:"feed" yaml:"feed"`
	Item []FieldDecl `json:"item" yaml:"item"`
}

// rssFeedFields are the channel-level fields copied onto the canonical feed.
// Qualified variants are declared after the bare ones so they win.
var rssFeedFields = []FieldDecl{
	Decl("author"),
	Decl("creator"),
	Renamed("dc:creator", "creator"),
	Decl("publisher"),
	Renamed("dc:publisher", "publisher"),
	Decl("source"),
	Renamed("dc:source", "source"),
	Decl("type"),
	Renamed("dc:type", "type"),
	Decl("description"),
	Decl("pubDate"),
	Decl("webMaster"),
	Decl("managingEditor"),
	Decl("generator"),
}

// rssItemFields are the per-item fields copied onto each canonical item.
var rssItemFields = []FieldDecl{
	Decl("author"),
	Decl("creator"),
	Decl("date"),
	Decl("language"),
	Renamed("dc:language", "language"),
	Decl("rights"),
	Renamed("dc:rights", "rights"),
	Decl("source"),
	Renamed("dc:source", "source"),
	Decl("title"),
	Decl("link"),
	Decl("pubDate"),
	Renamed("content:encoded", "content"),
	Decl("enclosure"),
	Renamed("dc:creator", "creator"),
	Renamed("dc:date", "date"),
}

// mapFields copies each declared field's first occurrence into dst. Sources
// with no text content are skipped so structural elements never emit empty
// values.
func mapFields(src *xmltree.Node, dst map[string]string, decls []FieldDecl) {
	for _, d := range decls {
		dest := d.Dest
		if dest == "" {
			dest = d.Source
		}
		if dest == "" {
			continue
		}
		n := src.First(d.Source)
		if n == nil || n.Text == "" {
			continue
		}
		dst[dest] = n.Text
	}
}

// firstPresent returns the first named child with non-blank text, trimmed.
func firstPresent(n *xmltree.Node, names ...string) string {
	for _, name := range names {
		if c := n.First(name); c != nil {
			if v := strings.TrimSpace(c.Text); v != "" {
				return v
			}
		}
	}
	return ""
}
