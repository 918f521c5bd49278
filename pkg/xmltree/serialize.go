package xmltree

import (
	"encoding/xml"
	"sort"
	"strings"
)

// WrapXML re-serializes the node's attributes and children under a synthetic
// wrapper element: no XML declaration, no indentation. Attribute order is
// sorted so identical trees always render identical fragments.
func (n *Node) WrapXML(wrapper string) string {
	var b strings.Builder
	writeElement(&b, wrapper, n)
	return b.String()
}

func writeElement(b *strings.Builder, name string, n *Node) {
	b.WriteByte('<')
	b.WriteString(name)
	for _, key := range sortedAttrKeys(n) {
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString(`="`)
		escape(b, n.Attrs[key])
		b.WriteString(`"`)
	}
	b.WriteByte('>')
	if n != nil {
		if n.Text != "" {
			escape(b, n.Text)
		}
		for _, c := range n.Children {
			writeElement(b, c.Name, c)
		}
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func sortedAttrKeys(n *Node) []string {
	if n == nil || len(n.Attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escape(b *strings.Builder, s string) {
	// EscapeText never fails on a strings.Builder.
	_ = xml.EscapeText(b, []byte(s))
}
