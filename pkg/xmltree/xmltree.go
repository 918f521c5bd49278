package xmltree

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Package xmltree turns raw XML text into an ordered node tree keyed by the
// names as they appear in the source document. Elements keep the literal
// prefix the document declared for their namespace ("atom:link" in an RSS 2.0
// channel, bare "link" inside an Atom feed), which is what the feed
// normalizers match against.

// Node is one element of a parsed document: character data, attributes and
// child elements in document order. Repeated tags simply occur multiple times
// in Children; callers take the first occurrence via First or iterate via All.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// First returns the first child element with the given name, or nil.
func (n *Node) First(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// All returns every child element with the given name, in document order.
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the attribute value for key, or "" when absent.
func (n *Node) Attr(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// HasAttrs reports whether the node carries any attributes.
func (n *Node) HasAttrs() bool {
	return n != nil && len(n.Attrs) > 0
}

// Decode parses XML text into a synthetic document node whose Children are
// the top-level elements. Syntax errors from the decoder are returned as-is.
func Decode(data string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(data))

	doc := &Node{}
	nodes := []*Node{doc}
	texts := []*strings.Builder{{}}
	scopes := newScopeStack()

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			scopes.push(t.Attr)
			node := &Node{Name: scopes.qualify(t.Name)}
			for _, a := range t.Attr {
				if node.Attrs == nil {
					node.Attrs = make(map[string]string, len(t.Attr))
				}
				node.Attrs[attrKey(a.Name, scopes)] = a.Value
			}
			parent := nodes[len(nodes)-1]
			parent.Children = append(parent.Children, node)
			nodes = append(nodes, node)
			texts = append(texts, &strings.Builder{})
		case xml.EndElement:
			node := nodes[len(nodes)-1]
			// Whitespace between child elements is insignificant.
			node.Text = strings.TrimSpace(texts[len(texts)-1].String())
			nodes = nodes[:len(nodes)-1]
			texts = texts[:len(texts)-1]
			scopes.pop()
		case xml.CharData:
			texts[len(texts)-1].Write(t)
		}
	}

	if len(nodes) != 1 {
		return nil, &xml.SyntaxError{Msg: "unexpected end of document"}
	}
	return doc, nil
}

// attrKey renders an attribute name with its document prefix. Namespace
// declarations come back from the decoder with Space "xmlns" (or Local
// "xmlns" for the default declaration) and are kept verbatim so callers can
// test which namespaces the document declared.
func attrKey(name xml.Name, scopes *scopeStack) string {
	switch {
	case name.Space == "xmlns":
		return "xmlns:" + name.Local
	case name.Space == "" && name.Local == "xmlns":
		return "xmlns"
	case name.Space == "":
		return name.Local
	default:
		return scopes.qualify(name)
	}
}

// scopeStack tracks which prefix the document bound to each namespace URI,
// innermost declaration first.
type scopeStack struct {
	frames []map[string]string // uri -> declared prefix ("" for default)
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

func (s *scopeStack) push(attrs []xml.Attr) {
	var frame map[string]string
	for _, a := range attrs {
		var prefix string
		switch {
		case a.Name.Space == "xmlns":
			prefix = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			prefix = ""
		default:
			continue
		}
		if frame == nil {
			frame = make(map[string]string)
		}
		frame[a.Value] = prefix
	}
	s.frames = append(s.frames, frame)
}

func (s *scopeStack) pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// qualify maps a decoder-resolved name back to the document's spelling.
// Names in the default namespace come back bare; an unresolvable prefix is
// passed through as the decoder reports it.
func (s *scopeStack) qualify(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		prefix, ok := s.frames[i][name.Space]
		if !ok {
			continue
		}
		if prefix == "" {
			return name.Local
		}
		return prefix + ":" + name.Local
	}
	// Undeclared prefixes are reported by encoding/xml with the prefix
	// itself in Space; anything that looks like a URI is dropped.
	if strings.ContainsAny(name.Space, ":/") {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
