// Package ooxml provides a namespace-aware element tree for Office Open XML parts.
//
// Parts are parsed into a Node tree that keeps the original namespace
// prefixes, so a subtree can be written back out (compact or indented) with
// the same prefixes it had in the source document.
package ooxml

import "strings"

const (
	// NamespaceW is the WordprocessingML main namespace.
	NamespaceW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	// NamespaceW14 is the Word 2010 extension namespace.
	NamespaceW14 = "http://schemas.microsoft.com/office/word/2010/wordml"
	// NamespaceR is the officeDocument relationships namespace.
	NamespaceR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	// NamespaceXML is the namespace bound to the reserved xml prefix.
	NamespaceXML = "http://www.w3.org/XML/1998/namespace"
)

// Name is a qualified name: a namespace URI plus a local name.
type Name struct {
	Space string
	Local string
}

// W returns the qualified name of a WordprocessingML element or attribute.
func W(local string) Name {
	return Name{Space: NamespaceW, Local: local}
}

// Attr is a single attribute as it appeared in the source.
type Attr struct {
	Name   Name
	Prefix string
	Value  string
}

// IsNamespaceDecl reports whether the attribute is an xmlns declaration.
func (a Attr) IsNamespaceDecl() bool {
	return a.Prefix == "xmlns" || (a.Prefix == "" && a.Name.Local == "xmlns")
}

// qualified returns the attribute name as written in markup.
func (a Attr) qualified() string {
	if a.Prefix == "" {
		return a.Name.Local
	}
	return a.Prefix + ":" + a.Name.Local
}

// Node is an element in a parsed markup tree.
type Node struct {
	Name   Name
	Prefix string
	Attrs  []Attr

	children []*Node
	content  []item
}

// item is one piece of element content in document order: a child element or
// a run of character data.
type item struct {
	node *Node
	text string
}

// QualifiedName returns the element name as written in markup (prefix:local).
func (n *Node) QualifiedName() string {
	if n.Prefix == "" {
		return n.Name.Local
	}
	return n.Prefix + ":" + n.Name.Local
}

// Is reports whether the node has the given qualified name.
func (n *Node) Is(name Name) bool {
	return n != nil && n.Name == name
}

// Elements returns the direct child elements in document order.
func (n *Node) Elements() []*Node {
	return n.children
}

// Child returns the first direct child with the given name, or nil.
func (n *Node) Child(name Name) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given name.
func (n *Node) ChildrenNamed(name Name) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the attribute with the given name.
// The boolean is false when the attribute is not present.
func (n *Node) Attr(name Name) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.IsNamespaceDecl() {
			continue
		}
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the character data directly inside the element, excluding
// text held by descendant elements.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	for _, it := range n.content {
		if it.node == nil {
			sb.WriteString(it.text)
		}
	}
	return sb.String()
}

// Iter returns the node and all its descendants with the given name, in
// pre-order (document order).
func (n *Node) Iter(name Name) []*Node {
	var out []*Node
	n.Walk(func(e *Node) {
		if e.Name == name {
			out = append(out, e)
		}
	})
	return out
}

// Walk calls fn for the node and every descendant element in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

func (n *Node) appendChild(c *Node) {
	n.children = append(n.children, c)
	n.content = append(n.content, item{node: c})
}

func (n *Node) appendText(s string) {
	if last := len(n.content) - 1; last >= 0 && n.content[last].node == nil {
		n.content[last].text += s
		return
	}
	n.content = append(n.content, item{text: s})
}
