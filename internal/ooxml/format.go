package ooxml

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultIndent is the indentation unit used by PrettyPrint.
	DefaultIndent = "  "
	// DefaultFallbackChars is how much raw input PrettyPrint echoes when the
	// input cannot be parsed.
	DefaultFallbackChars = 2000

	declaration = `<?xml version="1.0" ?>`
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// PrettyOptions controls indented output.
type PrettyOptions struct {
	Indent        string // indentation unit, default two spaces
	FallbackChars int    // raw input echoed on parse failure, default 2000
}

func (o PrettyOptions) withDefaults() PrettyOptions {
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.FallbackChars <= 0 {
		o.FallbackChars = DefaultFallbackChars
	}
	return o
}

// Markup serializes the subtree rooted at n without added whitespace.
// Namespace prefixes used in the subtree but declared on an ancestor are
// declared on n, so the result is a standalone document fragment.
func Markup(n *Node) string {
	var sb strings.Builder
	writeCompact(&sb, n, inheritedDecls(n))
	return sb.String()
}

// Indent serializes the subtree rooted at n as indented markup preceded by an
// XML declaration. Whitespace-only text between elements is dropped; elements
// that hold only text are kept on one line.
func Indent(n *Node, indent string) string {
	if indent == "" {
		indent = DefaultIndent
	}
	var sb strings.Builder
	sb.WriteString(declaration)
	sb.WriteByte('\n')
	writeIndented(&sb, n, indent, 0, inheritedDecls(n))
	return strings.TrimRight(sb.String(), "\n")
}

// PrettyPrint parses text and returns it indented. It never fails: when text
// is not well-formed it returns the error message followed by the first
// FallbackChars characters of the raw input.
func PrettyPrint(text string, opts PrettyOptions) string {
	opts = opts.withDefaults()
	root, err := Parse(text)
	if err != nil {
		return fmt.Sprintf("Error parsing XML: %v\n\nRaw content:\n%s...", err, truncate(text, opts.FallbackChars))
	}
	return Indent(root, opts.Indent)
}

// Truncate returns the first max characters of s.
func Truncate(s string, max int) string {
	return truncate(s, max)
}

func truncate(s string, max int) string {
	if max < 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// inheritedDecls returns xmlns declarations needed at n for prefixes used in
// its subtree that n does not declare itself.
func inheritedDecls(n *Node) []Attr {
	declared := make(map[string]bool)
	for _, a := range n.Attrs {
		if a.IsNamespaceDecl() {
			declared[declPrefix(a)] = true
		}
	}

	needed := make(map[string]string)
	n.Walk(func(e *Node) {
		if e.Name.Space != "" {
			if _, ok := needed[e.Prefix]; !ok {
				needed[e.Prefix] = e.Name.Space
			}
		}
		for _, a := range e.Attrs {
			if a.IsNamespaceDecl() || a.Prefix == "" || a.Prefix == "xml" {
				continue
			}
			if _, ok := needed[a.Prefix]; !ok {
				needed[a.Prefix] = a.Name.Space
			}
		}
	})

	prefixes := make([]string, 0, len(needed))
	for p := range needed {
		if !declared[p] {
			prefixes = append(prefixes, p)
		}
	}
	sort.Strings(prefixes)

	decls := make([]Attr, 0, len(prefixes))
	for _, p := range prefixes {
		if p == "" {
			decls = append(decls, Attr{Name: Name{Local: "xmlns"}, Value: needed[p]})
			continue
		}
		decls = append(decls, Attr{Prefix: "xmlns", Name: Name{Local: p}, Value: needed[p]})
	}
	return decls
}

func declPrefix(a Attr) string {
	if a.Prefix == "xmlns" {
		return a.Name.Local
	}
	return ""
}

func writeStartTag(sb *strings.Builder, n *Node, extra []Attr) {
	sb.WriteByte('<')
	sb.WriteString(n.QualifiedName())
	for _, a := range extra {
		writeAttr(sb, a)
	}
	for _, a := range n.Attrs {
		writeAttr(sb, a)
	}
}

func writeAttr(sb *strings.Builder, a Attr) {
	sb.WriteByte(' ')
	sb.WriteString(a.qualified())
	sb.WriteString(`="`)
	sb.WriteString(attrEscaper.Replace(a.Value))
	sb.WriteByte('"')
}

func writeCompact(sb *strings.Builder, n *Node, extra []Attr) {
	writeStartTag(sb, n, extra)
	if len(n.content) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, it := range n.content {
		if it.node != nil {
			writeCompact(sb, it.node, nil)
		} else {
			sb.WriteString(textEscaper.Replace(it.text))
		}
	}
	sb.WriteString("</")
	sb.WriteString(n.QualifiedName())
	sb.WriteByte('>')
}

func writeIndented(sb *strings.Builder, n *Node, indent string, depth int, extra []Attr) {
	pad := strings.Repeat(indent, depth)
	sb.WriteString(pad)
	writeStartTag(sb, n, extra)

	if len(n.children) == 0 {
		text := n.Text()
		if text == "" {
			sb.WriteString("/>\n")
			return
		}
		sb.WriteByte('>')
		sb.WriteString(textEscaper.Replace(text))
		sb.WriteString("</")
		sb.WriteString(n.QualifiedName())
		sb.WriteString(">\n")
		return
	}

	sb.WriteString(">\n")
	for _, it := range n.content {
		if it.node != nil {
			writeIndented(sb, it.node, indent, depth+1, nil)
			continue
		}
		if text := strings.TrimSpace(it.text); text != "" {
			sb.WriteString(pad)
			sb.WriteString(indent)
			sb.WriteString(textEscaper.Replace(text))
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(pad)
	sb.WriteString("</")
	sb.WriteString(n.QualifiedName())
	sb.WriteString(">\n")
}
