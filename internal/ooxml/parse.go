package ooxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseError reports markup that is not well-formed.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed markup at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed markup: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses a markup document and returns its root element.
func Parse(text string) (*Node, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseBytes parses a markup document held in memory.
func ParseBytes(data []byte) (*Node, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses a markup document from r.
//
// Payloads are expected to be UTF-8 already (see archive.ReadPayloads), so any
// encoding named in the XML declaration is accepted as-is.
func ParseReader(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	b := &builder{decoder: decoder}
	for {
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, b.fail(err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if err := b.start(t); err != nil {
				return nil, b.fail(err)
			}
		case xml.EndElement:
			if err := b.end(t); err != nil {
				return nil, b.fail(err)
			}
		case xml.CharData:
			if err := b.text(string(t)); err != nil {
				return nil, b.fail(err)
			}
		}
	}

	if len(b.stack) > 0 {
		return nil, b.fail(fmt.Errorf("unexpected end of input: <%s> not closed", b.stack[len(b.stack)-1].QualifiedName()))
	}
	if b.root == nil {
		return nil, b.fail(errors.New("no root element"))
	}
	return b.root, nil
}

// builder assembles a Node tree from raw tokens, resolving namespace prefixes
// against the declarations in scope.
type builder struct {
	decoder *xml.Decoder
	root    *Node
	stack   []*Node
	scopes  []map[string]string
}

func (b *builder) fail(err error) error {
	line, _ := b.decoder.InputPos()
	return &ParseError{Line: line, Err: err}
}

func (b *builder) lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return NamespaceXML, true
	}
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if uri, ok := b.scopes[i][prefix]; ok {
			return uri, true
		}
	}
	return "", prefix == ""
}

func (b *builder) start(t xml.StartElement) error {
	if b.root != nil && len(b.stack) == 0 {
		return fmt.Errorf("content after document element: <%s>", t.Name.Local)
	}

	scope := make(map[string]string)
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "xmlns":
			scope[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			scope[""] = a.Value
		}
	}
	b.scopes = append(b.scopes, scope)

	n := &Node{Prefix: t.Name.Space}
	uri, ok := b.lookup(t.Name.Space)
	if !ok {
		return fmt.Errorf("undeclared namespace prefix %q on <%s:%s>", t.Name.Space, t.Name.Space, t.Name.Local)
	}
	n.Name = Name{Space: uri, Local: t.Name.Local}

	for _, a := range t.Attr {
		attr := Attr{Prefix: a.Name.Space, Name: Name{Local: a.Name.Local}, Value: a.Value}
		if !attr.IsNamespaceDecl() && a.Name.Space != "" {
			uri, ok := b.lookup(a.Name.Space)
			if !ok {
				return fmt.Errorf("undeclared namespace prefix %q on attribute %s", a.Name.Space, attr.qualified())
			}
			attr.Name.Space = uri
		}
		n.Attrs = append(n.Attrs, attr)
	}

	if len(b.stack) == 0 {
		b.root = n
	} else {
		b.stack[len(b.stack)-1].appendChild(n)
	}
	b.stack = append(b.stack, n)
	return nil
}

func (b *builder) end(t xml.EndElement) error {
	if len(b.stack) == 0 {
		return fmt.Errorf("unexpected closing tag </%s>", t.Name.Local)
	}
	top := b.stack[len(b.stack)-1]
	if top.Prefix != t.Name.Space || top.Name.Local != t.Name.Local {
		closing := t.Name.Local
		if t.Name.Space != "" {
			closing = t.Name.Space + ":" + t.Name.Local
		}
		return fmt.Errorf("element <%s> closed by </%s>", top.QualifiedName(), closing)
	}
	b.stack = b.stack[:len(b.stack)-1]
	b.scopes = b.scopes[:len(b.scopes)-1]
	return nil
}

func (b *builder) text(s string) error {
	if len(b.stack) == 0 {
		if strings.TrimSpace(s) != "" {
			return errors.New("character data outside document element")
		}
		return nil
	}
	b.stack[len(b.stack)-1].appendText(s)
	return nil
}
