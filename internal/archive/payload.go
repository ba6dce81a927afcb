package archive

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/roboco-io/docxinspect/internal/ooxml"
)

// Well-known part names.
const (
	DocumentPart = "word/document.xml"
	StylesPart   = "word/styles.xml"
)

var errInvalidUTF8 = errors.New("invalid UTF-8")

// Payload is one text part of the package.
type Payload struct {
	Name string
	Text string
	Err  error // *DecodeError when Text is a placeholder
}

// Payloads holds the text parts of a package in archive order.
type Payloads struct {
	items []Payload
	index map[string]int
}

// NewPayloads returns an empty payload set.
func NewPayloads() *Payloads {
	return &Payloads{index: make(map[string]int)}
}

// Add appends a payload. A repeated name replaces the earlier text but keeps
// its position.
func (p *Payloads) Add(pl Payload) {
	if i, ok := p.index[pl.Name]; ok {
		p.items[i] = pl
		return
	}
	p.index[pl.Name] = len(p.items)
	p.items = append(p.items, pl)
}

// Len returns the number of payloads.
func (p *Payloads) Len() int {
	return len(p.items)
}

// All returns the payloads in archive order.
func (p *Payloads) All() []Payload {
	return p.items
}

// Names returns the payload names in archive order.
func (p *Payloads) Names() []string {
	names := make([]string, len(p.items))
	for i, pl := range p.items {
		names[i] = pl.Name
	}
	return names
}

// Get returns the text of the named payload.
func (p *Payloads) Get(name string) (string, bool) {
	i, ok := p.index[name]
	if !ok {
		return "", false
	}
	return p.items[i].Text, true
}

// Text returns the text of the named payload, or "" when it is absent.
func (p *Payloads) Text(name string) string {
	text, _ := p.Get(name)
	return text
}

// IsPayloadName reports whether an entry is loaded as text: markup parts
// (.xml) and relationship parts (.rels).
func IsPayloadName(name string) bool {
	return strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels")
}

// ReadPayloads loads every markup and relationship part as text. A part that
// cannot be read or decoded gets the placeholder "Error reading: <cause>" and
// its Err set; the remaining parts are still loaded.
func (a *Archive) ReadPayloads() *Payloads {
	payloads := NewPayloads()
	for _, name := range a.Entries() {
		if !IsPayloadName(name) {
			continue
		}

		pl := Payload{Name: name}
		data, err := a.ReadEntry(name)
		if err == nil {
			pl.Text, err = DecodeText(data)
		}
		if err != nil {
			derr := &DecodeError{Name: name, Err: err}
			pl.Err = derr
			pl.Text = fmt.Sprintf("Error reading: %v", err)
		}
		payloads.Add(pl)
	}
	return payloads
}

// ReadPayloads opens the archive at path and loads its text parts.
func ReadPayloads(path string) (*Payloads, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.ReadPayloads(), nil
}

// DecodeText converts part bytes to a string. UTF-16 parts are recognised by
// their byte order mark and transcoded; a UTF-8 byte order mark is dropped.
// Anything else must be valid UTF-8.
func DecodeText(data []byte) (string, error) {
	if !hasUTF16BOM(data) && !utf8.Valid(data) {
		return "", errInvalidUTF8
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

// ExtractOptions controls ExtractTo.
type ExtractOptions struct {
	Pretty ooxml.PrettyOptions
	Logger *slog.Logger
}

// ExtractTo writes every payload under dir, mirroring its part name.
// Payloads that start with an XML declaration are pretty-printed, others are
// written verbatim. Names that would land outside dir are skipped. It returns
// the number of files written.
func (p *Payloads) ExtractTo(dir string, opts ExtractOptions) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := 0
	for _, pl := range p.items {
		rel := filepath.FromSlash(pl.Name)
		if !filepath.IsLocal(rel) {
			logger.Warn("skipping entry outside output directory", "entry", pl.Name)
			continue
		}

		outPath := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", pl.Name, err)
		}

		content := pl.Text
		if strings.HasPrefix(content, "<?xml") {
			content = ooxml.PrettyPrint(content, opts.Pretty)
		}

		if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		logger.Debug("extracted entry", "entry", pl.Name, "path", outPath)
		written++
	}
	return written, nil
}
