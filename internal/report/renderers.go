package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roboco-io/docxinspect/internal/analysis"
	"github.com/roboco-io/docxinspect/internal/ooxml"
)

// Format names of the built-in renderers.
const (
	FormatStructured = "structured"
	FormatYAML       = "yaml"
	FormatRawMarkup  = "raw-markup"
)

// StructuredRenderer renders records as JSON indented by two spaces.
type StructuredRenderer struct{}

func (StructuredRenderer) Name() string { return FormatStructured }

func (StructuredRenderer) Render(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data), nil
}

// YAMLRenderer renders records as YAML.
type YAMLRenderer struct{}

func (YAMLRenderer) Name() string { return FormatYAML }

func (YAMLRenderer) Render(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// MarkupRenderer renders the source element of a record as indented markup.
type MarkupRenderer struct {
	Indent string
}

func (MarkupRenderer) Name() string { return FormatRawMarkup }

func (r MarkupRenderer) Render(v any) (string, error) {
	var node *ooxml.Node
	switch x := v.(type) {
	case analysis.TableAnalysis:
		node = x.Source
	case *analysis.TableAnalysis:
		node = x.Source
	case analysis.StyleRecord:
		if x.Source == nil {
			return x.XML, nil
		}
		node = x.Source
	case analysis.Table:
		node = x.Node
	case *ooxml.Node:
		node = x
	default:
		return "", fmt.Errorf("%s cannot render %T", FormatRawMarkup, v)
	}

	if node == nil {
		return "", fmt.Errorf("%s: record has no source markup", FormatRawMarkup)
	}
	return ooxml.Indent(node, r.Indent), nil
}
