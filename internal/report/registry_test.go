package report

import (
	"strings"
	"testing"

	"github.com/roboco-io/docxinspect/internal/analysis"
	"github.com/roboco-io/docxinspect/internal/ooxml"
)

// mockRenderer is a test implementation of Renderer.
type mockRenderer struct {
	name string
}

func (m *mockRenderer) Name() string {
	return m.name
}

func (m *mockRenderer) Render(v any) (string, error) {
	return "mock output", nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	if len(r.List()) != 0 {
		t.Errorf("expected 0 renderers, got %v", r.List())
	}
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry("  ")

	names := r.List()
	if strings.Join(names, ",") != "raw-markup,structured,yaml" {
		t.Errorf("unexpected built-in renderers %v", names)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&mockRenderer{name: "test"}); err != nil {
		t.Fatalf("failed to register first: %v", err)
	}
	if err := r.Register(&mockRenderer{name: "test"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(nil); err == nil {
		t.Error("expected error for nil renderer")
	}
	if err := r.Register(&mockRenderer{}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestRegistry_GetAndRender(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockRenderer{name: "test"})

	got, err := r.Get("test")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got.Name() != "test" {
		t.Errorf("expected 'test', got %s", got.Name())
	}

	out, err := r.Render(nil, "test")
	if err != nil || out != "mock output" {
		t.Errorf("unexpected render result %q, %v", out, err)
	}

	if _, err := r.Render(nil, "nonexistent"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func sampleAnalysis(t *testing.T) analysis.TableAnalysis {
	t.Helper()

	tables, err := analysis.ExtractTables(`<w:document xmlns:w="` + ooxml.NamespaceW + `"><w:body>
<w:tbl>
  <w:tblGrid><w:gridCol w:w="1500"/><w:gridCol w:w="wide"/></w:tblGrid>
  <w:tr>
    <w:tc><w:tcPr><w:gridSpan w:val="2"/><w:shd w:fill="FFFF00"/></w:tcPr><w:p><w:r><w:t>Merged</w:t></w:r></w:p></w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
    <w:tc><w:p/></w:tc>
  </w:tr>
</w:tbl></w:body></w:document>`)
	if err != nil || len(tables) != 1 {
		t.Fatalf("failed to extract sample table: %v", err)
	}
	return tables[0].Analyze()
}

func TestStructuredRenderer(t *testing.T) {
	out, err := Render(sampleAnalysis(t), FormatStructured)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{
		"{\n  \"properties\": {},\n  \"grid\": [\n",
		`"width_twips": 1500`,
		`"width_px": 100`,
		`"width_raw": "wide"`,
		`"gridSpan": "2"`,
		`"vMerge": "continue"`,
		`"content_preview": "Merged"`,
		`"has_merged_cells": true`,
		`"total_grid_width_twips": 1500`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Source") {
		t.Error("source element must not be serialized")
	}
}

func TestStructuredRenderer_MatchesSchema(t *testing.T) {
	out, err := Render(sampleAnalysis(t), FormatStructured)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if err := ValidateStructured([]byte(out)); err != nil {
		t.Errorf("structured output does not validate: %v", err)
	}
}

func TestValidateStructured_Rejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"missing summary", `{"properties":{},"grid":[],"rows":[]}`},
		{"unknown field", `{"properties":{"colour":"red"},"grid":[],"rows":[],"summary":{"total_rows":0,"total_columns":0,"has_merged_cells":false,"total_grid_width_twips":0,"total_grid_width_px":0}}`},
		{"px without twips", `{"properties":{},"grid":[{"width_px":1}],"rows":[],"summary":{"total_rows":0,"total_columns":1,"has_merged_cells":false,"total_grid_width_twips":0,"total_grid_width_px":1}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateStructured([]byte(tc.json)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestYAMLRenderer(t *testing.T) {
	out, err := Render(sampleAnalysis(t), FormatYAML)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{"grid:\n", "width_twips: 1500", "vMerge: continue", "has_merged_cells: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected YAML to contain %q, got:\n%s", want, out)
		}
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("expected trailing newline trimmed")
	}
}

func TestMarkupRenderer(t *testing.T) {
	a := sampleAnalysis(t)

	out, err := Render(a, FormatRawMarkup)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(out, `<?xml version="1.0" ?>`+"\n<w:tbl") {
		t.Errorf("unexpected markup:\n%s", out)
	}

	style := analysis.StyleRecord{StyleID: "X", XML: "<kept/>"}
	if out, err := Render(style, FormatRawMarkup); err != nil || out != "<kept/>" {
		t.Errorf("expected stored style markup, got %q, %v", out, err)
	}

	if _, err := Render(analysis.TableAnalysis{}, FormatRawMarkup); err == nil {
		t.Error("expected error for analysis without source")
	}
	if _, err := Render(42, FormatRawMarkup); err == nil {
		t.Error("expected error for unsupported value")
	}
}
