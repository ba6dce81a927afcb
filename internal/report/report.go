// Package report renders inspection results as banner-delimited text
// sections: the table analyses, their markup, the table styles and the key
// package parts.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roboco-io/docxinspect/internal/analysis"
	"github.com/roboco-io/docxinspect/internal/archive"
	"github.com/roboco-io/docxinspect/internal/ooxml"
)

// Separator is the banner line around section titles.
var Separator = strings.Repeat("=", 80)

// DefaultKeyFiles are the parts shown in full by the structure report.
var DefaultKeyFiles = []string{
	"word/document.xml",
	"word/styles.xml",
	"word/numbering.xml",
	"word/settings.xml",
	"word/_rels/document.xml.rels",
}

// Section formats one report section: a separator, the title, another
// separator, the content, then a newline.
func Section(title, content string) string {
	return fmt.Sprintf("\n%s\n%s\n%s\n%s\n", Separator, title, Separator, content)
}

// Options controls report content.
type Options struct {
	// Path is the archive path shown in the header section.
	Path string
	// Raw shows key parts verbatim and skips analyses in the tables report.
	Raw bool
	// TablesOnly limits Inspect to tables and styles.
	TablesOnly bool
	// IncludeRawXML adds each table's markup to Inspect output.
	IncludeRawXML bool
	// Format is the renderer used for analysis bodies.
	Format string
	// Validate checks structured analysis bodies against the JSON Schema.
	Validate bool
	// KeyFiles are the parts shown in full.
	KeyFiles []string

	Pretty   ooxml.PrettyOptions
	Registry *Registry
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatStructured
	}
	if o.KeyFiles == nil {
		o.KeyFiles = DefaultKeyFiles
	}
	if o.Registry == nil {
		o.Registry = DefaultRegistry
		if o.Pretty.Indent != "" && o.Pretty.Indent != ooxml.DefaultIndent {
			o.Registry = NewDefaultRegistry(o.Pretty.Indent)
		}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// writer accumulates sections and keeps the first write error.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) section(title, content string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, Section(title, content))
}

// WriteTablesReport writes the tables-only report: every table's markup
// and analysis followed by the table styles.
func WriteTablesReport(out io.Writer, payloads *archive.Payloads, opts Options) error {
	opts = opts.withDefaults()
	w := &writer{w: out}

	tables, tablesErr := analysis.ExtractTables(payloads.Text(archive.DocumentPart))

	w.section("DOCX TABLE INSPECTOR", fmt.Sprintf("File: %s\nTables found: %d", opts.Path, len(tables)))
	if tablesErr != nil {
		w.section("Error", tablesErr.Error())
	}

	for _, tbl := range tables {
		w.section(fmt.Sprintf("TABLE %d - RAW XML", tbl.Index), tbl.XML(opts.Pretty.Indent))
		if !opts.Raw {
			w.section(fmt.Sprintf("TABLE %d - ANALYSIS", tbl.Index), opts.renderAnalysis(tbl))
		}
	}

	if stylesXML := payloads.Text(archive.StylesPart); stylesXML != "" {
		styles, err := analysis.ExtractTableStyles(stylesXML, opts.Pretty.Indent)
		switch {
		case err != nil:
			w.section("TABLE STYLES", "")
			w.section("Error", err.Error())
		case len(styles) > 0:
			w.section("TABLE STYLES", "")
			for _, s := range styles {
				w.section(fmt.Sprintf("Style: %s (%s)", s.StyleID, s.DisplayName()), s.XML)
			}
		}
	}
	return w.err
}

// WriteStructureReport writes the full structure report: the part list, the
// key parts and a summary per table.
func WriteStructureReport(out io.Writer, payloads *archive.Payloads, opts Options) error {
	opts = opts.withDefaults()
	w := &writer{w: out}

	names := payloads.Names()
	sort.Strings(names)

	w.section("DOCX STRUCTURE INSPECTOR", fmt.Sprintf("File: %s\nFiles found: %d", opts.Path, payloads.Len()))
	w.section("FILES IN DOCX", strings.Join(names, "\n"))

	for _, name := range opts.KeyFiles {
		content, ok := payloads.Get(name)
		if !ok {
			continue
		}
		if !opts.Raw {
			content = ooxml.PrettyPrint(content, opts.Pretty)
		}
		w.section(name, content)
	}

	tables, err := analysis.ExtractTables(payloads.Text(archive.DocumentPart))
	if err != nil {
		w.section("TABLE ANALYSIS", fmt.Sprintf("Error: %v", err))
		return w.err
	}
	if len(tables) > 0 {
		w.section("TABLE ANALYSIS", fmt.Sprintf("Found %d table(s)", len(tables)))
		for _, tbl := range tables {
			w.section(fmt.Sprintf("Table %d Summary", tbl.Index), opts.renderAnalysis(tbl))
		}
	}
	return w.err
}

// Inspect opens the archive at opts.Path and returns the interactive report.
// Failures are reported inline as "Error: ..." text.
func Inspect(opts Options) string {
	opts = opts.withDefaults()

	payloads, err := archive.ReadPayloads(opts.Path)
	if err != nil {
		if archive.IsKind(err, archive.KindMissing) {
			return fmt.Sprintf("Error: File not found: %s", opts.Path)
		}
		return fmt.Sprintf("Error extracting DOCX: %v", err)
	}

	var sb strings.Builder
	if err := WriteInspection(&sb, payloads, opts); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return sb.String()
}

// WriteInspection writes the interactive report for payloads already read:
// table analyses (optionally with markup), table styles and, unless
// TablesOnly is set, the key parts.
func WriteInspection(out io.Writer, payloads *archive.Payloads, opts Options) error {
	opts = opts.withDefaults()
	w := &writer{w: out}

	w.section("DOCX INSPECTOR", fmt.Sprintf("File: %s\nFiles in archive: %d", opts.Path, payloads.Len()))

	tables, tablesErr := analysis.ExtractTables(payloads.Text(archive.DocumentPart))
	w.section("TABLES FOUND", fmt.Sprintf("Total tables: %d", len(tables)))
	if tablesErr != nil {
		w.section("Error", tablesErr.Error())
	}

	for _, tbl := range tables {
		w.section(fmt.Sprintf("TABLE %d - ANALYSIS", tbl.Index), opts.renderAnalysis(tbl))
		if opts.IncludeRawXML {
			w.section(fmt.Sprintf("TABLE %d - RAW XML", tbl.Index), tbl.XML(opts.Pretty.Indent))
		}
	}

	if stylesXML := payloads.Text(archive.StylesPart); stylesXML != "" {
		styles, err := analysis.ExtractTableStyles(stylesXML, opts.Pretty.Indent)
		if err != nil {
			w.section("Style Error", err.Error())
		}
		for _, s := range styles {
			w.section(fmt.Sprintf("TABLE STYLE: %s (%s)", s.StyleID, s.DisplayName()), s.XML)
		}
	}

	if !opts.TablesOnly {
		for _, name := range opts.KeyFiles {
			if content, ok := payloads.Get(name); ok {
				w.section(name, ooxml.PrettyPrint(content, opts.Pretty))
			}
		}
	}
	return w.err
}

// renderAnalysis decodes a table and renders it in the configured format.
// Rendering problems become inline text so the rest of the report survives.
func (o Options) renderAnalysis(tbl analysis.Table) string {
	a := tbl.Analyze()

	text, err := o.Registry.Render(a, o.Format)
	if err != nil {
		o.Logger.Warn("failed to render table analysis", "table", tbl.Index, "format", o.Format, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}

	if o.Validate && o.Format == FormatStructured {
		if err := ValidateStructured([]byte(text)); err != nil {
			o.Logger.Warn("table analysis failed schema validation", "table", tbl.Index, "error", err)
			return text + "\n\nValidation error: " + err.Error()
		}
	}
	return text
}
