package analysis

import (
	"strings"

	"github.com/roboco-io/docxinspect/internal/ooxml"
)

// Table is one w:tbl found in the main document part.
type Table struct {
	Index int
	Node  *ooxml.Node
}

// XML returns the table subtree as indented markup.
func (t Table) XML(indent string) string {
	return ooxml.Indent(t.Node, indent)
}

// Analyze decodes the table.
func (t Table) Analyze() TableAnalysis {
	return Analyze(t.Node)
}

// ExtractTables returns every w:tbl in documentXML in document order, nested
// tables included. An empty payload holds no tables. Markup that does not
// parse yields a *ooxml.ParseError and no tables.
func ExtractTables(documentXML string) ([]Table, error) {
	if strings.TrimSpace(documentXML) == "" {
		return nil, nil
	}

	root, err := ooxml.Parse(documentXML)
	if err != nil {
		return nil, err
	}

	var tables []Table
	for i, tbl := range root.Iter(ooxml.W("tbl")) {
		tables = append(tables, Table{Index: i, Node: tbl})
	}
	return tables, nil
}
