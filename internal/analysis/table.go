package analysis

import (
	"math"
	"strconv"
	"strings"

	"github.com/roboco-io/docxinspect/internal/ooxml"
)

const (
	// TwipsPerPixel converts grid widths to pixels. It assumes the 96 DPI
	// publishing default (1440 twips per inch / 96 px per inch) and is only an
	// approximation of what a renderer will draw.
	TwipsPerPixel = 15

	// PreviewLength is the maximum number of characters in a content preview.
	PreviewLength = 100

	// MergeContinue marks a cell that continues a merge started in an earlier
	// row (vMerge) or column (hMerge).
	MergeContinue = "continue"
)

var (
	tableBorderEdges = []string{"top", "left", "bottom", "right", "insideH", "insideV", "start", "end"}
	cellBorderEdges  = []string{"top", "left", "bottom", "right", "start", "end"}
	marginEdges      = []string{"top", "left", "bottom", "right", "start", "end"}
)

// Analyze decodes a w:tbl element. The caller guarantees tbl is a table.
// Missing optional markup is reported as absent fields, never as an error.
func Analyze(tbl *ooxml.Node) TableAnalysis {
	a := TableAnalysis{
		Properties: tableProperties(tbl.Child(ooxml.W("tblPr"))),
		Grid:       tableGrid(tbl.Child(ooxml.W("tblGrid"))),
		Rows:       make([]RowAnalysis, 0),
		Source:     tbl,
	}

	for i, tr := range tbl.ChildrenNamed(ooxml.W("tr")) {
		a.Rows = append(a.Rows, analyzeRow(i, tr))
	}

	a.Summary = Summarize(a.Grid, a.Rows)
	return a
}

// Summarize derives the table summary from the grid and rows.
//
// HasMergedCells only looks at gridSpan and vMerge; a cell carrying hMerge
// alone does not count. A gridSpan element counts even without a value.
func Summarize(grid []ColumnSpec, rows []RowAnalysis) TableSummary {
	s := TableSummary{
		TotalRows:    len(rows),
		TotalColumns: len(grid),
	}

	var px float64
	for _, col := range grid {
		if col.WidthTwips != nil {
			s.TotalGridWidthTwips += *col.WidthTwips
		}
		if col.WidthPx != nil {
			px += *col.WidthPx
		}
	}
	s.TotalGridWidthPx = round2(px)

	for _, row := range rows {
		for _, cell := range row.Cells {
			if cell.Properties.GridSpan != nil || cell.Properties.VMerge != nil {
				s.HasMergedCells = true
			}
		}
	}
	return s
}

// TwipsToPixels converts a width in twips to pixels rounded to 2 decimals.
func TwipsToPixels(twips int) float64 {
	return round2(float64(twips) / TwipsPerPixel)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func tableProperties(tblPr *ooxml.Node) TableProperties {
	var p TableProperties
	if tblPr == nil {
		return p
	}

	p.Style = childValue(tblPr, "tblStyle", "val")
	if tblW := tblPr.Child(ooxml.W("tblW")); tblW != nil {
		p.Width = &TableWidth{Value: attr(tblW, "w"), Type: attr(tblW, "type")}
	}
	p.Layout = childValue(tblPr, "tblLayout", "type")
	p.Justification = childValue(tblPr, "jc", "val")

	if borders := tblPr.Child(ooxml.W("tblBorders")); borders != nil {
		edges := readBorders(borders, tableBorderEdges, true)
		p.Borders = &TableBorders{
			Top:     edges["top"],
			Left:    edges["left"],
			Bottom:  edges["bottom"],
			Right:   edges["right"],
			InsideH: edges["insideH"],
			InsideV: edges["insideV"],
			Start:   edges["start"],
			End:     edges["end"],
		}
	}

	if mar := tblPr.Child(ooxml.W("tblCellMar")); mar != nil {
		m := make(map[string]*Measure)
		for _, side := range marginEdges {
			m[side] = measure(mar.Child(ooxml.W(side)))
		}
		p.CellMargins = &CellMargins{
			Top:    m["top"],
			Left:   m["left"],
			Bottom: m["bottom"],
			Right:  m["right"],
			Start:  m["start"],
			End:    m["end"],
		}
	}

	p.Indent = measure(tblPr.Child(ooxml.W("tblInd")))
	p.CellSpacing = measure(tblPr.Child(ooxml.W("tblCellSpacing")))
	return p
}

func tableGrid(grid *ooxml.Node) []ColumnSpec {
	cols := make([]ColumnSpec, 0)
	for _, gc := range grid.ChildrenNamed(ooxml.W("gridCol")) {
		cols = append(cols, columnSpec(gc))
	}
	return cols
}

// columnSpec reads w:gridCol/@w:w. A value that is not an integer is kept as
// WidthRaw and contributes nothing to the summary.
func columnSpec(gc *ooxml.Node) ColumnSpec {
	var c ColumnSpec
	raw, ok := gc.Attr(ooxml.W("w"))
	if !ok || raw == "" {
		return c
	}
	twips, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.WidthRaw = &raw
		return c
	}
	px := TwipsToPixels(twips)
	c.WidthTwips = &twips
	c.WidthPx = &px
	return c
}

func analyzeRow(index int, tr *ooxml.Node) RowAnalysis {
	row := RowAnalysis{
		Index: index,
		Cells: make([]CellAnalysis, 0),
	}

	if trPr := tr.Child(ooxml.W("trPr")); trPr != nil {
		if h := trPr.Child(ooxml.W("trHeight")); h != nil {
			row.Properties.Height = &RowHeight{Val: attr(h, "val"), HRule: attr(h, "hRule")}
		}
		row.Properties.IsHeader = trPr.Child(ooxml.W("tblHeader")) != nil
	}

	for i, tc := range tr.ChildrenNamed(ooxml.W("tc")) {
		row.Cells = append(row.Cells, analyzeCell(i, tc))
	}
	return row
}

func analyzeCell(index int, tc *ooxml.Node) CellAnalysis {
	cell := CellAnalysis{
		Index:          index,
		ContentPreview: ContentPreview(tc),
	}

	tcPr := tc.Child(ooxml.W("tcPr"))
	if tcPr == nil {
		return cell
	}

	p := &cell.Properties
	p.Width = measure(tcPr.Child(ooxml.W("tcW")))
	p.GridSpan = childValue(tcPr, "gridSpan", "val")
	p.VMerge = mergeMarker(tcPr.Child(ooxml.W("vMerge")))
	p.HMerge = mergeMarker(tcPr.Child(ooxml.W("hMerge")))
	p.VAlign = childValue(tcPr, "vAlign", "val")

	if borders := tcPr.Child(ooxml.W("tcBorders")); borders != nil {
		edges := readBorders(borders, cellBorderEdges, false)
		if len(edges) > 0 {
			p.Borders = &CellBorders{
				Top:    edges["top"],
				Left:   edges["left"],
				Bottom: edges["bottom"],
				Right:  edges["right"],
				Start:  edges["start"],
				End:    edges["end"],
			}
		}
	}

	if shd := tcPr.Child(ooxml.W("shd")); shd != nil {
		p.Shading = &Shading{Fill: attr(shd, "fill"), Val: attr(shd, "val"), Color: attr(shd, "color")}
	}
	p.TextDirection = childValue(tcPr, "textDirection", "val")
	return cell
}

// ContentPreview joins the text of every w:t under the cell with single
// spaces and cuts the result at PreviewLength characters.
func ContentPreview(tc *ooxml.Node) string {
	var parts []string
	for _, t := range tc.Iter(ooxml.W("t")) {
		if text := t.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	return ooxml.Truncate(strings.Join(parts, " "), PreviewLength)
}

// mergeMarker reads a vMerge/hMerge element. A present element without a
// value continues an existing merge.
func mergeMarker(n *ooxml.Node) *string {
	if n == nil {
		return nil
	}
	if v, _ := n.Attr(ooxml.W("val")); v != "" {
		return &v
	}
	marker := MergeContinue
	return &marker
}

// readBorders returns the edges present under a border container, keyed by
// edge name.
func readBorders(container *ooxml.Node, edges []string, withSpace bool) map[string]*Border {
	out := make(map[string]*Border)
	for _, edge := range edges {
		e := container.Child(ooxml.W(edge))
		if e == nil {
			continue
		}
		b := &Border{Val: attr(e, "val"), Sz: attr(e, "sz"), Color: attr(e, "color")}
		if withSpace {
			b.Space = attr(e, "space")
		}
		out[edge] = b
	}
	return out
}

func measure(n *ooxml.Node) *Measure {
	if n == nil {
		return nil
	}
	return &Measure{W: attr(n, "w"), Type: attr(n, "type")}
}

// attr returns a w: attribute of n, or nil when it is absent.
func attr(n *ooxml.Node, local string) *string {
	v, ok := n.Attr(ooxml.W(local))
	if !ok {
		return nil
	}
	return &v
}

// childAttr returns a w: attribute of the first w: child of n, or nil when
// either is absent.
func childAttr(n *ooxml.Node, child, local string) *string {
	c := n.Child(ooxml.W(child))
	if c == nil {
		return nil
	}
	return attr(c, local)
}

// childValue is childAttr for single-valued property elements: a child
// present without the attribute yields "" rather than nil.
func childValue(n *ooxml.Node, child, local string) *string {
	c := n.Child(ooxml.W(child))
	if c == nil {
		return nil
	}
	v, _ := c.Attr(ooxml.W(local))
	return &v
}
