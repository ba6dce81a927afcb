// Package analysis decodes WordprocessingML tables and table styles into a
// normalized description of their formatting and shape.
//
// Every optional property is a pointer (or a nil slice) so that "not set in
// the markup" stays distinguishable from an explicit empty value. A property
// element present without its value attribute is reported as "". Nothing here
// resolves inheritance from styles or document defaults.
package analysis

import "github.com/roboco-io/docxinspect/internal/ooxml"

// TableAnalysis is the decoded description of one w:tbl element.
type TableAnalysis struct {
	Properties TableProperties `json:"properties" yaml:"properties"`
	Grid       []ColumnSpec    `json:"grid" yaml:"grid"`
	Rows       []RowAnalysis   `json:"rows" yaml:"rows"`
	Summary    TableSummary    `json:"summary" yaml:"summary"`

	// Source is the decoded w:tbl element.
	Source *ooxml.Node `json:"-" yaml:"-"`
}

// TableProperties holds the table-level properties from w:tblPr.
type TableProperties struct {
	Style         *string       `json:"style,omitempty" yaml:"style,omitempty"`
	Width         *TableWidth   `json:"width,omitempty" yaml:"width,omitempty"`
	Layout        *string       `json:"layout,omitempty" yaml:"layout,omitempty"`
	Justification *string       `json:"justification,omitempty" yaml:"justification,omitempty"`
	Borders       *TableBorders `json:"borders,omitempty" yaml:"borders,omitempty"`
	CellMargins   *CellMargins  `json:"cellMargins,omitempty" yaml:"cellMargins,omitempty"`
	Indent        *Measure      `json:"indent,omitempty" yaml:"indent,omitempty"`
	CellSpacing   *Measure      `json:"cellSpacing,omitempty" yaml:"cellSpacing,omitempty"`
}

// TableWidth is the preferred table width (w:tblW).
type TableWidth struct {
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
	Type  *string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Measure is a width-like value with its unit type (w:w and w:type).
type Measure struct {
	W    *string `json:"w,omitempty" yaml:"w,omitempty"`
	Type *string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Border describes one border edge. Space is only read for table borders.
type Border struct {
	Val   *string `json:"val,omitempty" yaml:"val,omitempty"`
	Sz    *string `json:"sz,omitempty" yaml:"sz,omitempty"`
	Color *string `json:"color,omitempty" yaml:"color,omitempty"`
	Space *string `json:"space,omitempty" yaml:"space,omitempty"`
}

// TableBorders holds the table border edges (w:tblBorders).
type TableBorders struct {
	Top     *Border `json:"top,omitempty" yaml:"top,omitempty"`
	Left    *Border `json:"left,omitempty" yaml:"left,omitempty"`
	Bottom  *Border `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Right   *Border `json:"right,omitempty" yaml:"right,omitempty"`
	InsideH *Border `json:"insideH,omitempty" yaml:"insideH,omitempty"`
	InsideV *Border `json:"insideV,omitempty" yaml:"insideV,omitempty"`
	Start   *Border `json:"start,omitempty" yaml:"start,omitempty"`
	End     *Border `json:"end,omitempty" yaml:"end,omitempty"`
}

// CellMargins holds the default cell margins (w:tblCellMar).
type CellMargins struct {
	Top    *Measure `json:"top,omitempty" yaml:"top,omitempty"`
	Left   *Measure `json:"left,omitempty" yaml:"left,omitempty"`
	Bottom *Measure `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Right  *Measure `json:"right,omitempty" yaml:"right,omitempty"`
	Start  *Measure `json:"start,omitempty" yaml:"start,omitempty"`
	End    *Measure `json:"end,omitempty" yaml:"end,omitempty"`
}

// ColumnSpec is one w:gridCol. WidthRaw is set only when w:w is present but
// not an integer; WidthTwips and WidthPx are then absent.
type ColumnSpec struct {
	WidthTwips *int     `json:"width_twips,omitempty" yaml:"width_twips,omitempty"`
	WidthPx    *float64 `json:"width_px,omitempty" yaml:"width_px,omitempty"`
	WidthRaw   *string  `json:"width_raw,omitempty" yaml:"width_raw,omitempty"`
}

// RowAnalysis is one w:tr.
type RowAnalysis struct {
	Index      int            `json:"index" yaml:"index"`
	Properties RowProperties  `json:"properties" yaml:"properties"`
	Cells      []CellAnalysis `json:"cells" yaml:"cells"`
}

// RowProperties holds the row properties read from w:trPr.
type RowProperties struct {
	Height   *RowHeight `json:"height,omitempty" yaml:"height,omitempty"`
	IsHeader bool       `json:"isHeader,omitempty" yaml:"isHeader,omitempty"`
}

// RowHeight is w:trHeight: the value in twips and the sizing rule.
type RowHeight struct {
	Val   *string `json:"val,omitempty" yaml:"val,omitempty"`
	HRule *string `json:"hRule,omitempty" yaml:"hRule,omitempty"`
}

// CellAnalysis is one w:tc.
type CellAnalysis struct {
	Index          int            `json:"index" yaml:"index"`
	Properties     CellProperties `json:"properties" yaml:"properties"`
	ContentPreview string         `json:"content_preview" yaml:"content_preview"`
}

// CellProperties holds the cell properties read from w:tcPr.
type CellProperties struct {
	Width         *Measure     `json:"width,omitempty" yaml:"width,omitempty"`
	GridSpan      *string      `json:"gridSpan,omitempty" yaml:"gridSpan,omitempty"`
	VMerge        *string      `json:"vMerge,omitempty" yaml:"vMerge,omitempty"`
	HMerge        *string      `json:"hMerge,omitempty" yaml:"hMerge,omitempty"`
	VAlign        *string      `json:"vAlign,omitempty" yaml:"vAlign,omitempty"`
	Borders       *CellBorders `json:"borders,omitempty" yaml:"borders,omitempty"`
	Shading       *Shading     `json:"shading,omitempty" yaml:"shading,omitempty"`
	TextDirection *string      `json:"textDirection,omitempty" yaml:"textDirection,omitempty"`
}

// CellBorders holds the cell border edges (w:tcBorders).
type CellBorders struct {
	Top    *Border `json:"top,omitempty" yaml:"top,omitempty"`
	Left   *Border `json:"left,omitempty" yaml:"left,omitempty"`
	Bottom *Border `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Right  *Border `json:"right,omitempty" yaml:"right,omitempty"`
	Start  *Border `json:"start,omitempty" yaml:"start,omitempty"`
	End    *Border `json:"end,omitempty" yaml:"end,omitempty"`
}

// Shading is w:shd.
type Shading struct {
	Fill  *string `json:"fill,omitempty" yaml:"fill,omitempty"`
	Val   *string `json:"val,omitempty" yaml:"val,omitempty"`
	Color *string `json:"color,omitempty" yaml:"color,omitempty"`
}

// TableSummary is derived from Grid and Rows; see Summarize.
type TableSummary struct {
	TotalRows           int     `json:"total_rows" yaml:"total_rows"`
	TotalColumns        int     `json:"total_columns" yaml:"total_columns"`
	HasMergedCells      bool    `json:"has_merged_cells" yaml:"has_merged_cells"`
	TotalGridWidthTwips int     `json:"total_grid_width_twips" yaml:"total_grid_width_twips"`
	TotalGridWidthPx    float64 `json:"total_grid_width_px" yaml:"total_grid_width_px"`
}

// StyleRecord is one table style from the style catalog.
type StyleRecord struct {
	StyleID string  `json:"styleId" yaml:"styleId"`
	Name    *string `json:"name,omitempty" yaml:"name,omitempty"`
	XML     string  `json:"xml" yaml:"xml"`

	Source *ooxml.Node `json:"-" yaml:"-"`
}

// DisplayName returns the style name, or "none" when the style has no w:name.
func (s StyleRecord) DisplayName() string {
	if s.Name == nil {
		return "none"
	}
	return *s.Name
}
