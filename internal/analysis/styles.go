package analysis

import (
	"strings"

	"github.com/roboco-io/docxinspect/internal/ooxml"
)

// TableStyleType is the w:type value of table styles in the style catalog.
const TableStyleType = "table"

// ExtractTableStyles returns the table styles defined in stylesXML, in
// catalog order. Paragraph, character and numbering styles are skipped.
// A style without w:name gets a nil Name. The only failure is stylesXML not
// parsing at all, reported as a *ooxml.ParseError.
func ExtractTableStyles(stylesXML string, indent string) ([]StyleRecord, error) {
	if strings.TrimSpace(stylesXML) == "" {
		return nil, nil
	}

	root, err := ooxml.Parse(stylesXML)
	if err != nil {
		return nil, err
	}

	var styles []StyleRecord
	for _, style := range root.Iter(ooxml.W("style")) {
		if t, _ := style.Attr(ooxml.W("type")); t != TableStyleType {
			continue
		}
		id, _ := style.Attr(ooxml.W("styleId"))
		styles = append(styles, StyleRecord{
			StyleID: id,
			Name:    childAttr(style, "name", "val"),
			XML:     ooxml.Indent(style, indent),
			Source:  style,
		})
	}
	return styles, nil
}
