// Package docxtest builds small WordprocessingML packages for tests.
package docxtest

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// Entry is one zip entry.
type Entry struct {
	Name string
	Data []byte
}

// Text returns an entry holding s.
func Text(name, s string) Entry {
	return Entry{Name: name, Data: []byte(s)}
}

// Write creates a zip archive named name under t.TempDir() holding entries
// in the given order and returns its path.
func Write(t *testing.T, name string, entries ...Entry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	w := zip.NewWriter(f)
	for _, e := range entries {
		addZipFile(t, w, e.Name, e.Data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}
	return path
}

// WriteDocument writes a package with the standard parts around the given
// main document and style catalog. Empty strings leave the part out.
func WriteDocument(t *testing.T, documentXML, stylesXML string) string {
	t.Helper()

	entries := []Entry{
		Text("[Content_Types].xml", ContentTypes),
		Text("_rels/.rels", PackageRels),
	}
	if documentXML != "" {
		entries = append(entries, Text("word/document.xml", documentXML))
	}
	if stylesXML != "" {
		entries = append(entries, Text("word/styles.xml", stylesXML))
	}
	entries = append(entries,
		Text("word/_rels/document.xml.rels", DocumentRels),
		Entry{Name: "word/media/image1.png", Data: []byte{0x89, 'P', 'N', 'G'}},
	)
	return Write(t, "test.docx", entries...)
}

func addZipFile(t *testing.T, w *zip.Writer, name string, content []byte) {
	t.Helper()
	f, err := w.Create(name)
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if _, err := f.Write(content); err != nil {
		t.Fatalf("failed to write zip entry: %v", err)
	}
}

const ContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const PackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const DocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

// Document has one 3x2 table with a header row and grid widths
// 2000/3000/1000 twips.
const Document = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Intro</w:t></w:r></w:p><w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="0" w:type="auto"/></w:tblPr><w:tblGrid><w:gridCol w:w="2000"/><w:gridCol w:w="3000"/><w:gridCol w:w="1000"/></w:tblGrid><w:tr><w:trPr><w:tblHeader/></w:trPr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Qty</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Note</w:t></w:r></w:p></w:tc></w:tr><w:tr><w:tc><w:p><w:r><w:t>Apple</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>3</w:t></w:r></w:p></w:tc><w:tc><w:p/></w:tc></w:tr></w:tbl><w:sectPr/></w:body></w:document>`

// Styles holds one paragraph style and one table style.
const Styles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style><w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders><w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/></w:tblBorders></w:tblPr></w:style></w:styles>`

// TruncatedStyles is a style catalog cut off mid-element.
const TruncatedStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:type="table" w:styleId="Tab`
