// Package archive reads WordprocessingML packages: the zip container, its
// named parts, and the text payloads the inspector works on.
package archive

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a container format.
type Format int

const (
	FormatUnknown  Format = iota
	FormatPackage         // zip-based Open Packaging Conventions package (.docx)
	FormatCompound        // OLE compound file (.doc, or a password-protected .docx)
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatPackage:
		return "package"
	case FormatCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// DetectFormat detects the container format from the file path.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx", ".docm", ".dotx", ".dotm":
		return FormatPackage
	case ".doc", ".dot":
		return FormatCompound
	default:
		return FormatUnknown
	}
}

// DetectFormatFromReader detects the format by reading magic bytes.
func DetectFormatFromReader(r io.ReaderAt) (Format, error) {
	buf := make([]byte, 8)
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return FormatUnknown, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if n < 4 {
		return FormatUnknown, fmt.Errorf("file too small to detect format")
	}

	// Zip local file header or end-of-central-directory (empty archive).
	if buf[0] == 'P' && buf[1] == 'K' {
		return FormatPackage, nil
	}

	// OLE/CFBF
	if buf[0] == 0xD0 && buf[1] == 0xCF && buf[2] == 0x11 && buf[3] == 0xE0 {
		return FormatCompound, nil
	}

	return FormatUnknown, nil
}
