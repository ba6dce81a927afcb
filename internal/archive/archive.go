package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
)

// Archive is an open WordprocessingML package.
type Archive struct {
	path   string
	reader *zip.ReadCloser
	index  map[string]*zip.File
}

// Open opens the package at path. Every failure is an *Error: a missing
// path, something that is not a regular file, a corrupt zip, or an OLE
// compound file (legacy .doc or an encrypted package).
func Open(path string) (*Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &Error{Kind: KindMissing, Path: path, Err: err}
		}
		return nil, &Error{Kind: KindUnreadable, Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &Error{Kind: KindUnreadable, Path: path, Err: fmt.Errorf("not a regular file")}
	}

	if err := checkContainer(path); err != nil {
		return nil, err
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, &Error{Kind: KindCorrupt, Path: path, Err: err}
	}

	a := &Archive{
		path:   path,
		reader: r,
		index:  make(map[string]*zip.File, len(r.File)),
	}
	for _, f := range r.File {
		// Duplicated names keep the first entry.
		if _, ok := a.index[f.Name]; !ok {
			a.index[f.Name] = f
		}
	}
	return a, nil
}

// checkContainer sniffs the magic bytes so compound files get a diagnosis
// instead of a bare "not a valid zip file".
func checkContainer(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &Error{Kind: KindUnreadable, Path: path, Err: err}
	}
	defer f.Close()

	format, err := DetectFormatFromReader(f)
	if err != nil {
		return &Error{Kind: KindCorrupt, Path: path, Err: err}
	}
	if format == FormatCompound {
		return inspectCompound(path, f)
	}
	return nil
}

// Path returns the path the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// Close releases resources.
func (a *Archive) Close() error {
	if a.reader != nil {
		return a.reader.Close()
	}
	return nil
}

// Entries returns the entry names in archive order. Directory entries are
// included as stored.
func (a *Archive) Entries() []string {
	names := make([]string, 0, len(a.reader.File))
	for _, f := range a.reader.File {
		names = append(names, f.Name)
	}
	return names
}

// Has reports whether the archive contains the named entry.
func (a *Archive) Has(name string) bool {
	_, ok := a.index[name]
	return ok
}

// ReadEntry returns the raw bytes of the named entry. A missing entry wraps
// ErrNotFound; a damaged entry is reported as a corrupt archive.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	f, ok := a.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &Error{Kind: KindCorrupt, Path: a.path, Err: fmt.Errorf("failed to open %s: %w", name, err)}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &Error{Kind: KindCorrupt, Path: a.path, Err: fmt.Errorf("failed to read %s: %w", name, err)}
	}
	return data, nil
}

// ListEntries opens the archive at path and returns its entry names.
func ListEntries(path string) ([]string, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.Entries(), nil
}

// ReadEntry opens the archive at path and returns one entry's bytes.
func ReadEntry(path, name string) ([]byte, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.ReadEntry(name)
}
