package archive

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a named entry is not in the archive.
var ErrNotFound = errors.New("entry not found")

// Kind classifies an archive failure.
type Kind int

const (
	KindMissing    Kind = iota + 1 // path does not exist
	KindUnreadable                 // path exists but cannot be read as a file
	KindCorrupt                    // not a valid zip package
	KindCompound                   // an OLE compound file rather than a zip package
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindUnreadable:
		return "unreadable"
	case KindCorrupt:
		return "corrupt"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Error is a failure to open or read the archive as a whole. It aborts the
// run, unlike per-payload decode errors.
type Error struct {
	Kind Kind
	Path string
	Err  error

	// Set for KindCompound.
	Streams   []string
	Encrypted bool
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissing:
		return fmt.Sprintf("File not found: %s", e.Path)
	case KindCompound:
		if e.Encrypted {
			return fmt.Sprintf("%s is a password-protected document (OLE compound file with EncryptedPackage); decrypt it first", e.Path)
		}
		return fmt.Sprintf("%s is an OLE compound file, not a zip package (streams: %s)", e.Path, strings.Join(e.Streams, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to open %s (%s): %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("failed to open %s (%s)", e.Path, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var aerr *Error
	return errors.As(err, &aerr) && aerr.Kind == kind
}

// DecodeError reports a payload whose bytes are not text. It is recorded on
// the payload and never aborts reading the rest of the archive.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
