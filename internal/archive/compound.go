package archive

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/richardlehane/mscfb"
)

// encryptedPackageStream holds the encrypted zip of a password-protected
// document (MS-OFFCRYPTO).
const encryptedPackageStream = "EncryptedPackage"

// inspectCompound lists the streams of an OLE compound file and returns the
// KindCompound error describing it.
func inspectCompound(path string, r io.ReaderAt) error {
	doc, err := mscfb.New(r)
	if err != nil {
		return &Error{Kind: KindCorrupt, Path: path, Err: fmt.Errorf("failed to read compound file: %w", err)}
	}

	cerr := &Error{Kind: KindCompound, Path: path}
	for _, entry := range doc.File {
		name := entry.Name
		if len(entry.Path) > 0 {
			name = strings.Join(entry.Path, "/") + "/" + entry.Name
		}
		cerr.Streams = append(cerr.Streams, name)

		if entry.Name == encryptedPackageStream {
			cerr.Encrypted = true
		}
	}
	sort.Strings(cerr.Streams)
	return cerr
}
