// Package compression opens plain or compressed catalog data files.
package compression

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// MaxDecompressedSize caps how many bytes a single catalog file may expand to.
const MaxDecompressedSize int64 = 100 * 1024 * 1024

// Format identifies a compression format.
type Format string

const (
	FormatNone  Format = "none"
	FormatGzip  Format = "gzip"
	FormatXz    Format = "xz"
	FormatBzip2 Format = "bzip2"
)

// Extensions returns the file extensions recognised for each format, in the
// order a catalog loader should probe them.
func Extensions() []string {
	return []string{"", ".xz", ".gz", ".bz2"}
}

// DetectFormat detects the compression format from a file name.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return FormatGzip
	case ".xz":
		return FormatXz
	case ".bz2":
		return FormatBzip2
	default:
		return FormatNone
	}
}

// NewReader wraps r with the decompressor matching name's extension.
// The returned reader fails once MaxDecompressedSize bytes have been read.
// Closing it does not close r.
func NewReader(name string, r io.Reader) (io.ReadCloser, error) {
	return NewReaderLimit(name, r, MaxDecompressedSize)
}

// NewReaderLimit is NewReader with an explicit decompressed size limit.
func NewReaderLimit(name string, r io.Reader, limit int64) (io.ReadCloser, error) {
	switch DetectFormat(name) {
	case FormatGzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &limitedReadCloser{LimitedReader: NewLimitedReader(gzr, limit), closer: gzr}, nil

	case FormatXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return &limitedReadCloser{LimitedReader: NewLimitedReader(xzr, limit)}, nil

	case FormatBzip2:
		return &limitedReadCloser{LimitedReader: NewLimitedReader(bzip2.NewReader(r), limit)}, nil

	default:
		return &limitedReadCloser{LimitedReader: NewLimitedReader(r, limit)}, nil
	}
}

type limitedReadCloser struct {
	*LimitedReader
	closer io.Closer
}

func (l *limitedReadCloser) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
