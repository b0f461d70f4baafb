// File: pkg/archive/archive.go
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatZip    Format = "zip"
	FormatTar    Format = "tar"
	FormatTarGz  Format = "tar.gz"
	FormatTarZst Format = "tar.zst"
)

var (
	ErrEmpty             = errors.New("archive is empty")
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrEntryNotFound     = errors.New("archive entry not found")
	ErrIsDirectory       = errors.New("archive entry is a directory")
)

// Entry is one path of the archive's flat listing
type Entry struct {
	Path  string
	IsDir bool
	Size  int64
}

type opener func() ([]byte, error)

// Archive exposes a flat path listing and on-demand access to file contents
type Archive struct {
	format  Format
	entries []Entry
	files   map[string]opener
}

// Open detects the archive format from its magic bytes and indexes its entries
// Zip members are decompressed on demand. Tar streams are compressed as a whole, so their
// members are materialized while indexing
func Open(blob []byte) (*Archive, error) {
	if len(blob) == 0 {
		return nil, ErrEmpty
	}

	var (
		a   *Archive
		err error
	)
	switch detectFormat(blob) {
	case FormatZip:
		a, err = openZip(blob)
	case FormatTarGz:
		a, err = openTarGz(blob)
	case FormatTarZst:
		a, err = openTarZst(blob)
	case FormatTar:
		a, err = openTar(FormatTar, bytes.NewReader(blob))
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s archive: %w", detectFormat(blob), err)
	}
	return a, nil
}

func detectFormat(blob []byte) Format {
	switch {
	case bytes.HasPrefix(blob, []byte("PK\x03\x04")), bytes.HasPrefix(blob, []byte("PK\x05\x06")):
		return FormatZip
	case bytes.HasPrefix(blob, []byte{0x1f, 0x8b}):
		return FormatTarGz
	case bytes.HasPrefix(blob, []byte{0x28, 0xb5, 0x2f, 0xfd}):
		return FormatTarZst
	case len(blob) > 262 && string(blob[257:262]) == "ustar":
		return FormatTar
	default:
		return ""
	}
}

func newArchive(format Format) *Archive {
	return &Archive{format: format, files: make(map[string]opener)}
}

func (a *Archive) add(name string, isDir bool, size int64, open opener) {
	path := cleanPath(name)
	if path == "" {
		return
	}
	if strings.HasSuffix(name, "/") {
		isDir = true
	}
	a.entries = append(a.entries, Entry{Path: path, IsDir: isDir, Size: size})
	if isDir {
		return
	}
	// A repeated path keeps the first member's contents, matching the listing order
	if _, seen := a.files[path]; !seen {
		a.files[path] = open
	}
}

func (a *Archive) Format() Format {
	return a.format
}

// Returns the entries in archive order
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Read decompresses and returns the contents of one file entry
func (a *Archive) Read(path string) ([]byte, error) {
	open, ok := a.files[cleanPath(path)]
	if !ok {
		for _, e := range a.entries {
			if e.IsDir && e.Path == cleanPath(path) {
				return nil, fmt.Errorf("%s: %w", path, ErrIsDirectory)
			}
		}
		return nil, fmt.Errorf("%s: %w", path, ErrEntryNotFound)
	}
	data, err := open()
	if err != nil {
		return nil, fmt.Errorf("error decompressing %s: %w", path, err)
	}
	return data, nil
}

func cleanPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	for strings.HasPrefix(name, "./") {
		name = strings.TrimPrefix(name, "./")
	}
	return strings.Trim(name, "/")
}
