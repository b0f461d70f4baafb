// File: pkg/archive/zip.go
package archive

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zip"
)

func openZip(blob []byte) (*Archive, error) {
	reader, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, err
	}

	a := newArchive(FormatZip)
	for _, f := range reader.File {
		file := f
		a.add(file.Name, file.FileInfo().IsDir(), int64(file.UncompressedSize64), func() ([]byte, error) {
			rc, err := file.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		})
	}
	return a, nil
}
