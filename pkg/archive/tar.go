// File: pkg/archive/tar.go
package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func openTarGz(blob []byte) (*Archive, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return openTar(FormatTarGz, gz)
}

func openTarZst(blob []byte) (*Archive, error) {
	dec, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return openTar(FormatTarZst, dec)
}

func openTar(format Format, r io.Reader) (*Archive, error) {
	a := newArchive(format)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			a.add(hdr.Name, true, 0, nil)
		case tar.TypeReg:
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, err
			}
			a.add(hdr.Name, false, int64(len(data)), func() ([]byte, error) {
				return data, nil
			})
		default:
			// Links and special files carry no object payload
		}
	}
	return a, nil
}
