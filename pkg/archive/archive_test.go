package archive

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureFile struct {
	name string
	body string
}

var fixture = []fixtureFile{
	{name: "photos/"},
	{name: "photos/a.png", body: "png-bytes"},
	{name: "docs/b.pdf", body: "pdf-bytes"},
	{name: "./readme.txt", body: "hello"},
}

func buildZip(t *testing.T, files []fixtureFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.Create(f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeTar(t *testing.T, out io.Writer, files []fixtureFile) {
	t.Helper()
	tw := tar.NewWriter(out)
	for _, f := range files {
		hdr := &tar.Header{Name: f.name, Mode: 0o644, Size: int64(len(f.body)), Typeflag: tar.TypeReg}
		if f.name[len(f.name)-1] == '/' {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
		}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
}

func buildTarGz(t *testing.T, files []fixtureFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	writeTar(t, gz, files)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func buildTarZst(t *testing.T, files []fixtureFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	writeTar(t, enc, files)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func buildTar(t *testing.T, files []fixtureFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	writeTar(t, &buf, files)
	return buf.Bytes()
}

func TestOpenFormats(t *testing.T) {
	tests := []struct {
		name   string
		blob   []byte
		format Format
	}{
		{name: "zip", blob: buildZip(t, fixture), format: FormatZip},
		{name: "tar.gz", blob: buildTarGz(t, fixture), format: FormatTarGz},
		{name: "tar.zst", blob: buildTarZst(t, fixture), format: FormatTarZst},
		{name: "tar", blob: buildTar(t, fixture), format: FormatTar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Open(tt.blob)
			require.NoError(t, err)
			assert.Equal(t, tt.format, a.Format())

			entries := a.Entries()
			require.Len(t, entries, 4)
			assert.Equal(t, Entry{Path: "photos", IsDir: true}, entries[0])
			assert.Equal(t, "photos/a.png", entries[1].Path)
			assert.False(t, entries[1].IsDir)
			assert.Equal(t, "readme.txt", entries[3].Path)

			data, err := a.Read("docs/b.pdf")
			require.NoError(t, err)
			assert.Equal(t, "pdf-bytes", string(data))
		})
	}
}

func TestReadErrors(t *testing.T) {
	a, err := Open(buildZip(t, fixture))
	require.NoError(t, err)

	_, err = a.Read("missing.txt")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = a.Read("photos")
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestReadDuplicatePathKeepsFirstMember(t *testing.T) {
	dup := []fixtureFile{
		{name: "photos/a.txt", body: "first"},
		{name: "photos/a.txt", body: "second"},
	}
	for name, blob := range map[string][]byte{
		"zip":    buildZip(t, dup),
		"tar.gz": buildTarGz(t, dup),
	} {
		t.Run(name, func(t *testing.T) {
			a, err := Open(blob)
			require.NoError(t, err)
			assert.Len(t, a.Entries(), 2)

			data, err := a.Read("photos/a.txt")
			require.NoError(t, err)
			assert.Equal(t, "first", string(data))
		})
	}
}

func TestOpenRejectsCorruptInput(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		want error
	}{
		{name: "empty", blob: nil, want: ErrEmpty},
		{name: "random bytes", blob: []byte("definitely not an archive"), want: ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.blob)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("truncated zip", func(t *testing.T) {
		blob := buildZip(t, fixture)
		_, err := Open(blob[:len(blob)/2])
		assert.Error(t, err)
	})

	t.Run("truncated gzip", func(t *testing.T) {
		blob := buildTarGz(t, fixture)
		_, err := Open(blob[:12])
		assert.Error(t, err)
	})
}
