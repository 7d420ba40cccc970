// Package otatest builds synthetic OTA packages for tests.
package otatest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/gen-update-config/internal/ota/metadata"
	"github.com/oshokin/gen-update-config/internal/ota/payload"
)

// Sizes of the synthetic payload parts.
const (
	ManifestSize          = 96
	MetadataSignatureSize = 32
	payloadBodySize       = 256
)

// Entry is one archive member.
type Entry struct {
	Name string
	Data []byte
	// Method defaults to zip.Store.
	Method uint16
}

// Payload returns a payload.bin with a valid header followed by filler bytes.
func Payload() []byte {
	header := &payload.Header{
		Version:               2,
		ManifestSize:          ManifestSize,
		MetadataSignatureSize: MetadataSignatureSize,
	}

	data := header.Encode()
	data = append(data, bytes.Repeat([]byte{'m'}, ManifestSize)...)
	data = append(data, bytes.Repeat([]byte{'s'}, MetadataSignatureSize)...)
	data = append(data, bytes.Repeat([]byte{'d'}, payloadBodySize)...)

	return data
}

// StreamingEntries mirrors a real A/B package: each small entry holds its own
// name upper-cased with '.' replaced by '-', and the metadata entry holds
// "META-INF/COM/ANDROID/METADATA".
func StreamingEntries() []Entry {
	return []Entry{
		{Name: "META-INF/com/android/otacert", Data: []byte("OTACERT"), Method: zip.Deflate},
		{Name: metadata.EntryName, Data: []byte("META-INF/COM/ANDROID/METADATA")},
		{Name: "payload.bin", Data: Payload()},
		{Name: "payload_properties.txt", Data: []byte("FILE_HASH=abc\nFILE_SIZE=408\n")},
		{Name: "care_map.txt", Data: []byte("CARE_MAP-TXT")},
		{Name: "compatibility.zip", Data: []byte("COMPATIBILITY-ZIP")},
	}
}

// WritePackage writes entries into dir/name and returns the path.
func WritePackage(tb testing.TB, dir, name string, entries []Entry) string {
	tb.Helper()

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	require.NoError(tb, err)

	w := zip.NewWriter(f)

	for _, e := range entries {
		method := e.Method
		if method == 0 {
			method = zip.Store
		}

		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		require.NoError(tb, err)

		_, err = fw.Write(e.Data)
		require.NoError(tb, err)
	}

	require.NoError(tb, w.Close())
	require.NoError(tb, f.Close())

	return path
}

// ReadRange returns size bytes at offset from the file at path.
func ReadRange(tb testing.TB, path string, offset, size int64) []byte {
	tb.Helper()

	f, err := os.Open(path)
	require.NoError(tb, err)

	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, size)
	_, err = f.ReadAt(buf, offset)
	require.NoError(tb, err)

	return buf
}
