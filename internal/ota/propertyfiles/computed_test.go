package propertyfiles

import (
	"archive/zip"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/ota/metadata"
	"github.com/oshokin/gen-update-config/internal/ota/otatest"
	"github.com/oshokin/gen-update-config/internal/ota/payload"
)

func openPackage(t *testing.T, path string) *zip.ReadCloser {
	t.Helper()

	rc, err := zip.OpenReader(path)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = rc.Close()
	})

	return rc
}

func computedFiles(t *testing.T, path string, includeNonStreaming bool) []updateconfig.PropertyFile {
	t.Helper()

	rc := openPackage(t, path)

	s, err := NewComputed().PropertyFilesString(context.Background(), &rc.Reader, includeNonStreaming)
	require.NoError(t, err)

	files, err := updateconfig.ParsePropertyFiles(s)
	require.NoError(t, err)

	return files
}

// TestComputed_StreamingPackage checks entry order and that every range addresses the entry content.
func TestComputed_StreamingPackage(t *testing.T) {
	t.Parallel()

	path := otatest.WritePackage(t, t.TempDir(), "ota.zip", otatest.StreamingEntries())
	files := computedFiles(t, path, false)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}

	require.Equal(t, []string{
		"payload_metadata.bin",
		"payload.bin",
		"payload_properties.txt",
		"care_map.txt",
		"compatibility.zip",
		"metadata",
	}, names)

	for _, f := range files {
		data := otatest.ReadRange(t, path, f.Offset, f.Size)

		switch f.Filename {
		case "payload.bin":
			require.Equal(t, otatest.Payload(), data)
		case "payload_metadata.bin":
			require.EqualValues(t, payload.HeaderSize+otatest.ManifestSize+otatest.MetadataSignatureSize, f.Size)
			require.Equal(t, payload.Magic, string(data[:4]))
		case "payload_properties.txt":
			require.Contains(t, string(data), "FILE_HASH=")
		case "metadata":
			require.Equal(t, "META-INF/COM/ANDROID/METADATA", string(data))
		default:
			require.Equal(t, strings.ToUpper(strings.ReplaceAll(f.Filename, ".", "-")), string(data))
		}
	}
}

// TestComputed_NonStreamingExtras adds apex_info.pb only for non-streaming installs and metadata.pb whenever present.
func TestComputed_NonStreamingExtras(t *testing.T) {
	t.Parallel()

	entries := append(otatest.StreamingEntries(),
		otatest.Entry{Name: "apex_info.pb", Data: []byte("APEX_INFO-PB")},
		otatest.Entry{Name: metadata.ProtoEntryName, Data: []byte("META-INF/COM/ANDROID/METADATA-PB")},
	)
	path := otatest.WritePackage(t, t.TempDir(), "ota.zip", entries)

	streaming := computedFiles(t, path, false)
	require.Len(t, streaming, 7)
	require.Equal(t, "metadata.pb", streaming[6].Filename)

	for _, f := range streaming {
		require.NotEqual(t, "apex_info.pb", f.Filename)
	}

	full := computedFiles(t, path, true)
	require.Len(t, full, 8)
	require.Equal(t, "apex_info.pb", full[5].Filename)
	require.Equal(t, "APEX_INFO-PB", string(otatest.ReadRange(t, path, full[5].Offset, full[5].Size)))
}

// TestComputed_Errors covers missing required entries, compressed entries and bad payloads.
func TestComputed_Errors(t *testing.T) {
	t.Parallel()

	without := func(name string) []otatest.Entry {
		var out []otatest.Entry
		for _, e := range otatest.StreamingEntries() {
			if e.Name != name {
				out = append(out, e)
			}
		}

		return out
	}

	replaced := func(e otatest.Entry) []otatest.Entry {
		return append(without(e.Name), e)
	}

	cases := map[string]struct {
		entries []otatest.Entry
		want    error
	}{
		"no payload":    {without("payload.bin"), errMissingEntry},
		"no properties": {without("payload_properties.txt"), errMissingEntry},
		"no metadata":   {without(metadata.EntryName), errMissingEntry},
		"deflated care map": {
			replaced(otatest.Entry{Name: "care_map.txt", Data: []byte("CARE_MAP-TXT"), Method: zip.Deflate}),
			errCompressedEntry,
		},
		"short payload": {
			replaced(otatest.Entry{Name: "payload.bin", Data: otatest.Payload()[:payload.HeaderSize]}),
			errPayloadTooShort,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := otatest.WritePackage(t, t.TempDir(), "ota.zip", c.entries)
			rc := openPackage(t, path)

			_, err := NewComputed().PropertyFilesString(context.Background(), &rc.Reader, false)
			require.ErrorIs(t, err, c.want)
		})
	}
}
