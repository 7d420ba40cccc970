package propertyfiles

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oshokin/gen-update-config/internal/logger"
	"github.com/oshokin/gen-update-config/internal/ota/metadata"
)

// maxMetadataSize bounds how much of a metadata entry is read.
const maxMetadataSize = 1 << 20

var errNotRecorded = errors.New("package metadata records no property files")

// Recorded returns the property-files string stored in the package metadata.
// The protobuf metadata is preferred over the text one.
type Recorded struct {
	streamingKeys    []string
	nonStreamingKeys []string
}

// NewRecorded returns a Recorded provider.
func NewRecorded() *Recorded {
	return &Recorded{
		streamingKeys:    []string{metadata.StreamingPropertyFilesKey, metadata.PropertyFilesKey},
		nonStreamingKeys: []string{metadata.PropertyFilesKey, metadata.StreamingPropertyFilesKey},
	}
}

// PropertyFilesString returns the recorded string with its reserved-space
// padding trimmed. The streaming set is preferred unless includeNonStreaming
// asks for the broader one; either falls back to the other key.
func (r *Recorded) PropertyFilesString(ctx context.Context, pkg *zip.Reader, includeNonStreaming bool) (string, error) {
	entries := indexEntries(pkg)

	keys := r.streamingKeys
	if includeNonStreaming {
		keys = r.nonStreamingKeys
	}

	sources := []struct {
		entry string
		parse func([]byte) (map[string]string, error)
	}{
		{metadata.ProtoEntryName, metadata.ParsePropertyFiles},
		{metadata.EntryName, func(b []byte) (map[string]string, error) { return metadata.ParseText(b), nil }},
	}

	for _, source := range sources {
		f, ok := entries[source.entry]
		if !ok {
			continue
		}

		data, err := readEntry(f)
		if err != nil {
			return "", err
		}

		values, err := source.parse(data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", source.entry, err)
		}

		for _, key := range keys {
			value, ok := values[key]
			if !ok {
				continue
			}

			logger.DebugKV(ctx, "Using recorded property files",
				"entry", source.entry,
				"key", key,
				"include_non_streaming", includeNonStreaming,
			)

			return strings.TrimRight(value, " "), nil
		}
	}

	return "", errNotRecorded
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}

	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(rc, maxMetadataSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}

	return data, nil
}
