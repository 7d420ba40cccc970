package propertyfiles

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
	"github.com/oshokin/gen-update-config/internal/ota/metadata"
	"github.com/oshokin/gen-update-config/internal/ota/payload"
)

const (
	payloadEntry         = "payload.bin"
	payloadMetadataToken = "payload_metadata.bin"
	metadataToken        = "metadata"
)

var (
	errMissingEntry      = errors.New("required entry missing")
	errCompressedEntry   = errors.New("entry is compressed, offsets would not address its content")
	errPayloadTooShort   = errors.New("payload metadata exceeds payload size")
	errEntrySizeOverflow = errors.New("entry size overflows int64")
)

// Computed builds the property-files string from the zip structure.
type Computed struct {
	required           []string
	optional           []string
	nonStreamingExtras []string
}

// NewComputed returns a Computed provider with the A/B entry set.
func NewComputed() *Computed {
	return &Computed{
		required: []string{
			// payload.bin and payload_properties.txt must exist.
			payloadEntry,
			"payload_properties.txt",
		},
		optional: []string{
			// care_map.* exists only if dm-verity is enabled.
			"care_map.pb",
			"care_map.txt",
			// compatibility.zip exists only if the target declares Treble support.
			"compatibility.zip",
		},
		nonStreamingExtras: []string{
			"apex_info.pb",
		},
	}
}

// PropertyFilesString lists, in order: payload metadata, required entries,
// present optional entries, the metadata entry and, if present, its protobuf
// twin.
func (c *Computed) PropertyFilesString(ctx context.Context, pkg *zip.Reader, includeNonStreaming bool) (string, error) {
	entries := indexEntries(pkg)
	files := make([]updateconfig.PropertyFile, 0, len(c.required)+len(c.optional)+3)

	payloadMetadata, err := payloadMetadataRange(entries)
	if err != nil {
		return "", err
	}

	files = append(files, payloadMetadata)

	for _, name := range c.required {
		file, err := requiredRange(entries, name)
		if err != nil {
			return "", err
		}

		files = append(files, file)
	}

	optional := c.optional
	if includeNonStreaming {
		optional = append(append([]string(nil), optional...), c.nonStreamingExtras...)
	}

	for _, name := range optional {
		f, ok := entries[name]
		if !ok {
			logger.DebugKV(ctx, "Optional entry absent", "entry", name)
			continue
		}

		file, err := entryRange(f, baseName(name))
		if err != nil {
			return "", err
		}

		files = append(files, file)
	}

	file, err := requiredRange(entries, metadata.EntryName)
	if err != nil {
		return "", err
	}

	file.Filename = metadataToken
	files = append(files, file)

	if f, ok := entries[metadata.ProtoEntryName]; ok {
		file, err = entryRange(f, baseName(metadata.ProtoEntryName))
		if err != nil {
			return "", err
		}

		files = append(files, file)
	}

	for _, f := range files {
		logger.DebugKV(ctx, "Property file", "filename", f.Filename, "offset", f.Offset, "size", f.Size)
	}

	return updateconfig.FormatPropertyFiles(files), nil
}

func requiredRange(entries map[string]*zip.File, name string) (updateconfig.PropertyFile, error) {
	f, ok := entries[name]
	if !ok {
		return updateconfig.PropertyFile{}, fmt.Errorf("%s: %w", name, errMissingEntry)
	}

	return entryRange(f, baseName(name))
}

// entryRange locates the stored bytes of f. The offset comes from the local
// file header, which may carry a different extra field than the central directory.
func entryRange(f *zip.File, filename string) (updateconfig.PropertyFile, error) {
	if f.Method != zip.Store {
		return updateconfig.PropertyFile{}, fmt.Errorf("%s: %w", f.Name, errCompressedEntry)
	}

	offset, err := f.DataOffset()
	if err != nil {
		return updateconfig.PropertyFile{}, fmt.Errorf("%s: data offset: %w", f.Name, err)
	}

	size, err := entrySize(f)
	if err != nil {
		return updateconfig.PropertyFile{}, err
	}

	return updateconfig.PropertyFile{
		Filename: filename,
		Offset:   offset,
		Size:     size,
	}, nil
}

// payloadMetadataRange covers the payload header, manifest and metadata signature.
func payloadMetadataRange(entries map[string]*zip.File) (updateconfig.PropertyFile, error) {
	file, err := requiredRange(entries, payloadEntry)
	if err != nil {
		return updateconfig.PropertyFile{}, err
	}

	raw, err := entries[payloadEntry].OpenRaw()
	if err != nil {
		return updateconfig.PropertyFile{}, fmt.Errorf("%s: %w", payloadEntry, err)
	}

	header, err := payload.ReadHeader(raw)
	if err != nil {
		return updateconfig.PropertyFile{}, fmt.Errorf("%s at offset %d: %w", payloadEntry, file.Offset, err)
	}

	size := header.MetadataSize()
	if size > uint64(file.Size) {
		return updateconfig.PropertyFile{}, fmt.Errorf("%d > %d: %w", size, file.Size, errPayloadTooShort)
	}

	file.Filename = payloadMetadataToken
	file.Size = int64(size)

	return file, nil
}

func entrySize(f *zip.File) (int64, error) {
	const maxInt64 = 1<<63 - 1
	if f.UncompressedSize64 > maxInt64 {
		return 0, fmt.Errorf("%s: %w", f.Name, errEntrySizeOverflow)
	}

	return int64(f.UncompressedSize64), nil
}
