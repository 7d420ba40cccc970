package verifier

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
	"github.com/oshokin/gen-update-config/internal/ota/metadata"
	"github.com/oshokin/gen-update-config/internal/ota/payload"
	"github.com/oshokin/gen-update-config/internal/repository/configfile"
)

const (
	payloadEntry         = "payload.bin"
	payloadMetadataEntry = "payload_metadata.bin"

	progressThrottle = 100 * time.Millisecond
)

// Options contains inputs for the verifier entry point.
type Options struct {
	// ConfigPath is the update config JSON file.
	ConfigPath string
	// PackagePath is the OTA package the config was generated for.
	PackagePath string
	// Progress receives a progress bar; nil disables it.
	Progress io.Writer
}

// Mismatch describes one property file that does not match the package.
type Mismatch struct {
	Filename string
	Reason   string
}

var errNoSuchEntry = errors.New("no such entry")

// Run loads the config, verifies it and reports every mismatch.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "verifier")

	cfg, err := configfile.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	mismatches, err := Verify(ctx, cfg, opts.PackagePath, opts.Progress)
	if err != nil {
		return err
	}

	for _, m := range mismatches {
		logger.WarnKV(ctx, "Property file does not match the package", "filename", m.Filename, "reason", m.Reason)
	}

	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %d of %d entries", updateconfig.ErrMismatch,
			len(mismatches), len(cfg.ABConfig.PropertyFiles))
	}

	logger.InfoKV(ctx, "All property files match the package", "count", len(cfg.ABConfig.PropertyFiles))

	return nil
}

// Verify compares each property file of cfg with the package at packagePath.
func Verify(
	ctx context.Context,
	cfg *updateconfig.UpdateConfig,
	packagePath string,
	progress io.Writer,
) ([]Mismatch, error) {
	pkg, err := os.Open(filepath.Clean(packagePath))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", updateconfig.ErrArchive, err)
	}

	defer func() {
		_ = pkg.Close()
	}()

	info, err := pkg.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", updateconfig.ErrArchive, err)
	}

	archive, err := zip.NewReader(pkg, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", updateconfig.ErrArchive, packagePath, err)
	}

	v := &verifier{
		pkg:     pkg,
		size:    info.Size(),
		entries: indexEntries(archive),
		bar:     newProgressBar(progress, cfg.ABConfig.PropertyFiles),
	}

	var mismatches []Mismatch

	for _, f := range cfg.ABConfig.PropertyFiles {
		logger.DebugKV(ctx, "Verifying property file", "filename", f.Filename, "offset", f.Offset, "size", f.Size)

		if err = v.check(f); err != nil {
			mismatches = append(mismatches, Mismatch{Filename: f.Filename, Reason: err.Error()})
		}
	}

	_ = v.bar.Finish()

	return mismatches, nil
}

type verifier struct {
	pkg     io.ReaderAt
	size    int64
	entries map[string]*zip.File
	bar     *progressbar.ProgressBar
}

func (v *verifier) check(f updateconfig.PropertyFile) error {
	if !f.Within(v.size) {
		return fmt.Errorf("range %d+%d outside package of %d bytes", f.Offset, f.Size, v.size)
	}

	if f.Filename == payloadMetadataEntry {
		return v.checkPayloadMetadata(f)
	}

	entry, ok := v.entries[f.Filename]
	if !ok {
		return errNoSuchEntry
	}

	if err := v.checkPlacement(entry, f.Offset); err != nil {
		return err
	}

	if entry.UncompressedSize64 != uint64(f.Size) {
		return fmt.Errorf("size %d, entry holds %d bytes", f.Size, entry.UncompressedSize64)
	}

	checksum := crc32.NewIEEE()
	if _, err := io.Copy(io.MultiWriter(checksum, v.bar), io.NewSectionReader(v.pkg, f.Offset, f.Size)); err != nil {
		return fmt.Errorf("read range: %w", err)
	}

	if checksum.Sum32() != entry.CRC32 {
		return fmt.Errorf("crc32 %08x, entry has %08x", checksum.Sum32(), entry.CRC32)
	}

	return nil
}

// checkPayloadMetadata expects the range to start at payload.bin data and
// span exactly its header, manifest and metadata signature.
func (v *verifier) checkPayloadMetadata(f updateconfig.PropertyFile) error {
	entry, ok := v.entries[payloadEntry]
	if !ok {
		return fmt.Errorf("%s: %w", payloadEntry, errNoSuchEntry)
	}

	if err := v.checkPlacement(entry, f.Offset); err != nil {
		return err
	}

	header, err := payload.ReadHeader(io.NewSectionReader(v.pkg, f.Offset, f.Size))
	if err != nil {
		return err
	}

	if header.MetadataSize() != uint64(f.Size) {
		return fmt.Errorf("size %d, payload metadata is %d bytes", f.Size, header.MetadataSize())
	}

	return nil
}

func (v *verifier) checkPlacement(entry *zip.File, offset int64) error {
	if entry.Method != zip.Store {
		return fmt.Errorf("entry %s is compressed", entry.Name)
	}

	dataOffset, err := entry.DataOffset()
	if err != nil {
		return fmt.Errorf("entry %s: %w", entry.Name, err)
	}

	if dataOffset != offset {
		return fmt.Errorf("offset %d, entry data starts at %d", offset, dataOffset)
	}

	return nil
}

// indexEntries maps property file names to members: root entries by name and
// the metadata pair by their short names.
func indexEntries(archive *zip.Reader) map[string]*zip.File {
	aliases := map[string]string{
		metadata.EntryName:      "metadata",
		metadata.ProtoEntryName: "metadata.pb",
	}

	entries := make(map[string]*zip.File, len(archive.File))
	for _, f := range archive.File {
		if alias, ok := aliases[f.Name]; ok {
			entries[alias] = f
			continue
		}

		entries[f.Name] = f
	}

	return entries
}

func newProgressBar(w io.Writer, files []updateconfig.PropertyFile) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}

	var total int64
	for _, f := range files {
		if f.Filename != payloadMetadataEntry {
			total += f.Size
		}
	}

	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("verifying"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(progressThrottle),
	)
}
