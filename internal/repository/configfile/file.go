package configfile

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
)

// DefaultFileMode is the permission of written config files.
const DefaultFileMode os.FileMode = 0o644

// Save encodes cfg and replaces path with it in one step: the bytes go to a
// sibling file that is checksummed and renamed over the target, so readers
// see either the old file or the complete new one.
func Save(ctx context.Context, path string, cfg *updateconfig.UpdateConfig) error {
	data, err := updateconfig.Marshal(cfg)
	if err != nil {
		return err
	}

	return writeAtomic(ctx, filepath.Clean(path), data)
}

func writeAtomic(ctx context.Context, path string, data []byte) error {
	// go-update swaps an existing target, so a placeholder is created first and
	// removed again if the swap fails.
	created, err := ensureTarget(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", updateconfig.ErrIO, path, err)
	}

	checksum := sha512.Sum512(data)

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: DefaultFileMode,
		Checksum:   checksum[:],
		Hash:       crypto.SHA512,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		if created {
			_ = os.Remove(path)
		}

		return fmt.Errorf("%w: write %s: %w", updateconfig.ErrIO, path, err)
	}

	logger.DebugKV(ctx, "Config file replaced", "path", path, "bytes", len(data))

	return nil
}

// ensureTarget creates an empty file at path if none exists and reports whether it did.
func ensureTarget(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, DefaultFileMode)
	if err != nil {
		return false, err
	}

	return true, f.Close()
}

// Load reads and validates an update config document.
func Load(path string) (*updateconfig.UpdateConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", updateconfig.ErrIO, path, err)
	}

	cfg, err := updateconfig.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}
