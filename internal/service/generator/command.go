package generator

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
	"github.com/oshokin/gen-update-config/internal/ota/propertyfiles"
	"github.com/oshokin/gen-update-config/internal/repository/configfile"
)

// OutputSuffix is the required extension of the output path.
const OutputSuffix = ".json"

// UsageMessage is printed when the output path is rejected.
const UsageMessage = "out must be a json file"

// Options contains inputs for the generator entry point.
type Options struct {
	// PackagePath is the OTA package zip file.
	PackagePath string
	// OutputPath is the update config JSON file to write.
	OutputPath string
	// URL is the package download location, written as is.
	URL string
	// ChangelogURL is written as is.
	ChangelogURL string
	// InstallType selects streaming or non-streaming installation.
	InstallType updateconfig.InstallType
	// ForceSwitchSlot makes the device boot the new slot without user action.
	ForceSwitchSlot bool
	// VerifyPayloadMetadata asks the client to verify metadata before the full download.
	VerifyPayloadMetadata bool
	// Generator is the tool name in the "__" banner.
	Generator string
	// Provider computes the property-files string.
	Provider propertyfiles.Provider
	// Out receives the confirmation line; nil discards it.
	Out io.Writer
}

// ValidateOutputPath rejects output paths without the .json suffix.
func ValidateOutputPath(path string) error {
	if !strings.HasSuffix(path, OutputSuffix) {
		return fmt.Errorf("%w: %s", updateconfig.ErrUsage, UsageMessage)
	}

	return nil
}

// Run validates the output path, builds the config and writes it.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "generator")

	if err := ValidateOutputPath(opts.OutputPath); err != nil {
		return err
	}

	ctx = logger.WithKV(ctx, "package", opts.PackagePath)

	logger.InfoKV(ctx, "Building update config", "ab_install_type", opts.InstallType)

	cfg, err := NewBuilder(opts).Build(ctx)
	if err != nil {
		return fmt.Errorf("build update config: %w", err)
	}

	logger.InfoKV(ctx, "Collected property files", "count", len(cfg.ABConfig.PropertyFiles))

	if err = configfile.Save(ctx, opts.OutputPath, cfg); err != nil {
		return err
	}

	logger.DebugKV(ctx, "Config saved", "path", opts.OutputPath)

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	if _, err = fmt.Fprintln(out, "Config is written to "+opts.OutputPath); err != nil {
		return fmt.Errorf("%w: %w", updateconfig.ErrIO, err)
	}

	return nil
}
