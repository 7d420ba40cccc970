package generator

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
	"github.com/oshokin/gen-update-config/internal/ota/propertyfiles"
)

var (
	errRangeOutsidePackage = errors.New("range ends past the package")
	errNoProvider          = errors.New("property files provider is not set")
)

// Builder produces an UpdateConfig from a package and user parameters.
type Builder struct {
	packagePath           string
	url                   string
	changelogURL          string
	installType           updateconfig.InstallType
	forceSwitchSlot       bool
	verifyPayloadMetadata bool
	banner                string
	provider              propertyfiles.Provider
}

// NewBuilder copies the build inputs out of opts.
func NewBuilder(opts *Options) *Builder {
	return &Builder{
		packagePath:           opts.PackagePath,
		url:                   opts.URL,
		changelogURL:          opts.ChangelogURL,
		installType:           opts.InstallType,
		forceSwitchSlot:       opts.ForceSwitchSlot,
		verifyPayloadMetadata: opts.VerifyPayloadMetadata,
		banner:                updateconfig.Banner(opts.Generator),
		provider:              opts.Provider,
	}
}

// Build assembles the update config. The package is opened only for the
// duration of the provider call.
func (b *Builder) Build(ctx context.Context) (*updateconfig.UpdateConfig, error) {
	if !b.installType.Valid() {
		return nil, fmt.Errorf("%w: ab_install_type %q", updateconfig.ErrUsage, b.installType)
	}

	if b.provider == nil {
		return nil, errNoProvider
	}

	abConfig, err := b.buildABConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &updateconfig.UpdateConfig{
		Banner:        b.banner,
		ABConfig:      *abConfig,
		ABInstallType: b.installType,
		ChangelogURL:  b.changelogURL,
		Name:          updateconfig.PackageName(b.installType, b.packagePath),
		URL:           b.url,
	}, nil
}

func (b *Builder) buildABConfig(ctx context.Context) (*updateconfig.ABConfig, error) {
	pkg, err := os.Open(filepath.Clean(b.packagePath))
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
		return nil, fmt.Errorf("%w: %s: %w", updateconfig.ErrArchive, b.packagePath, err)
	}

	includeNonStreaming := b.installType.IncludeNonStreaming()

	logger.DebugKV(ctx, "Requesting property files",
		"entries", len(archive.File),
		"include_non_streaming", includeNonStreaming,
	)

	propertyString, err := b.provider.PropertyFilesString(ctx, archive, includeNonStreaming)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", updateconfig.ErrPropertyFiles, err)
	}

	files, err := updateconfig.ParsePropertyFiles(propertyString)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if !f.Within(info.Size()) {
			return nil, fmt.Errorf("%w: %s at %d+%d, package is %d bytes: %w",
				updateconfig.ErrPropertyFiles, f.Filename, f.Offset, f.Size, info.Size(), errRangeOutsidePackage)
		}
	}

	return &updateconfig.ABConfig{
		ForceSwitchSlot:       b.forceSwitchSlot,
		PropertyFiles:         files,
		VerifyPayloadMetadata: b.verifyPayloadMetadata,
	}, nil
}
