package generator

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/ota/otatest"
	"github.com/oshokin/gen-update-config/internal/ota/propertyfiles"
)

func cannedProvider(s string, gotIncludeNonStreaming *bool) propertyfiles.ProviderFunc {
	return func(_ context.Context, _ *zip.Reader, includeNonStreaming bool) (string, error) {
		if gotIncludeNonStreaming != nil {
			*gotIncludeNonStreaming = includeNonStreaming
		}

		return s, nil
	}
}

func streamingOptions(packagePath string) *Options {
	return &Options{
		PackagePath:           packagePath,
		URL:                   "file:///foo.bar",
		ChangelogURL:          "https://example.com/changelog",
		InstallType:           updateconfig.InstallTypeStreaming,
		ForceSwitchSlot:       true,
		VerifyPayloadMetadata: true,
		Generator:             "gen-update-config",
		Provider:              propertyfiles.NewComputed(),
	}
}

// TestBuild_StreamingScenario builds a config for a streaming package and reads every range back.
func TestBuild_StreamingScenario(t *testing.T) {
	t.Parallel()

	path := otatest.WritePackage(t, t.TempDir(), "ota_002_package.zip", otatest.StreamingEntries())

	cfg, err := NewBuilder(streamingOptions(path)).Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, "S ota_002_package", cfg.Name)
	require.Equal(t, "file:///foo.bar", cfg.URL)
	require.Equal(t, updateconfig.InstallTypeStreaming, cfg.ABInstallType)
	require.Equal(t, "*** Generated using gen-update-config ***", cfg.Banner)
	require.True(t, cfg.ABConfig.ForceSwitchSlot)
	require.True(t, cfg.ABConfig.VerifyPayloadMetadata)

	files := cfg.ABConfig.PropertyFiles
	require.Len(t, files, 6)

	info, err := os.Stat(path)
	require.NoError(t, err)

	for _, f := range files {
		require.GreaterOrEqual(t, f.Offset, int64(0))
		require.GreaterOrEqual(t, f.Size, int64(0))
		require.LessOrEqual(t, f.End(), info.Size())

		data := otatest.ReadRange(t, path, f.Offset, f.Size)

		switch f.Filename {
		case "payload.bin", "payload_metadata.bin", "payload_properties.txt":
		case "metadata":
			require.Equal(t, "META-INF/COM/ANDROID/METADATA", string(data))
		default:
			require.Equal(t, strings.ToUpper(strings.ReplaceAll(f.Filename, ".", "-")), string(data))
		}
	}
}

// TestBuild_IncludeNonStreamingFlag checks the flag handed to the provider.
func TestBuild_IncludeNonStreamingFlag(t *testing.T) {
	t.Parallel()

	path := otatest.WritePackage(t, t.TempDir(), "ota.zip", otatest.StreamingEntries())

	for installType, want := range map[updateconfig.InstallType]bool{
		updateconfig.InstallTypeStreaming:    false,
		updateconfig.InstallTypeNonStreaming: true,
	} {
		var got bool

		opts := streamingOptions(path)
		opts.InstallType = installType
		opts.Provider = cannedProvider("payload.bin:0:1", &got)

		cfg, err := NewBuilder(opts).Build(context.Background())
		require.NoError(t, err)
		require.Equal(t, want, got, installType)
		require.Equal(t, installType, cfg.ABInstallType)
	}
}

// TestBuild_KeepsProviderOrder transcribes the provider output without sorting.
func TestBuild_KeepsProviderOrder(t *testing.T) {
	t.Parallel()

	path := otatest.WritePackage(t, t.TempDir(), "ota.zip", otatest.StreamingEntries())

	opts := streamingOptions(path)
	opts.Provider = cannedProvider("z.txt:3:1,a.txt:1:1,m.txt:2:1", nil)

	cfg, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, []updateconfig.PropertyFile{
		{Filename: "z.txt", Offset: 3, Size: 1},
		{Filename: "a.txt", Offset: 1, Size: 1},
		{Filename: "m.txt", Offset: 2, Size: 1},
	}, cfg.ABConfig.PropertyFiles)
}

// TestBuild_Errors maps failures onto the error categories.
func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := otatest.WritePackage(t, dir, "ota.zip", otatest.StreamingEntries())

	notZip := filepath.Join(dir, "not.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0o600))

	providerErr := errors.New("payload.bin missing")

	cases := map[string]struct {
		mutate func(*Options)
		want   error
	}{
		"missing package": {
			func(o *Options) { o.PackagePath = filepath.Join(dir, "missing.zip") },
			updateconfig.ErrArchive,
		},
		"not a zip": {
			func(o *Options) { o.PackagePath = notZip },
			updateconfig.ErrArchive,
		},
		"provider failure": {
			func(o *Options) {
				o.Provider = propertyfiles.ProviderFunc(func(context.Context, *zip.Reader, bool) (string, error) {
					return "", providerErr
				})
			},
			providerErr,
		},
		"malformed string": {
			func(o *Options) { o.Provider = cannedProvider("payload.bin:1", nil) },
			updateconfig.ErrFormat,
		},
		"range past end": {
			func(o *Options) { o.Provider = cannedProvider("payload.bin:0:99999999", nil) },
			errRangeOutsidePackage,
		},
		"range end overflows": {
			func(o *Options) { o.Provider = cannedProvider("payload.bin:9223372036854775807:10", nil) },
			errRangeOutsidePackage,
		},
		"unknown install type": {
			func(o *Options) { o.InstallType = "NOT_AVAILABLE" },
			updateconfig.ErrUsage,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			opts := streamingOptions(path)
			c.mutate(opts)

			cfg, err := NewBuilder(opts).Build(context.Background())
			require.ErrorIs(t, err, c.want)
			require.Nil(t, cfg)
		})
	}
}
