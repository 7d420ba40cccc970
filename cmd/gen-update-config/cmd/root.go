package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/gen-update-config/internal/config"
	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
	"github.com/oshokin/gen-update-config/internal/ota/propertyfiles"
	"github.com/oshokin/gen-update-config/internal/service/generator"
	"github.com/oshokin/gen-update-config/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string
	// logLevel overrides the settings log level.
	logLevel string

	// Generator flags; settings supply the values of flags left unset.
	installType           = updateconfig.InstallTypeNonStreaming
	forceSwitchSlot       bool
	verifyPayloadMetadata bool
	propertyFilesSource   = propertyfiles.SourceComputed

	// rootCmd generates an update config for an OTA package.
	rootCmd = &cobra.Command{
		Use:   "gen-update-config [flags] package out url changelog_url",
		Short: "Generate an update config JSON file from an A/B OTA package",
		Long: `Given an A/B (seamless) OTA package, produce the update config JSON that tells
an updater client where to download the package and where the payload and its
metadata live inside it, so the package can be streamed and verified in pieces.

Example:
  gen-update-config --ab_install_type=STREAMING \
      ota-build-001.zip my-config-001.json \
      http://foo.bar/ota-builds/ota-build-001.zip http://foo.bar/changelog`,
		Args:          cobra.ExactArgs(4),
		SilenceErrors: true,
		RunE:          runGenerator,
	}
)

func runGenerator(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	out := args[1]
	if err := generator.ValidateOutputPath(out); err != nil {
		return err
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	applyGeneratorSettings(cmd, settings)

	provider, err := propertyfiles.New(propertyFilesSource)
	if err != nil {
		return err
	}

	options := &generator.Options{
		PackagePath:           args[0],
		OutputPath:            out,
		URL:                   args[2],
		ChangelogURL:          args[3],
		InstallType:           installType,
		ForceSwitchSlot:       forceSwitchSlot,
		VerifyPayloadMetadata: verifyPayloadMetadata,
		Generator:             settings.Generator,
		Provider:              provider,
		Out:                   cmd.OutOrStdout(),
	}

	return generator.Run(ctx, options)
}

// applyGeneratorSettings copies settings into generator flags the user did not set.
func applyGeneratorSettings(cmd *cobra.Command, settings *config.Config) {
	flags := cmd.Flags()

	if !flags.Changed(flagInstallType) {
		installType = settings.InstallType
	}

	if !flags.Changed(flagForceSwitchSlot) {
		forceSwitchSlot = settings.ForceSwitchSlot
	}

	if !flags.Changed(flagVerifyPayloadMetadata) {
		verifyPayloadMetadata = settings.VerifyPayloadMetadata
	}

	if !flags.Changed(flagPropertyFilesSource) {
		propertyFilesSource = settings.PropertyFilesSource
	}
}

// loadSettings reads the settings file and applies the log level.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if cmd.Flags().Changed(flagLogLevel) {
		level = logLevel
	}

	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return nil, errBadLogLevel
	}

	logger.SetLevel(parsed)

	return settings, nil
}

// Execute runs the gen-update-config CLI and exits with non-zero status on error.
func Execute() {
	if err := execute(rootCmd, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// execute runs root with args. Usage errors are printed as a bare message on
// the command output, everything else is logged.
func execute(root *cobra.Command, args []string) error {
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return nil
	}

	if errors.Is(err, updateconfig.ErrUsage) {
		_, _ = fmt.Fprintln(root.OutOrStdout(), strings.TrimPrefix(err.Error(), updateconfig.ErrUsage.Error()+": "))
	} else {
		logger.Error(context.Background(), err)
	}

	return err
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	registerPersistentFlags(rootCmd.PersistentFlags())
	registerGeneratorFlags(rootCmd)

	rootCmd.AddCommand(verifyCmd, inspectCmd, initSettingsCmd)
	version.AttachCobraVersionCommand(rootCmd)
}
