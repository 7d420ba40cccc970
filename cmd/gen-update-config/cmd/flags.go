package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/gen-update-config/internal/config"
	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/ota/propertyfiles"
)

const (
	flagConfig                = "config"
	flagLogLevel              = "log-level"
	flagInstallType           = "ab_install_type"
	flagForceSwitchSlot       = "ab_force_switch_slot"
	flagVerifyPayloadMetadata = "ab_verify_payload_metadata"
	flagPropertyFilesSource   = "property_files_source"
)

// Enumerated flags validate their value while parsing.
var (
	_ pflag.Value = (*updateconfig.InstallType)(nil)
	_ pflag.Value = (*propertyfiles.Source)(nil)
)

var errBadLogLevel = errors.New("log level must be one of debug, info, warn, error")

func registerPersistentFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&configPath, flagConfig, "c", "",
		"path to settings file (default "+config.DefaultConfigFilename+" if present)")
	flags.StringVar(&logLevel, flagLogLevel, config.DefaultLogLevel, "log level: debug, info, warn, error")
}

func registerGeneratorFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.Var(&installType, flagInstallType, "A/B update installation type: STREAMING or NON_STREAMING")
	flags.BoolVar(&forceSwitchSlot, flagForceSwitchSlot, false,
		"if set device will boot to a new slot, otherwise user manually switches slot on the screen")
	flags.BoolVar(&verifyPayloadMetadata, flagVerifyPayloadMetadata, false,
		"if set the client verifies the update payload metadata before downloading the whole package")
	flags.Var(&propertyFilesSource, flagPropertyFilesSource,
		"where byte ranges come from: computed (zip structure) or metadata (recorded in the package)")

	installTypes := make([]string, 0, len(updateconfig.InstallTypes()))
	for _, t := range updateconfig.InstallTypes() {
		installTypes = append(installTypes, t.String())
	}

	sources := make([]string, 0, len(propertyfiles.Sources()))
	for _, s := range propertyfiles.Sources() {
		sources = append(sources, s.String())
	}

	//nolint:errcheck // Flags are registered right above.
	_ = cmd.RegisterFlagCompletionFunc(flagInstallType, cobra.FixedCompletions(installTypes, cobra.ShellCompDirectiveNoFileComp))
	//nolint:errcheck // Flags are registered right above.
	_ = cmd.RegisterFlagCompletionFunc(flagPropertyFilesSource, cobra.FixedCompletions(sources, cobra.ShellCompDirectiveNoFileComp))
}
