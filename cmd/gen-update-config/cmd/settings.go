package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/gen-update-config/internal/config"
	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
)

var (
	// overwriteSettings allows replacing an existing settings file.
	overwriteSettings bool

	errSettingsExist = errors.New("settings file already exists, use --force to replace it")
)

// initSettingsCmd writes a settings file with the built-in defaults.
var initSettingsCmd = &cobra.Command{
	Use:   "init-settings [path]",
	Short: "Write a settings file with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		path := config.DefaultConfigFilename
		if len(args) > 0 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !overwriteSettings {
			return fmt.Errorf("%w: %s: %w", updateconfig.ErrUsage, path, errSettingsExist)
		}

		if err := config.Save(path, config.Default()); err != nil {
			return err
		}

		logger.InfoKV(cmd.Context(), "Settings written", "path", path)

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initSettingsCmd.Flags().BoolVarP(&overwriteSettings, "force", "f", false, "replace an existing settings file")
}
