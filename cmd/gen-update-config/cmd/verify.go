package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/gen-update-config/internal/service/verifier"
)

// quiet disables the verify progress bar.
var quiet bool

// verifyCmd checks a generated config against its package.
var verifyCmd = &cobra.Command{
	Use:   "verify [flags] config package",
	Short: "Check that every property file range matches the package",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		if _, err := loadSettings(cmd); err != nil {
			return err
		}

		options := &verifier.Options{
			ConfigPath:  args[0],
			PackagePath: args[1],
		}

		if !quiet {
			options.Progress = cmd.ErrOrStderr()
		}

		return verifier.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	verifyCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show progress")
}
