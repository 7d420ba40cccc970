package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/gen-update-config/internal/service/inspector"
)

var (
	inspectFormat  string
	inspectServer  string
	inspectChannel string
	inspectDevice  string
)

// inspectCmd prints a local or remote update config.
var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] [config-path-or-url]",
	Short: "Validate and print an update config from a file or an update server",
	Long: `Validate and print an update config.

The config is read from a file path or an http(s) URL. Without an argument it is
fetched the way an updater client does, from <server>/<channel>/<device>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		options := &inspector.Options{
			Server:  inspectServer,
			Channel: inspectChannel,
			Device:  inspectDevice,
			Format:  inspector.Format(inspectFormat),
			Timeout: settings.HTTPTimeout,
			Out:     cmd.OutOrStdout(),
		}

		if len(args) > 0 {
			options.Source = args[0]
		}

		return inspector.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := inspectCmd.Flags()
	flags.StringVarP(&inspectFormat, "output", "o", string(inspector.FormatYAML), "output format: yaml or json")
	flags.StringVar(&inspectServer, "server", "", "update server base URL")
	flags.StringVar(&inspectChannel, "channel", inspector.DefaultChannel, "update channel")
	flags.StringVar(&inspectDevice, "device", "", "device codename")
}
