package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version,
// usually injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the svgrender CLI and returns an error if any command fails.
//
// The logger (info level, debug with --verbose) and the configuration
// read from --config are attached to the context of the commands.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "svgrender draws SVG documents to PNG, JPEG or PDF",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if configPath != "" {
				logger.Debug("config loaded", "path", configPath)
			}
			cmd.SetContext(withConfig(withLogger(cmd.Context(), logger), cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML configuration file")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newDimsCmd())
	root.AddCommand(newServeCmd())

	return root
}
