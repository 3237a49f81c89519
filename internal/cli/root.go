// root.go — Root command, global flags and configuration loading.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/xob0t/covercraft/internal/config"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the information shown by --version. The main package
// calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "covercraft",
		Short:        "covercraft composes article cover images from templates",
		Long:         `covercraft renders cover images from YAML templates or image prompts, crops them to platform presets and assembles a share card and preview grid.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx := withConfig(withLogger(cmd.Context(), logger), cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("covercraft %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("COVERCRAFT_CONFIG"), "config file (.yaml or .toml)")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCropCmd())
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newServeCmd())

	return root
}
