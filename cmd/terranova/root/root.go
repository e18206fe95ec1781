package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"terranova/internal/config"
	"terranova/internal/ui"
)

const Version = "0.3.0"

var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "terranova",
		Short:         "Terra Nova: a gamified life tracker",
		Long:          "Terra Nova turns tasks, quests and savings into six vitals, relics and a countdown to freedom.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = Version
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "terranova.yml", "path to the YAML config")

	cmd.AddCommand(
		newServeCmd(),
		newStatusCmd(),
		newImportCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newDrillCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
