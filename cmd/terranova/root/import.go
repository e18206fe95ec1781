package root

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"terranova/internal/task"
	"terranova/internal/ui"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import tasks from a JSON export",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tasks, err := task.ParseImport(raw)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, cleanup, err := openGame(context.Background(), cfg)
			if err != nil {
				return err
			}
			st := store.ImportTasks(tasks)
			if err := cleanup(); err != nil {
				return fmt.Errorf("save tasks: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s imported %d task(s), %d total\n", ui.Good.Render("✔"), len(tasks), len(st.Tasks))
			return nil
		},
	}
}
