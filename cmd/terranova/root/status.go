package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"terranova/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show vitals, quests and dreams from saved progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, cleanup, err := openGame(context.Background(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			fmt.Fprint(cmd.OutOrStdout(), ui.RenderStatus(store.Snapshot(), time.Now().UTC()))
			return nil
		},
	}
}
