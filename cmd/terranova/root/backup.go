package root

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"terranova/internal/ops"
	"terranova/internal/ui"
)

func newBackupCmd() *cobra.Command {
	var out string
	var keep int
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory as .tar.zst",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(cfg.Backup.Dir, ops.ArchiveName(time.Now().UTC()))
			}
			if err := ops.BackupDataDir(cfg.Storage.DataDir, out); err != nil {
				return err
			}
			if keep > 0 {
				if err := ops.Prune(filepath.Dir(out), keep); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "archive path (default: backup.dir/terranova-<timestamp>.tar.zst)")
	cmd.Flags().IntVar(&keep, "keep", 0, "prune older archives beyond this many")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Unpack a backup archive into a directory",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("archive is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ops.RestoreDataDir(args[0], target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s restored into %s\n", ui.Good.Render("✔"), target)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "directory to restore into")
	return cmd
}

func newDrillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drill",
		Short: "Back up, restore to a scratch dir and compare",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			work, err := os.MkdirTemp("", "terranova-drill-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(work)

			rep, err := ops.Drill(cfg.Storage.DataDir, work)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Files", rep.Files))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Bytes", rep.Bytes))
			if !rep.OK() {
				for _, m := range rep.Mismatch {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" "+m))
				}
				return fmt.Errorf("drill found %d mismatch(es)", len(rep.Mismatch))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("drill ok"))
			return nil
		},
	}
}
