package cli

import (
	"fmt"

	"github.com/portalworks/docportal/internal/config"
	"github.com/portalworks/docportal/internal/session"
	"github.com/spf13/cobra"
)

// SweepCmd returns the sweep command, a one-shot version of the retention
// sweeper that runs inside serve.
func SweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove old session directories, keeping the newest few",
		RunE:  runSweep,
	}

	cmd.Flags().Int("keep", 0, "Number of sessions to keep (defaults to PORTAL_RETENTION_KEEP_LATEST)")

	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	keep := cfg.RetentionKeepLatest
	if flagKeep, _ := cmd.Flags().GetInt("keep"); flagKeep > 0 {
		keep = flagKeep
	}

	removed, err := session.NewStore(cfg.DataDir, logger).Cleanup(keep)
	if err != nil {
		return err
	}

	fmt.Printf("removed %d old sessions, kept the newest %d\n", removed, keep)
	return nil
}
