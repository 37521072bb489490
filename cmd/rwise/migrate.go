package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retirewiselabs/retirewised/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy local data to the cloud store",
}

func init() {
	migrateCmd.AddCommand(migrateRunCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

var migrateRunCmd = &cobra.Command{
	Use:   "run <user-id>",
	Short: "Migrate all local data to the cloud store for a user",
	Long: `Copy every local record (projects, time logs, journal entries, insights,
conversations) to the cloud store scoped to the given user.

Projects migrate first so that references on time logs and journal entries can
be rewritten to the newly assigned cloud ids. Individual record failures are
reported at the end and do not stop the run.

Re-running duplicates data: records are always created anew.

Examples:
  rwise migrate run u_8f2k1
  rwise migrate status u_8f2k1`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Check whether a user has migrated",
	Args:  cobra.ExactArgs(1),
	RunE:  runMigrateStatus,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	userID := args[0]
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	local, err := openLocal(cfg, logger)
	if err != nil {
		return err
	}
	defer local.Close()
	remote, err := newRemote(cfg, logger)
	if err != nil {
		return err
	}
	defer remote.Close()

	engine := migrate.New(local, remote, logger,
		migrate.WithRecordTimeout(cfg.Migration.RecordTimeout.Duration()))

	results, err := engine.MigrateAll(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Migrated %d records for %s:\n", results.Total(), userID)
	fmt.Printf("  projects:        %d\n", results.Projects)
	fmt.Printf("  time logs:       %d\n", results.TimeLogs)
	fmt.Printf("  journal entries: %d\n", results.JournalEntries)
	fmt.Printf("  insights:        %d\n", results.Insights)
	fmt.Printf("  conversations:   %d\n", results.Conversations)
	if len(results.Errors) > 0 {
		fmt.Printf("%d records failed:\n", len(results.Errors))
		for _, e := range results.Errors {
			fmt.Printf("  %s %s: %s\n", e.Type, e.ID, e.Error)
		}
	}
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	userID := args[0]
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	remote, err := newRemote(cfg, logger)
	if err != nil {
		return err
	}
	defer remote.Close()

	engine := migrate.New(nil, remote, logger)
	status, err := engine.CheckMigrationStatus(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if status.HasMigrated {
		fmt.Printf("%s has migrated (%d cloud projects)\n", userID, status.ProjectCount)
	} else {
		fmt.Printf("%s has not migrated\n", userID)
	}
	return nil
}
