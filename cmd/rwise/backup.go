package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/retirewiselabs/retirewised/internal/backup"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export local data to a JSON backup",
	Long: `Write the whole local dataset (projects, time logs, journal entries,
conversations, settings) to a JSON backup file.

Examples:
  rwise export
  rwise export my-backup.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace local data with a JSON backup",
	Long: `Validate a backup file and replace ALL existing local data with its
contents. The file is checked before anything is deleted.

Examples:
  rwise import my-backup.json
  rwise import --yes my-backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	path := backup.DefaultFileName(time.Now())
	if len(args) == 1 {
		path = args[0]
	}

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

	snap, err := backup.Export(cmd.Context(), local)
	if err != nil {
		return err
	}
	if err := backup.WriteFile(path, snap); err != nil {
		return err
	}
	fmt.Printf("Exported %d projects, %d time logs, %d journal entries to %s\n",
		len(snap.Projects), len(snap.TimeLogs), len(snap.JournalEntries), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	snap, err := backup.ReadFile(args[0])
	if err != nil {
		return err
	}

	if !confirm("This will replace all current local data. Continue?") {
		fmt.Println("Import cancelled")
		return nil
	}

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

	if err := backup.Import(cmd.Context(), local, snap, logger); err != nil {
		return err
	}
	fmt.Printf("Imported backup from %s\n", snap.ExportDate)
	return nil
}
