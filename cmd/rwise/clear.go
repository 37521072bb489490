package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retirewiselabs/retirewised/internal/store"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Permanently delete ALL local data",
	Long: `Delete every local record: projects, time logs, journal entries, insights,
conversations and settings. This cannot be undone.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	if !confirm("This will permanently delete ALL local data. Continue?") {
		fmt.Println("Clear cancelled")
		return nil
	}
	if !confirmTyped("Last chance - this cannot be undone.", "YES") {
		fmt.Println("Clear cancelled")
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

	for _, collection := range store.Collections() {
		if err := local.Clear(cmd.Context(), collection); err != nil {
			return fmt.Errorf("clearing %s: %w", collection, err)
		}
	}
	fmt.Println("All local data cleared")
	return nil
}
