// Package main implements the rwise CLI for operating on RetireWise data:
// migration to the cloud store, backup export/import, seeding and teardown.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/retirewiselabs/retirewised/internal/config"
	"github.com/retirewiselabs/retirewised/internal/logging"
	"github.com/retirewiselabs/retirewised/internal/store"
)

var (
	configPath string
	assumeYes  bool
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "rwise",
	Short:         "CLI for RetireWise data operations",
	Long:          `rwise operates on RetireWise data: migrate local data to the cloud store, export and import JSON backups, seed starter projects, and clear local data.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/retirewise/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&assumeYes, "yes", false, "skip confirmation prompts")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(healthCmd)
}

// loadConfig loads configuration for a CLI run.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newLogger builds a console logger for interactive use.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := cfg.Logging
	lc.Format = "console"
	return logging.New(lc)
}

// openLocal opens the embedded store from config.
func openLocal(cfg *config.Config, logger *zap.Logger) (*store.LocalStore, error) {
	return store.OpenLocal(store.LocalConfig{Path: cfg.Local.Path}, logger)
}

// newRemote builds the cloud store client from config.
func newRemote(cfg *config.Config, logger *zap.Logger) (*store.RemoteStore, error) {
	return store.NewRemoteStore(store.RemoteConfig{
		BaseURL:      cfg.Remote.BaseURL,
		APIKey:       cfg.Remote.APIKey.Value(),
		Timeout:      cfg.Remote.Timeout.Duration(),
		PollInterval: cfg.Remote.PollInterval.Duration(),
	}, logger)
}

// confirm asks the user for a yes/no answer, honoring --yes.
func confirm(prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// confirmTyped requires the user to type an exact phrase, honoring --yes.
// Used for irreversible bulk deletions.
func confirmTyped(prompt, phrase string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s\nType %s to continue: ", prompt, phrase)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == phrase
}
