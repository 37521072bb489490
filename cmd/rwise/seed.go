package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retirewiselabs/retirewised/internal/seed"
	"github.com/retirewiselabs/retirewised/internal/unified"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create starter projects in the local store",
	Long: `Create the starter projects for a fresh install. Refuses to run when
projects already exist.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	// Seeding always targets the local store; no remote backend is wired.
	facade := unified.New(local, nil, nil, logger)
	n, err := seed.Run(cmd.Context(), facade)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d starter projects\n", n)
	return nil
}
