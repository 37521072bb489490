package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check relay daemon health",
	Long: `Check the health of the retirewised relay daemon.

Examples:
  rwise health
  rwise health --server http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().StringVar(&serverURL, "server", "http://localhost:3001", "relay server URL")
}

// healthResponse matches internal/relay HealthResponse.
type healthResponse struct {
	Status string `json:"status"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay unhealthy: status %d", resp.StatusCode)
	}
	var hr healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}
	fmt.Printf("relay %s: %s\n", serverURL, hr.Status)
	return nil
}
