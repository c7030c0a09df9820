package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the service is ready",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if readinessService == nil {
		return errors.New("readiness service not configured")
	}
	if err := readinessService.Ready(cmd.Context()); err != nil {
		return fmt.Errorf("not ready: %w", err)
	}
	cmd.Println("ready")
	return nil
}
