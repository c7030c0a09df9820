package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var holdingsCmd = &cobra.Command{
	Use:   "holdings",
	Short: "Manage holdings",
	Long: `Holdings tell the update flow which agencies hold items for a record.
They block deletions and receive derived enrichments.`,
}

var holdingsListCmd = &cobra.Command{
	Use:   "list [id]",
	Short: "List agencies holding items for an id",
	Args:  cobra.ExactArgs(1),
	RunE:  runHoldingsList,
}

var holdingsSetCmd = &cobra.Command{
	Use:   "set [id] [agency]",
	Short: "Register holdings for an agency",
	Args:  cobra.ExactArgs(2),
	RunE:  runHoldingsSet,
}

var holdingsRemove bool

func init() {
	holdingsSetCmd.Flags().BoolVar(&holdingsRemove, "remove", false, "remove the holdings instead")

	holdingsCmd.AddCommand(holdingsListCmd)
	holdingsCmd.AddCommand(holdingsSetCmd)
	rootCmd.AddCommand(holdingsCmd)
}

func runHoldingsList(cmd *cobra.Command, args []string) error {
	if holdingsService == nil {
		return errors.New("holdings service not configured")
	}

	agencies, err := holdingsService.Agencies(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list holdings: %w", err)
	}
	if len(agencies) == 0 {
		cmd.Printf("No holdings for id: %s\n", args[0])
		return nil
	}
	for _, agencyID := range agencies {
		cmd.Printf("%d\n", agencyID)
	}
	return nil
}

func runHoldingsSet(cmd *cobra.Command, args []string) error {
	if holdingsService == nil {
		return errors.New("holdings service not configured")
	}
	id, err := parseRecordID(args[0], args[1])
	if err != nil {
		return err
	}

	if err := holdingsService.Set(context.Background(), id.BibliographicRecordID, id.AgencyID, !holdingsRemove); err != nil {
		return fmt.Errorf("failed to set holdings: %w", err)
	}
	if holdingsRemove {
		cmd.Printf("Holdings removed for %s.\n", id)
	} else {
		cmd.Printf("Holdings registered for %s.\n", id)
	}
	return nil
}
