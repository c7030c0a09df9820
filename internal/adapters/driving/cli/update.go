package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/codec"
	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

var (
	updateUserID  string
	updateGroupID string
)

var updateCmd = &cobra.Command{
	Use:   "update [file]",
	Short: "Update records from a file",
	Long: `Runs every record in the file through the update flow.
The format follows the file extension: .iso, .mrc and .iso2709 files are
ISO 2709, anything else is MarcXchange. Without a file, or with "-",
MarcXchange is read from stdin.

The first failing record stops the update. Records updated before it
stay stored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updateUserID, "user", "u", "", "user id passed to the rules")
	updateCmd.Flags().StringVarP(&updateGroupID, "group", "g", "", "group id passed to the rules")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if updateService == nil {
		return errors.New("update service not configured")
	}

	name := "-"
	if len(args) > 0 {
		name = args[0]
	}

	var in io.Reader = cmd.InOrStdin()
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer f.Close()
		in = f
	}

	reader := codec.NewReader(name, in)
	ctx := context.Background()
	count := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record %d: %w", count+1, err)
		}
		if err := updateService.UpdateRecord(ctx, rec, updateUserID, updateGroupID); err != nil {
			return fmt.Errorf("update failed for %s: %w", describe(rec), err)
		}
		count++
		cmd.Printf("Updated %s\n", describe(rec))
	}

	cmd.Printf("%d record(s) updated.\n", count)
	return nil
}

// describe renders the key carried by rec for messages.
func describe(rec *domain.MarcRecord) string {
	agencyID, err := rec.AgencyID()
	if err != nil {
		return fmt.Sprintf("[%s:?]", rec.RecordID())
	}
	return domain.NewRecordID(rec.RecordID(), agencyID).String()
}
