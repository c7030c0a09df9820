package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/blob/s3"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/codec"
)

var (
	importUserID  string
	importGroupID string
)

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Bulk import records",
	Long: `Runs every record of a bulk file through the update flow. Failing records
are reported and the import continues.

The path is a local file or an s3://bucket/key object location.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importUserID, "user", "u", "", "user id passed to the rules")
	importCmd.Flags().StringVarP(&importGroupID, "group", "g", "", "group id passed to the rules")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	ctx := context.Background()
	path := args[0]
	in, err := openSource(ctx, path)
	if err != nil {
		return err
	}
	defer in.Close()

	cmd.Printf("Importing %s...\n", path)
	summary, err := importService.Import(ctx, codec.NewReader(path, in), importUserID, importGroupID)
	if summary != nil {
		cmd.Printf("Processed %d records: %d updated, %d failed\n", summary.Processed, summary.Updated, summary.Failed)
		for _, f := range summary.Failures {
			cmd.Printf("  record %d %s: %v\n", f.Position, f.RecordID, f.Err)
		}
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("import finished with %d failed records", summary.Failed)
	}
	return nil
}

// openSource opens a local file or an S3 object.
func openSource(ctx context.Context, path string) (io.ReadCloser, error) {
	if s3.IsLocation(path) {
		if blobSource == nil {
			return nil, errors.New("object storage not configured")
		}
		body, err := blobSource.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return body, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
