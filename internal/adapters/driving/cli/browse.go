package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored records interactively",
	Long: `Browse opens a terminal interface for looking up a bibliographic
record id, choosing one of its agencies and reading the stored record
with its relations.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	if !isTerminal(cmd.OutOrStdout()) {
		return errors.New("browse requires an interactive terminal")
	}

	app, err := tui.NewApp(&tui.Ports{Records: recordService})
	if err != nil {
		return err
	}
	return app.WithContext(cmd.Context()).Run()
}
