package cli

import (
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driving/watch"
)

var (
	watchUserID string
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import record files dropped into a directory",
	Long: `Watches a directory and imports every record file written to it. Files
are imported once they stop changing, then moved to done/ or failed/.
Files already in the directory are imported at start.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchUserID, "user", "u", "", "user id passed to the rules")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 500*time.Millisecond, "quiet period before a file is imported")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watch.New(args[0], importService, watch.Options{UserID: watchUserID, Settle: watchSettle})
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(ctx, func(res watch.Result) {
		if res.Err != nil {
			cmd.PrintErrf("%s: %v\n", res.Path, res.Err)
			return
		}
		cmd.Printf("%s: %d updated, %d failed\n", res.Path, res.Summary.Updated, res.Summary.Failed)
	})
}
