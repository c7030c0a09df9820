// Package cli provides the command-line interface for the rawrepo update
// service.
//
// Commands reach the core through the driving ports set with SetServices.
// A command whose service is not configured fails with a descriptive error.
package cli

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
	"github.com/custodia-labs/rawrepo-update/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	updateService    driving.UpdateService
	recordService    driving.RecordService
	importService    driving.ImportService
	holdingsService  driving.HoldingsService
	settingsService  driving.SettingsService
	readinessService driving.ReadinessService
	blobSource       driven.BlobSource
	metricsHandler   http.Handler
)

var verbose bool

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var errUsage = errors.New("invalid arguments")

var rootCmd = &cobra.Command{
	Use:   "rawrepo",
	Short: "Rawrepo cataloging update service",
	Long: `rawrepo decomposes incoming bibliographic records into the physical
records of the raw repository: common records, enrichments and local
records, with their relations and change signals.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logging to stderr")
}

// Services holds the ports the commands drive.
// Nil fields leave the corresponding commands unconfigured.
type Services struct {
	Update    driving.UpdateService
	Records   driving.RecordService
	Import    driving.ImportService
	Holdings  driving.HoldingsService
	Settings  driving.SettingsService
	Readiness driving.ReadinessService
	Blobs     driven.BlobSource
	Metrics   http.Handler
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	updateService = s.Update
	recordService = s.Records
	importService = s.Import
	holdingsService = s.Holdings
	settingsService = s.Settings
	readinessService = s.Readiness
	blobSource = s.Blobs
	metricsHandler = s.Metrics
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
