package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage service settings",
	Long: `View and change the settings stored in the config file.

Changes take effect the next time the service starts.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Stores one setting. Values are typed: true and false become booleans,
numbers become numbers, and comma-separated values become lists.

Examples:
  rawrepo settings set storage.driver postgres
  rawrepo settings set rules.classification_fields 004,008,245,652
  rawrepo settings set import.rate 25`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Driver: %s\n", settings.Storage.Driver)
	cmd.Printf("  Data dir: %s\n", orDefault(settings.Storage.DataDir))
	if settings.Storage.PostgresDSN != "" {
		cmd.Printf("  Postgres DSN: %s\n", maskDSN(settings.Storage.PostgresDSN))
	}
	cmd.Println()

	cmd.Println("[Update]")
	cmd.Printf("  Provider: %s\n", settings.Update.Provider)
	cmd.Println()

	cmd.Println("[Rules]")
	cmd.Printf("  Classification fields: %s\n", orDefault(strings.Join(settings.Rules.ClassificationFields, ",")))
	cmd.Printf("  DBC enrichment: %t\n", settings.Rules.DBCEnrichment)
	cmd.Println()

	cmd.Println("[Import]")
	if settings.Import.Rate > 0 {
		cmd.Printf("  Rate: %g records/s (burst %d)\n", settings.Import.Rate, settings.Import.Burst)
	} else {
		cmd.Println("  Rate: unlimited")
	}
	cmd.Println()

	cmd.Println("[S3]")
	cmd.Printf("  Region: %s\n", orDefault(settings.S3.Region))
	cmd.Printf("  Endpoint: %s\n", orDefault(settings.S3.Endpoint))
	cmd.Printf("  Path style: %t\n", settings.S3.PathStyle)
	cmd.Println()

	cmd.Println("[Metrics]")
	cmd.Printf("  Address: %s\n", orDefault(settings.Metrics.Addr))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], parseSettingValue(args[1])
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	if _, err := settingsService.Get(); err != nil {
		return fmt.Errorf("setting saved but settings are invalid: %w", err)
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}

// parseSettingValue converts a command-line value to the type stored in
// the config file.
func parseSettingValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	// Zero-padded values such as field tags stay strings.
	if !strings.HasPrefix(s, "0") || s == "0" || strings.HasPrefix(s, "0.") {
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if strings.Contains(s, ",") {
		var items []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPassword := strings.Cut(userinfo, ":")
	if !hasPassword {
		return dsn
	}
	return scheme + "://" + user + ":****@" + host
}
