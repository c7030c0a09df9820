package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Inspect stored records",
	Long:  `Show stored physical records, the agencies holding an id, and record relations.`,
}

var recordGetCmd = &cobra.Command{
	Use:   "get [id] [agency]",
	Short: "Show a stored record",
	Long: `Shows a physical record.

On a terminal the decoded fields are printed. When the output is piped, or
with --raw, the stored content is written unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: runRecordGet,
}

var recordAgenciesCmd = &cobra.Command{
	Use:   "agencies [id]",
	Short: "List agencies with a live record for an id",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordAgencies,
}

var recordRelationsCmd = &cobra.Command{
	Use:   "relations [id] [agency]",
	Short: "Show the relations of a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordRelations,
}

var recordPurgeCmd = &cobra.Command{
	Use:   "purge [id] [agency]",
	Short: "Hard-delete a record",
	Long: `Removes the record, its relations and its change signals.
This bypasses the update flow and cannot be undone.`,
	Args: cobra.ExactArgs(2),
	RunE: runRecordPurge,
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the change queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending change signals",
	RunE:  runQueueList,
}

var (
	recordRaw  bool
	recordJSON bool
	queueLimit int
)

func init() {
	recordGetCmd.Flags().BoolVar(&recordRaw, "raw", false, "write the stored content unchanged")
	recordGetCmd.Flags().BoolVar(&recordJSON, "json", false, "output the record as JSON")
	queueListCmd.Flags().IntVarP(&queueLimit, "limit", "n", 50, "maximum number of jobs (0 for all)")

	recordCmd.AddCommand(recordGetCmd)
	recordCmd.AddCommand(recordAgenciesCmd)
	recordCmd.AddCommand(recordRelationsCmd)
	recordCmd.AddCommand(recordPurgeCmd)
	rootCmd.AddCommand(recordCmd)

	queueCmd.AddCommand(queueListCmd)
	rootCmd.AddCommand(queueCmd)
}

func runRecordGet(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	id, err := parseRecordID(args[0], args[1])
	if err != nil {
		return err
	}

	view, err := recordService.Get(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}

	if recordJSON {
		data, err := json.MarshalIndent(view.Record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if recordRaw || !isTerminal(cmd.OutOrStdout()) {
		_, err := cmd.OutOrStdout().Write(view.Record.Content)
		return err
	}

	rec := view.Record
	cmd.Printf("Record: %s\n\n", rec.ID)
	cmd.Printf("  Type:      %s\n", view.Type)
	cmd.Printf("  Mime type: %s\n", rec.MimeType)
	cmd.Printf("  Deleted:   %t\n", rec.Deleted)
	cmd.Printf("  Created:   %s\n", rec.Created.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Modified:  %s\n", rec.Modified.Format("2006-01-02 15:04:05"))
	if view.Marc.IsEmpty() {
		cmd.Println("\n  (no content)")
		return nil
	}
	cmd.Println()
	for _, line := range strings.Split(view.Marc.String(), "\n") {
		cmd.Printf("  %s\n", line)
	}
	return nil
}

func runRecordAgencies(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	agencies, err := recordService.Agencies(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list agencies: %w", err)
	}
	if len(agencies) == 0 {
		cmd.Printf("No records found for id: %s\n", args[0])
		return nil
	}
	for _, agencyID := range agencies {
		cmd.Printf("%d\n", agencyID)
	}
	return nil
}

func runRecordRelations(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	id, err := parseRecordID(args[0], args[1])
	if err != nil {
		return err
	}

	view, err := recordService.Relations(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to get relations: %w", err)
	}

	cmd.Printf("Relations for %s:\n\n", view.ID)
	printIDs(cmd, "Points at", view.From)
	printIDs(cmd, "Children", view.Children)
	printIDs(cmd, "Enrichments", view.Siblings)
	return nil
}

func printIDs(cmd *cobra.Command, label string, ids []domain.RecordID) {
	if len(ids) == 0 {
		cmd.Printf("  %s: (none)\n", label)
		return
	}
	cmd.Printf("  %s:\n", label)
	for _, id := range ids {
		cmd.Printf("    %s\n", id)
	}
}

func runRecordPurge(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	id, err := parseRecordID(args[0], args[1])
	if err != nil {
		return err
	}

	if err := recordService.Purge(context.Background(), id); err != nil {
		return fmt.Errorf("failed to purge record: %w", err)
	}
	cmd.Printf("Record %s purged.\n", id)
	return nil
}

func runQueueList(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	jobs, err := recordService.Queue(context.Background(), queueLimit)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}
	if len(jobs) == 0 {
		cmd.Println("Queue is empty.")
		return nil
	}
	for _, job := range jobs {
		cmd.Printf("%s  %-14s %-28s %s\n",
			job.QueuedAt.Format("2006-01-02 15:04:05"), job.RecordID, job.MimeType, job.Provider)
	}
	cmd.Printf("\nTotal: %d jobs\n", len(jobs))
	return nil
}
