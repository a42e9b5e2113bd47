package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"erecord/internal/recording"
	"erecord/internal/submissions"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var (
		batchID    string
		statusFlag string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show stored submission outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var records []*submissions.Record
			switch {
			case strings.TrimSpace(batchID) != "":
				records, err = store.ListByBatch(cmd.Context(), strings.TrimSpace(batchID))
			case strings.TrimSpace(statusFlag) != "":
				status, ok := recording.ParseStatus(strings.ToLower(strings.TrimSpace(statusFlag)))
				if !ok {
					return fmt.Errorf("unknown status %q (one of: %s)", statusFlag, statusNames())
				}
				records, err = store.List(cmd.Context(), status, limit)
			default:
				records, err = store.List(cmd.Context(), "", limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No submission records found.")
				return nil
			}

			headers := []string{"Batch", "Row", "County", "Package", "Status", "Remote ID", "Updated", "Detail"}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					shortBatchID(record.BatchID),
					fmt.Sprintf("%d", record.RowIndex+2),
					record.CountyID,
					record.PackageName,
					string(record.Status),
					record.RemoteID,
					record.UpdatedAt.Local().Format(time.DateTime),
					truncateDetail(record.ErrorDetail, 50),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight}))

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, statsLine(stats))
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Show only the given batch")
	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum records to show")

	cmd.AddCommand(newRetryFailedCommand(ctx))
	return cmd
}

func newRetryFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry-failed",
		Short: "Return failed submissions to pending so the next run retries them",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			reset, err := store.ResetFailed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d failed submission(s) to pending.\n", reset)
			return nil
		},
	}
}

func shortBatchID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusNames() string {
	names := make([]string, 0, len(recording.AllStatuses()))
	for _, status := range recording.AllStatuses() {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

func statsLine(stats map[recording.Status]int) string {
	parts := make([]string, 0, len(recording.AllStatuses()))
	total := 0
	for _, status := range recording.AllStatuses() {
		if count := stats[status]; count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, status))
			total += count
		}
	}
	if total == 0 {
		return "0 records"
	}
	return fmt.Sprintf("%d total (%s)", total, strings.Join(parts, ", "))
}
