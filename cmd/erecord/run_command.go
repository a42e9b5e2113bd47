package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"erecord/internal/batch"
	"erecord/internal/county"
	"erecord/internal/docpair"
	"erecord/internal/notifications"
	"erecord/internal/rowfeed"
	"erecord/internal/simplifile"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		rowsPath    string
		deedDir     string
		satDir      string
		countyFlag  string
		dryRun      bool
		showWarning bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build, validate, and submit a batch of recording packages as drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !dryRun {
				if err := cfg.RequireCredentials(); err != nil {
					return err
				}
			}

			countyID := strings.ToUpper(strings.TrimSpace(countyFlag))
			if countyID == "" {
				countyID = cfg.Submission.DefaultCounty
			}
			if countyID == "" {
				return errors.New("no county given: pass --county or set submission.default_county")
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			// One batch at a time per data dir.
			lock := flock.New(filepath.Join(cfg.Paths.DataDir, "erecord.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire batch lock: %w", err)
			}
			if !locked {
				return errors.New("another batch is already running against this data directory")
			}
			defer func() { _ = lock.Unlock() }()

			out := cmd.OutOrStdout()

			feed, err := rowfeed.ReadCSV(rowsPath)
			if err != nil {
				return err
			}
			if showWarning {
				for _, warning := range feed.Warnings {
					fmt.Fprintf(out, "warning: %s\n", warning)
				}
			}

			pairs, err := docpair.DirSource(deedDir, satDir)
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			notifier := notifications.NewService(cfg)
			client := simplifile.NewClient(cfg, logger)
			orchestrator := batch.New(cfg, county.Builtin(), client, store, notifier, logger)

			result, err := orchestrator.Run(runCtx, countyID, feed.Rows, pairs, batch.Options{
				SkipSubmit: dryRun,
				Progress: func(event batch.ProgressEvent) {
					fmt.Fprintf(out, "row %d: %s %s\n", event.RowIndex+2, event.Status, event.PackageName)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, renderResultTable(result))
			fmt.Fprintln(out, summaryLine(result, shouldColorize(out)))

			if result.Summary.Cancelled {
				return errors.New("batch cancelled")
			}
			if !dryRun && result.Summary.Submitted == 0 {
				return errors.New("no packages were submitted")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rowsPath, "rows", "", "CSV export of the closing spreadsheet")
	cmd.Flags().StringVar(&deedDir, "deeds", "", "Directory of split deed documents, one per row")
	cmd.Flags().StringVar(&satDir, "satisfactions", "", "Directory of split satisfaction documents, one per row")
	cmd.Flags().StringVar(&countyFlag, "county", "", "County profile to submit under (e.g. SCCP49)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build and validate only; submit nothing")
	cmd.Flags().BoolVar(&showWarning, "warnings", true, "Print spreadsheet format warnings")
	_ = cmd.MarkFlagRequired("rows")
	_ = cmd.MarkFlagRequired("deeds")
	_ = cmd.MarkFlagRequired("satisfactions")

	return cmd
}

func renderResultTable(result *batch.Result) string {
	headers := []string{"Row", "Package", "Status", "Remote ID", "Detail"}
	rows := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, []string{
			fmt.Sprintf("%d", row.RowIndex+2),
			row.PackageName,
			string(row.Status),
			row.RemoteID,
			truncateDetail(row.ErrorDetail, 60),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft})
}

func summaryLine(result *batch.Result, colorized bool) string {
	s := result.Summary
	line := fmt.Sprintf("batch %s: %d rows, %d submitted, %d validated, %d invalid, %d failed in %s",
		result.BatchID, s.Total, s.Submitted, s.Validated, s.Invalid, s.Failed, s.Duration.Round(time.Millisecond))
	if s.Invalid == 0 && s.Failed == 0 && !s.Cancelled {
		return colorize(colorized, ansiGreen, line)
	}
	return colorize(colorized, ansiRed, line)
}

func truncateDetail(detail string, max int) string {
	if len(detail) <= max {
		return detail
	}
	return detail[:max-3] + "..."
}
