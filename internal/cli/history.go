package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yabaduma/retheme/internal/db"
	"github.com/yabaduma/retheme/internal/models"
)

var (
	historyLimit  int
	historyFailed bool
	historySince  time.Duration
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only show runs where nothing applied")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only show runs newer than this (e.g. 24h)")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent theme runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		database, err := openHistory(ctx, cfg)
		if err != nil {
			return &PreflightError{
				Message: "history is unavailable",
				Hint:    err.Error(),
				Err:     err,
			}
		}
		defer database.Close()

		query := db.RunQuery{Limit: historyLimit, FailedOnly: historyFailed}
		if historySince > 0 {
			since := time.Now().Add(-historySince)
			query.Since = &since
		}
		runs, err := db.NewRunRepository(database).List(ctx, query)
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			if runs == nil {
				runs = []*models.Run{}
			}
			return WriteOutput(out, runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded yet.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, historyRow(run))
		}
		return writeTable(out, []string{"ID", "STARTED", "APPLIED", "PALETTE", "STEPS", "WALLPAPER"}, rows)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show the steps of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		database, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		run, err := db.NewRunRepository(database).GetByPrefix(ctx, args[0])
		if err != nil {
			return err
		}
		if IsJSONOutput() {
			return WriteOutput(out, run)
		}

		fmt.Fprintf(out, "Run %s at %s\n", run.ID, run.StartedAt.Local().Format(time.DateTime))
		if run.Wallpaper != "" {
			fmt.Fprintf(out, "Wallpaper: %s\n", run.Wallpaper)
		}
		if run.Error != "" {
			fmt.Fprintf(out, "Error: %s\n", run.Error)
		}
		for _, step := range run.Steps {
			fmt.Fprintln(out, formatStepLine(step))
		}
		return nil
	},
}

func historyRow(run *models.Run) []string {
	succeeded, skipped, failed := run.Counts()
	palette := run.Palette
	if palette == "" {
		palette = "-"
	}
	wallpaper := run.Wallpaper
	if wallpaper == "" {
		wallpaper = "-"
	}
	return []string{
		shortID(run.ID),
		run.StartedAt.Local().Format(time.DateTime),
		formatYesNo(run.Succeeded),
		palette,
		fmt.Sprintf("%d ok, %d skipped, %d failed", succeeded, skipped, failed),
		wallpaper,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
