package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/monitoring"
	"github.com/sells-group/landsuit/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect suitability run history",
	Long:  "Commands for listing and viewing recorded suitability runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suitability runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		dataset, _ := cmd.Flags().GetString("dataset")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:  model.RunStatus(status),
			Dataset: dataset,
			Limit:   limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		since, _ := cmd.Flags().GetInt("since")
		asJSON, _ := cmd.Flags().GetBool("json")

		snap, err := monitoring.NewCollector(st).Collect(ctx, since)
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		formatRunStats(cmd.OutOrStdout(), snap)
		return nil
	},
}

func init() {
	runsStatsCmd.Flags().Int("since", 24, "lookback window in hours")
	runsStatsCmd.Flags().Bool("json", false, "print the snapshot as JSON")
	runsCmd.AddCommand(runsStatsCmd)

	runsListCmd.Flags().String("status", "", "filter by run status (queued, aligning, combining, encoding, complete, failed)")
	runsListCmd.Flags().String("dataset", "", "filter by dataset identifier")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATASETS\tSTATUS\tSUITABLE\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t--------\t------\t--------\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Millisecond).String()

		datasets := strings.Join(r.Datasets, ",")
		if len(datasets) > 30 {
			datasets = datasets[:27] + "..."
		}

		suitable := "-"
		if r.Result != nil {
			suitable = fmt.Sprintf("%.1f%%", 100*r.Result.Summary.SuitableFraction())
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			datasets,
			r.Status,
			suitable,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatRunStats writes a human-readable run summary to w.
func formatRunStats(out io.Writer, snap *monitoring.MetricsSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Window:\tlast %dh\n", snap.LookbackHours)
	_, _ = fmt.Fprintf(w, "Runs:\t%d (%d complete, %d failed, %d in flight)\n",
		snap.Total, snap.Complete, snap.Failed, snap.InFlight)
	_, _ = fmt.Fprintf(w, "Fail rate:\t%.1f%%\n", 100*snap.FailRate)
	_, _ = fmt.Fprintf(w, "Avg duration:\t%s\n",
		(time.Duration(snap.AvgDurationMs) * time.Millisecond).Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "Avg suitable:\t%.1f%%\n", 100*snap.AvgSuitableFraction)
	_, _ = fmt.Fprintf(w, "Avg no-data:\t%.1f%%\n", 100*snap.AvgNoDataFraction)

	if len(snap.Datasets) > 0 {
		ids := make([]string, 0, len(snap.Datasets))
		for id := range snap.Datasets {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		_, _ = fmt.Fprintln(w, "Datasets:\t")
		for _, id := range ids {
			_, _ = fmt.Fprintf(w, "  %s\t%d\n", id, snap.Datasets[id])
		}
	}
	_ = w.Flush()
}
