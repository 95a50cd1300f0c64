package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/namepairs/internal/model"
	"github.com/sells-group/namepairs/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "List recorded runs, or show the phases of one run",
	Long:  "List recorded runs, or show the phases of one run. With --tables, print the row count of each working table instead.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if tables, _ := cmd.Flags().GetBool("tables"); tables {
			counts, err := tableCounts(ctx, st)
			if err != nil {
				return err
			}
			formatTables(os.Stdout, counts)
			return nil
		}

		if len(args) == 1 {
			run, err := st.GetRun(ctx, args[0])
			if err != nil {
				return eris.Wrap(err, "status")
			}
			phases, err := st.ListPhases(ctx, run.ID)
			if err != nil {
				return eris.Wrap(err, "status: phases")
			}
			run.Phases = phases

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			formatPhases(os.Stdout, phases)
			return nil
		}

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "status")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}
		formatRunsList(os.Stdout, runs)
		return nil
	},
}

func init() {
	statusCmd.Flags().String("status", "", "filter by run status (queued, running, complete, failed)")
	statusCmd.Flags().Int("limit", 20, "max number of runs to display")
	statusCmd.Flags().Bool("json", false, "print the run as JSON (with a run id)")
	statusCmd.Flags().Bool("tables", false, "print row counts of the working tables")
	rootCmd.AddCommand(statusCmd)
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTAGES\tSTATUS\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			strings.Join(r.Stages, ","),
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// formatPhases writes the phases of one run to out.
func formatPhases(out io.Writer, phases []model.RunPhase) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PHASE\tSTATUS\tROWS\tDURATION\tERROR")
	for _, p := range phases {
		var rows int64
		var dur time.Duration
		var errMsg string
		if p.Result != nil {
			rows = p.Result.Rows
			dur = time.Duration(p.Result.Duration) * time.Millisecond
			errMsg = p.Result.Error
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.Name, p.Status, rows, dur, errMsg)
	}
	_ = w.Flush()
}

type tableCount struct {
	Table string
	Rows  int64
}

// tableCounts counts the rows of every working table in pipeline order.
func tableCounts(ctx context.Context, st store.Store) ([]tableCount, error) {
	out := make([]tableCount, 0, len(store.WorkTables))
	for _, table := range store.WorkTables {
		n, err := st.CountRows(ctx, table)
		if err != nil {
			return nil, eris.Wrapf(err, "status: count %s", table)
		}
		out = append(out, tableCount{Table: table, Rows: n})
	}
	return out, nil
}

// formatTables writes working table row counts to out.
func formatTables(out io.Writer, counts []tableCount) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	for _, c := range counts {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c.Table, c.Rows)
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
