package history

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/welling-fm/fireinspect/internal/datastore"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/runtime"
)

// Command returns the history command
func Command(rc *runtime.Context) *cobra.Command {
	var (
		limit int
		items bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent update and pull runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := rc.OpenDatastore()
			if err != nil {
				return err
			}
			defer func() {
				if err := ds.Close(); err != nil {
					rc.Log("history").Warn("failed to close datastore", logger.Error(err))
				}
			}()

			runs, err := ds.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				rc.Printf("no runs recorded in %s\n", rc.Settings.Datastore.Path)
				return nil
			}
			return writeRuns(rc.Out, runs, items)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", datastore.DefaultHistoryLimit, "Number of runs to list")
	cmd.Flags().BoolVar(&items, "items", false, "List the buildings of each run")

	return cmd
}

func writeRuns(out io.Writer, runs []datastore.Run, items bool) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tTARGET\tSTARTED\tDURATION\tTOTAL\tUPDATED\tNOT FOUND\tFAILED\tERROR")
	for _, r := range runs {
		target := r.Target
		if r.DryRun {
			target += " (dry run)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.Kind, target, r.StartedAt.Local().Format(time.DateTime), duration(r),
			r.Total, r.Updated, r.NotFound, r.Failed, r.Error)
		if !items {
			continue
		}
		for _, it := range r.Items {
			detail := it.Outcome
			if it.Error != "" {
				detail += ": " + it.Error
			}
			fmt.Fprintf(tw, "\t\t%s\t%s\t\t%d\t%d\t%d\t\t\n", it.Building, detail, it.Devices, it.Lights, it.Notes)
		}
	}
	return tw.Flush()
}

func duration(r datastore.Run) string {
	if r.FinishedAt == nil {
		return "running"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
}
