package update

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/welling-fm/fireinspect/internal/conf"
	"github.com/welling-fm/fireinspect/internal/datastore"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/notification"
	"github.com/welling-fm/fireinspect/internal/report"
	"github.com/welling-fm/fireinspect/internal/runtime"
	"github.com/welling-fm/fireinspect/internal/seed"
	"github.com/welling-fm/fireinspect/internal/updater"
)

// embeddedSeed is the --seed value that selects the built-in dataset
const embeddedSeed = "embedded"

type options struct {
	artifact string
	dir      string
	seed     string
	target   string
	year     string
	dryRun   bool
}

// Command returns the update command
func Command(rc *runtime.Context) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge parsed reports into the building records",
		Long: `Merge reports into the building records of the configured year.

Reports come from one of:
  --artifact FILE  a JSON artifact written by parse (default output.artifact)
  --dir DIR        report files parsed on the fly
  --seed[=FILE]    a YAML dataset, or the built-in one when no FILE is given

Examples:
  fireinspect update --dry-run
  fireinspect update --seed --target local
  fireinspect update --dir ./reports --year 2026`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("target") {
				opts.target = rc.Settings.Update.Target
			}
			if !cmd.Flags().Changed("year") {
				opts.year = rc.Settings.Update.Year
			}
			if !cmd.Flags().Changed("dry-run") {
				opts.dryRun = rc.Settings.Update.DryRun
			}
			return run(cmd.Context(), rc, opts)
		},
	}

	cmd.Flags().StringVar(&opts.artifact, "artifact", "", "Read reports from a JSON artifact")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Parse reports from a directory")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "Read reports from a YAML dataset; the built-in one when no file is given")
	cmd.Flags().Lookup("seed").NoOptDefVal = embeddedSeed
	cmd.Flags().StringVar(&opts.target, "target", conf.TargetFirestore, "Store to update: firestore or local")
	cmd.Flags().StringVar(&opts.year, "year", updater.DefaultYear, "Inspection year of the records to update")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Match and merge without writing")
	cmd.MarkFlagsMutuallyExclusive("artifact", "dir", "seed")

	return cmd
}

func run(ctx context.Context, rc *runtime.Context, opts options) error {
	log := rc.Log("update")

	reports, err := loadReports(ctx, rc, opts)
	if err != nil {
		return err
	}

	ds, err := rc.OpenDatastore()
	if err != nil {
		return err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Warn("failed to close datastore", logger.Error(err))
		}
	}()

	var store updater.Store
	switch opts.target {
	case conf.TargetFirestore:
		remote, err := rc.RemoteStore(ctx)
		if err != nil {
			return err
		}
		store = remote
	case conf.TargetLocal:
		store = datastore.NewLocalStore(ds)
	default:
		return errors.Newf("unknown update target %q", opts.target).
			Component("update").
			Category(errors.CategoryValidation).
			Build()
	}

	ledgerRun, err := ds.StartRun(ctx, datastore.RunKindUpdate, opts.target, opts.dryRun)
	if err != nil {
		return err
	}

	u := updater.New(store, updater.Options{
		Year:            opts.year,
		WritesPerSecond: rc.Settings.Update.WritesPerSecond,
		DryRun:          opts.dryRun,
		Snapshot:        snapshotter(rc, ds, ledgerRun),
		Logger:          rc.Log("updater"),
		Metrics:         rc.Metrics.Remote,
	})
	summary, runErr := u.Run(ctx, reports)

	// The ledger and notification outlive a cancelled run.
	finishCtx := context.WithoutCancel(ctx)
	if err := ds.FinishUpdate(finishCtx, ledgerRun, summary, runErr); err != nil {
		log.Warn("failed to record run", logger.Error(err))
	}
	rc.Notifier().Notify(finishCtx, notification.UpdateMessage(opts.year, opts.target, opts.dryRun, summary, runErr))

	printSummary(rc, summary)
	rc.Printf("run %d: %s\n", ledgerRun.ID, summary)
	return runErr
}

func snapshotter(rc *runtime.Context, ds *datastore.Store, run *datastore.Run) updater.SnapshotFunc {
	if !rc.Settings.Update.Snapshot {
		return nil
	}
	return ds.Snapshotter(run)
}

func loadReports(ctx context.Context, rc *runtime.Context, opts options) ([]report.Report, error) {
	switch {
	case opts.seed == embeddedSeed:
		devices, err := rc.Devices()
		if err != nil {
			return nil, err
		}
		return seed.Default(devices)
	case opts.seed != "":
		devices, err := rc.Devices()
		if err != nil {
			return nil, err
		}
		return seed.LoadFile(rc.Fs, opts.seed, devices)
	case opts.dir != "":
		scanner, err := rc.Scanner()
		if err != nil {
			return nil, err
		}
		res, err := scanner.Scan(ctx, opts.dir)
		if err != nil {
			return nil, err
		}
		return res.Reports, nil
	default:
		path := opts.artifact
		if path == "" {
			path = rc.Settings.Output.Artifact
		}
		return report.ReadArtifact(rc.Fs, path)
	}
}

func printSummary(rc *runtime.Context, summary updater.Summary) {
	for _, it := range summary.Items {
		line := fmt.Sprintf("%-9s %s", it.Outcome, it.Building)
		if it.DocumentID != "" {
			line += " [" + it.DocumentID + "]"
		}
		if it.Outcome == updater.OutcomeUpdated || it.Outcome == updater.OutcomeDryRun {
			line += fmt.Sprintf(": %d devices, %d lights, %d notes", it.Changes.Devices, it.Changes.Lights, it.Changes.Notes)
		}
		if it.Err != nil {
			line += ": " + it.Err.Error()
		}
		rc.Printf("%s\n", line)
	}
}
