package pull

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/welling-fm/fireinspect/internal/conf"
	"github.com/welling-fm/fireinspect/internal/datastore"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/runtime"
	"github.com/welling-fm/fireinspect/internal/updater"
)

// Command returns the pull command
func Command(rc *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Copy the Firestore buildings collection into the local store",
		Long: `Replace the local store with the current Firestore buildings collection,
so that update --target local can rehearse a run against real data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, err := rc.RemoteStore(cmd.Context())
			if err != nil {
				return err
			}
			return run(cmd.Context(), rc, remote)
		},
	}
}

func run(ctx context.Context, rc *runtime.Context, remote updater.Store) error {
	log := rc.Log("pull")

	ds, err := rc.OpenDatastore()
	if err != nil {
		return err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Warn("failed to close datastore", logger.Error(err))
		}
	}()

	ledgerRun, err := ds.StartRun(ctx, datastore.RunKindPull, conf.TargetFirestore, false)
	if err != nil {
		return err
	}

	imported := 0
	records, runErr := remote.ListRecords(ctx)
	if runErr == nil {
		imported, runErr = datastore.NewLocalStore(ds).Import(ctx, records)
	}

	if err := ds.FinishPull(context.WithoutCancel(ctx), ledgerRun, imported, runErr); err != nil {
		log.Warn("failed to record run", logger.Error(err))
	}
	if runErr != nil {
		return runErr
	}

	rc.Printf("run %d: pulled %d records into %s\n", ledgerRun.ID, imported, rc.Settings.Datastore.Path)
	return nil
}
