package datastore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welling-fm/fireinspect/internal/building"
	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/report"
	"github.com/welling-fm/fireinspect/internal/updater"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(InMemory, logger.NewSlogLogger(io.Discard, logger.LogLevelInfo))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(id, name string) building.Record {
	return building.NewRecord("projects/p/databases/(default)/documents/apps/welling-fm/buildings/"+id, map[string]any{
		"name": name,
		"year": "2025",
		"data": map[string]any{"fireAlarmDevices": []any{}},
	})
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestOpenFileDatabase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "fireinspect.db")
	s, err := Open(path, logger.NewSlogLogger(io.Discard, logger.LogLevelInfo))
	require.NoError(t, err)
	require.NoError(t, NewLocalStore(s).WriteRecord(context.Background(), record("b1", "Champion")))
	require.NoError(t, s.Close())

	s, err = Open(path, logger.NewSlogLogger(io.Discard, logger.LogLevelInfo))
	require.NoError(t, err)
	defer s.Close()

	records, err := NewLocalStore(s).ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Champion", records[0].Name())
}

func TestLocalStoreWriteReplaces(t *testing.T) {
	t.Parallel()

	ls := NewLocalStore(openTestStore(t))
	ctx := context.Background()

	require.NoError(t, ls.WriteRecord(ctx, record("b1", "Champion")))
	require.NoError(t, ls.WriteRecord(ctx, record("b2", "Cardston Temple")))

	updated := record("b1", "Champion")
	updated.Fields["lastModified"] = "2025-06-04T04:15:04.000Z"
	require.NoError(t, ls.WriteRecord(ctx, updated))

	records, err := ls.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b1", records[0].ID)
	assert.Equal(t, "2025-06-04T04:15:04.000Z", records[0].Fields["lastModified"])
	assert.Equal(t, updated.Fields, records[0].Fields)
	assert.Equal(t, "b2", records[1].ID)
}

func TestLocalStoreRejectsRecordWithoutPath(t *testing.T) {
	t.Parallel()

	err := NewLocalStore(openTestStore(t)).WriteRecord(context.Background(), building.Record{ID: "b1"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
}

func TestImportReplacesTable(t *testing.T) {
	t.Parallel()

	ls := NewLocalStore(openTestStore(t))
	ctx := context.Background()
	require.NoError(t, ls.WriteRecord(ctx, record("old", "Demolished Hall")))

	n, err := ls.Import(ctx, []building.Record{record("b1", "Champion"), record("b2", "Cardston Temple")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := ls.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Champion", records[0].Name())

	n, err = ls.Import(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	records, err = ls.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdaterAgainstLocalStore(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ls := NewLocalStore(s)
	ctx := context.Background()
	_, err := ls.Import(ctx, []building.Record{record("b1", "Champion")})
	require.NoError(t, err)

	run, err := s.StartRun(ctx, RunKindUpdate, "local", false)
	require.NoError(t, err)

	r := report.New("Champion", "Champion 2025.txt")
	r.Notes = []string{"Notes: panel battery replaced"}
	u := updater.New(ls, updater.Options{
		Snapshot: s.Snapshotter(run),
		Logger:   logger.NewSlogLogger(io.Discard, logger.LogLevelInfo),
	})
	summary, err := u.Run(ctx, []report.Report{*r, *report.New("Nowhere", "Nowhere.txt")})
	require.NoError(t, err)
	require.NoError(t, s.FinishUpdate(ctx, run, summary, nil))

	records, err := ls.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Fields, "lastModified")

	snaps, err := s.Snapshots(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.NotContains(t, snaps[0].Fields, "lastModified")
	assert.Equal(t, "Champion", snaps[0].Building)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Updated)
	assert.Equal(t, 1, runs[0].NotFound)
	assert.Equal(t, 2, runs[0].Total)
	assert.NotNil(t, runs[0].FinishedAt)
	require.Len(t, runs[0].Items, 2)
	assert.Equal(t, "updated", runs[0].Items[0].Outcome)
	assert.Equal(t, 1, runs[0].Items[0].Notes)
	assert.Equal(t, "not_found", runs[0].Items[1].Outcome)
}

func TestListRunsNewestFirst(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.StartRun(ctx, RunKindPull, "firestore", false)
	require.NoError(t, err)
	require.NoError(t, s.FinishPull(ctx, first, 22, nil))

	second, err := s.StartRun(ctx, RunKindUpdate, "firestore", true)
	require.NoError(t, err)
	require.NoError(t, s.FinishUpdate(ctx, second, updater.Summary{}, fmt.Errorf("list buildings: denied")))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, "list buildings: denied", runs[0].Error)
	assert.True(t, runs[0].DryRun)
	assert.Equal(t, 22, runs[1].Updated)

	runs, err = s.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
