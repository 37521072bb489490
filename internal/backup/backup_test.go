package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retirewiselabs/retirewised/internal/store"
)

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.CollectionProjects, "project_1",
		store.Fields{"name": "Wanderwise", "status": "active", "totalHoursLogged": 7.5}))
	require.NoError(t, s.Put(ctx, store.CollectionTimeLogs, "timelog_1",
		store.Fields{"projectId": "project_1", "duration": 2.0, "date": "2026-08-01T09:00:00Z"}))
	require.NoError(t, s.Put(ctx, store.CollectionJournalEntries, "journal_1",
		store.Fields{"content": "good progress", "entryType": "reflection"}))
	require.NoError(t, s.Put(ctx, store.CollectionConversations, "conversation_1",
		store.Fields{"title": "advisor chat"}))
	require.NoError(t, s.Put(ctx, store.CollectionSettings, "setting_1",
		store.Fields{"theme": "dark"}))
	// Insights are excluded from backups.
	require.NoError(t, s.Put(ctx, store.CollectionInsights, "insight_1",
		store.Fields{"title": "regenerable", "dismissed": false}))
	return s
}

func TestExport(t *testing.T) {
	s := seededStore(t)

	snap, err := Export(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, Version, snap.Version)
	assert.NotEmpty(t, snap.ExportDate)
	_, err = time.Parse(time.RFC3339, snap.ExportDate)
	assert.NoError(t, err)

	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "project_1", snap.Projects[0]["id"], "ids travel inline with each record")
	assert.Equal(t, "Wanderwise", snap.Projects[0]["name"])
	require.Len(t, snap.TimeLogs, 1)
	require.Len(t, snap.JournalEntries, 1)
	require.Len(t, snap.Conversations, 1)
	require.Len(t, snap.Settings, 1)
}

func TestExport_EmptyStoreIsStillValid(t *testing.T) {
	snap, err := Export(context.Background(), store.NewMemoryStore())
	require.NoError(t, err)

	assert.NotNil(t, snap.Projects, "empty sections export as [], not null")
	assert.NoError(t, snap.Validate())
}

func TestImport_RoundTripPreservesIDs(t *testing.T) {
	src := seededStore(t)
	ctx := context.Background()

	snap, err := Export(ctx, src)
	require.NoError(t, err)

	dst := store.NewMemoryStore()
	require.NoError(t, dst.Put(ctx, store.CollectionProjects, "project_stale",
		store.Fields{"name": "to be replaced"}))

	require.NoError(t, Import(ctx, dst, snap, zap.NewNop()))

	doc, err := dst.Get(ctx, store.CollectionProjects, "project_1")
	require.NoError(t, err)
	assert.Equal(t, "Wanderwise", doc.Fields["name"])
	assert.NotContains(t, doc.Fields, "id", "the inline id is stripped back out on restore")

	_, err = dst.Get(ctx, store.CollectionProjects, "project_stale")
	assert.ErrorIs(t, err, store.ErrNotFound, "import replaces, it does not merge")

	doc, err = dst.Get(ctx, store.CollectionTimeLogs, "timelog_1")
	require.NoError(t, err)
	assert.Equal(t, "project_1", doc.Fields["projectId"], "restored references still resolve")
}

func TestImport_InvalidSnapshotLeavesDataIntact(t *testing.T) {
	dst := seededStore(t)
	ctx := context.Background()

	bad := &Snapshot{
		TimeLogs:   []store.Fields{{"duration": 1.0}},
		ExportDate: time.Now().Format(time.RFC3339),
		// Projects section missing: not a RetireWise backup.
	}
	err := Import(ctx, dst, bad, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	docs, err := dst.List(ctx, store.CollectionProjects)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "validation happens before anything is cleared")

	docs, err = dst.List(ctx, store.CollectionTimeLogs)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestImport_RecordWithoutIDGetsOne(t *testing.T) {
	dst := store.NewMemoryStore()
	ctx := context.Background()

	snap := &Snapshot{
		Projects:   []store.Fields{{"name": "no id in file"}},
		ExportDate: time.Now().Format(time.RFC3339),
		Version:    Version,
	}
	require.NoError(t, Import(ctx, dst, snap, zap.NewNop()))

	docs, err := dst.List(ctx, store.CollectionProjects)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEmpty(t, docs[0].ID)
}

func TestWriteAndReadFile(t *testing.T) {
	src := seededStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.json")

	snap, err := Export(ctx, src)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, snap))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Version, loaded.Version)
	assert.Equal(t, snap.ExportDate, loaded.ExportDate)
	require.Len(t, loaded.Projects, 1)
	assert.Equal(t, "project_1", loaded.Projects[0]["id"])
}

func TestReadFile_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o600))

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestReadFile_RejectsForeignJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"someOtherApp": true}`), 0o600))

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestDefaultFileName(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "retirewise-backup-2026-08-28.json", DefaultFileName(now))
}
