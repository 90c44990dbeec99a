package snapshot

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) contract.SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSnapshotStore_NoneBackend(t *testing.T) {
	store, err := NewSnapshotStore(schema.NoneBackend, "")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestSnapshotStore_UnsupportedBackend(t *testing.T) {
	_, err := NewSnapshotStore("redis", "")
	assert.Error(t, err)
}

func TestSnapshotStore_SaveLoad(t *testing.T) {
	store := newSQLiteStore(t)
	snap := loadSample(t)

	require.NoError(t, store.Save("base", snap))

	got, err := store.Load("base")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// The loaded snapshot builds the same host
	host, err := NewWorld(got)
	require.NoError(t, err)
	_, ok := host.(contract.WeaponModProvider)
	assert.True(t, ok)
}

func TestSnapshotStore_SaveReplaces(t *testing.T) {
	store := newSQLiteStore(t)
	snap := loadSample(t)
	require.NoError(t, store.Save("base", snap))

	smaller := snap
	smaller.Structures = snap.Structures[:1]
	smaller.Blocks = snap.Blocks[:2]
	smaller.WeaponMod = nil
	require.NoError(t, store.Save("base", smaller))

	got, err := store.Load("base")
	require.NoError(t, err)
	assert.Len(t, got.Structures, 1)
	assert.Len(t, got.Blocks, 2)
	assert.Nil(t, got.WeaponMod)

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 1, infos[0].Structures)
	assert.Equal(t, 2, infos[0].Blocks)
}

func TestSnapshotStore_SaveRejectsInvalid(t *testing.T) {
	store := newSQLiteStore(t)

	assert.Error(t, store.Save("", loadSample(t)))
	assert.Error(t, store.Save("broken", schema.Snapshot{Self: 1}))

	_, err := store.Load("broken")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotStore_ListDeleteClear(t *testing.T) {
	store := newSQLiteStore(t)
	snap := loadSample(t)

	for _, name := range []string{"zulu", "alpha", "mike"} {
		require.NoError(t, store.Save(name, snap))
	}

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "mike", infos[1].Name)
	assert.Equal(t, "zulu", infos[2].Name)
	assert.Equal(t, 2, infos[0].Structures)
	assert.Equal(t, 4, infos[0].Blocks)
	assert.False(t, infos[0].ImportedAt.IsZero())

	require.NoError(t, store.Delete("mike"))
	assert.ErrorIs(t, store.Delete("mike"), ErrSnapshotNotFound)
	_, err = store.Load("mike")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.Snapshots)
	assert.Greater(t, status.SizeBytes, int64(0))

	require.NoError(t, store.Clear())
	infos, err = store.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestSnapshotStore_Rebind(t *testing.T) {
	pg := &StoreImpl{backend: schema.PostgreSQLBackend}
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", pg.rebind("SELECT a FROM t WHERE b = ? AND c = ?"))

	lite := &StoreImpl{backend: schema.SQLiteBackend}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestMigrateSnapshots_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	res, err := MigrateSnapshots(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)
	assert.Equal(t, MigrationResult{From: 0, To: 4, Changed: true}, res)

	res, err = MigrateSnapshots(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, uint(4), res.To)

	res, err = MigrateSnapshots(schema.SQLiteBackend, dbPath, 2)
	require.NoError(t, err)
	assert.Equal(t, MigrationResult{From: 4, To: 2, Changed: true}, res)

	res, err = MigrateSnapshots(schema.SQLiteBackend, dbPath, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(0), res.To)

	// A store on a rolled-back database migrates itself forward again
	store, err := NewSnapshotStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Save("base", loadSample(t)))
}

func TestMigrateSnapshots_NoneBackend(t *testing.T) {
	_, err := MigrateSnapshots(schema.NoneBackend, "", -1)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	_, err := Resolve("", schema.NoneBackend, "")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	fromFile, err := Resolve(samplePath, schema.NoneBackend, "")
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "resolve.db")
	store, err := NewSnapshotStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save("base", fromFile))
	require.NoError(t, store.Close())

	fromStore, err := Resolve("base", schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, fromFile, fromStore)

	_, err = Resolve("missing", schema.SQLiteBackend, dbPath)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestLoadStored(t *testing.T) {
	sample, err := ReadFile(samplePath)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		store := new(contract.MockSnapshotStore)
		store.On("Load", "outpost").Return(sample, nil)

		snap, err := LoadStored(store, "outpost")
		require.NoError(t, err)
		assert.Equal(t, sample, snap)
		store.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		store := new(contract.MockSnapshotStore)
		store.On("Load", "ghost").Return(schema.Snapshot{}, fmt.Errorf("%w: ghost", ErrSnapshotNotFound))

		_, err := LoadStored(store, "ghost")
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})

	t.Run("oversized extent in stored rows", func(t *testing.T) {
		bad := sample
		bad.Blocks = append([]schema.BlockRecord(nil), sample.Blocks...)
		bad.Blocks[0].Extent = &[3]int{2097152, 2097152, 2097152}
		store := new(contract.MockSnapshotStore)
		store.On("Load", "bad").Return(bad, nil)

		_, err := LoadStored(store, "bad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `stored snapshot "bad"`)
		assert.Contains(t, err.Error(), "extent")
	})
}

func TestLoadHost(t *testing.T) {
	cfg := &contract.Config{SnapshotRef: samplePath, SnapshotBackend: schema.NoneBackend}
	host, err := LoadHost(cfg)
	require.NoError(t, err)
	assert.Equal(t, schema.BlockID(100), host.Self().ID)
}
