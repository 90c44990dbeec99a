//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gridthreat/internal/snapshot"
	"github.com/huangsam/gridthreat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMySQL starts a MySQL container and returns its connection string.
func startMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "gridthreat",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysqlC.Terminate(ctx) })

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return fmt.Sprintf("root:secret123@tcp(%s:%s)/gridthreat?parseTime=true&multiStatements=true", host, port.Port())
}

// startPostgres starts a PostgreSQL container and returns its connection string.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
}

// exerciseStore runs the store and migration API against a live database.
func exerciseStore(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	t.Helper()
	snap, err := snapshot.ReadFile(filepath.Join("..", samplePath))
	require.NoError(t, err)

	res, err := snapshot.MigrateSnapshots(backend, connStr, -1)
	require.NoError(t, err)
	assert.Equal(t, uint(4), res.To)

	store, err := snapshot.NewSnapshotStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Clear())
	require.NoError(t, store.Save("outpost", snap))
	require.NoError(t, store.Save("outpost-copy", snap))

	got, err := store.Load("outpost")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "outpost", infos[0].Name)
	assert.Equal(t, len(snap.Blocks), infos[0].Blocks)

	require.NoError(t, store.Delete("outpost-copy"))
	_, err = store.Load("outpost-copy")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.Snapshots)
}

// exerciseCLI runs the snapshot and score commands with the store configured through env vars.
func exerciseCLI(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	t.Helper()
	env := []string{
		"GRIDTHREAT_SNAPSHOT_BACKEND=" + string(backend),
		"GRIDTHREAT_SNAPSHOT_DB_CONNECT=" + connStr,
	}

	_, err := runGridthreat(t, env, "snapshot", "migrate")
	require.NoError(t, err)

	_, err = runGridthreat(t, env, "snapshot", "clear")
	require.NoError(t, err)

	_, err = runGridthreat(t, env, "snapshot", "import", samplePath, "--name", "cli-outpost")
	require.NoError(t, err)

	out, err := runGridthreat(t, env, "snapshot", "list", "--output", "json")
	require.NoError(t, err)
	var infos []schema.SnapshotInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "cli-outpost", infos[0].Name)

	out, err = runGridthreat(t, env, "score", "cli-outpost", "--multi-grid", "--output", "json")
	require.NoError(t, err)
	var report schema.ScoreReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Structures, 2)

	exported := filepath.Join(t.TempDir(), "exported.json.zst")
	_, err = runGridthreat(t, env, "snapshot", "export", "cli-outpost", exported)
	require.NoError(t, err)
	assert.FileExists(t, exported)

	_, err = runGridthreat(t, env, "snapshot", "status")
	require.NoError(t, err)

	_, err = runGridthreat(t, env, "snapshot", "delete", "cli-outpost")
	require.NoError(t, err)

	_, err = runGridthreat(t, env, "snapshot", "migrate", "--target-version", "0")
	require.NoError(t, err)
}

// TestSnapshotStoreWithMySQL tests the snapshot store with a MySQL backend.
func TestSnapshotStoreWithMySQL(t *testing.T) {
	connStr := startMySQL(t)
	exerciseStore(t, schema.MySQLBackend, connStr)
	exerciseCLI(t, schema.MySQLBackend, connStr)
}

// TestSnapshotStoreWithPostgres tests the snapshot store with a PostgreSQL backend.
func TestSnapshotStoreWithPostgres(t *testing.T) {
	connStr := startPostgres(t)
	exerciseStore(t, schema.PostgreSQLBackend, connStr)
	exerciseCLI(t, schema.PostgreSQLBackend, connStr)
}
