package snapshot

import (
	"errors"
	"fmt"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	"github.com/sirupsen/logrus"
)

// ErrNoSnapshot is returned when a run names no snapshot.
var ErrNoSnapshot = errors.New("no snapshot given")

// Resolve reads the snapshot a reference names. Without a store backend the
// reference is a document path; otherwise it is the name of a stored snapshot.
func Resolve(ref string, backend schema.DatabaseBackend, connStr string) (schema.Snapshot, error) {
	if ref == "" {
		return schema.Snapshot{}, ErrNoSnapshot
	}
	if backend == "" || backend == schema.NoneBackend {
		return ReadFile(ref)
	}

	store, err := NewSnapshotStore(backend, connStr)
	if err != nil {
		return schema.Snapshot{}, err
	}
	defer func() { _ = store.Close() }()

	snap, err := LoadStored(store, ref)
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("load snapshot from %s store: %w", backend, err)
	}
	return snap, nil
}

// LoadStored reads a snapshot from a store and checks it again, since stored
// rows never pass through the document schema.
func LoadStored(store contract.SnapshotStore, name string) (schema.Snapshot, error) {
	snap, err := store.Load(name)
	if err != nil {
		return schema.Snapshot{}, err
	}
	if err := Check(snap); err != nil {
		return schema.Snapshot{}, fmt.Errorf("stored snapshot %q: %w", name, err)
	}
	return snap, nil
}

// LoadHost resolves the configured snapshot and builds a host from it.
func LoadHost(cfg *contract.Config) (contract.Host, error) {
	snap, err := Resolve(cfg.SnapshotRef, cfg.SnapshotBackend, cfg.SnapshotDBConnect)
	if err != nil {
		return nil, err
	}
	host, err := NewWorld(snap)
	if err != nil {
		return nil, err
	}
	contract.LogDebug("snapshot loaded", logrus.Fields{
		"ref":        cfg.SnapshotRef,
		"backend":    cfg.SnapshotBackend,
		"structures": len(snap.Structures),
		"blocks":     len(snap.Blocks),
	})
	return host, nil
}
