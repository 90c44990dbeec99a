package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// ErrSnapshotNotFound is returned when no snapshot is stored under a name.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Weapon definition kinds as stored in the definitions table.
const (
	kindStatic = "static"
	kindTurret = "turret"
)

// Tables in delete order. Every table keys on snapshot_name.
var snapshotTables = []string{
	"gridthreat_weapon_definitions",
	"gridthreat_blocks",
	"gridthreat_structures",
	"gridthreat_snapshots",
}

// StoreImpl persists snapshots in a SQL database.
type StoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SnapshotStore = &StoreImpl{} // Compile-time check

// openDB opens the database of a backend without connecting.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetSnapshotDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite snapshot store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL snapshot store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL snapshot store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	case schema.NoneBackend:
		return nil, fmt.Errorf("snapshot store is disabled. Set --snapshot-backend to sqlite, mysql or postgresql")

	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// NewSnapshotStore connects to the backend and migrates it to the latest schema.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if _, err := migrateDB(db, backend, -1); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &StoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *StoreImpl) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save writes a snapshot under name, replacing any previous one.
// The snapshot must pass Check.
func (s *StoreImpl) Save(name string, snap schema.Snapshot) error {
	if name == "" {
		return fmt.Errorf("snapshot name cannot be empty")
	}
	if err := Check(snap); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteIn(tx, name); err != nil {
		return err
	}

	_, err = tx.Exec(s.rebind(`INSERT INTO gridthreat_snapshots
		(name, self_block, has_weapon_mod, structure_count, block_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		name, int64(snap.Self), snap.WeaponMod != nil, len(snap.Structures), len(snap.Blocks), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", name, err)
	}

	structStmt, err := tx.Prepare(s.rebind(`INSERT INTO gridthreat_structures
		(snapshot_name, structure_id, name, size_class, is_static, min_x, min_y, min_z, max_x, max_y, max_z, cells_json, fill_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare structure insert: %w", err)
	}
	defer func() { _ = structStmt.Close() }()

	for _, rec := range snap.Structures {
		cells, err := marshalNullable(rec.Cells, len(rec.Cells))
		if err != nil {
			return err
		}
		fill, err := marshalNullable(rec.Fill, len(rec.Fill))
		if err != nil {
			return err
		}
		b := rec.Bounds
		if _, err := structStmt.Exec(name, int64(rec.ID), rec.Name, string(rec.Size), rec.Static,
			b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2], cells, fill); err != nil {
			return fmt.Errorf("failed to save structure %d: %w", rec.ID, err)
		}
	}

	blockStmt, err := tx.Prepare(s.rebind(`INSERT INTO gridthreat_blocks
		(snapshot_name, block_id, structure_id, name, type_id, subtype_id, pos_x, pos_y, pos_z,
		 ext_x, ext_y, ext_z, functional, working, inv_current, inv_max, max_output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare block insert: %w", err)
	}
	defer func() { _ = blockStmt.Close() }()

	for _, rec := range snap.Blocks {
		var ext [3]sql.NullInt64
		if rec.Extent != nil {
			for i, v := range rec.Extent {
				ext[i] = sql.NullInt64{Int64: int64(v), Valid: true}
			}
		}
		var invCurrent, invMax sql.NullFloat64
		if rec.Inventory != nil {
			invCurrent = sql.NullFloat64{Float64: rec.Inventory.Current, Valid: true}
			invMax = sql.NullFloat64{Float64: rec.Inventory.Max, Valid: true}
		}
		if _, err := blockStmt.Exec(name, int64(rec.ID), int64(rec.Structure), rec.Name, rec.Type, rec.Subtype,
			rec.Position[0], rec.Position[1], rec.Position[2], ext[0], ext[1], ext[2],
			nullBool(rec.Functional), nullBool(rec.Working), invCurrent, invMax, rec.MaxOutput); err != nil {
			return fmt.Errorf("failed to save block %d: %w", rec.ID, err)
		}
	}

	if snap.WeaponMod != nil {
		defStmt, err := tx.Prepare(s.rebind(`INSERT INTO gridthreat_weapon_definitions
			(snapshot_name, kind, definition) VALUES (?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare definition insert: %w", err)
		}
		defer func() { _ = defStmt.Close() }()

		for kind, keys := range map[string][]string{
			kindStatic: snap.WeaponMod.StaticLaunchers,
			kindTurret: snap.WeaponMod.Turrets,
		} {
			seen := make(map[string]struct{}, len(keys))
			for _, key := range keys {
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				if _, err := defStmt.Exec(name, kind, key); err != nil {
					return fmt.Errorf("failed to save weapon definition %s: %w", key, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot %s: %w", name, err)
	}
	return nil
}

// Load reads the snapshot stored under name. Structures, blocks and weapon
// definitions come back ordered by id and key, not in their saved order.
func (s *StoreImpl) Load(name string) (schema.Snapshot, error) {
	var (
		snap   schema.Snapshot
		self   int64
		hasMod bool
	)
	row := s.db.QueryRow(s.rebind(`SELECT self_block, has_weapon_mod FROM gridthreat_snapshots WHERE name = ?`), name)
	if err := row.Scan(&self, &hasMod); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schema.Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return schema.Snapshot{}, fmt.Errorf("failed to load snapshot %s: %w", name, err)
	}
	snap.Self = schema.BlockID(self)

	var err error
	if snap.Structures, err = s.loadStructures(name); err != nil {
		return schema.Snapshot{}, err
	}
	if snap.Blocks, err = s.loadBlocks(name); err != nil {
		return schema.Snapshot{}, err
	}
	if hasMod {
		if snap.WeaponMod, err = s.loadWeaponMod(name); err != nil {
			return schema.Snapshot{}, err
		}
	}
	return snap, nil
}

func (s *StoreImpl) loadStructures(name string) ([]schema.StructureRecord, error) {
	rows, err := s.db.Query(s.rebind(`SELECT structure_id, name, size_class, is_static,
		min_x, min_y, min_z, max_x, max_y, max_z, cells_json, fill_json
		FROM gridthreat_structures WHERE snapshot_name = ? ORDER BY structure_id`), name)
	if err != nil {
		return nil, fmt.Errorf("failed to query structures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.StructureRecord
	for rows.Next() {
		var (
			rec         schema.StructureRecord
			id          int64
			size        string
			cells, fill sql.NullString
		)
		b := &rec.Bounds
		if err := rows.Scan(&id, &rec.Name, &size, &rec.Static,
			&b.Min[0], &b.Min[1], &b.Min[2], &b.Max[0], &b.Max[1], &b.Max[2], &cells, &fill); err != nil {
			return nil, fmt.Errorf("failed to scan structure: %w", err)
		}
		rec.ID = schema.StructureID(id)
		rec.Size = schema.SizeClass(size)
		if cells.Valid {
			if err := json.Unmarshal([]byte(cells.String), &rec.Cells); err != nil {
				return nil, fmt.Errorf("failed to decode cells of structure %d: %w", id, err)
			}
		}
		if fill.Valid {
			if err := json.Unmarshal([]byte(fill.String), &rec.Fill); err != nil {
				return nil, fmt.Errorf("failed to decode fill of structure %d: %w", id, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *StoreImpl) loadBlocks(name string) ([]schema.BlockRecord, error) {
	rows, err := s.db.Query(s.rebind(`SELECT block_id, structure_id, name, type_id, subtype_id,
		pos_x, pos_y, pos_z, ext_x, ext_y, ext_z, functional, working, inv_current, inv_max, max_output
		FROM gridthreat_blocks WHERE snapshot_name = ? ORDER BY block_id`), name)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.BlockRecord
	for rows.Next() {
		var (
			rec                 schema.BlockRecord
			id, structure       int64
			ext                 [3]sql.NullInt64
			functional, working sql.NullBool
			invCurrent, invMax  sql.NullFloat64
		)
		if err := rows.Scan(&id, &structure, &rec.Name, &rec.Type, &rec.Subtype,
			&rec.Position[0], &rec.Position[1], &rec.Position[2], &ext[0], &ext[1], &ext[2],
			&functional, &working, &invCurrent, &invMax, &rec.MaxOutput); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		rec.ID = schema.BlockID(id)
		rec.Structure = schema.StructureID(structure)
		if ext[0].Valid && ext[1].Valid && ext[2].Valid {
			rec.Extent = &[3]int{int(ext[0].Int64), int(ext[1].Int64), int(ext[2].Int64)}
		}
		if functional.Valid {
			rec.Functional = &functional.Bool
		}
		if working.Valid {
			rec.Working = &working.Bool
		}
		if invCurrent.Valid && invMax.Valid {
			rec.Inventory = &schema.Inventory{Current: invCurrent.Float64, Max: invMax.Float64}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *StoreImpl) loadWeaponMod(name string) (*schema.WeaponModRecord, error) {
	rows, err := s.db.Query(s.rebind(`SELECT kind, definition FROM gridthreat_weapon_definitions
		WHERE snapshot_name = ? ORDER BY kind, definition`), name)
	if err != nil {
		return nil, fmt.Errorf("failed to query weapon definitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	mod := &schema.WeaponModRecord{StaticLaunchers: []string{}, Turrets: []string{}}
	for rows.Next() {
		var kind, def string
		if err := rows.Scan(&kind, &def); err != nil {
			return nil, fmt.Errorf("failed to scan weapon definition: %w", err)
		}
		switch kind {
		case kindStatic:
			mod.StaticLaunchers = append(mod.StaticLaunchers, def)
		case kindTurret:
			mod.Turrets = append(mod.Turrets, def)
		}
	}
	return mod, rows.Err()
}

// List returns a summary of every stored snapshot, ordered by name.
func (s *StoreImpl) List() ([]schema.SnapshotInfo, error) {
	rows, err := s.db.Query(`SELECT name, structure_count, block_count, imported_at
		FROM gridthreat_snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.SnapshotInfo
	for rows.Next() {
		var (
			info schema.SnapshotInfo
			ts   int64
		)
		if err := rows.Scan(&info.Name, &info.Structures, &info.Blocks, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot summary: %w", err)
		}
		info.ImportedAt = time.Unix(ts, 0)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the snapshot stored under name.
func (s *StoreImpl) Delete(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(s.rebind(`DELETE FROM gridthreat_snapshots WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err := s.deleteIn(tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

// deleteIn removes every row of a snapshot inside tx.
func (s *StoreImpl) deleteIn(tx *sql.Tx, name string) error {
	for _, table := range snapshotTables {
		key := "snapshot_name"
		if table == "gridthreat_snapshots" {
			key = "name"
		}
		if _, err := tx.Exec(s.rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, key)), name); err != nil {
			return fmt.Errorf("failed to clear %s for snapshot %s: %w", table, name, err)
		}
	}
	return nil
}

// Clear removes every stored snapshot.
func (s *StoreImpl) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range snapshotTables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// GetStatus returns status information about the store.
func (s *StoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	row := s.db.QueryRow("SELECT COUNT(*) FROM gridthreat_snapshots")
	if err := row.Scan(&status.Snapshots); err != nil {
		return status, fmt.Errorf("failed to count snapshots: %w", err)
	}
	status.SizeBytes = s.sizeBytes()
	return status, nil
}

// sizeBytes estimates the storage used by the snapshot tables. It returns 0
// when the backend cannot report it.
func (s *StoreImpl) sizeBytes() int64 {
	var size sql.NullInt64
	switch s.backend {
	case schema.SQLiteBackend:
		row := s.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		_ = row.Scan(&size)

	case schema.MySQLBackend:
		cfg, err := gomysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			return 0
		}
		row := s.db.QueryRow(`SELECT SUM(data_length + index_length) FROM information_schema.tables
			WHERE table_schema = ? AND table_name LIKE 'gridthreat\_%'`, cfg.DBName)
		_ = row.Scan(&size)

	case schema.PostgreSQLBackend:
		parts := make([]string, 0, len(snapshotTables))
		for _, table := range snapshotTables {
			parts = append(parts, fmt.Sprintf("pg_total_relation_size('%s')", table))
		}
		row := s.db.QueryRow("SELECT " + strings.Join(parts, " + "))
		_ = row.Scan(&size)
	}
	return size.Int64
}

// Close closes the underlying DB connection.
func (s *StoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// marshalNullable encodes v as JSON, or NULL when it has no elements.
func marshalNullable(v any, n int) (sql.NullString, error) {
	if n == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode cells: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
