package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/mutsweep/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - no schema
// 1 - sweep_records
const currentSchemaVersion = 1

// SQLite stores records in a single sweep_records table.
type SQLite struct {
	db *sql.DB
}

// openSQLite creates or opens the database at path and applies pragmas and
// migrations. Opening an existing database is a no-op beyond that.
func openSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite has a single writer; with ":memory:" every extra connection
	// would also see a different empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations brings user_version up to date. Version 1 is the initial
// schema, so there is nothing to apply yet beyond recording it.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Records implements Backend.
func (s *SQLite) Records(ns Namespace) Records {
	return &sqliteRecords{db: s.db, ns: ns}
}

// Close implements Backend.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type sqliteRecords struct {
	db *sql.DB
	ns Namespace
}

func (r *sqliteRecords) Namespace() Namespace { return r.ns }

func (r *sqliteRecords) Get(ctx context.Context, seed int64) (ir.SweepRecord, bool, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `
		SELECT record FROM sweep_records
		WHERE namespace = ? AND seed = ?
	`, r.ns.String(), seed).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%d: %w", r.ns, seed, err)
	}
	rec, err := ir.UnmarshalRecord([]byte(data))
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%d: %w", r.ns, seed, err)
	}
	return rec, true, nil
}

func (r *sqliteRecords) Put(ctx context.Context, seed int64, rec ir.SweepRecord) error {
	data, err := ir.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("put %s/%d: %w", r.ns, seed, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sweep_records (namespace, seed, record)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace, seed) DO UPDATE SET record = excluded.record
	`, r.ns.String(), seed, string(data))
	if err != nil {
		return fmt.Errorf("put %s/%d: %w", r.ns, seed, err)
	}
	return nil
}

func (r *sqliteRecords) Seeds(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seed FROM sweep_records
		WHERE namespace = ?
		ORDER BY seed ASC
	`, r.ns.String())
	if err != nil {
		return nil, fmt.Errorf("seeds %s: %w", r.ns, err)
	}
	defer rows.Close()

	var seeds []int64
	for rows.Next() {
		var seed int64
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("seeds %s: %w", r.ns, err)
		}
		seeds = append(seeds, seed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("seeds %s: %w", r.ns, err)
	}
	return seeds, nil
}

func (r *sqliteRecords) Export(ctx context.Context) (ir.Export, error) {
	return exportAll(ctx, r)
}
