package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/blockaviate/internal/block"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version so later layouts can
// recognise databases written by this one.
const schemaVersion = 1

// SQLiteLog persists a chain in a SQLite table.
// Uses a single connection; the ledger has exactly one writer.
type SQLiteLog struct {
	path string
	db   *sql.DB
}

// OpenSQLite creates or opens a SQLite ledger at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode so readers never see a half-written block
//   - FULL synchronous mode (an append is durable once committed)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, newStorageError(path, "open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, newStorageError(path, "connect to database", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, newStorageError(path, "apply pragmas", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, newStorageError(path, "apply schema", err)
	}

	return &SQLiteLog{path: path, db: db}, nil
}

// Path returns the database location.
func (s *SQLiteLog) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteLog) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns every block ordered by index.
func (s *SQLiteLog) Load(ctx context.Context) ([]block.Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, timestamp, proof, prev_hash, op_kind
		FROM blocks
		ORDER BY idx ASC
	`)
	if err != nil {
		return nil, newStorageError(s.path, "query blocks", err)
	}
	defer rows.Close()

	blocks := []block.Block{}
	row := 0
	for rows.Next() {
		row++
		var b block.Block
		var op int
		if err := rows.Scan(&b.Index, &b.Timestamp, &b.Proof, &b.PrevHash, &op); err != nil {
			return nil, newCorruptError(s.path, row, "scan block", err)
		}
		b.OpKind = block.OpKind(op)
		if err := checkBlock(b); err != nil {
			return nil, newCorruptError(s.path, row, "malformed record", err)
		}
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, newStorageError(s.path, "iterate blocks", err)
	}

	return blocks, nil
}

// Append inserts one block. The insert commits before returning.
func (s *SQLiteLog) Append(ctx context.Context, b block.Block) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blocks (idx, timestamp, proof, prev_hash, op_kind)
		VALUES (?, ?, ?, ?, ?)
	`,
		b.Index,
		b.Timestamp,
		b.Proof,
		b.PrevHash,
		int(b.OpKind),
	)
	if err != nil {
		return newStorageError(s.path, fmt.Sprintf("insert block %d", b.Index), err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates the table and index if they don't exist and stamps
// the schema version. This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLiteLog) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
