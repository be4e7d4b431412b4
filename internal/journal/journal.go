package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/axiomkit/axiom/internal/protocol"
)

//go:embed schema.sql
var schemaSQL string

// Journal provides durable storage for engine step records.
// Uses SQLite with WAL mode for concurrent read access.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a SQLite journal at the given path.
// Applies required pragmas and the schema automatically; records the
// protocol version in the meta table on first open.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	j := &Journal{db: db}
	if err := j.recordProtocolVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// recordProtocolVersion stamps the journal with the compiled protocol
// version on first open. An existing value is left untouched: the journal,
// not the engine, is where schema-level consumers check compatibility.
func (j *Journal) recordProtocolVersion() error {
	_, err := j.db.Exec(`
		INSERT INTO meta (key, value) VALUES ('protocol_version', ?)
		ON CONFLICT(key) DO NOTHING
	`, protocol.ProtocolVersion)
	if err != nil {
		return fmt.Errorf("record protocol version: %w", err)
	}
	return nil
}

// ProtocolVersion returns the protocol version the journal was created
// with.
func (j *Journal) ProtocolVersion(ctx context.Context) (string, error) {
	var version string
	err := j.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'protocol_version'`,
	).Scan(&version)
	if err != nil {
		return "", fmt.Errorf("read protocol version: %w", err)
	}
	return version, nil
}
