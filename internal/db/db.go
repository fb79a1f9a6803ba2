package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hpungsan/easypass/internal/config"
	"github.com/hpungsan/easypass/internal/credential"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// FileName is the database file inside the base directory.
const FileName = "easypass.db"

// Init initializes the SQLite database at baseDir/easypass.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.easypass.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: credentials table
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS credentials (
		  id          INTEGER PRIMARY KEY,
		  group_name  TEXT NOT NULL,
		  name        TEXT NOT NULL,
		  username    TEXT NOT NULL,
		  secret      TEXT NOT NULL,
		  note        TEXT NOT NULL DEFAULT '',
		  created_at  INTEGER NOT NULL,
		  updated_at  INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_credentials_group_name
		ON credentials(group_name, name);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Migration 1 -> 2: explicit groups so empty groups survive, seeded
	// with the unassigned group and every group already in use.
	if version < 2 {
		schema := `
		CREATE TABLE IF NOT EXISTS credential_groups (
		  name        TEXT PRIMARY KEY,
		  created_at  INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		now := time.Now().Unix()
		if _, err := db.Exec(`INSERT OR IGNORE INTO credential_groups (name, created_at) VALUES (?, ?)`, credential.Unassigned, now); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if _, err := db.Exec(`INSERT OR IGNORE INTO credential_groups (name, created_at) SELECT DISTINCT group_name, ? FROM credentials`, now); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if err := SetUserVersion(db, 2); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 3 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
