package db

import (
	"database/sql"
	"fmt"
)

const huntMetaTableDDL = `
CREATE TABLE IF NOT EXISTS hunt_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    root_path TEXT NOT NULL,
    start_time INTEGER NOT NULL,
    end_time INTEGER,
    strategy TEXT NOT NULL,
    files_scanned INTEGER DEFAULT 0,
    dirs_scanned INTEGER DEFAULT 0,
    bytes_scanned INTEGER DEFAULT 0,
    duplicate_groups INTEGER DEFAULT 0,
    duplicate_files INTEGER DEFAULT 0,
    duplicate_bytes INTEGER DEFAULT 0
);
`

const groupsTableDDL = `
CREATE TABLE IF NOT EXISTS clone_groups (
    group_no INTEGER PRIMARY KEY,
    member_count INTEGER NOT NULL,
    bytes_each INTEGER NOT NULL
);
`

const membersTableDDL = `
CREATE TABLE IF NOT EXISTS members (
    group_no INTEGER NOT NULL,
    position INTEGER NOT NULL,
    path TEXT NOT NULL,
    PRIMARY KEY (group_no, position)
);
`

const rollupsTableDDL = `
CREATE TABLE IF NOT EXISTS rollups (
    path TEXT PRIMARY KEY,
    reclaimable_bytes INTEGER NOT NULL,
    reclaimable_files INTEGER NOT NULL
);
`

const groupsSizeIndexDDL = `CREATE INDEX IF NOT EXISTS idx_groups_size ON clone_groups(bytes_each DESC);`
const groupsCountIndexDDL = `CREATE INDEX IF NOT EXISTS idx_groups_count ON clone_groups(member_count DESC);`
const membersPathIndexDDL = `CREATE INDEX IF NOT EXISTS idx_members_path ON members(path);`
const rollupsBytesIndexDDL = `CREATE INDEX IF NOT EXISTS idx_rollups_bytes ON rollups(reclaimable_bytes DESC);`

// InitSchema creates all tables in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		huntMetaTableDDL,
		groupsTableDDL,
		membersTableDDL,
		rollupsTableDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyWritePragmas configures SQLite for a single bulk export.
func ApplyWritePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// ApplyReadPragmas configures SQLite for read-only queries.
func ApplyReadPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// BuildIndexes creates indexes after the data load.
func BuildIndexes(db *sql.DB) error {
	indexes := []string{
		groupsSizeIndexDDL,
		groupsCountIndexDDL,
		membersPathIndexDDL,
		rollupsBytesIndexDDL,
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Finalize prepares the database for read-only access.
func Finalize(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}

	// Switch from WAL to DELETE so the export is a single file
	if _, err := db.Exec("PRAGMA journal_mode = DELETE"); err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	return nil
}
