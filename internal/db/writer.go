package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/report"
)

const insertMetaSQL = `INSERT OR REPLACE INTO hunt_meta (id, root_path, start_time, end_time, strategy, files_scanned, dirs_scanned, bytes_scanned, duplicate_groups, duplicate_files, duplicate_bytes) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
const insertGroupSQL = `INSERT OR REPLACE INTO clone_groups (group_no, member_count, bytes_each) VALUES (?, ?, ?)`
const insertMemberSQL = `INSERT OR REPLACE INTO members (group_no, position, path) VALUES (?, ?, ?)`
const insertRollupSQL = `INSERT OR REPLACE INTO rollups (path, reclaimable_bytes, reclaimable_files) VALUES (?, ?, ?)`

const defaultBatchSize = 5000

// Writer stores a finished hunt. Rows are committed in batches, one
// transaction per batch.
type Writer struct {
	db        *sql.DB
	batchSize int

	groupStmt  *sql.Stmt
	memberStmt *sql.Stmt
	rollupStmt *sql.Stmt
}

// NewWriter creates a writer. A batchSize below 1 uses the default.
func NewWriter(db *sql.DB, batchSize int) *Writer {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &Writer{db: db, batchSize: batchSize}
}

// Write stores meta, every record with its members, and the rollups.
func (w *Writer) Write(ctx context.Context, meta entry.HuntMeta, records []report.Record, rollups []entry.Rollup) error {
	var err error
	w.groupStmt, err = w.db.Prepare(insertGroupSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare group statement: %w", err)
	}
	defer w.groupStmt.Close()

	w.memberStmt, err = w.db.Prepare(insertMemberSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare member statement: %w", err)
	}
	defer w.memberStmt.Close()

	w.rollupStmt, err = w.db.Prepare(insertRollupSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare rollup statement: %w", err)
	}
	defer w.rollupStmt.Close()

	for start := 0; start < len(records); start += w.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+w.batchSize, len(records))
		if err := w.flushGroups(records[start:end]); err != nil {
			return err
		}
	}

	for start := 0; start < len(rollups); start += w.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+w.batchSize, len(rollups))
		if err := w.flushRollups(rollups[start:end]); err != nil {
			return err
		}
	}

	return w.writeMeta(meta)
}

func (w *Writer) flushGroups(batch []report.Record) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	groupStmt := tx.Stmt(w.groupStmt)
	memberStmt := tx.Stmt(w.memberStmt)
	for _, r := range batch {
		if _, err := groupStmt.Exec(r.GroupNo, len(r.Paths), r.BytesEach); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert group %d: %w", r.GroupNo, err)
		}
		for i, p := range r.Paths {
			if _, err := memberStmt.Exec(r.GroupNo, i, p); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert member %q: %w", p, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (w *Writer) flushRollups(batch []entry.Rollup) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin rollup transaction: %w", err)
	}

	stmt := tx.Stmt(w.rollupStmt)
	for _, r := range batch {
		if _, err := stmt.Exec(r.Path, r.ReclaimableBytes, r.ReclaimableFiles); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert rollup %q: %w", r.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollup transaction: %w", err)
	}
	return nil
}

func (w *Writer) writeMeta(m entry.HuntMeta) error {
	var endTime int64
	if !m.EndTime.IsZero() {
		endTime = m.EndTime.Unix()
	}
	_, err := w.db.Exec(insertMetaSQL,
		m.RootPath, m.StartTime.Unix(), endTime, m.Strategy,
		m.FilesScanned, m.DirsScanned, m.BytesScanned,
		m.DuplicateGroups, m.DuplicateFiles, m.DuplicateBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to write hunt metadata: %w", err)
	}
	return nil
}
