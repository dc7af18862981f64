package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/report"

	_ "modernc.org/sqlite"
)

// Export writes a finished hunt to a new SQLite file at path. The database
// is built under a temporary name in the same directory and renamed into
// place, so readers never see a partial file.
func Export(ctx context.Context, path string, meta entry.HuntMeta, records []report.Record, rollups []entry.Rollup) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tempPath := filepath.Join(dir, fmt.Sprintf(".clonehunt-temp-%d.db", time.Now().UnixNano()))
	if err := build(ctx, tempPath, meta, records, rollups); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename database: %w", err)
	}
	return nil
}

func build(ctx context.Context, path string, meta entry.HuntMeta, records []report.Record, rollups []entry.Rollup) error {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()
	database.SetMaxOpenConns(1)

	if err := InitSchema(database); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := ApplyWritePragmas(database); err != nil {
		return fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := NewWriter(database, 0).Write(ctx, meta, records, rollups); err != nil {
		return err
	}
	if err := BuildIndexes(database); err != nil {
		return fmt.Errorf("failed to build indexes: %w", err)
	}
	if err := Finalize(database); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	return nil
}
