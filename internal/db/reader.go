package db

import (
	"database/sql"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/michaelscutari/clonehunt/internal/report"
)

const memberCacheSize = 4096

// Open opens an exported hunt for reading.
func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection.
	database.SetMaxOpenConns(1)
	if err := ApplyReadPragmas(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Reader answers queries against an exported hunt. Member lists are cached
// for the life of the reader, so reopening a group while browsing does not
// query again.
type Reader struct {
	db      *sql.DB
	members *lru.Cache[int, []string]
}

// NewReader wraps an open database.
func NewReader(database *sql.DB) *Reader {
	// New only fails for a non-positive size.
	cache, _ := lru.New[int, []string](memberCacheSize)
	return &Reader{db: database, members: cache}
}

// OpenReader opens the database at path read-only.
func OpenReader(path string) (*Reader, error) {
	database, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewReader(database), nil
}

// Close drops the cache and closes the database.
func (r *Reader) Close() error {
	r.members.Purge()
	return r.db.Close()
}

// Groups loads up to limit group headers without their members. sortBy is
// one of size, count, waste or group; anything else sorts by size. A limit
// below 1 loads every group.
func (r *Reader) Groups(sortBy string, limit int) ([]report.Record, error) {
	orderClause := "bytes_each DESC, group_no ASC"
	switch sortBy {
	case "count":
		orderClause = "member_count DESC, group_no ASC"
	case "waste":
		orderClause = "(member_count - 1) * bytes_each DESC, group_no ASC"
	case "group":
		orderClause = "group_no ASC"
	}
	if limit < 1 {
		limit = -1
	}

	query := fmt.Sprintf(`
		SELECT group_no, member_count, bytes_each
		FROM clone_groups
		ORDER BY %s
		LIMIT ?
	`, orderClause)

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []report.Record
	for rows.Next() {
		var rec report.Record
		if err := rows.Scan(&rec.GroupNo, &rec.Count, &rec.BytesEach); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GroupsWithMembers is Groups with every member list filled in.
func (r *Reader) GroupsWithMembers(sortBy string, limit int) ([]report.Record, error) {
	records, err := r.Groups(sortBy, limit)
	if err != nil {
		return nil, err
	}
	// Headers are fully read first; the pool holds a single connection.
	for i := range records {
		if records[i].Paths, err = r.Members(records[i].GroupNo); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Members returns a group's member paths in report order.
func (r *Reader) Members(groupNo int) ([]string, error) {
	if paths, ok := r.members.Get(groupNo); ok {
		return paths, nil
	}

	rows, err := r.db.Query(`SELECT path FROM members WHERE group_no = ? ORDER BY position`, groupNo)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.members.Add(groupNo, paths)
	return paths, nil
}

// Rollups returns directories by reclaimable bytes, largest first.
func (r *Reader) Rollups(limit int) ([]entry.Rollup, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := r.db.Query(`
		SELECT path, reclaimable_bytes, reclaimable_files
		FROM rollups
		ORDER BY reclaimable_bytes DESC, path ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []entry.Rollup
	for rows.Next() {
		var ru entry.Rollup
		if err := rows.Scan(&ru.Path, &ru.ReclaimableBytes, &ru.ReclaimableFiles); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, ru)
	}
	return out, rows.Err()
}

// Meta retrieves hunt metadata.
func (r *Reader) Meta() (*entry.HuntMeta, error) {
	var m entry.HuntMeta
	var startTime, endTime int64

	err := r.db.QueryRow(`
		SELECT root_path, start_time, COALESCE(end_time, 0), strategy,
		       files_scanned, dirs_scanned, bytes_scanned,
		       duplicate_groups, duplicate_files, duplicate_bytes
		FROM hunt_meta WHERE id = 1
	`).Scan(&m.RootPath, &startTime, &endTime, &m.Strategy,
		&m.FilesScanned, &m.DirsScanned, &m.BytesScanned,
		&m.DuplicateGroups, &m.DuplicateFiles, &m.DuplicateBytes)
	if err != nil {
		return nil, err
	}

	m.StartTime = time.Unix(startTime, 0)
	if endTime > 0 {
		m.EndTime = time.Unix(endTime, 0)
	}

	return &m, nil
}
