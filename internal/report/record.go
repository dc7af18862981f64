package report

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/michaelscutari/clonehunt/internal/group"
)

// Record is the serialized form of one duplicate group. The field names
// are read by the delete command and by external tooling.
type Record struct {
	GroupNo   int      `json:"duplicate_group_no"`
	Count     int      `json:"duplicate_group_count"`
	BytesEach int64    `json:"duplicate_group_bytes_each"`
	Paths     []string `json:"duplicate_list"`
}

// Records numbers sorted duplicate buckets from 1. Buckets with fewer than
// two members are dropped.
func Records(sorted []group.Bucket) []Record {
	var out []Record
	for _, b := range sorted {
		if !b.IsDuplicate() {
			continue
		}
		out = append(out, Record{
			GroupNo:   len(out) + 1,
			Count:     len(b.Paths),
			BytesEach: b.Size,
			Paths:     b.Paths,
		})
	}
	return out
}

// Totals summarizes a report.
type Totals struct {
	Groups  int64
	Records int64 // member count over all groups
	Bytes   int64 // bytes each times member count, summed
}

// Summarize computes report totals.
func Summarize(records []Record) Totals {
	var t Totals
	for _, r := range records {
		t.Groups++
		t.Records += int64(len(r.Paths))
		t.Bytes += r.BytesEach * int64(len(r.Paths))
	}
	return t
}

// WriteJSON writes records as an indented JSON array. An empty report is
// written as [].
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// ReadRecords parses a JSON report. Anything but an array of records is an
// error.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to decode report: trailing data")
	}
	return records, nil
}
