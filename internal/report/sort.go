// Package report orders duplicate groups and renders them for people and
// for the delete command.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/michaelscutari/clonehunt/internal/group"
	"github.com/michaelscutari/clonehunt/internal/pathutil"
)

var (
	ErrOrderRequired   = errors.New("an order (asc or desc) is required when sorting by file-size or both")
	ErrOrderNotAllowed = errors.New("order cannot be used when sorting by file-type")
	ErrUnknownSortMode = errors.New("unknown sort mode")
	ErrUnknownOrder    = errors.New("unknown order")
)

// SortMode selects the grouping order key.
type SortMode string

const (
	SortFileType SortMode = "file-type"
	SortFileSize SortMode = "file-size"
	SortBoth     SortMode = "both"
)

// Order is the direction for size-based sorting. The zero value means none
// was given.
type Order string

const (
	OrderNone Order = ""
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseSortMode parses a sort mode name.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SortFileType, SortFileSize, SortBoth:
		return m, nil
	case "":
		return SortFileType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
}

// ParseOrder parses an order name. Empty input yields OrderNone.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderNone, OrderAsc, OrderDesc:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOrder, s)
}

// Sorting is a validated pairing of mode and order.
type Sorting struct {
	Mode  SortMode
	Order Order
}

// Validate enforces that size-based modes carry an order and file-type does not.
func (s Sorting) Validate() error {
	switch s.Mode {
	case SortFileType:
		if s.Order != OrderNone {
			return ErrOrderNotAllowed
		}
	case SortFileSize, SortBoth:
		if s.Order == OrderNone {
			return ErrOrderRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSortMode, s.Mode)
	}
	return nil
}

// Sort returns the buckets in display order. The ascending order is total:
// file-type compares extensions (files without one go last), then size;
// file-size compares size, then extension; both compares size, then
// extension. Remaining ties fall back to the first member path. Descending
// reverses the ascending result.
func Sort(buckets []group.Bucket, s Sorting) []group.Bucket {
	out := slices.Clone(buckets)
	slices.SortFunc(out, func(a, b group.Bucket) int {
		var c int
		if s.Mode == SortFileType {
			c = compareExt(a, b)
			if c == 0 {
				c = compareSize(a, b)
			}
		} else {
			c = compareSize(a, b)
			if c == 0 {
				c = compareExt(a, b)
			}
		}
		if c == 0 {
			c = strings.Compare(first(a), first(b))
		}
		if c == 0 {
			c = a.Key.Compare(b.Key)
		}
		return c
	})
	if s.Mode != SortFileType && s.Order == OrderDesc {
		slices.Reverse(out)
	}
	return out
}

func first(b group.Bucket) string {
	if len(b.Paths) == 0 {
		return ""
	}
	return b.Paths[0]
}

func compareSize(a, b group.Bucket) int {
	switch {
	case a.Size < b.Size:
		return -1
	case a.Size > b.Size:
		return 1
	}
	return 0
}

func compareExt(a, b group.Bucket) int {
	ea, eb := pathutil.Ext(first(a)), pathutil.Ext(first(b))
	switch {
	case ea == eb:
		return 0
	case ea == "":
		return 1
	case eb == "":
		return -1
	}
	return strings.Compare(ea, eb)
}
