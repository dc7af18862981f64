package fingerprint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/michaelscutari/clonehunt/internal/entry"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

const (
	// SmallFileLimit is the largest size hashed in full.
	SmallFileLimit = 2048
	// EdgeBlockSize is how much is read from each end of a larger file.
	EdgeBlockSize = 1024
)

// ErrSkip marks a file that cannot be fingerprinted by a strategy and should
// be left out quietly.
var ErrSkip = errors.New("fingerprint: file skipped")

// Strategy computes a file's key and the size declared for its bucket.
type Strategy interface {
	Name() string
	// Sorted reports whether keys must be totally ordered before grouping.
	Sorted() bool
	Fingerprint(fsys afero.Fs, c entry.Candidate) (Key, int64, error)
}

// New returns the checksum strategy when checksum is true, otherwise the
// fast metadata strategy.
func New(checksum bool) Strategy {
	if checksum {
		return ChecksumStrategy{}
	}
	return FastStrategy{}
}

// FastStrategy hashes base name, modification time and size. No content is
// read.
type FastStrategy struct{}

func (FastStrategy) Name() string { return "metadata" }

func (FastStrategy) Sorted() bool { return false }

// Fingerprint implements Strategy.
func (FastStrategy) Fingerprint(_ afero.Fs, c entry.Candidate) (Key, int64, error) {
	name := filepath.Base(c.Path)
	if name == "" || name == "." || name == string(filepath.Separator) || c.ModTime.IsZero() {
		return Key{}, 0, ErrSkip
	}

	var buf [8]byte
	h := xxhash.New()
	h.WriteString(name)
	h.Write([]byte{0})
	binary.LittleEndian.PutUint64(buf[:], uint64(c.ModTime.UnixNano()))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c.Size))
	h.Write(buf[:])

	return KeyFromUint64(h.Sum64()), c.Size, nil
}

// ChecksumStrategy hashes file content with BLAKE3. Files up to
// SmallFileLimit bytes are hashed whole; larger files hash only their first
// and last EdgeBlockSize bytes plus their length.
type ChecksumStrategy struct{}

func (ChecksumStrategy) Name() string { return "checksum" }

func (ChecksumStrategy) Sorted() bool { return true }

// Fingerprint implements Strategy. The declared size is the file's length at
// the time it was read.
func (ChecksumStrategy) Fingerprint(fsys afero.Fs, c entry.Candidate) (key Key, size int64, err error) {
	f, err := fsys.Open(c.Path)
	if err != nil {
		return Key{}, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Key{}, 0, fmt.Errorf("stat: %w", err)
	}
	size = info.Size()

	h := blake3.New()
	if size > SmallFileLimit {
		err = hashEdges(h, f, size)
	} else {
		_, err = io.CopyN(h, f, size)
	}
	if err != nil {
		return Key{}, 0, fmt.Errorf("read: %w", err)
	}

	copy(key[:], h.Sum(nil))
	return key, size, nil
}

func hashEdges(w io.Writer, f afero.File, size int64) error {
	block := make([]byte, EdgeBlockSize)

	if _, err := io.ReadFull(f, block); err != nil {
		return err
	}
	w.Write(block)

	if _, err := f.Seek(-EdgeBlockSize, io.SeekEnd); err != nil {
		return err
	}
	if _, err := io.ReadFull(f, block); err != nil {
		return err
	}
	w.Write(block)

	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(size))
	w.Write(length[:])
	return nil
}
