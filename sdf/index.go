package sdf

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/molforge/sdfio/iox"
	"github.com/molforge/sdfio/types"
)

// CacheSuffix is appended to the source path to name the sidecar offset
// cache written when Options.IndexCache is set.
const CacheSuffix = ".sdfidx"

// Seek repositions the stream at the start of record n. The next call to
// Next reads that record. Valid only between reads: a second Seek without
// an intervening read, or a Seek while Next is in flight, is a protocol
// violation.
func (r *Reader) Seek(n int) error {
	if r.shifts == nil {
		return protocolErr("seek", ErrNotIndexed)
	}
	if r.inFlight {
		return protocolErr("seek", ErrNotSuspended)
	}
	if n < 0 || n >= len(r.shifts) {
		return protocolErr("seek", ErrIndexRange)
	}

	target := r.shifts[n]
	if r.bytesRead == target && !r.done {
		// Already positioned at that record boundary.
		return nil
	}
	if r.seekPending {
		return protocolErr("seek", ErrSeekPending)
	}

	if _, err := r.file.Seek(target, io.SeekStart); err != nil {
		return err
	}
	r.src.Reset(r.file)
	r.bytesRead = target
	r.srcEOF = false
	r.done = false
	r.resetRecord(n, target)
	r.seekPending = true
	return nil
}

// Tell returns the number of records consumed so far, derived from the
// byte cursor by binary search over the offset table.
func (r *Reader) Tell() (int, error) {
	if r.shifts == nil {
		return 0, protocolErr("tell", ErrNotIndexed)
	}
	pos := r.bytesRead
	return sort.Search(len(r.shifts), func(i int) bool {
		return r.shifts[i] >= pos
	}), nil
}

// Len returns the number of records in the indexed file.
func (r *Reader) Len() (int, error) {
	if r.shifts == nil {
		return 0, protocolErr("len", ErrNotIndexed)
	}
	return len(r.shifts) - 1, nil
}

// buildShifts produces the offset table for f, consulting and refreshing
// the sidecar cache when enabled. Offset 0 is always present as the start
// of record 0; every further entry is the byte offset immediately after a
// delimiter line.
func buildShifts(f *os.File, path string, useCache bool) ([]int64, error) {
	size, mtime, err := iox.StatSignature(path)
	if err != nil {
		return nil, err
	}
	if useCache {
		if shifts, ok := loadShiftCache(path+CacheSuffix, size, mtime); ok {
			return shifts, nil
		}
	}

	shifts, err := scanShifts(f)
	if err != nil {
		return nil, err
	}
	if useCache {
		// Best effort: an unwritable cache directory is not an error.
		_ = saveShiftCache(path+CacheSuffix, size, mtime, shifts)
	}
	return shifts, nil
}

// scanShifts performs the single-pass byte scan for delimiter lines.
func scanShifts(r io.Reader) ([]int64, error) {
	shifts := []int64{0}
	br := bufio.NewReader(r)
	var off int64
	for {
		line, err := br.ReadString('\n')
		off += int64(len(line))
		if strings.HasPrefix(line, Delimiter) {
			shifts = append(shifts, off)
		}
		if err == io.EOF {
			return shifts, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// shiftCache is the msgpack sidecar layout. Size and mtime pin the cache
// to the file contents it was built from.
type shiftCache struct {
	Version   string  `msgpack:"version"`
	Size      int64   `msgpack:"size"`
	ModTimeNS int64   `msgpack:"mtime_ns"`
	Shifts    []int64 `msgpack:"shifts"`
}

// loadShiftCache returns the cached table when it matches the source
// file's current signature. Stale or unreadable caches are ignored.
func loadShiftCache(cachePath string, size, mtime int64) ([]int64, bool) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	var cache shiftCache
	if err := msgpack.Unmarshal(data, &cache); err != nil {
		return nil, false
	}
	if cache.Version != types.Version || cache.Size != size || cache.ModTimeNS != mtime {
		return nil, false
	}
	if len(cache.Shifts) == 0 || cache.Shifts[0] != 0 {
		return nil, false
	}
	return cache.Shifts, true
}

// saveShiftCache writes the sidecar cache atomically via a temp file.
func saveShiftCache(cachePath string, size, mtime int64, shifts []int64) error {
	data, err := msgpack.Marshal(shiftCache{
		Version:   types.Version,
		Size:      size,
		ModTimeNS: mtime,
		Shifts:    shifts,
	})
	if err != nil {
		return err
	}
	tmp := cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, cachePath)
}
