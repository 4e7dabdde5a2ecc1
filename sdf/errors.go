// Package sdf implements a streaming reader and writer for MDL SD files:
// multi-record structure files with $$$$-delimited records, each carrying
// a molblock and a free-form metadata block.
//
// The reader is a resumable cursor: records are pulled one at a time with
// Next, malformed records surface as ParseError values without aborting
// the stream, and file-backed readers can be indexed for O(log n) seeking
// by record number.
package sdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/molforge/sdfio/types"
)

// Sentinel errors for reader protocol violations. These are caller
// misuse, never swallowed. Use errors.Is for classification.
var (
	// ErrNotIndexed is returned by Seek, Tell and Len on a reader that was
	// not opened with OpenIndexed.
	ErrNotIndexed = errors.New("reader is not indexed")

	// ErrIndexRange is returned by Seek for a record index outside the
	// offset table.
	ErrIndexRange = errors.New("record index out of range")

	// ErrSeekPending is returned by Seek when a previous Seek has not been
	// followed by a read. Resumption bookkeeping is only valid relative to
	// data actually consumed since the last reposition.
	ErrSeekPending = errors.New("seek already pending, read a record before seeking again")

	// ErrNotSuspended is returned by Seek while Next is in flight. The
	// cursor can only be redirected between records.
	ErrNotSuspended = errors.New("stream is not at a suspension point")
)

// ProtocolError wraps a reader protocol violation with the operation that
// triggered it.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("sdf: %s: %v", e.Op, e.Err) }

func (e *ProtocolError) Unwrap() error { return e.Err }

func protocolErr(op string, err error) *ProtocolError {
	return &ProtocolError{Op: op, Err: err}
}

// ParseError describes one malformed record. It is a yielded value, not a
// stream failure: the reader recovers and continues from the next record.
type ParseError struct {
	// Index is the record number at the time of failure.
	Index int
	// Offset is the byte offset of the start of the record, or -1 when the
	// source is not seekable.
	Offset int64
	// Log holds the diagnostic lines captured while the record was parsed.
	Log string
	// Meta holds whatever metadata had been accumulated before the failure.
	Meta *types.Meta
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("sdf: record %d", e.Index)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	if e.Log != "" {
		first, _, _ := strings.Cut(e.Log, "\n")
		msg += ": " + first
	}
	return msg
}

// Result is the unit yielded by Reader.Next: either a molecule or a
// ParseError, never both.
type Result struct {
	Molecule *types.Molecule
	Err      *ParseError
}

// Ok reports whether the result carries a molecule.
func (r Result) Ok() bool { return r.Err == nil }
