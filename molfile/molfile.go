// Package molfile implements line-driven parsers and encoders for MDL
// connection table blocks (V2000 and V3000).
//
// A BlockParser consumes the lines of one structural block after the
// counts/format line and produces a Record. Parsers are single-use: one
// instance per block. The SDF reader owns dispatch between the two
// variants; this package owns the block grammar only.
package molfile

import (
	"errors"
	"fmt"
)

// Record is the structural output of a block parser, before conversion
// into a domain molecule.
type Record struct {
	Atoms []AtomEntry
	Bonds []BondEntry
}

// AtomEntry is one parsed atom table line.
type AtomEntry struct {
	Element string
	X, Y, Z float64
	Charge  int
	Mapping int
}

// BondEntry is one parsed bond table line. Atom references are 1-based.
type BondEntry struct {
	Atom1, Atom2, Order int
}

// BlockParser consumes structural block lines one at a time.
// Feed returns done=true when the block is structurally complete
// (its terminator was consumed); Result is only valid after that.
type BlockParser interface {
	Feed(line string) (done bool, err error)
	Result() *Record
}

// ErrEmptyMolecule is returned by NewV2000Parser when the counts line
// declares zero atoms.
var ErrEmptyMolecule = errors.New("empty atoms list")

// FormatError is a line-level structural error in a mol block.
type FormatError struct {
	// Msg describes what was expected.
	Msg string
	// Line is the offending input line, if any.
	Line string
	// Err is the underlying error (e.g. a strconv failure).
	Err error
}

func (e *FormatError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("%s: %q", e.Msg, e.Line)
	}
	return e.Msg
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(msg, line string, err error) *FormatError {
	return &FormatError{Msg: msg, Line: line, Err: err}
}
