package molfile_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/molforge/sdfio/molfile"
)

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

var v3000Block = []string{
	"M  V30 BEGIN CTAB",
	"M  V30 COUNTS 3 2 0 0 0",
	"M  V30 BEGIN ATOM",
	"M  V30 1 C 0.0 0.0 0.0 0",
	"M  V30 4 C 1.5 0.0 0.0 2",
	"M  V30 9 O 2.2 1.2 0.0 0 CHG=-1",
	"M  V30 END ATOM",
	"M  V30 BEGIN BOND",
	"M  V30 1 1 1 4",
	"M  V30 2 1 4 9",
	"M  V30 END BOND",
	"M  V30 END CTAB",
	"M  END",
}

func TestV3000Parser_SparseAtomIDs(t *testing.T) {
	p := molfile.NewV3000Parser()
	if !feedAll(t, p, v3000Block) {
		t.Fatal("parser never reported completion")
	}

	rec := p.Result()
	if rec == nil {
		t.Fatal("Result returned nil after completion")
	}
	if len(rec.Atoms) != 3 || len(rec.Bonds) != 2 {
		t.Fatalf("got %d atoms, %d bonds", len(rec.Atoms), len(rec.Bonds))
	}
	// Sparse identifiers 1/4/9 must resolve to list positions 1/2/3.
	if rec.Bonds[0] != (molfile.BondEntry{Atom1: 1, Atom2: 2, Order: 1}) {
		t.Errorf("bond 1 = %+v", rec.Bonds[0])
	}
	if rec.Bonds[1] != (molfile.BondEntry{Atom1: 2, Atom2: 3, Order: 1}) {
		t.Errorf("bond 2 = %+v", rec.Bonds[1])
	}
	if rec.Atoms[2].Charge != -1 {
		t.Errorf("CHG keyword lost: %d", rec.Atoms[2].Charge)
	}
	if rec.Atoms[1].Mapping != 2 {
		t.Errorf("mapping lost: %d", rec.Atoms[1].Mapping)
	}
}

func TestV3000Parser_ContinuationLine(t *testing.T) {
	lines := []string{
		"M  V30 BEGIN CTAB",
		"M  V30 COUNTS 1 0 0 0 0",
		"M  V30 BEGIN ATOM",
		"M  V30 1 N 0.0 -",
		"M  V30 0.0 0.0 0",
		"M  V30 END ATOM",
		"M  V30 END CTAB",
		"M  END",
	}
	p := molfile.NewV3000Parser()
	if !feedAll(t, p, lines) {
		t.Fatal("parser never reported completion")
	}
	rec := p.Result()
	if len(rec.Atoms) != 1 || rec.Atoms[0].Element != "N" {
		t.Fatalf("continuation parse lost the atom: %+v", rec.Atoms)
	}
}

func TestV3000Parser_SkipsUnknownSections(t *testing.T) {
	lines := []string{
		"M  V30 BEGIN CTAB",
		"M  V30 COUNTS 1 0 0 0 0",
		"M  V30 BEGIN ATOM",
		"M  V30 1 C 0.0 0.0 0.0 0",
		"M  V30 END ATOM",
		"M  V30 BEGIN SGROUP",
		"M  V30 BEGIN NESTED",
		"M  V30 anything goes here",
		"M  V30 END NESTED",
		"M  V30 END SGROUP",
		"M  V30 END CTAB",
		"M  END",
	}
	p := molfile.NewV3000Parser()
	if !feedAll(t, p, lines) {
		t.Fatal("parser never reported completion")
	}
	if len(p.Result().Atoms) != 1 {
		t.Fatalf("atoms = %+v", p.Result().Atoms)
	}
}

func TestV3000Parser_PrematureEnd(t *testing.T) {
	p := molfile.NewV3000Parser()
	if _, err := p.Feed("M  V30 BEGIN CTAB"); err != nil {
		t.Fatal(err)
	}
	_, err := p.Feed("M  END")
	var ferr *molfile.FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestV3000Parser_UnknownBondAtom(t *testing.T) {
	lines := []string{
		"M  V30 BEGIN CTAB",
		"M  V30 COUNTS 1 1 0 0 0",
		"M  V30 BEGIN ATOM",
		"M  V30 1 C 0.0 0.0 0.0 0",
		"M  V30 END ATOM",
		"M  V30 BEGIN BOND",
		"M  V30 1 1 1 5",
		"M  V30 END BOND",
		"M  V30 END CTAB",
	}
	p := molfile.NewV3000Parser()
	for _, line := range lines {
		if _, err := p.Feed(line); err != nil {
			t.Fatalf("feed %q: %v", line, err)
		}
	}
	if _, err := p.Feed("M  END"); err == nil {
		t.Fatal("expected unresolved bond reference to fail")
	}
}

func TestEncodeV3000_CountsAndCharge(t *testing.T) {
	p := molfile.NewV3000Parser()
	if !feedAll(t, p, v3000Block) {
		t.Fatal("parse failed")
	}
	mol, err := molfile.StandardConverter{}.Convert(p.Result(), "x", nil)
	if err != nil {
		t.Fatal(err)
	}

	body, err := molfile.EncodeV3000(mol)
	if err != nil {
		t.Fatal(err)
	}

	// Encoded body must parse back through the same state machine.
	p2 := molfile.NewV3000Parser()
	done := false
	for _, line := range splitLines(body) {
		done, err = p2.Feed(line)
		if err != nil {
			t.Fatalf("re-parse %q: %v", line, err)
		}
	}
	if done {
		t.Fatal("body must not self-terminate; M  END framing belongs to the writer")
	}
	if _, err := p2.Feed("M  END"); err != nil {
		t.Fatal(err)
	}
	rec := p2.Result()
	if len(rec.Atoms) != 3 || rec.Atoms[2].Charge != -1 {
		t.Fatalf("round trip lost structure: %+v", rec.Atoms)
	}
}
