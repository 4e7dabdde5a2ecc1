// Package types defines the molecule domain model shared by the reader,
// writer, and CLI surfaces.
package types

import (
	"sort"
	"strconv"
	"strings"
)

// Atom is a single atom from a connection table.
// Coordinates are in the units of the source file (angstroms for MDL files).
type Atom struct {
	Element string  `json:"element" yaml:"element"`
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Z       float64 `json:"z" yaml:"z"`
	// Charge is the formal charge, already decoded from the V2000 charge
	// column or an M  CHG property line.
	Charge int `json:"charge,omitempty" yaml:"charge,omitempty"`
	// Mapping is the atom-atom mapping number (0 = unmapped).
	Mapping int `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

// Bond connects two atoms by their 1-based positions in the atom list.
type Bond struct {
	Atom1 int `json:"atom1" yaml:"atom1"`
	Atom2 int `json:"atom2" yaml:"atom2"`
	Order int `json:"order" yaml:"order"`
}

// Molecule is a parsed structure record together with its metadata block.
// It is the unit yielded by the SDF reader and consumed by the writers.
type Molecule struct {
	Title string `json:"title" yaml:"title"`
	Atoms []Atom `json:"atoms" yaml:"atoms"`
	Bonds []Bond `json:"bonds" yaml:"bonds"`
	Meta  *Meta  `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// NewMolecule returns a titled molecule with an empty metadata block.
func NewMolecule(title string) *Molecule {
	return &Molecule{Title: title, Meta: NewMeta()}
}

// AtomCount returns the number of atoms.
func (m *Molecule) AtomCount() int { return len(m.Atoms) }

// BondCount returns the number of bonds.
func (m *Molecule) BondCount() int { return len(m.Bonds) }

// NetCharge returns the sum of formal charges.
func (m *Molecule) NetCharge() int {
	var sum int
	for _, a := range m.Atoms {
		sum += a.Charge
	}
	return sum
}

// Formula returns the molecular formula in Hill order: carbon first,
// hydrogen second, remaining elements alphabetically. Hydrogens are only
// counted when present as explicit atoms.
func (m *Molecule) Formula() string {
	if len(m.Atoms) == 0 {
		return ""
	}
	counts := make(map[string]int, len(m.Atoms))
	for _, a := range m.Atoms {
		counts[a.Element]++
	}

	elements := make([]string, 0, len(counts))
	for el := range counts {
		if el != "C" && el != "H" {
			elements = append(elements, el)
		}
	}
	sort.Strings(elements)
	if counts["H"] > 0 {
		elements = append([]string{"H"}, elements...)
	}
	if counts["C"] > 0 {
		elements = append([]string{"C"}, elements...)
	}

	var b strings.Builder
	for _, el := range elements {
		b.WriteString(el)
		if n := counts[el]; n > 1 {
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String()
}
