package molfile

import (
	"errors"
	"fmt"

	"github.com/molforge/sdfio/types"
)

// Converter turns a structural record plus its title and collapsed
// metadata into a domain molecule. Implementations report semantic errors
// (unknown elements, dangling bonds); structural errors belong to the
// block parsers.
type Converter interface {
	Convert(rec *Record, title string, meta *types.Meta) (*types.Molecule, error)
}

// Semantic conversion sentinels. Use errors.Is for classification.
var (
	ErrUnknownElement = errors.New("unknown element symbol")
	ErrBondRange      = errors.New("bond references atom out of range")
	ErrSelfBond       = errors.New("bond connects an atom to itself")
)

// StandardConverter validates element symbols and bond endpoints and
// builds a types.Molecule. The zero value is ready to use.
type StandardConverter struct{}

// Convert implements Converter.
func (StandardConverter) Convert(rec *Record, title string, meta *types.Meta) (*types.Molecule, error) {
	mol := &types.Molecule{
		Title: title,
		Atoms: make([]types.Atom, len(rec.Atoms)),
		Bonds: make([]types.Bond, len(rec.Bonds)),
		Meta:  meta,
	}
	if mol.Meta == nil {
		mol.Meta = types.NewMeta()
	}

	for i, a := range rec.Atoms {
		if !KnownElement(a.Element) {
			return nil, fmt.Errorf("atom %d: %w: %q", i+1, ErrUnknownElement, a.Element)
		}
		mol.Atoms[i] = types.Atom{
			Element: a.Element,
			X:       a.X, Y: a.Y, Z: a.Z,
			Charge:  a.Charge,
			Mapping: a.Mapping,
		}
	}

	for i, b := range rec.Bonds {
		if b.Atom1 < 1 || b.Atom1 > len(rec.Atoms) || b.Atom2 < 1 || b.Atom2 > len(rec.Atoms) {
			return nil, fmt.Errorf("bond %d: %w", i+1, ErrBondRange)
		}
		if b.Atom1 == b.Atom2 {
			return nil, fmt.Errorf("bond %d: %w", i+1, ErrSelfBond)
		}
		mol.Bonds[i] = types.Bond{Atom1: b.Atom1, Atom2: b.Atom2, Order: b.Order}
	}

	return mol, nil
}
