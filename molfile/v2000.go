package molfile

import (
	"strconv"
	"strings"
)

// v2000Phase tracks progress through the fixed-width V2000 block.
type v2000Phase int

const (
	v2000Atoms v2000Phase = iota
	v2000Bonds
	v2000Props
	v2000Done
)

// V2000Parser reads a V2000 connection table: atom block, bond block,
// then property lines until "M  END".
type V2000Parser struct {
	atomCount int
	bondCount int
	phase     v2000Phase
	record    *Record
	charges   []chgEntry
	sawChg    bool
}

type chgEntry struct {
	atom   int
	charge int
}

// NewV2000Parser parses the counts line and prepares to consume the block.
// Returns ErrEmptyMolecule when the declared atom count is zero.
func NewV2000Parser(countsLine string) (*V2000Parser, error) {
	if len(countsLine) < 6 {
		return nil, formatErr("counts line too short", countsLine, nil)
	}
	atoms, err := strconv.Atoi(strings.TrimSpace(countsLine[0:3]))
	if err != nil {
		return nil, formatErr("invalid atom count", countsLine, err)
	}
	bonds, err := strconv.Atoi(strings.TrimSpace(countsLine[3:6]))
	if err != nil {
		return nil, formatErr("invalid bond count", countsLine, err)
	}
	if atoms == 0 {
		return nil, ErrEmptyMolecule
	}
	p := &V2000Parser{
		atomCount: atoms,
		bondCount: bonds,
		record: &Record{
			Atoms: make([]AtomEntry, 0, atoms),
			Bonds: make([]BondEntry, 0, bonds),
		},
	}
	return p, nil
}

// Feed consumes one block line. The terminator is "M  END".
func (p *V2000Parser) Feed(line string) (bool, error) {
	switch p.phase {
	case v2000Atoms:
		if err := p.feedAtom(line); err != nil {
			return false, err
		}
		if len(p.record.Atoms) == p.atomCount {
			if p.bondCount == 0 {
				p.phase = v2000Props
			} else {
				p.phase = v2000Bonds
			}
		}
		return false, nil

	case v2000Bonds:
		if err := p.feedBond(line); err != nil {
			return false, err
		}
		if len(p.record.Bonds) == p.bondCount {
			p.phase = v2000Props
		}
		return false, nil

	case v2000Props:
		return p.feedProp(line)

	default:
		return false, formatErr("line after block terminator", line, nil)
	}
}

// Result returns the parsed record, or nil before the terminator was seen.
func (p *V2000Parser) Result() *Record {
	if p.phase != v2000Done {
		return nil
	}
	return p.record
}

func (p *V2000Parser) feedAtom(line string) error {
	if len(line) < 34 {
		return formatErr("atom line too short", line, nil)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(line[0:10]), 64)
	if err != nil {
		return formatErr("invalid atom x coordinate", line, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(line[10:20]), 64)
	if err != nil {
		return formatErr("invalid atom y coordinate", line, err)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(line[20:30]), 64)
	if err != nil {
		return formatErr("invalid atom z coordinate", line, err)
	}
	element := strings.TrimSpace(line[31:min(34, len(line))])
	if element == "" {
		return formatErr("missing element symbol", line, nil)
	}

	charge := 0
	if len(line) >= 39 {
		code, err := strconv.Atoi(strings.TrimSpace(line[36:39]))
		if err != nil {
			return formatErr("invalid charge code", line, err)
		}
		charge, err = chargeFromCode(code)
		if err != nil {
			return formatErr("invalid charge code", line, err)
		}
	}

	mapping := 0
	if len(line) >= 63 {
		if s := strings.TrimSpace(line[60:63]); s != "" {
			mapping, err = strconv.Atoi(s)
			if err != nil {
				return formatErr("invalid atom mapping", line, err)
			}
		}
	}

	p.record.Atoms = append(p.record.Atoms, AtomEntry{
		Element: element,
		X:       x, Y: y, Z: z,
		Charge:  charge,
		Mapping: mapping,
	})
	return nil
}

func (p *V2000Parser) feedBond(line string) error {
	if len(line) < 9 {
		return formatErr("bond line too short", line, nil)
	}
	a1, err := strconv.Atoi(strings.TrimSpace(line[0:3]))
	if err != nil {
		return formatErr("invalid bond atom", line, err)
	}
	a2, err := strconv.Atoi(strings.TrimSpace(line[3:6]))
	if err != nil {
		return formatErr("invalid bond atom", line, err)
	}
	order, err := strconv.Atoi(strings.TrimSpace(line[6:9]))
	if err != nil {
		return formatErr("invalid bond order", line, err)
	}
	if a1 < 1 || a1 > p.atomCount || a2 < 1 || a2 > p.atomCount {
		return formatErr("bond atom out of range", line, nil)
	}
	p.record.Bonds = append(p.record.Bonds, BondEntry{Atom1: a1, Atom2: a2, Order: order})
	return nil
}

func (p *V2000Parser) feedProp(line string) (bool, error) {
	switch {
	case strings.HasPrefix(line, "M  END"):
		p.applyCharges()
		p.phase = v2000Done
		return true, nil

	case strings.HasPrefix(line, "M  CHG"):
		if err := p.parseChg(line); err != nil {
			return false, err
		}
		return false, nil

	default:
		// Other property lines (isotopes, radicals, sgroups) are accepted
		// and ignored.
		return false, nil
	}
}

// parseChg reads an "M  CHG nn8 aaa vvv ..." property line.
func (p *V2000Parser) parseChg(line string) error {
	fields := strings.Fields(line)
	// fields: M CHG count a1 v1 a2 v2 ...
	if len(fields) < 3 {
		return formatErr("malformed M  CHG line", line, nil)
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil || len(fields) != 3+2*n {
		return formatErr("malformed M  CHG line", line, err)
	}
	for i := 0; i < n; i++ {
		atom, err := strconv.Atoi(fields[3+2*i])
		if err != nil {
			return formatErr("malformed M  CHG atom", line, err)
		}
		charge, err := strconv.Atoi(fields[4+2*i])
		if err != nil {
			return formatErr("malformed M  CHG value", line, err)
		}
		if atom < 1 || atom > p.atomCount {
			return formatErr("M  CHG atom out of range", line, nil)
		}
		p.charges = append(p.charges, chgEntry{atom: atom, charge: charge})
	}
	p.sawChg = true
	return nil
}

// applyCharges implements the MDL rule that any M  CHG property supersedes
// the whole charge column.
func (p *V2000Parser) applyCharges() {
	if !p.sawChg {
		return
	}
	for i := range p.record.Atoms {
		p.record.Atoms[i].Charge = 0
	}
	for _, c := range p.charges {
		p.record.Atoms[c.atom-1].Charge = c.charge
	}
}

// chargeFromCode decodes the legacy V2000 charge column.
// Code 4 (doublet radical) carries no charge.
func chargeFromCode(code int) (int, error) {
	switch code {
	case 0, 4:
		return 0, nil
	case 1:
		return 3, nil
	case 2:
		return 2, nil
	case 3:
		return 1, nil
	case 5:
		return -1, nil
	case 6:
		return -2, nil
	case 7:
		return -3, nil
	default:
		return 0, formatErr("unknown charge code "+strconv.Itoa(code), "", nil)
	}
}
