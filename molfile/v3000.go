package molfile

import (
	"strconv"
	"strings"
)

const v30Prefix = "M  V30 "

// v3000Section tracks the current BEGIN/END section.
type v3000Section int

const (
	v3000Preamble v3000Section = iota
	v3000Ctab
	v3000Atoms
	v3000Bonds
	v3000Other // unrecognized section, skipped wholesale
	v3000Tail  // END CTAB seen, awaiting M  END
	v3000Done
)

// V3000Parser reads a V3000 extended connection table. Atom identifiers
// may be sparse; bond references are resolved against the identifier map
// when the block completes.
type V3000Parser struct {
	section   v3000Section
	pending   string // continuation buffer for lines ending in "-"
	atomIDs   map[int]int
	atomCount int
	bondCount int
	record    *Record
	otherEnds int // nesting depth inside a skipped section
}

// NewV3000Parser prepares to consume a V3000 block. The first fed line is
// expected to be "M  V30 BEGIN CTAB".
func NewV3000Parser() *V3000Parser {
	return &V3000Parser{
		atomIDs: make(map[int]int),
		record:  &Record{},
	}
}

// Feed consumes one block line. The terminator is "M  END".
func (p *V3000Parser) Feed(line string) (bool, error) {
	if strings.HasPrefix(line, "M  END") {
		if p.section != v3000Tail {
			return false, formatErr("premature M  END in V3000 block", line, nil)
		}
		if err := p.resolveBonds(); err != nil {
			return false, err
		}
		p.section = v3000Done
		return true, nil
	}

	if !strings.HasPrefix(line, v30Prefix) {
		return false, formatErr("expected M  V30 line", line, nil)
	}
	body := strings.TrimRight(line[len(v30Prefix):], "\r\n ")

	// A trailing "-" continues the logical line.
	if strings.HasSuffix(body, "-") {
		p.pending += body[:len(body)-1]
		return false, nil
	}
	if p.pending != "" {
		body = p.pending + body
		p.pending = ""
	}

	return false, p.feedBody(body)
}

// Result returns the parsed record, or nil before the terminator was seen.
func (p *V3000Parser) Result() *Record {
	if p.section != v3000Done {
		return nil
	}
	return p.record
}

func (p *V3000Parser) feedBody(body string) error {
	switch p.section {
	case v3000Preamble:
		if body != "BEGIN CTAB" {
			return formatErr("expected BEGIN CTAB", body, nil)
		}
		p.section = v3000Ctab
		return nil

	case v3000Ctab:
		switch {
		case strings.HasPrefix(body, "COUNTS "):
			return p.parseCounts(body)
		case body == "BEGIN ATOM":
			p.section = v3000Atoms
			return nil
		case body == "BEGIN BOND":
			p.section = v3000Bonds
			return nil
		case strings.HasPrefix(body, "BEGIN "):
			p.section = v3000Other
			p.otherEnds = 1
			return nil
		case body == "END CTAB":
			p.section = v3000Tail
			return nil
		default:
			// LINKNODE, SGROUP-free property lines etc. are ignored.
			return nil
		}

	case v3000Atoms:
		if body == "END ATOM" {
			if len(p.record.Atoms) != p.atomCount {
				return formatErr("atom count mismatch in V3000 block", body, nil)
			}
			p.section = v3000Ctab
			return nil
		}
		return p.parseAtom(body)

	case v3000Bonds:
		if body == "END BOND" {
			if len(p.record.Bonds) != p.bondCount {
				return formatErr("bond count mismatch in V3000 block", body, nil)
			}
			p.section = v3000Ctab
			return nil
		}
		return p.parseBond(body)

	case v3000Other:
		if strings.HasPrefix(body, "BEGIN ") {
			p.otherEnds++
		} else if strings.HasPrefix(body, "END ") {
			p.otherEnds--
			if p.otherEnds == 0 {
				p.section = v3000Ctab
			}
		}
		return nil

	case v3000Tail:
		return formatErr("line after END CTAB", body, nil)

	default:
		return formatErr("line after block terminator", body, nil)
	}
}

func (p *V3000Parser) parseCounts(body string) error {
	fields := strings.Fields(body)
	if len(fields) < 3 {
		return formatErr("malformed COUNTS line", body, nil)
	}
	atoms, err := strconv.Atoi(fields[1])
	if err != nil {
		return formatErr("invalid V3000 atom count", body, err)
	}
	bonds, err := strconv.Atoi(fields[2])
	if err != nil {
		return formatErr("invalid V3000 bond count", body, err)
	}
	p.atomCount = atoms
	p.bondCount = bonds
	p.record.Atoms = make([]AtomEntry, 0, atoms)
	p.record.Bonds = make([]BondEntry, 0, bonds)
	return nil
}

// parseAtom reads "id element x y z mapping [KEY=value ...]".
func (p *V3000Parser) parseAtom(body string) error {
	fields := strings.Fields(body)
	if len(fields) < 6 {
		return formatErr("malformed V3000 atom line", body, nil)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return formatErr("invalid V3000 atom id", body, err)
	}
	if _, dup := p.atomIDs[id]; dup {
		return formatErr("duplicate V3000 atom id", body, nil)
	}
	x, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return formatErr("invalid V3000 atom x coordinate", body, err)
	}
	y, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return formatErr("invalid V3000 atom y coordinate", body, err)
	}
	z, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return formatErr("invalid V3000 atom z coordinate", body, err)
	}
	mapping, err := strconv.Atoi(fields[5])
	if err != nil {
		return formatErr("invalid V3000 atom mapping", body, err)
	}

	atom := AtomEntry{
		Element: fields[1],
		X:       x, Y: y, Z: z,
		Mapping: mapping,
	}
	for _, kv := range fields[6:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if key == "CHG" {
			atom.Charge, err = strconv.Atoi(value)
			if err != nil {
				return formatErr("invalid V3000 CHG value", body, err)
			}
		}
	}

	p.atomIDs[id] = len(p.record.Atoms)
	p.record.Atoms = append(p.record.Atoms, atom)
	return nil
}

// parseBond reads "id order atom1 atom2 [...]". Atom references stay as
// raw identifiers until resolveBonds.
func (p *V3000Parser) parseBond(body string) error {
	fields := strings.Fields(body)
	if len(fields) < 4 {
		return formatErr("malformed V3000 bond line", body, nil)
	}
	order, err := strconv.Atoi(fields[1])
	if err != nil {
		return formatErr("invalid V3000 bond order", body, err)
	}
	a1, err := strconv.Atoi(fields[2])
	if err != nil {
		return formatErr("invalid V3000 bond atom", body, err)
	}
	a2, err := strconv.Atoi(fields[3])
	if err != nil {
		return formatErr("invalid V3000 bond atom", body, err)
	}
	p.record.Bonds = append(p.record.Bonds, BondEntry{Atom1: a1, Atom2: a2, Order: order})
	return nil
}

// resolveBonds rewrites bond endpoints from V3000 atom identifiers to
// 1-based atom list positions.
func (p *V3000Parser) resolveBonds() error {
	for i, b := range p.record.Bonds {
		i1, ok := p.atomIDs[b.Atom1]
		if !ok {
			return formatErr("bond references unknown atom id "+strconv.Itoa(b.Atom1), "", nil)
		}
		i2, ok := p.atomIDs[b.Atom2]
		if !ok {
			return formatErr("bond references unknown atom id "+strconv.Itoa(b.Atom2), "", nil)
		}
		p.record.Bonds[i].Atom1 = i1 + 1
		p.record.Bonds[i].Atom2 = i2 + 1
	}
	return nil
}
