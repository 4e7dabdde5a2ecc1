package molfile

import (
	"fmt"
	"strings"

	"github.com/molforge/sdfio/types"
)

// v2000Limit is the largest count representable in a 3-column field.
const v2000Limit = 999

// EncodeV2000 serializes a molecule as a complete V2000 molblock:
// title, two blank header lines, counts line, atom and bond tables, and
// property lines up to "M  END". Non-zero charges are written as M  CHG
// properties; the legacy charge column is left at zero.
func EncodeV2000(mol *types.Molecule) (string, error) {
	if len(mol.Atoms) > v2000Limit || len(mol.Bonds) > v2000Limit {
		return "", fmt.Errorf("v2000 block limited to %d atoms and bonds, got %d/%d",
			v2000Limit, len(mol.Atoms), len(mol.Bonds))
	}
	if strings.ContainsRune(mol.Title, '\n') {
		return "", fmt.Errorf("molecule title must be a single line")
	}

	var b strings.Builder
	b.WriteString(mol.Title)
	b.WriteString("\n\n\n")
	fmt.Fprintf(&b, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(mol.Atoms), len(mol.Bonds))

	var charged []int
	for i, a := range mol.Atoms {
		// Columns: x y z (10.4 each), space, symbol, mass diff, charge
		// code, seven unused fields, atom-atom mapping, two trailing fields.
		fmt.Fprintf(&b, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0%3d  0  0\n",
			a.X, a.Y, a.Z, a.Element, a.Mapping)
		if a.Charge != 0 {
			charged = append(charged, i)
		}
	}
	for _, bd := range mol.Bonds {
		fmt.Fprintf(&b, "%3d%3d%3d  0  0  0  0\n", bd.Atom1, bd.Atom2, bd.Order)
	}

	// M  CHG lines carry at most eight atom/charge pairs each.
	for start := 0; start < len(charged); start += 8 {
		end := min(start+8, len(charged))
		fmt.Fprintf(&b, "M  CHG%3d", end-start)
		for _, i := range charged[start:end] {
			fmt.Fprintf(&b, " %3d %3d", i+1, mol.Atoms[i].Charge)
		}
		b.WriteByte('\n')
	}
	b.WriteString("M  END\n")
	return b.String(), nil
}

// EncodeV3000 serializes a molecule as a V3000 CTAB body (the M  V30
// lines between the format line and "M  END"). Framing around the body is
// owned by the SDF writer.
func EncodeV3000(mol *types.Molecule) (string, error) {
	var b strings.Builder
	b.WriteString("M  V30 BEGIN CTAB\n")
	fmt.Fprintf(&b, "M  V30 COUNTS %d %d 0 0 0\n", len(mol.Atoms), len(mol.Bonds))

	b.WriteString("M  V30 BEGIN ATOM\n")
	for i, a := range mol.Atoms {
		fmt.Fprintf(&b, "M  V30 %d %s %.4f %.4f %.4f %d", i+1, a.Element, a.X, a.Y, a.Z, a.Mapping)
		if a.Charge != 0 {
			fmt.Fprintf(&b, " CHG=%d", a.Charge)
		}
		b.WriteByte('\n')
	}
	b.WriteString("M  V30 END ATOM\n")

	if len(mol.Bonds) > 0 {
		b.WriteString("M  V30 BEGIN BOND\n")
		for i, bd := range mol.Bonds {
			fmt.Fprintf(&b, "M  V30 %d %d %d %d\n", i+1, bd.Order, bd.Atom1, bd.Atom2)
		}
		b.WriteString("M  V30 END BOND\n")
	}

	b.WriteString("M  V30 END CTAB\n")
	return b.String(), nil
}
