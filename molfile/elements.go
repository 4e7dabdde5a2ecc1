package molfile

// knownElements holds the element symbols accepted by the standard
// converter: the 118 IUPAC elements plus the D/T hydrogen shorthands and
// the query/any markers that appear in real-world SD files.
var knownElements = map[string]bool{
	"H": true, "He": true, "Li": true, "Be": true, "B": true, "C": true,
	"N": true, "O": true, "F": true, "Ne": true, "Na": true, "Mg": true,
	"Al": true, "Si": true, "P": true, "S": true, "Cl": true, "Ar": true,
	"K": true, "Ca": true, "Sc": true, "Ti": true, "V": true, "Cr": true,
	"Mn": true, "Fe": true, "Co": true, "Ni": true, "Cu": true, "Zn": true,
	"Ga": true, "Ge": true, "As": true, "Se": true, "Br": true, "Kr": true,
	"Rb": true, "Sr": true, "Y": true, "Zr": true, "Nb": true, "Mo": true,
	"Tc": true, "Ru": true, "Rh": true, "Pd": true, "Ag": true, "Cd": true,
	"In": true, "Sn": true, "Sb": true, "Te": true, "I": true, "Xe": true,
	"Cs": true, "Ba": true, "La": true, "Ce": true, "Pr": true, "Nd": true,
	"Pm": true, "Sm": true, "Eu": true, "Gd": true, "Tb": true, "Dy": true,
	"Ho": true, "Er": true, "Tm": true, "Yb": true, "Lu": true, "Hf": true,
	"Ta": true, "W": true, "Re": true, "Os": true, "Ir": true, "Pt": true,
	"Au": true, "Hg": true, "Tl": true, "Pb": true, "Bi": true, "Po": true,
	"At": true, "Rn": true, "Fr": true, "Ra": true, "Ac": true, "Th": true,
	"Pa": true, "U": true, "Np": true, "Pu": true, "Am": true, "Cm": true,
	"Bk": true, "Cf": true, "Es": true, "Fm": true, "Md": true, "No": true,
	"Lr": true, "Rf": true, "Db": true, "Sg": true, "Bh": true, "Hs": true,
	"Mt": true, "Ds": true, "Rg": true, "Cn": true, "Nh": true, "Fl": true,
	"Mc": true, "Lv": true, "Ts": true, "Og": true,
	"D": true, "T": true, "A": true, "*": true,
}

// KnownElement reports whether symbol is accepted by the standard converter.
func KnownElement(symbol string) bool { return knownElements[symbol] }
