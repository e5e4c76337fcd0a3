package structure

// aminoThreeToOne is the 20-entry standard amino-acid table. Residues whose
// name is not listed here (waters, ligands, modified residues such as MSE,
// UNK) are skipped entirely.
var aminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
}

// OneLetter returns the one-letter code for a standard three-letter residue
// name and whether the name is standard.
func OneLetter(three string) (byte, bool) {
	c, ok := aminoThreeToOne[three]
	return c, ok
}
