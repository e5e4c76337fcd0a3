// Package pdbtest builds small, column-exact PDB fixtures for tests.
package pdbtest

import (
	"compress/gzip"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var oneToThree = map[byte]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS",
	'E': "GLU", 'Q': "GLN", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO",
	'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
}

// Three returns the three-letter name of a one-letter code ("UNK" if unknown).
func Three(c byte) string {
	if s, ok := oneToThree[c]; ok {
		return s
	}
	return "UNK"
}

// AtomLine formats one ATOM record with every field in its fixed columns.
func AtomLine(serial int, name, resName string, chain byte, resSeq int, x, y, z float64) string {
	return atomLine("ATOM", serial, name, resName, chain, resSeq, x, y, z)
}

// HetatmLine formats one HETATM record.
func HetatmLine(serial int, name, resName string, chain byte, resSeq int, x, y, z float64) string {
	return atomLine("HETATM", serial, name, resName, chain, resSeq, x, y, z)
}

func atomLine(rec string, serial int, name, resName string, chain byte, resSeq int, x, y, z float64) string {
	if len(name) < 4 {
		name = " " + name
	}
	return fmt.Sprintf("%-6s%5d %-4s %3s %c%4d    %8.3f%8.3f%8.3f  1.00  0.00           %s",
		rec, serial, name, resName, chain, resSeq, x, y, z, name[1:2])
}

// HelixCA returns the alpha-carbon position of residue i on an ideal
// alpha helix (radius 2.3, rise 1.5, 100 degrees per residue), offset by z0.
func HelixCA(i int, z0 float64) (x, y, z float64) {
	th := float64(i) * 100 * math.Pi / 180
	return 2.3 * math.Cos(th), 2.3 * math.Sin(th), 1.5*float64(i) + z0
}

// Chain renders seq as ATOM records (N, CA, C per residue) on chain ident,
// numbering residues from first. Serial numbers continue from *serial.
func Chain(seq string, ident byte, first int, z0 float64, serial *int) string {
	var b strings.Builder
	for i := 0; i < len(seq); i++ {
		x, y, z := HelixCA(i, z0)
		res := Three(seq[i])
		for _, at := range []struct {
			name string
			dx   float64
		}{{"N", -1.2}, {"CA", 0}, {"C", 1.2}} {
			*serial++
			b.WriteString(AtomLine(*serial, at.name, res, ident, first+i, x+at.dx, y, z))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Single returns a complete single-chain, single-model PDB document.
func Single(seq string) string {
	serial := 0
	return "HEADER    TEST PROTEIN                            01-JAN-00   1TST              \n" +
		Chain(seq, 'A', 1, 0, &serial) + "TER\nEND\n"
}

// Write writes content under dir and returns the path.
func Write(t testing.TB, dir, name, content string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", fn, err)
	}
	return fn
}

// WriteGz writes gzip-compressed content under dir and returns the path.
func WriteGz(t testing.TB, dir, name, content string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	fh, err := os.Create(fn)
	if err != nil {
		t.Fatalf("create %s: %v", fn, err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(content)); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gz: %v", err)
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return fn
}
