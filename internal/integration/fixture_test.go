package integration

import (
	"os"
	"path/filepath"
	"testing"

	"contactmap/internal/pdbtest"
)

const seqA = "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQAPILSRVGDGTQDNLSGAEKAVQVKVKALPDAQ"
const seqB = "GSHMLEDPVDAFQAKLLRSNIWRYDGEKLIHFEAPYSTKDLFTQVWERVKEELGL"

type fixture struct {
	dir, pdbDir, afDir, dataset, out string
}

// newFixture lays out pdb/, af/ and a dataset with one good record per
// sequence, one record whose predicted model is missing, one whose
// experimental model covers too few residues, and one without a sequence.
func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:     dir,
		pdbDir:  filepath.Join(dir, "pdb"),
		afDir:   filepath.Join(dir, "af"),
		dataset: filepath.Join(dir, "ds.csv"),
		out:     filepath.Join(dir, "out"),
	}
	for _, d := range []string{f.pdbDir, f.afDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	pdbtest.Write(t, f.pdbDir, "pdb1aaa.ent", pdbtest.Single(seqA[:30]+seqA[36:]))
	pdbtest.Write(t, f.afDir, "PA.pdb", pdbtest.Single(seqA))
	pdbtest.Write(t, f.pdbDir, "pdb2bbb.ent", pdbtest.Single(seqB))
	pdbtest.Write(t, f.afDir, "PB.pdb", pdbtest.Single(seqB))
	pdbtest.Write(t, f.pdbDir, "pdb3ccc.ent", pdbtest.Single(seqB[10:16]))

	csv := "scop_id,sequence,scop_class,pdb_id,uniprot_id\n" +
		"dA,"+seqA+",b,1AAA,PA\n" +
		"dMissing,"+seqA+",a,1AAA,PZ\n" +
		"dB,"+seqB+",c,2BBB,PB\n" +
		"dShort,"+seqB+",c,3CCC,PB\n" +
		"dNoSeq,,d,2BBB,PB\n"
	pdbtest.Write(t, dir, "ds.csv", csv)
	return f
}
