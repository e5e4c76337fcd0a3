package structure

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"contactmap/internal/config"
	"contactmap/internal/pdbtest"
)

func TestParseSingleChain(t *testing.T) {
	s, err := Parse(strings.NewReader(pdbtest.Single("MKTAYIAKQR")), config.ChainsAll)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Sequence != "MKTAYIAKQR" {
		t.Fatalf("sequence: got %q", s.Sequence)
	}
	if len(s.Sequence) != len(s.Coords) {
		t.Fatalf("len(seq)=%d len(coords)=%d", len(s.Sequence), len(s.Coords))
	}
	x, y, z := pdbtest.HelixCA(3, 0)
	got := s.Coords[3]
	if d := (got.X-x)*(got.X-x) + (got.Y-y)*(got.Y-y) + (got.Z-z)*(got.Z-z); d > 1e-5 {
		t.Fatalf("CA 3: got %+v want (%.3f %.3f %.3f)", got, x, y, z)
	}
}

func TestParseSkipsNonStandardAndMissingCA(t *testing.T) {
	var b strings.Builder
	serial := 0
	b.WriteString(pdbtest.Chain("AC", 'A', 1, 0, &serial))
	// Modified residue: skipped entirely.
	b.WriteString(pdbtest.HetatmLine(100, "CA", "MSE", 'A', 3, 1, 1, 1) + "\n")
	// Standard residue without CA: dropped from both sequence and coordinates.
	b.WriteString(pdbtest.AtomLine(101, "N", "GLY", 'A', 4, 2, 2, 2) + "\n")
	b.WriteString(pdbtest.AtomLine(102, "C", "GLY", 'A', 4, 2, 2, 3) + "\n")
	// Water.
	b.WriteString(pdbtest.HetatmLine(103, "O", "HOH", 'A', 200, 9, 9, 9) + "\n")
	serial = 200
	b.WriteString(pdbtest.Chain("W", 'A', 5, 10, &serial))

	s, err := Parse(strings.NewReader(b.String()), config.ChainsAll)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Sequence != "ACW" || s.Len() != 3 {
		t.Fatalf("got seq=%q n=%d", s.Sequence, s.Len())
	}
}

func TestParseFirstModelOnly(t *testing.T) {
	serial := 0
	doc := "MODEL        1\n" + pdbtest.Chain("MKV", 'A', 1, 0, &serial) + "ENDMDL\n" +
		"MODEL        2\n" + pdbtest.Chain("GGGGG", 'A', 1, 0, &serial) + "ENDMDL\nEND\n"
	s, err := Parse(strings.NewReader(doc), config.ChainsAll)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Sequence != "MKV" {
		t.Fatalf("expected first model only, got %q", s.Sequence)
	}
}

func TestParseMultiChainPolicies(t *testing.T) {
	serial := 0
	doc := pdbtest.Chain("MKV", 'A', 1, 0, &serial) + "TER\n" + pdbtest.Chain("WYF", 'B', 1, 30, &serial)

	all, err := Parse(strings.NewReader(doc), config.ChainsAll)
	if err != nil {
		t.Fatalf("parse all: %v", err)
	}
	if all.Sequence != "MKVWYF" {
		t.Fatalf("all chains: got %q", all.Sequence)
	}
	first, err := Parse(strings.NewReader(doc), config.ChainsFirst)
	if err != nil {
		t.Fatalf("parse first: %v", err)
	}
	if first.Sequence != "MKV" {
		t.Fatalf("first chain: got %q", first.Sequence)
	}
}

func TestParseFirstChainSkipsLigandOnlyChain(t *testing.T) {
	serial := 0
	doc := pdbtest.HetatmLine(1, "C1", "NAG", 'C', 1, 0, 0, 0) + "\n" + pdbtest.Chain("MKV", 'A', 1, 0, &serial)
	s, err := Parse(strings.NewReader(doc), config.ChainsFirst)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Sequence != "MKV" {
		t.Fatalf("got %q", s.Sequence)
	}
}

func TestParseAltLocOccupancy(t *testing.T) {
	withOcc := func(line, occ string) string {
		return strings.Replace(line, "  1.00  0.00", occ+"  0.00", 1)
	}
	a := pdbtest.AtomLine(1, "CA", "ALA", 'A', 1, 1, 2, 3)
	b := pdbtest.AtomLine(2, "CA", "ALA", 'A', 1, 7, 8, 9)
	cases := []struct {
		doc   string
		wantX float64
	}{
		// Equal occupancy keeps the first; otherwise the higher one wins.
		{a + "\n" + b + "\n", 1},
		{withOcc(a, "  0.40") + "\n" + withOcc(b, "  0.60") + "\n", 7},
		{withOcc(a, "  0.70") + "\n" + withOcc(b, "  0.30") + "\n", 1},
	}
	for i, c := range cases {
		s, err := Parse(strings.NewReader(c.doc), config.ChainsAll)
		if err != nil {
			t.Fatalf("case %d: parse: %v", i, err)
		}
		if s.Len() != 1 || s.Coords[0].X != c.wantX {
			t.Errorf("case %d: got %+v", i, s)
		}
	}
}

func TestParseFailures(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"no atoms":     "HEADER    NOTHING HERE\nEND\n",
		"ligand only":  pdbtest.HetatmLine(1, "O", "HOH", 'A', 1, 0, 0, 0) + "\n",
		"no CA":        pdbtest.AtomLine(1, "N", "ALA", 'A', 1, 0, 0, 0) + "\n",
		"truncated":    "ATOM      1  CA  ALA A   1       1.000\n",
		"bad coord":    strings.Replace(pdbtest.AtomLine(1, "CA", "ALA", 'A', 1, 1, 2, 3), "   1.000", "   x.yz0", 1) + "\n",
		"not a pdb at": "this is not a structure file\nat all\n",
	}
	for name, doc := range cases {
		_, err := Parse(strings.NewReader(doc), config.ChainsAll)
		if !errors.Is(err, ErrParse) {
			t.Errorf("%s: want ErrParse, got %v", name, err)
		}
	}
}

func TestReaderNotFound(t *testing.T) {
	r := NewReader(2, config.ChainsAll)
	dir := t.TempDir()
	if _, err := r.Read(context.Background(), filepath.Join(dir, "missing.pdb")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing file: want ErrNotFound, got %v", err)
	}
	if _, err := r.Read(context.Background(), dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("directory: want ErrNotFound, got %v", err)
	}
}

func TestReaderPlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	doc := pdbtest.Single("MKTAYIAKQRQ")
	plain := pdbtest.Write(t, dir, "pdb1tst.ent", doc)
	gz := pdbtest.WriteGz(t, dir, "pdb1tst.ent.gz", doc)
	// gzip detected by magic number even without the suffix
	sniff := pdbtest.WriteGz(t, dir, "AF-P1.pdb", doc)

	r := NewReader(1, config.ChainsAll)
	for _, fn := range []string{plain, gz, sniff} {
		s, err := r.Read(context.Background(), fn)
		if err != nil {
			t.Fatalf("%s: %v", fn, err)
		}
		if s.Sequence != "MKTAYIAKQRQ" {
			t.Fatalf("%s: got %q", fn, s.Sequence)
		}
	}
}

func TestReaderCancelledWhileWaiting(t *testing.T) {
	dir := t.TempDir()
	fn := pdbtest.Write(t, dir, "x.pdb", pdbtest.Single("MKV"))
	r := NewReader(1, config.ChainsAll)
	// Hold the only slot.
	if err := r.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer r.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Read(ctx, fn); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
