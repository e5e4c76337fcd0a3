package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sample = `scop_id,sequence,scop_class,pdb_id,uniprot_id
d1a00a_,MKTAYIAKQR,b,1A00,P12345
d1b00a_,,a,1B00,P23456
d1c00a_,GSHMLEDPV,c,1c00,Q99999
d1d00a_,MKV,a,1D00,P00001
`

func TestLoadDefaultLayout(t *testing.T) {
	ds, err := Load(strings.NewReader(sample), DefaultColumns())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Rows) != 3 {
		t.Fatalf("rows: got %d want 3", len(ds.Rows))
	}
	if len(ds.Dropped) != 1 || ds.Dropped[0].ID != "d1b00a_" || ds.Dropped[0].Line != 3 {
		t.Fatalf("dropped: %+v", ds.Dropped)
	}

	in := ds.Inputs(Layout{PDBDir: "pdb", AFDir: "af"})
	if in[0].ExperimentalPath != filepath.Join("pdb", "pdb1a00.ent") {
		t.Errorf("experimental path: %s", in[0].ExperimentalPath)
	}
	if in[0].PredictedPath != filepath.Join("af", "P12345.pdb") {
		t.Errorf("predicted path: %s", in[0].PredictedPath)
	}
	if in[1].ID != "d1c00a_" || in[1].ExperimentalPath != filepath.Join("pdb", "pdb1c00.ent") {
		t.Errorf("second input: %+v", in[1])
	}
	if in[2].Label != "a" || in[2].Sequence != "MKV" {
		t.Errorf("third input: %+v", in[2])
	}
}

func TestShortRowsKeepTheBatch(t *testing.T) {
	in := "scop_id,sequence,scop_class,pdb_id,uniprot_id\n" +
		"d1,MKV,a,1ABC,P1\n" +
		"d2,MKV,b,2ABC\n" +
		"d3\n"
	ds, err := Load(strings.NewReader(in), DefaultColumns())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Rows) != 2 || ds.Rows[1].ID != "d2" || ds.Rows[1].UniProtID != "" {
		t.Fatalf("rows: %+v", ds.Rows)
	}
	// No uniprot id: the predicted path is empty and the record is reported
	// as not found downstream.
	if got := ds.Inputs(Layout{PDBDir: "pdb", AFDir: "af"})[1].PredictedPath; got != "" {
		t.Errorf("predicted path: %q", got)
	}
	if len(ds.Dropped) != 1 || ds.Dropped[0].ID != "d3" || ds.Dropped[0].Reason != "missing_sequence" {
		t.Errorf("dropped: %+v", ds.Dropped)
	}
}

func TestVocabSortedOverAllRows(t *testing.T) {
	ds, err := Load(strings.NewReader(sample), DefaultColumns())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := ds.Classes.Names(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("names: %v", got)
	}
	for label, want := range map[string]int{"a": 0, "b": 1, "c": 2} {
		if i, ok := ds.Classes.Index(label); !ok || i != want {
			t.Errorf("%s: got %d,%v", label, i, ok)
		}
	}
	if _, ok := ds.Classes.Index("z"); ok {
		t.Error("unknown label resolved")
	}
	b, err := ds.Classes.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"a":0,"b":1,"c":2}` {
		t.Errorf("json: %s", b)
	}
}

func TestExplicitPathsOverride(t *testing.T) {
	csv := "scop_id,sequence,scop_class,pdb_id,uniprot_id,experimental_path,predicted_path\n" +
		"x,MKV,a,1ABC,P1,/data/x.pdb.gz,\n" +
		"y,MKV,a,,P2,,/data/y.pdb\n"
	ds, err := Load(strings.NewReader(csv), DefaultColumns())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	in := ds.Inputs(Layout{PDBDir: "pdb", AFDir: "af"})
	if in[0].ExperimentalPath != "/data/x.pdb.gz" || in[0].PredictedPath != filepath.Join("af", "P1.pdb") {
		t.Errorf("x: %+v", in[0])
	}
	if in[1].ExperimentalPath != "" || in[1].PredictedPath != "/data/y.pdb" {
		t.Errorf("y: %+v", in[1])
	}
}

func TestPathOnlyColumns(t *testing.T) {
	csv := "id,seq,label,experimental_path,predicted_path\nq,MKV,k,a.pdb,b.pdb\n"
	cols := DefaultColumns()
	cols.ID, cols.Sequence, cols.Label = "id", "seq", "label"
	ds, err := Load(strings.NewReader(csv), cols)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	in := ds.Inputs(Layout{})
	if in[0].ExperimentalPath != "a.pdb" || in[0].PredictedPath != "b.pdb" {
		t.Errorf("paths: %+v", in[0])
	}
}

func TestMissingColumns(t *testing.T) {
	for _, csv := range []string{
		"scop_id,scop_class,pdb_id,uniprot_id\n",
		"scop_id,sequence,scop_class,uniprot_id\n",
		"scop_id,sequence,scop_class,pdb_id\n",
	} {
		if _, err := Load(strings.NewReader(csv), DefaultColumns()); !errors.Is(err, ErrMissingColumn) {
			t.Errorf("%q: want ErrMissingColumn, got %v", csv, err)
		}
	}
	if _, err := Load(strings.NewReader(""), DefaultColumns()); err == nil {
		t.Error("empty input accepted")
	}
}

func TestLoadFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "ds.csv")
	if err := os.WriteFile(fn, []byte("\ufeff"+sample), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := LoadFile(fn, DefaultColumns())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Rows) != 3 {
		t.Fatalf("rows: %d", len(ds.Rows))
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), DefaultColumns()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want not-exist, got %v", err)
	}
}

func TestWithSequencesFillsMissing(t *testing.T) {
	seqs := map[string]string{"d1b00a_": "SLFEQLGG", "d1a00a_": "IGNORED"}
	ds, err := Load(strings.NewReader(sample), DefaultColumns(), WithSequences(seqs))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Rows) != 4 || len(ds.Dropped) != 0 || ds.Filled != 1 {
		t.Fatalf("rows=%d dropped=%d filled=%d", len(ds.Rows), len(ds.Dropped), ds.Filled)
	}
	if ds.Rows[0].Sequence != "MKTAYIAKQR" || ds.Rows[1].Sequence != "SLFEQLGG" {
		t.Fatalf("sequences: %q %q", ds.Rows[0].Sequence, ds.Rows[1].Sequence)
	}
}
