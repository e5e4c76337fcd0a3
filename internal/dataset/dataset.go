// Package dataset loads the tabular input (one row per protein domain),
// resolves each row's two structure paths and derives the class-label
// vocabulary.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"contactmap/internal/pipeline"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Columns names the header fields to read. Experimental and Predicted are
// optional: when present and non-empty in a row they override the paths
// derived from PDBID and UniProtID.
type Columns struct {
	ID           string
	Sequence     string
	Label        string
	PDBID        string
	UniProtID    string
	Experimental string
	Predicted    string
}

// DefaultColumns matches the SCOP-derived dataset layout.
func DefaultColumns() Columns {
	return Columns{
		ID:           "scop_id",
		Sequence:     "sequence",
		Label:        "scop_class",
		PDBID:        "pdb_id",
		UniProtID:    "uniprot_id",
		Experimental: "experimental_path",
		Predicted:    "predicted_path",
	}
}

// Layout locates structure files that are not named explicitly.
type Layout struct {
	PDBDir string // experimental: <PDBDir>/pdb<lower(pdb_id)>.ent
	AFDir  string // predicted:    <AFDir>/<uniprot_id>.pdb
}

// Row is one accepted dataset row.
type Row struct {
	Line             int
	ID               string
	Sequence         string
	Label            string
	PDBID            string
	UniProtID        string
	ExperimentalPath string
	PredictedPath    string
}

// Dropped is a row rejected at load time.
type Dropped struct {
	Line   int
	ID     string
	Reason string
}

// Dataset is the loaded table. Filled counts rows whose sequence came from
// a WithSequences table.
type Dataset struct {
	Rows    []Row
	Dropped []Dropped
	Classes *Vocab
	Filled  int
}

// Option adjusts Load.
type Option func(*loadOptions)

type loadOptions struct {
	sequences map[string]string
}

// WithSequences supplies reference sequences by row identifier for rows
// whose sequence column is empty.
func WithSequences(seqs map[string]string) Option {
	return func(o *loadOptions) { o.sequences = seqs }
}

// LoadFile opens path and calls Load.
func LoadFile(path string, cols Columns, opts ...Option) (*Dataset, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	ds, err := Load(fh, cols, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Load reads a CSV table with a header row. Rows without a reference
// sequence are dropped. The class vocabulary covers every label seen,
// including labels of dropped rows.
func Load(r io.Reader, cols Columns, opts ...Option) (*Dataset, error) {
	var lo loadOptions
	for _, o := range opts {
		o(&lo)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // short rows read as empty trailing cells
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty dataset")
	}
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	need := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return -1, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
		return i, nil
	}
	opt := func(name string) int {
		if i, ok := idx[name]; ok && name != "" {
			return i
		}
		return -1
	}

	iID, err := need(cols.ID)
	if err != nil {
		return nil, err
	}
	iSeq, err := need(cols.Sequence)
	if err != nil {
		return nil, err
	}
	iLabel, err := need(cols.Label)
	if err != nil {
		return nil, err
	}
	iExp, iPred := opt(cols.Experimental), opt(cols.Predicted)
	iPDB, iUni := opt(cols.PDBID), opt(cols.UniProtID)
	if iPDB < 0 && iExp < 0 {
		return nil, fmt.Errorf("%w %q or %q", ErrMissingColumn, cols.PDBID, cols.Experimental)
	}
	if iUni < 0 && iPred < 0 {
		return nil, fmt.Errorf("%w %q or %q", ErrMissingColumn, cols.UniProtID, cols.Predicted)
	}

	field := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ds := &Dataset{}
	var labels []string
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		row := Row{
			Line:             line,
			ID:               field(rec, iID),
			Sequence:         field(rec, iSeq),
			Label:            field(rec, iLabel),
			PDBID:            field(rec, iPDB),
			UniProtID:        field(rec, iUni),
			ExperimentalPath: field(rec, iExp),
			PredictedPath:    field(rec, iPred),
		}
		labels = append(labels, row.Label)
		if row.Sequence == "" {
			if seq := lo.sequences[row.ID]; seq != "" {
				row.Sequence = seq
				ds.Filled++
			}
		}
		if row.Sequence == "" {
			ds.Dropped = append(ds.Dropped, Dropped{Line: line, ID: row.ID, Reason: "missing_sequence"})
			continue
		}
		ds.Rows = append(ds.Rows, row)
	}
	ds.Classes = NewVocab(labels)
	return ds, nil
}

// Inputs converts the rows into pipeline inputs, resolving structure paths
// against l. A row with neither an explicit path nor an identifier gets an
// empty path, which the reader reports as not found.
func (d *Dataset) Inputs(l Layout) []pipeline.Input {
	out := make([]pipeline.Input, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = pipeline.Input{
			ID:               r.ID,
			Sequence:         r.Sequence,
			Label:            r.Label,
			ExperimentalPath: l.Experimental(r),
			PredictedPath:    l.Predicted(r),
		}
	}
	return out
}

// Experimental returns the experimental structure path for r.
func (l Layout) Experimental(r Row) string {
	if r.ExperimentalPath != "" {
		return r.ExperimentalPath
	}
	if r.PDBID == "" {
		return ""
	}
	return filepath.Join(l.PDBDir, "pdb"+strings.ToLower(r.PDBID)+".ent")
}

// Predicted returns the predicted structure path for r.
func (l Layout) Predicted(r Row) string {
	if r.PredictedPath != "" {
		return r.PredictedPath
	}
	if r.UniProtID == "" {
		return ""
	}
	return filepath.Join(l.AFDir, r.UniProtID+".pdb")
}
