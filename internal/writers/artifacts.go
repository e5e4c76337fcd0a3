package writers

import (
	"encoding/json"
	"fmt"
	"io"

	"contactmap/internal/contact"
	"contactmap/internal/dataset"
	"contactmap/internal/npy"
	"contactmap/internal/pipeline"
)

// Artifact file names.
const (
	ExperimentalMaps = "pdb_maps.npy"
	PredictedMaps    = "af_maps.npy"
	Labels           = "labels.npy"
	IDs              = "ids.npy"
	ClassMap         = "class_map.json"
	ManifestFile     = "manifest.json"
)

// Set is everything a run persists. Records are in dataset order; Size is
// the side length every map must have.
type Set struct {
	Records  []pipeline.Record
	Classes  *dataset.Vocab
	Size     int
	Manifest Manifest
}

func init() {
	Register(ExperimentalMaps, func(w io.Writer, s *Set) error {
		return s.writeMaps(w, func(r pipeline.Record) contact.Map { return r.Experimental })
	})
	Register(PredictedMaps, func(w io.Writer, s *Set) error {
		return s.writeMaps(w, func(r pipeline.Record) contact.Map { return r.Predicted })
	})
	Register(Labels, writeLabels)
	Register(IDs, writeIDs)
	Register(ClassMap, func(w io.Writer, s *Set) error { return writeJSON(w, s.Classes) })
	Register(ManifestFile, func(w io.Writer, s *Set) error { return writeJSON(w, s.Manifest) })
}

func (s *Set) writeMaps(w io.Writer, pick func(pipeline.Record) contact.Map) error {
	data := make([]float32, 0, len(s.Records)*s.Size*s.Size)
	for _, r := range s.Records {
		m := pick(r)
		if m.Size() != s.Size {
			return fmt.Errorf("record %s: map is %dx%d, want %dx%d", r.ID, m.Size(), m.Size(), s.Size, s.Size)
		}
		data = m.AppendFloat32(data)
	}
	return npy.WriteFloat32(w, []int{len(s.Records), s.Size, s.Size}, data)
}

func writeLabels(w io.Writer, s *Set) error {
	labels := make([]int64, len(s.Records))
	for i, r := range s.Records {
		k, ok := s.Classes.Index(r.Label)
		if !ok {
			return fmt.Errorf("record %s: label %q not in class map", r.ID, r.Label)
		}
		labels[i] = int64(k)
	}
	return npy.WriteInt64(w, labels)
}

func writeIDs(w io.Writer, s *Set) error {
	ids := make([]string, len(s.Records))
	for i, r := range s.Records {
		ids[i] = r.ID
	}
	return npy.WriteStrings(w, ids)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
