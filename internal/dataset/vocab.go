package dataset

import (
	"encoding/json"
	"sort"
)

// Vocab maps class labels to dense integers by sorted label order.
type Vocab struct {
	names []string
	index map[string]int
}

// NewVocab builds the vocabulary of the distinct values in labels.
func NewVocab(labels []string) *Vocab {
	v := &Vocab{index: make(map[string]int)}
	for _, l := range labels {
		if _, ok := v.index[l]; !ok {
			v.index[l] = -1
			v.names = append(v.names, l)
		}
	}
	sort.Strings(v.names)
	for i, n := range v.names {
		v.index[n] = i
	}
	return v
}

// Len returns the number of classes.
func (v *Vocab) Len() int { return len(v.names) }

// Names returns the labels in index order.
func (v *Vocab) Names() []string { return append([]string(nil), v.names...) }

// Index returns the integer for label.
func (v *Vocab) Index(label string) (int, bool) {
	i, ok := v.index[label]
	return i, ok
}

// MarshalJSON writes the label-to-index object.
func (v *Vocab) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(v.names))
	for i, n := range v.names {
		m[n] = i
	}
	return json.Marshal(m)
}
