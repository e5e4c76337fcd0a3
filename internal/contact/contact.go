// Package contact turns a list of residue positions into a fixed-size binary
// contact map.
//
// Cell (i, j) of the raw map is 1 when residues i and j are closer than the
// contact threshold. The N×N raw map is then resampled to Size×Size with
// linear interpolation on both axes and re-binarized against a cutoff, which
// keeps contact topology better than nearest-neighbour scaling when N is far
// from Size.
package contact

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"contactmap/internal/config"
)

// Builder builds maps with fixed parameters. It is safe for concurrent use.
type Builder struct {
	Threshold float64 // contact when distance < Threshold
	Size      int     // output side length
	Cutoff    float64 // resampled cells > Cutoff become 1
}

// NewBuilder returns a Builder configured from c.
func NewBuilder(c config.Config) Builder {
	return Builder{Threshold: c.ContactThreshold, Size: c.TargetSize, Cutoff: c.BinarizeCutoff}
}

// Build computes the raw contact matrix of coords and resamples it. An empty
// coordinate list yields an all-zero map.
func (b Builder) Build(coords []r3.Vec) Map {
	if len(coords) == 0 {
		return Map{m: mat.NewDense(b.Size, b.Size, nil)}
	}
	return b.Resample(Contacts(coords, b.Threshold))
}

// Distances returns the symmetric N×N Euclidean distance matrix.
func Distances(coords []r3.Vec) *mat.SymDense {
	n := len(coords)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, r3.Norm(r3.Sub(coords[i], coords[j])))
		}
	}
	return d
}

// Contacts returns the N×N binary matrix with 1 where the distance is below
// threshold. The diagonal is always 1.
func Contacts(coords []r3.Vec, threshold float64) *mat.Dense {
	n := len(coords)
	dist := Distances(coords)
	raw := mat.NewDense(n, n, nil)
	raw.Apply(func(i, j int, _ float64) float64 {
		if dist.At(i, j) < threshold {
			return 1
		}
		return 0
	}, raw)
	return raw
}

// Resample scales the square matrix raw to Size×Size by linear interpolation
// and binarizes the result. Output cell o samples input position
// o*(N-1)/(Size-1), so corners map to corners and a Size×Size input is
// returned unchanged.
func (b Builder) Resample(raw mat.Matrix) Map {
	n, _ := raw.Dims()
	axis := samplePoints(n, b.Size)

	// Columns first, then rows.
	tmp := mat.NewDense(n, b.Size, nil)
	for i := 0; i < n; i++ {
		for o, s := range axis {
			tmp.Set(i, o, s.mix(raw.At(i, s.lo), raw.At(i, s.hi)))
		}
	}
	out := mat.NewDense(b.Size, b.Size, nil)
	for o, s := range axis {
		for j := 0; j < b.Size; j++ {
			out.Set(o, j, s.mix(tmp.At(s.lo, j), tmp.At(s.hi, j)))
		}
	}
	out.Apply(func(_, _ int, v float64) float64 {
		if v > b.Cutoff {
			return 1
		}
		return 0
	}, out)
	return Map{m: out}
}

type sample struct {
	lo, hi int
	frac   float64
}

func (s sample) mix(a, b float64) float64 {
	if s.frac == 0 {
		return a
	}
	return a*(1-s.frac) + b*s.frac
}

func samplePoints(n, size int) []sample {
	out := make([]sample, size)
	if n <= 1 || size <= 1 {
		return out
	}
	for o := range out {
		pos := float64(o*(n-1)) / float64(size-1)
		lo := int(math.Floor(pos))
		if lo >= n-1 {
			out[o] = sample{lo: n - 1, hi: n - 1}
			continue
		}
		out[o] = sample{lo: lo, hi: lo + 1, frac: pos - float64(lo)}
	}
	return out
}
