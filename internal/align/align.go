// Package align finds the best local alignment between a reference sequence
// and a sequence extracted from a structure, and reports it as parallel lists
// of ungapped blocks.
//
// The algorithm is Smith-Waterman with affine gaps (Gotoh's three-state
// recurrence). A gap of length L scores GapOpen + (L-1)*GapExtend.
package align

import (
	"errors"
	"math"
	"strings"

	"contactmap/internal/config"
)

// ErrNoAlignment is returned when no positive-scoring local alignment exists
// (including empty inputs).
var ErrNoAlignment = errors.New("no alignment")

// Range is a half-open index range [Start, End).
type Range struct {
	Start, End int
}

// Len returns End - Start.
func (r Range) Len() int { return r.End - r.Start }

// Result is the best local alignment. Ref[k] and Ext[k] describe the same
// ungapped block and always have equal length. Blocks are ordered by
// increasing index on both sides and never overlap.
type Result struct {
	Score float64
	Ref   []Range
	Ext   []Range
}

// Aligned returns the total number of aligned (matched or substituted)
// positions.
func (r Result) Aligned() int {
	n := 0
	for _, b := range r.Ext {
		n += b.Len()
	}
	return n
}

// Aligner holds a fixed scoring scheme. The zero value is not usable; use New.
type Aligner struct {
	sc config.Scoring
}

// New returns an Aligner using sc.
func New(sc config.Scoring) *Aligner { return &Aligner{sc: sc} }

// traceback states
const (
	stStart byte = iota
	stM          // ref[i-1] aligned to ext[j-1]
	stX          // ref[i-1] against a gap
	stY          // ext[j-1] against a gap
)

var negInf = math.Inf(-1)

// Align computes the highest-scoring local alignment of ref against ext.
// Both are uppercased first. Ties resolve to the first maximal cell in
// row-major order, and within a cell to M, then X, then Y.
func (a *Aligner) Align(ref, ext string) (Result, error) {
	r := []byte(strings.ToUpper(ref))
	e := []byte(strings.ToUpper(ext))
	n, m := len(r), len(e)
	if n == 0 || m == 0 {
		return Result{}, ErrNoAlignment
	}
	sc := a.sc
	w := m + 1

	// Traceback pointers, one byte per state per cell.
	tbM := make([]byte, (n+1)*w)
	tbX := make([]byte, (n+1)*w)
	tbY := make([]byte, (n+1)*w)

	prevM, curM := make([]float64, w), make([]float64, w)
	prevX, curX := make([]float64, w), make([]float64, w)
	prevY, curY := make([]float64, w), make([]float64, w)
	for j := range prevM {
		prevM[j], prevX[j], prevY[j] = negInf, negInf, negInf
	}

	best, bi, bj := 0.0, -1, -1
	for i := 1; i <= n; i++ {
		curM[0], curX[0], curY[0] = negInf, negInf, negInf
		for j := 1; j <= m; j++ {
			k := i*w + j

			// M: extend the best alignment ending at (i-1, j-1), or start fresh.
			s := sc.Mismatch
			if r[i-1] == e[j-1] {
				s = sc.Match
			}
			from, p := stStart, 0.0
			if v := prevM[j-1]; v > p {
				from, p = stM, v
			}
			if v := prevX[j-1]; v > p {
				from, p = stX, v
			}
			if v := prevY[j-1]; v > p {
				from, p = stY, v
			}
			curM[j] = p + s
			tbM[k] = from

			// X: gap in ext, consumes ref[i-1].
			from, p = stM, prevM[j]+sc.GapOpen
			if v := prevX[j] + sc.GapExtend; v > p {
				from, p = stX, v
			}
			if v := prevY[j] + sc.GapOpen; v > p {
				from, p = stY, v
			}
			curX[j] = p
			tbX[k] = from

			// Y: gap in ref, consumes ext[j-1].
			from, p = stM, curM[j-1]+sc.GapOpen
			if v := curX[j-1] + sc.GapOpen; v > p {
				from, p = stX, v
			}
			if v := curY[j-1] + sc.GapExtend; v > p {
				from, p = stY, v
			}
			curY[j] = p
			tbY[k] = from

			if curM[j] > best {
				best, bi, bj = curM[j], i, j
			}
		}
		prevM, curM = curM, prevM
		prevX, curX = curX, prevX
		prevY, curY = curY, prevY
	}
	if bi < 0 {
		return Result{}, ErrNoAlignment
	}

	// Walk back from the best M cell, collecting aligned pairs in reverse.
	type pair struct{ i, j int }
	var pairs []pair
	i, j, st := bi, bj, stM
	for {
		k := i*w + j
		switch st {
		case stM:
			pairs = append(pairs, pair{i - 1, j - 1})
			st = tbM[k]
			i, j = i-1, j-1
		case stX:
			st = tbX[k]
			i--
		case stY:
			st = tbY[k]
			j--
		}
		if st == stStart {
			break
		}
	}

	res := Result{Score: best}
	for k := len(pairs) - 1; k >= 0; k-- {
		p := pairs[k]
		last := len(res.Ref) - 1
		if last >= 0 && res.Ref[last].End == p.i && res.Ext[last].End == p.j {
			res.Ref[last].End++
			res.Ext[last].End++
			continue
		}
		res.Ref = append(res.Ref, Range{p.i, p.i + 1})
		res.Ext = append(res.Ext, Range{p.j, p.j + 1})
	}
	return res, nil
}
