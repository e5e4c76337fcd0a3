// Package project selects the structure coordinates covered by an alignment,
// in reference order.
package project

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"contactmap/internal/align"
)

// ErrTooFewPoints means fewer than the minimum number of coordinates survived
// projection. Maps from such short fragments carry no usable signal.
var ErrTooFewPoints = errors.New("too few aligned points")

// Project concatenates coords[b.Start:b.End] for every extracted-side block
// of res, in block order. Indices outside coords are skipped one position at
// a time rather than trusted. It fails with ErrTooFewPoints when fewer than
// minPoints coordinates remain.
func Project(coords []r3.Vec, res align.Result, minPoints int) ([]r3.Vec, error) {
	out := make([]r3.Vec, 0, res.Aligned())
	for _, b := range res.Ext {
		for i := b.Start; i < b.End; i++ {
			if i < 0 || i >= len(coords) {
				continue
			}
			out = append(out, coords[i])
		}
	}
	if len(out) < minPoints {
		return nil, fmt.Errorf("%w: %d < %d", ErrTooFewPoints, len(out), minPoints)
	}
	return out, nil
}
