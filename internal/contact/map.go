package contact

import "gonum.org/v1/gonum/mat"

// Map is a square binary contact map. Every cell is exactly 0 or 1 and the
// matrix is symmetric. A Map is immutable once built.
type Map struct {
	m *mat.Dense
}

// Size returns the side length.
func (c Map) Size() int {
	if c.m == nil {
		return 0
	}
	r, _ := c.m.Dims()
	return r
}

// At returns cell (i, j).
func (c Map) At(i, j int) float64 { return c.m.At(i, j) }

// Contacts returns the number of cells set to 1.
func (c Map) Contacts() int {
	n := 0
	for _, v := range c.m.RawMatrix().Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether two maps have the same size and cells.
func (c Map) Equal(o Map) bool {
	if c.Size() != o.Size() {
		return false
	}
	if c.m == nil {
		return true
	}
	return mat.Equal(c.m, o.m)
}

// AppendFloat32 appends the cells in row-major order.
func (c Map) AppendFloat32(dst []float32) []float32 {
	if c.m == nil {
		return dst
	}
	n := c.Size()
	for i := 0; i < n; i++ {
		for _, v := range c.m.RawRowView(i) {
			dst = append(dst, float32(v))
		}
	}
	return dst
}
