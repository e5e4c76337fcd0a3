// Package npy writes NumPy .npy (format version 1.0) files.
//
// Only what the contact-map artifacts need is supported: little-endian
// float32 and int64 arrays of any shape in C order, and fixed-width
// unicode string vectors.
package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	magic     = "\x93NUMPY"
	preamble  = len(magic) + 2 + 2 // magic, version, header length
	alignment = 64
)

// Descriptors for the supported element types.
const (
	Float32 = "<f4"
	Int64   = "<i8"
)

// Header describes one array.
type Header struct {
	Descr string
	Shape []int
}

// Count returns the number of elements implied by Shape.
func (h Header) Count() int {
	n := 1
	for _, d := range h.Shape {
		n *= d
	}
	return n
}

func (h Header) dict() string {
	dims := make([]string, len(h.Shape))
	for i, d := range h.Shape {
		dims[i] = strconv.Itoa(d)
	}
	shape := strings.Join(dims, ", ")
	if len(h.Shape) == 1 {
		shape += ","
	}
	return fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", h.Descr, shape)
}

// WriteHeader writes the magic string, version and padded header dict.
func WriteHeader(w io.Writer, h Header) error {
	d := h.dict()
	total := preamble + len(d) + 1
	if rem := total % alignment; rem != 0 {
		d += strings.Repeat(" ", alignment-rem)
	}
	d += "\n"
	if len(d) > 0xffff {
		return errors.New("npy: header too long")
	}
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(1)
	buf.WriteByte(0)
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(len(d)))
	buf.Write(n[:])
	buf.WriteString(d)
	_, err := w.Write(buf.Bytes())
	return err
}

func checkShape(shape []int, n int) error {
	h := Header{Shape: shape}
	if h.Count() != n {
		return fmt.Errorf("npy: shape %v holds %d elements, got %d", shape, h.Count(), n)
	}
	return nil
}

// WriteFloat32 writes data as a float32 array of the given shape.
func WriteFloat32(w io.Writer, shape []int, data []float32) error {
	if err := checkShape(shape, len(data)); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := WriteHeader(bw, Header{Descr: Float32, Shape: shape}); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, data); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteInt64 writes data as a one-dimensional int64 array.
func WriteInt64(w io.Writer, data []int64) error {
	bw := bufio.NewWriter(w)
	if err := WriteHeader(bw, Header{Descr: Int64, Shape: []int{len(data)}}); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, data); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteStrings writes a one-dimensional '<U{n}' array, n being the longest
// string in code points (at least 1). Each element is UTF-32LE, zero padded.
func WriteStrings(w io.Writer, data []string) error {
	width := 1
	for _, s := range data {
		if n := utf8.RuneCountInString(s); n > width {
			width = n
		}
	}
	bw := bufio.NewWriter(w)
	h := Header{Descr: "<U" + strconv.Itoa(width), Shape: []int{len(data)}}
	if err := WriteHeader(bw, h); err != nil {
		return err
	}
	cell := make([]byte, 4*width)
	for _, s := range data {
		for i := range cell {
			cell[i] = 0
		}
		k := 0
		for _, r := range s {
			binary.LittleEndian.PutUint32(cell[k:], uint32(r))
			k += 4
		}
		if _, err := bw.Write(cell); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadHeader parses the preamble and header of an .npy stream, leaving r
// positioned at the first data byte.
func ReadHeader(r io.Reader) (Header, error) {
	var pre [preamble]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return Header{}, err
	}
	if string(pre[:len(magic)]) != magic {
		return Header{}, errors.New("npy: bad magic")
	}
	if pre[6] != 1 {
		return Header{}, fmt.Errorf("npy: unsupported version %d.%d", pre[6], pre[7])
	}
	d := make([]byte, binary.LittleEndian.Uint16(pre[8:]))
	if _, err := io.ReadFull(r, d); err != nil {
		return Header{}, err
	}
	return parseDict(string(d))
}

func parseDict(d string) (Header, error) {
	var h Header
	field := func(key string) (string, bool) {
		i := strings.Index(d, "'"+key+"':")
		if i < 0 {
			return "", false
		}
		return strings.TrimSpace(d[i+len(key)+3:]), true
	}
	v, ok := field("descr")
	if !ok || !strings.HasPrefix(v, "'") {
		return h, errors.New("npy: header without descr")
	}
	end := strings.IndexByte(v[1:], '\'')
	if end < 0 {
		return h, errors.New("npy: malformed descr")
	}
	h.Descr = v[1 : end+1]

	v, ok = field("shape")
	if !ok || !strings.HasPrefix(v, "(") {
		return h, errors.New("npy: header without shape")
	}
	end = strings.IndexByte(v, ')')
	if end < 0 {
		return h, errors.New("npy: malformed shape")
	}
	h.Shape = []int{}
	for _, p := range strings.Split(v[1:end], ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return h, fmt.Errorf("npy: shape: %w", err)
		}
		h.Shape = append(h.Shape, n)
	}
	return h, nil
}
