package structure

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"contactmap/internal/config"
)

// residueKey identifies a residue within a chain: HETATM flag, sequence
// number and insertion code (columns 23-27).
type residueKey struct {
	het    bool
	seqNum string
}

type residue struct {
	code  byte
	ca    r3.Vec
	caOcc float64
	hasCA bool
}

type chain struct {
	ident    byte
	residues []*residue
	index    map[residueKey]*residue
}

// pdbParser reads the legacy fixed-column format. Only ATOM/HETATM records of
// the first model are kept; chains and residues are ordered by first
// appearance.
type pdbParser struct {
	line    []byte
	lineNo  int
	models  int
	done    bool
	chains  []*chain
	nAtoms  int
	nonStd  int
	missing int
}

// Parse extracts the ordered (one-letter code, CA coordinate) sequence of the
// first model in r. chains selects between concatenating every chain
// (config.ChainsAll) and keeping only the first chain with a qualifying
// residue (config.ChainsFirst).
//
// It returns an error wrapping ErrParse when the input is not a structure at
// all, when an atom record is malformed, or when no residue qualifies.
func Parse(r io.Reader, chains string) (Structure, error) {
	p := &pdbParser{}
	br := bufio.NewReaderSize(r, 64*1024)
	for !p.done {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			p.lineNo++
			p.line = bytes.TrimRight(line, "\r\n")
			if perr := p.parseLine(); perr != nil {
				return Structure{}, perr
			}
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return Structure{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
	}
	if p.nAtoms == 0 {
		return Structure{}, fmt.Errorf("%w: no atom records", ErrParse)
	}
	s := p.flatten(chains)
	if s.Len() == 0 {
		return Structure{}, fmt.Errorf("%w: no standard residue with a CA atom (%d atoms, %d non-standard, %d without CA)",
			ErrParse, p.nAtoms, p.nonStd, p.missing)
	}
	return s, nil
}

func (p *pdbParser) parseLine() error {
	switch p.cols(1, 6) {
	case "MODEL":
		// A second MODEL record means the first model is complete.
		p.models++
		if p.models > 1 {
			p.done = true
		}
	case "ENDMDL":
		p.done = true
	case "ATOM", "HETATM":
		return p.parseAtom()
	}
	return nil
}

func (p *pdbParser) parseAtom() error {
	if len(p.line) < 54 {
		return fmt.Errorf("%w: line %d: truncated atom record", ErrParse, p.lineNo)
	}
	p.nAtoms++

	code, ok := OneLetter(p.cols(18, 20))
	if !ok {
		p.nonStd++
		return nil
	}
	var (
		pos r3.Vec
		err error
	)
	if pos.X, err = p.atof(31, 38); err != nil {
		return err
	}
	if pos.Y, err = p.atof(39, 46); err != nil {
		return err
	}
	if pos.Z, err = p.atof(47, 54); err != nil {
		return err
	}

	res := p.getResidue(p.at(22), residueKey{het: p.cols(1, 6) == "HETATM", seqNum: p.cols(23, 27)}, code)
	// Alternate locations: the highest occupancy CA wins, the first on ties.
	// A blank or unreadable occupancy counts as zero.
	if p.cols(13, 16) == "CA" {
		occ, _ := strconv.ParseFloat(p.cols(55, 60), 64)
		if !res.hasCA || occ > res.caOcc {
			res.ca, res.caOcc = pos, occ
			res.hasCA = true
		}
	}
	return nil
}

func (p *pdbParser) getChain(ident byte) *chain {
	for _, c := range p.chains {
		if c.ident == ident {
			return c
		}
	}
	c := &chain{ident: ident, index: make(map[residueKey]*residue, 64)}
	p.chains = append(p.chains, c)
	return c
}

func (p *pdbParser) getResidue(ident byte, key residueKey, code byte) *residue {
	c := p.getChain(ident)
	if r, ok := c.index[key]; ok {
		return r
	}
	r := &residue{code: code}
	c.index[key] = r
	c.residues = append(c.residues, r)
	return r
}

// flatten drops residues without a CA atom and concatenates chains.
func (p *pdbParser) flatten(policy string) Structure {
	var s Structure
	seq := make([]byte, 0, 256)
	for _, c := range p.chains {
		n := 0
		for _, r := range c.residues {
			if !r.hasCA {
				p.missing++
				continue
			}
			seq = append(seq, r.code)
			s.Coords = append(s.Coords, r.ca)
			n++
		}
		if policy == config.ChainsFirst && n > 0 {
			break
		}
	}
	s.Sequence = string(seq)
	return s
}

func (p *pdbParser) atof(start, end int) (float64, error) {
	f, err := strconv.ParseFloat(p.cols(start, end), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: bad coordinate in columns %d-%d", ErrParse, p.lineNo, start, end)
	}
	return f, nil
}

// cols returns the trimmed text of 1-based inclusive columns start..end.
func (p *pdbParser) cols(start, end int) string {
	rs, re := start-1, end
	if rs >= len(p.line) || rs < 0 {
		return ""
	}
	if re > len(p.line) {
		re = len(p.line)
	}
	if re < rs {
		return ""
	}
	return string(bytes.TrimSpace(p.line[rs:re]))
}

func (p *pdbParser) at(column int) byte {
	i := column - 1
	if i < 0 || i >= len(p.line) {
		return ' '
	}
	return p.line[i]
}
