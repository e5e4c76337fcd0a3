// Package structure extracts the ordered residue identities and alpha-carbon
// coordinates of a protein from a legacy PDB-format file.
package structure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/spatial/r3"

	"contactmap/internal/config"
)

var (
	// ErrNotFound means the path does not name an existing regular file.
	ErrNotFound = errors.New("structure file not found")
	// ErrParse means the file exists but yields no usable structural model.
	ErrParse = errors.New("structure parse failure")
)

// Structure is the extraction result for one file. Sequence[i] is the
// one-letter code of the residue whose alpha carbon is Coords[i].
type Structure struct {
	Sequence string
	Coords   []r3.Vec
}

// Len returns the number of extracted residues.
func (s Structure) Len() int { return len(s.Coords) }

// Reader reads structure files with a bounded number of files open at once.
// It is safe for concurrent use.
type Reader struct {
	sem    *semaphore.Weighted
	chains string
}

// NewReader returns a Reader allowing at most maxOpen concurrent reads
// (values < 1 mean 1). chains is a config chain policy.
func NewReader(maxOpen int, chains string) *Reader {
	if maxOpen < 1 {
		maxOpen = 1
	}
	if chains == "" {
		chains = config.ChainsAll
	}
	return &Reader{sem: semaphore.NewWeighted(int64(maxOpen)), chains: chains}
}

// Read extracts the first model of the file at path. Errors wrap ErrNotFound
// or ErrParse; a cancelled ctx is returned as-is.
func (r *Reader) Read(ctx context.Context, path string) (Structure, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Structure{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Structure{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if fi.IsDir() {
		return Structure{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Structure{}, err
	}
	defer r.sem.Release(1)

	rc, err := openFile(path)
	if err != nil {
		return Structure{}, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	defer rc.Close()

	s, err := Parse(rc, r.chains)
	if err != nil {
		return Structure{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
