// internal/pipeline/extract.go
package pipeline

import (
	"context"
	"fmt"

	"contactmap/internal/align"
	"contactmap/internal/config"
	"contactmap/internal/contact"
	"contactmap/internal/project"
	"contactmap/internal/structure"
)

// Extractor is the minimal capability the pipeline needs: one structure file
// plus a reference sequence in, one contact map out.
// Any chain (including fakes in tests) can satisfy this.
type Extractor interface {
	Extract(ctx context.Context, reference, path string) (contact.Map, error)
}

// Chain is the production Extractor.
type Chain struct {
	Reader    *structure.Reader
	Aligner   *align.Aligner
	Builder   contact.Builder
	MinPoints int
}

// NewChain wires a Chain from cfg. maxOpen bounds concurrent file reads.
func NewChain(cfg config.Config, maxOpen int) *Chain {
	return &Chain{
		Reader:    structure.NewReader(maxOpen, cfg.Chains),
		Aligner:   align.New(cfg.Scoring),
		Builder:   contact.NewBuilder(cfg),
		MinPoints: cfg.MinPoints,
	}
}

// Extract reads path, aligns its sequence against reference, keeps the
// aligned coordinates and builds the map. Errors wrap the sentinel of the
// failing stage.
func (c *Chain) Extract(ctx context.Context, reference, path string) (contact.Map, error) {
	s, err := c.Reader.Read(ctx, path)
	if err != nil {
		return contact.Map{}, err
	}
	res, err := c.Aligner.Align(reference, s.Sequence)
	if err != nil {
		return contact.Map{}, fmt.Errorf("%s: %w", path, err)
	}
	coords, err := project.Project(s.Coords, res, c.MinPoints)
	if err != nil {
		return contact.Map{}, fmt.Errorf("%s: %w", path, err)
	}
	return c.Builder.Build(coords), nil
}
