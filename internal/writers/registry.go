// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"
)

// ArtifactFunc renders one output file of a Set.
type ArtifactFunc func(w io.Writer, s *Set) error

// Artifact registry (file name → renderer). Entries are added in init()
// blocks next to their renderers.
var artifacts = map[string]ArtifactFunc{}

// Register adds or replaces (last wins) the renderer for name.
func Register(name string, fn ArtifactFunc) { artifacts[name] = fn }

// Artifacts returns the registered file names in sorted order.
func Artifacts() []string {
	names := make([]string, 0, len(artifacts))
	for n := range artifacts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WriteArtifact renders the artifact called name.
func WriteArtifact(name string, w io.Writer, s *Set) error {
	fn, ok := artifacts[name]
	if !ok {
		return fmt.Errorf("unknown artifact %q (no writer registered)", name)
	}
	return fn(w, s)
}
