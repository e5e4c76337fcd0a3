package writers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// WriteSet renders every registered artifact of s into dir and returns the
// written paths in Artifacts() order. Files are first written under
// temporary names and renamed once all of them are complete. If a rename
// fails, the files already renamed by this call are removed again.
func WriteSet(ctx context.Context, dir string, s *Set) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	names := Artifacts()
	tmps := make([]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fh, err := os.CreateTemp(dir, "."+name+".*")
			if err != nil {
				return err
			}
			tmps[i] = fh.Name()
			bw := bufio.NewWriterSize(fh, 1<<20)
			if err := WriteArtifact(name, bw, s); err != nil {
				fh.Close()
				return fmt.Errorf("%s: %w", name, err)
			}
			if err := bw.Flush(); err != nil {
				fh.Close()
				return fmt.Errorf("%s: %w", name, err)
			}
			return fh.Close()
		})
	}
	if err := g.Wait(); err != nil {
		removeAll(tmps)
		return nil, err
	}

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.Rename(tmps[i], paths[i]); err != nil {
			removeAll(tmps[i:])
			removeAll(paths[:i])
			return nil, err
		}
	}
	return paths, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
