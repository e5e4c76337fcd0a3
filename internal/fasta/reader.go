// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one FASTA entry. ID is the first word of the header line.
type Record struct {
	ID  string
	Seq string
}

// Read collects the uppercased sequence of every record by ID. Multi-line
// records are joined. A repeated ID keeps its first sequence.
func Read(r io.Reader) (map[string]string, error) {
	out := map[string]string{}
	var (
		cur  *Record
		body strings.Builder
	)
	flush := func() {
		if cur == nil {
			return
		}
		if _, dup := out[cur.ID]; !dup {
			out[cur.ID] = strings.ToUpper(body.String())
		}
		cur = nil
		body.Reset()
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 16<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' { // new header
			flush()
			f := strings.Fields(line[1:])
			if len(f) == 0 {
				return nil, fmt.Errorf("fasta: empty header")
			}
			cur = &Record{ID: f[0]}
			continue
		}
		if cur != nil {
			body.WriteString(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

// ReadFile is Read on a path. "-" is stdin; a .gz suffix is decompressed.
func ReadFile(path string) (map[string]string, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	m, err := Read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

/* ---------------- small helpers ---------------- */

func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}
