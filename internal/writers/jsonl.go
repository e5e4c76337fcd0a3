// internal/writers/jsonl.go
package writers

import (
	"bufio"
	"encoding/json"
	"io"

	"contactmap/internal/pipeline"
)

// SkipsFile is the per-record skip log written next to the artifacts.
const SkipsFile = "skips.jsonl"

// Skip is one line of the skip log.
type Skip struct {
	ID     string `json:"id"`
	Side   string `json:"side,omitempty"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// SkipFromResult converts a failed pipeline result.
func SkipFromResult(r pipeline.Result) Skip {
	s := Skip{ID: r.Input.ID}
	if f := r.Failure; f != nil {
		s.Side = string(f.Side)
		s.Reason = f.Reason.String()
		if f.Err != nil {
			s.Error = f.Err.Error()
		}
	}
	return s
}

// StartSkipWriter streams each Skip as one JSON line.
func StartSkipWriter(out io.Writer, bufSize int) (chan<- Skip, <-chan error) {
	return startJSONL[Skip](out, bufSize, IsBrokenPipe)
}

// startJSONL spins up an encoder goroutine for values of type T. Broken-pipe
// errors on the final flush are suppressed.
func startJSONL[T any](out io.Writer, bufSize int, isBroken func(error) bool) (chan<- T, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan T, bufSize)
	done := make(chan error, 1)

	go func() {
		bw := bufio.NewWriterSize(out, 64<<10)
		enc := json.NewEncoder(bw)
		var failed error
		for v := range in {
			if failed != nil {
				continue // drain so senders never block
			}
			failed = enc.Encode(v)
		}
		if failed != nil {
			done <- failed
			return
		}
		if err := bw.Flush(); err != nil && !isBroken(err) {
			done <- err
			return
		}
		done <- nil
	}()

	return in, done
}
