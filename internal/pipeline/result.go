package pipeline

import (
	"context"
	"errors"
	"fmt"

	"contactmap/internal/align"
	"contactmap/internal/contact"
	"contactmap/internal/project"
	"contactmap/internal/structure"
)

// Side names which structure of a record failed.
type Side string

const (
	Experimental Side = "experimental"
	Predicted    Side = "predicted"
)

// Reason classifies a per-record failure.
type Reason int

const (
	NotFound Reason = iota
	ParseFailure
	NoAlignment
	TooFewPoints
	Internal
	numReasons
)

var reasonNames = [numReasons]string{"not_found", "parse_failure", "no_alignment", "too_few_points", "internal"}

func (r Reason) String() string {
	if r < 0 || r >= numReasons {
		return fmt.Sprintf("reason(%d)", int(r))
	}
	return reasonNames[r]
}

// Classify maps an extraction error to its Reason. Anything not wrapping a
// known sentinel is Internal.
func Classify(err error) Reason {
	switch {
	case errors.Is(err, structure.ErrNotFound):
		return NotFound
	case errors.Is(err, structure.ErrParse):
		return ParseFailure
	case errors.Is(err, align.ErrNoAlignment):
		return NoAlignment
	case errors.Is(err, project.ErrTooFewPoints):
		return TooFewPoints
	}
	return Internal
}

// Input is one dataset row with its two structure paths resolved.
type Input struct {
	ID               string
	Sequence         string
	Label            string
	ExperimentalPath string
	PredictedPath    string
}

// Record is a kept dataset row. Both maps are always present.
type Record struct {
	ID           string
	Sequence     string
	Label        string
	Experimental contact.Map
	Predicted    contact.Map
}

// Failure explains why a record was dropped.
type Failure struct {
	Side   Side
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Side, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Result is the outcome for the input at Index: exactly one of Record and
// Failure is set.
type Result struct {
	Index   int
	Input   Input
	Record  *Record
	Failure *Failure
}

// Summary counts kept and skipped records.
type Summary struct {
	Total   int
	Kept    int
	Skipped int
	reasons [numReasons]int
}

func (s *Summary) add(r Result) {
	s.Total++
	if r.Failure != nil {
		s.Skipped++
		s.reasons[r.Failure.Reason]++
		return
	}
	s.Kept++
}

// Count returns the number of records skipped for reason r.
func (s Summary) Count(r Reason) int {
	if r < 0 || r >= numReasons {
		return 0
	}
	return s.reasons[r]
}

// Reasons returns the per-reason skip counts keyed by Reason.String, with
// zero counts omitted.
func (s Summary) Reasons() map[string]int {
	out := make(map[string]int)
	for r, n := range s.reasons {
		if n > 0 {
			out[Reason(r).String()] = n
		}
	}
	return out
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
