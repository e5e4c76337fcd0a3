package cmdutil

import (
	"io"

	"gopkg.in/cheggaaa/pb.v1"
)

// Progress counts finished records. A disabled Progress is a no-op.
type Progress struct {
	bar *pb.ProgressBar
}

// StartProgress draws a bar for total records on dst when enabled.
func StartProgress(dst io.Writer, total int, enabled bool) *Progress {
	if !enabled || total <= 0 {
		return &Progress{}
	}
	bar := pb.New(total)
	bar.Output = dst
	bar.ShowSpeed = true
	bar.SetMaxWidth(100)
	bar.Prefix("records ")
	bar.Start()
	return &Progress{bar: bar}
}

// Increment marks one record done.
func (p *Progress) Increment() {
	if p.bar != nil {
		p.bar.Increment()
	}
}

// Finish stops the bar.
func (p *Progress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
