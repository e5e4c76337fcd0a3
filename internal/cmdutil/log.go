// internal/cmdutil/log.go
package cmdutil

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a text logger on dst. quiet keeps warnings and errors
// only; verbose adds per-record diagnostics.
func NewLogger(dst io.Writer, quiet, verbose bool) *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(dst)
	lg.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	switch {
	case quiet:
		lg.SetLevel(logrus.WarnLevel)
	case verbose:
		lg.SetLevel(logrus.DebugLevel)
	default:
		lg.SetLevel(logrus.InfoLevel)
	}
	return lg
}
