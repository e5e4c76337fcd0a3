package cmdutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		quiet, verbose bool
		want           logrus.Level
	}{
		{false, false, logrus.InfoLevel},
		{true, false, logrus.WarnLevel},
		{false, true, logrus.DebugLevel},
		{true, true, logrus.WarnLevel},
	}
	for _, c := range cases {
		if got := NewLogger(&bytes.Buffer{}, c.quiet, c.verbose).GetLevel(); got != c.want {
			t.Errorf("quiet=%v verbose=%v: got %s want %s", c.quiet, c.verbose, got, c.want)
		}
	}
}

func TestLoggerFields(t *testing.T) {
	var b bytes.Buffer
	lg := NewLogger(&b, false, true)
	lg.WithFields(logrus.Fields{"id": "d1", "reason": "not_found"}).Debug("skipped")
	out := b.String()
	for _, want := range []string{"level=debug", "id=d1", "reason=not_found", `msg=skipped`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	b.Reset()
	NewLogger(&b, true, false).Info("hidden")
	if b.Len() != 0 {
		t.Errorf("quiet logger printed %q", b.String())
	}
}

func TestProgressDisabledIsNoop(t *testing.T) {
	var b bytes.Buffer
	p := StartProgress(&b, 10, false)
	p.Increment()
	p.Finish()
	if b.Len() != 0 {
		t.Fatalf("disabled progress wrote %q", b.String())
	}
}
