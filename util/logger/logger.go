// Package logger provides the always-on, leveled logger cmd/goba uses for
// configuration and lifecycle reporting (BIOS and ROM load failures,
// scheduler errors, the stop signal, the snapshot write). It is distinct from
// util/dbg's build-tag-gated tracer: this logger runs in every build, at a
// coarse per-event rate, and is safe to leave enabled in production.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text-formatted logger writing to stderr. debug raises the
// level to Debug; otherwise the level is Info.
func New(debug bool) *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: false,
		FullTimestamp:    true,
	}
	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
