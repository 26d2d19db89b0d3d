// Package logging builds the structured logger shared by the pipelines.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Verbose lowers the level to Debug and reports the caller.
	Verbose bool
	// File, if set, sends the log to a rotating file instead of Out.
	File string
	// Out is the console sink; defaults to os.Stderr.
	Out io.Writer
}

// New returns a logger for the CLI. Console logging stays at Warn unless
// Verbose is set so it does not fight with progress bars; a log file
// always receives Debug.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyFile: "caller",
		},
	})

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	l.SetLevel(logrus.WarnLevel)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, err
		}
		l.SetOutput(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		})
		l.SetLevel(logrus.DebugLevel)
	}

	if opts.Verbose {
		l.SetLevel(logrus.DebugLevel)
		l.SetReportCaller(true)
	}
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}
