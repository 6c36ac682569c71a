package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level uint8

// Same ordering as logrus: lower is more severe.
const (
	PanicLevel Level = Level(logrus.PanicLevel)
	FatalLevel Level = Level(logrus.FatalLevel)
	ErrorLevel Level = Level(logrus.ErrorLevel)
	WarnLevel  Level = Level(logrus.WarnLevel)
	InfoLevel  Level = Level(logrus.InfoLevel)
	DebugLevel Level = Level(logrus.DebugLevel)
)

func init() {
	// Filtering is done per module, let everything through logrus.
	logrus.SetLevel(logrus.DebugLevel)
}

// SetOutput redirects all log entries to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// A Context adds fields to every log entry, such as the current frame
// number. Contexts are registered once at startup.
type Context interface {
	AddLogContext(e *EntryZ)
}

var contexts []Context

func AddContext(ctx Context) {
	contexts = append(contexts, ctx)
}

func RemoveContext(ctx Context) {
	for i, c := range contexts {
		if c == ctx {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}
