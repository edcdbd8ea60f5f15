// Package applog builds the process-wide logrus logger.
package applog

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger, or a human readable one when debug is set.
func New(debug bool) *logrus.Logger {
	return NewWithOutput(os.Stdout, debug)
}

func NewWithOutput(w io.Writer, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return logger
	}

	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

// Discard is a logger for tests.
func Discard() *logrus.Logger {
	return NewWithOutput(io.Discard, false)
}

type requestIDKey struct{}

// WithRequestID stores the request id so workflow logs can carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
