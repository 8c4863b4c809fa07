package log

import (
	"context"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"strings"
)

type contextKey string

const contextLoggerKey contextKey = "_logger"

// Init configures the standard logger. format is "text" or "json".
func Init(level, format string) (*logrus.Logger, error) {
	return configure(logrus.StandardLogger(), os.Stderr, level, format)
}

// New returns a standalone logger, for tests and embedded use.
func New(out io.Writer, level, format string) (*logrus.Logger, error) {
	return configure(logrus.New(), out, level, format)
}

func configure(logger *logrus.Logger, out io.Writer, level, format string) (*logrus.Logger, error) {
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("invalid log format %q", format)
	}

	return logger, nil
}

func WithLogger(ctx context.Context, entry logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, contextLoggerKey, entry)
}

func GetLogger(ctx context.Context) logrus.FieldLogger {
	entry, ok := ctx.Value(contextLoggerKey).(logrus.FieldLogger)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return entry
}
