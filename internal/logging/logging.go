// Package logging builds the process-wide logrus logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing to out (stdout when nil) at the given level.
// Format "json" emits one JSON object per line; anything else emits
// timestamped text, colored when out is a terminal.
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if out == nil {
		out = os.Stdout
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return logger, nil
}

// OrDefault returns logger, or the logrus standard logger when logger is nil.
func OrDefault(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
