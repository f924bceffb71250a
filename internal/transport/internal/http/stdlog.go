package http

import (
	"io"
	"log"

	"github.com/sirupsen/logrus"
)

// newStdLogger routes net/http's internal error log through logrus at warn
// level. The returned closer releases the pipe behind the writer.
func newStdLogger(logger logrus.FieldLogger) (*log.Logger, io.Closer) {
	var w *io.PipeWriter
	switch l := logger.(type) {
	case *logrus.Logger:
		w = l.WriterLevel(logrus.WarnLevel)
	case *logrus.Entry:
		w = l.WriterLevel(logrus.WarnLevel)
	default:
		return nil, io.NopCloser(nil)
	}
	return log.New(w, "", 0), w
}
