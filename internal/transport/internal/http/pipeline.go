package http

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// pipeline runs a route's stages and handler and sends any failure to the
// responder. It is the only place that turns a returned error into a response.
type pipeline struct {
	stages    []transportcore.Stage
	handler   transportcore.Handler
	responder transportcore.ErrorResponder
	logger    logrus.FieldLogger
}

// newPipeline orders stages by phase; stages in the same phase keep the
// order they were given in.
func newPipeline(
	handler transportcore.Handler,
	stages []transportcore.Stage,
	responder transportcore.ErrorResponder,
	logger logrus.FieldLogger,
) *pipeline {
	ordered := make([]transportcore.Stage, 0, len(stages))
	for _, st := range stages {
		if st == nil {
			panic("stage cannot be nil")
		}
		ordered = append(ordered, st)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Phase() < ordered[j].Phase()
	})

	return &pipeline{
		stages:    ordered,
		handler:   handler,
		responder: responder,
		logger:    logger,
	}
}

// ServeHTTP creates the RequestContext, runs the pipeline and translates a
// failure exactly once.
func (p *pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tw := transportcore.WrapResponseWriter(w)

	rc := transportcore.NewRequestContext(transportcore.RequestIDFromContext(r.Context()))
	r = r.WithContext(transportcore.ContextWithRequestContext(r.Context(), rc))

	err := p.run(tw, r, rc)
	if err == nil {
		return
	}

	if ctxErr := r.Context().Err(); ctxErr != nil {
		p.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": rc.RequestID(),
		}).WithError(err).Debug("Request aborted by client")
		return
	}

	p.responder.Respond(tw, r, err)
}

// run executes stages then the handler. A panic in either becomes an error
// so it is translated like any other unclassified fault.
func (p *pipeline) run(w http.ResponseWriter, r *http.Request, rc *transportcore.RequestContext) (err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		if recovered == http.ErrAbortHandler {
			panic(recovered)
		}
		p.logger.WithFields(logrus.Fields{
			"panic":      recovered,
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": rc.RequestID(),
			"stack":      string(debug.Stack()),
		}).Error("panic recovered")
		err = fmt.Errorf("panic: %v", recovered)
	}()

	for _, st := range p.stages {
		if err := r.Context().Err(); err != nil {
			return fmt.Errorf("%w before %s stage: %w", transportcore.ErrRequestAborted, st.Phase(), err)
		}
		if err := st.Process(r, rc); err != nil {
			return err
		}
	}

	if err := r.Context().Err(); err != nil {
		return fmt.Errorf("%w before handler: %w", transportcore.ErrRequestAborted, err)
	}
	return p.handler(w, r, rc)
}
