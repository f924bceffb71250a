package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
	"github.com/jamesprial/storefront-api/internal/schema"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// Messages used for validation failures.
const (
	MessageValidationFailed = "Request validation failed"
	MessageMalformedJSON    = "Malformed JSON body"
)

// validateStage implements the validation stage for one source.
type validateStage struct {
	source transportcore.Source
	schema schema.Schema
}

// NewValidateStage creates the stage that parses source against s and stores
// the typed result in the RequestContext. It panics on an unknown source or
// nil schema, since both are wiring mistakes.
func NewValidateStage(source transportcore.Source, s schema.Schema) transportcore.Stage {
	if !source.Valid() {
		panic(fmt.Sprintf("unknown validation source %q", source))
	}
	if s == nil {
		panic("schema cannot be nil")
	}
	return &validateStage{source: source, schema: s}
}

// Phase returns PhaseValidate.
func (s *validateStage) Phase() transportcore.Phase {
	return transportcore.PhaseValidate
}

// Process parses the source. Nothing is attached unless the whole source
// validates. Errors that are not schema violations are returned unchanged.
func (s *validateStage) Process(r *http.Request, rc *transportcore.RequestContext) error {
	value, err := s.decode(r)
	if err != nil {
		return translateSchemaError(err)
	}

	if err := rc.SetValidated(s.source, value); err != nil {
		return internalerrors.Internal("", err)
	}
	return nil
}

func (s *validateStage) decode(r *http.Request) (any, error) {
	switch s.source {
	case transportcore.SourceBody:
		raw, err := readBody(r)
		if err != nil {
			return nil, err
		}
		return s.schema.DecodeJSON(raw)
	case transportcore.SourceParams:
		vars := mux.Vars(r)
		values := make(map[string][]string, len(vars))
		for k, v := range vars {
			values[k] = []string{v}
		}
		return s.schema.DecodeValues(values)
	case transportcore.SourceQuery:
		return s.schema.DecodeValues(r.URL.Query())
	default:
		return nil, fmt.Errorf("%w: %q", transportcore.ErrUnknownSource, s.source)
	}
}

// readBody reads the (size-capped) body and puts it back so later readers
// still see it.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return raw, nil
}

func translateSchemaError(err error) error {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		return internalerrors.Validation(MessageValidationFailed, verr.Violations).WithCause(err)
	case errors.Is(err, schema.ErrMalformedInput):
		return internalerrors.Validation(MessageMalformedJSON, nil).WithCause(err)
	default:
		return err
	}
}
