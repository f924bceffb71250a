// Package schema decodes request input into typed Go values and validates it.
//
// A schema is a Go struct type: json tags name the fields as they appear on the
// wire and validate tags declare constraints. Every violation is collected,
// not just the first, and reported with a stable dot-joined path
// ("items.0.quantity") regardless of which engine produced it.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
)

// ErrMalformedInput indicates the raw input could not be parsed at all,
// e.g. a body that is not JSON.
var ErrMalformedInput = errors.New("malformed input")

// Schema decodes and validates one kind of request input.
// Implementations are immutable and safe for concurrent use.
type Schema interface {
	// DecodeJSON parses a JSON document. An empty document is treated as {}.
	DecodeJSON(body []byte) (any, error)

	// DecodeValues parses string-valued input such as path variables or a
	// query string, coercing values to the schema's field types.
	DecodeValues(values map[string][]string) (any, error)
}

// ValidationError lists every violation found in one input.
type ValidationError struct {
	Violations []internalerrors.Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("schema: %s: %s", v.Path, v.Message)
	}
	return fmt.Sprintf("schema: %d violations", len(e.Violations))
}

// engine bundles the shared validator and its English translator.
type engine struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	sharedEngine     *engine
	sharedEngineErr  error
	sharedEngineOnce sync.Once
)

// defaultEngine builds the process-wide validator on first use.
// validator.Validate caches struct metadata and is safe for concurrent use.
func defaultEngine() (*engine, error) {
	sharedEngineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)

		locale := en.New()
		trans, _ := ut.New(locale, locale).GetTranslator("en")
		if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
			sharedEngineErr = fmt.Errorf("failed to register translations: %w", err)
			return
		}
		sharedEngine = &engine{validate: v, trans: trans}
	})
	return sharedEngine, sharedEngineErr
}

// jsonFieldName reports fields by their wire name.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// typed is the Schema for struct type T.
type typed[T any] struct{}

// For returns the schema described by struct type T. Decoded values are of
// type T (not *T).
func For[T any]() Schema {
	return typed[T]{}
}

func (typed[T]) DecodeJSON(body []byte) (any, error) {
	var v T
	if err := requireStruct[T](); err != nil {
		return nil, err
	}
	decodeViolations, err := decodeJSON(body, &v)
	if err != nil {
		return nil, err
	}
	if err := check(&v, decodeViolations); err != nil {
		return nil, err
	}
	return v, nil
}

func (typed[T]) DecodeValues(values map[string][]string) (any, error) {
	var v T
	if err := requireStruct[T](); err != nil {
		return nil, err
	}
	decodeViolations, err := decodeValues(values, &v)
	if err != nil {
		return nil, err
	}
	if err := check(&v, decodeViolations); err != nil {
		return nil, err
	}
	return v, nil
}

func requireStruct[T any]() error {
	if t := reflect.TypeFor[T](); t.Kind() != reflect.Struct {
		return fmt.Errorf("schema: invalid definition for %s: not a struct", t)
	}
	return nil
}

// check runs constraint validation on target and merges the result with
// violations already found while decoding. Constraint violations on or below
// a path the decoder already reported are dropped.
func check(target any, decodeViolations []internalerrors.Violation) (err error) {
	eng, err := defaultEngine()
	if err != nil {
		return err
	}

	// The validator panics on malformed tags; surface that as an ordinary
	// error so it is reported as a server fault rather than a violation.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("schema: invalid definition for %T: %v", target, p)
		}
	}()

	violations := decodeViolations
	seen := make(map[string]struct{}, len(violations))
	for _, v := range violations {
		seen[v.Path] = struct{}{}
	}

	if verr := eng.validate.Struct(target); verr != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(verr, &fieldErrs) {
			return verr
		}
		for _, fe := range fieldErrs {
			path := namespacePath(fe.Namespace())
			if _, dup := seen[path]; dup || underAny(path, decodeViolations) {
				continue
			}
			seen[path] = struct{}{}
			violations = append(violations, internalerrors.Violation{
				Path:    path,
				Message: fe.Translate(eng.trans),
			})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// underAny reports whether path is nested inside one of the violations' paths.
func underAny(path string, violations []internalerrors.Violation) bool {
	for _, v := range violations {
		if strings.HasPrefix(path, v.Path+".") {
			return true
		}
	}
	return false
}
