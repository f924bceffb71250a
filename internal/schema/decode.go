package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"

	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
)

// decodeJSON parses body into a generic document and maps it onto target.
// Type mismatches become violations so constraint checks can still run on the
// remaining fields. Syntax errors and a top level that is not an object are
// reported as ErrMalformedInput.
func decodeJSON(body []byte, target any) ([]internalerrors.Violation, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON document", ErrMalformedInput)
	}

	object, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be an object, got %s", ErrMalformedInput, jsonKind(doc))
	}

	return mapDecode(object, target, false, mapstructure.ComposeDecodeHookFunc(
		jsonNumberHook,
		mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	))
}

// decodeValues coerces string-valued input into target. A key with one value
// decodes as a scalar and a repeated key as a list.
func decodeValues(values map[string][]string, target any) ([]internalerrors.Violation, error) {
	input := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			input[key] = vals[0]
		default:
			input[key] = vals
		}
	}

	return mapDecode(input, target, true, mapstructure.StringToTimeDurationHookFunc())
}

// mapDecode copies input onto target, collecting one violation per field
// that could not be converted.
func mapDecode(input map[string]any, target any, weak bool, hook mapstructure.DecodeHookFunc) ([]internalerrors.Violation, error) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       hook,
		WeaklyTypedInput: weak,
		TagName:          "json",
		Result:           target,
	})
	if err != nil {
		return nil, fmt.Errorf("schema: invalid definition for %T: %w", target, err)
	}

	if err := decoder.Decode(input); err != nil {
		var decodeErr *mapstructure.Error
		if !errors.As(err, &decodeErr) {
			return nil, err
		}
		return coercionViolations(decodeErr.Errors), nil
	}
	return nil, nil
}

// jsonNumberHook converts json.Number to the numeric kind of the destination.
// A number bound for a string field is a type mismatch.
func jsonNumberHook(_, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	for to.Kind() == reflect.Pointer {
		to = to.Elem()
	}

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(n.String(), 10, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("expected type '%s', got number %s", to.Kind(), n)
		}
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(n.String(), 10, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("expected type '%s', got number %s", to.Kind(), n)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(n.String(), to.Bits())
		if err != nil {
			return nil, fmt.Errorf("expected type '%s', got number %s", to.Kind(), n)
		}
		return v, nil
	case reflect.Interface:
		return n.Float64()
	case reflect.String:
		return nil, fmt.Errorf("expected type 'string', got number %s", n)
	default:
		// Later hooks and the shape checks expect a plain string.
		return n.String(), nil
	}
}

// jsonKind names the JSON type of a generically decoded value.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// coercionViolations converts mapstructure's per-field messages.
func coercionViolations(messages []string) []internalerrors.Violation {
	violations := make([]internalerrors.Violation, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		path, expected := parseCoercionError(msg)
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		violations = append(violations, internalerrors.Violation{
			Path:    path,
			Message: typeMessage(path, expected),
		})
	}
	return violations
}

func typeMessage(path, expected string) string {
	return fieldLabel(path) + " must be " + expected
}
