package schema

import (
	"regexp"
	"strings"
)

var (
	indexPattern = regexp.MustCompile(`\[([^\]]*)\]`)

	// mapstructure reports "cannot parse 'page' as int: ..." for weak
	// conversions and "'page' expected type 'int', got ..." otherwise.
	// Structs and lists fed the wrong shape report "expected a map" and
	// "source data must be an array or slice".
	quotedNamePattern   = regexp.MustCompile(`'([^']*)'`)
	parseAsPattern      = regexp.MustCompile(`\bas (\w+)`)
	expectedTypePattern = regexp.MustCompile(`expected type '([^']+)'`)
)

// normalizePath renders a decoder path on the wire form: dot-joined names
// with indexes as their own segments.
func normalizePath(path string) string {
	path = indexPattern.ReplaceAllString(path, ".$1")
	return strings.Trim(path, ".")
}

// namespacePath converts a validator namespace ("Order.items[0].quantity")
// to a wire path by dropping the root type name.
func namespacePath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return ""
	}
	return normalizePath(rest)
}

// fieldLabel returns the last named segment of path.
func fieldLabel(path string) string {
	segments := strings.Split(path, ".")
	for i := len(segments) - 1; i >= 0; i-- {
		if !isIndex(segments[i]) {
			return segments[i]
		}
	}
	return path
}

func isIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseCoercionError extracts the field path and a description of the
// expected type from a mapstructure error message.
func parseCoercionError(msg string) (path, expected string) {
	if m := quotedNamePattern.FindStringSubmatch(msg); m != nil {
		path = normalizePath(m[1])
	}

	kind := ""
	if m := expectedTypePattern.FindStringSubmatch(msg); m != nil {
		kind = m[1]
	} else if m := parseAsPattern.FindStringSubmatch(msg); m != nil {
		kind = m[1]
	}

	switch {
	case strings.Contains(msg, "expected a map"):
		expected = "an object"
	case strings.Contains(msg, "must be an array or slice"):
		expected = "an array"
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"):
		expected = "an integer"
	case strings.HasPrefix(kind, "float"):
		expected = "a number"
	case kind == "bool":
		expected = "a boolean"
	case kind == "string":
		expected = "a string"
	case strings.HasPrefix(kind, "[]"):
		expected = "an array"
	case kind == "":
		expected = "a valid value"
	default:
		expected = "of type " + kind
	}
	return path, expected
}
