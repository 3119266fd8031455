// Package jsonpath extracts values from JSON documents using a subset of
// JSONPath: dotted members, quoted bracket members and array indexes.
package jsonpath

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrEmptyDocument = errors.New("empty JSON document")
	ErrInvalidJSON   = errors.New("invalid JSON document")
	ErrEmptyPath     = errors.New("empty JSONPath expression")
)

// NotFoundError reports a path that does not exist in the document.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

// Extract returns the value at path. Strings come back unquoted, objects and
// arrays as their raw JSON, null as "null".
func Extract(doc []byte, path string) (string, error) {
	if len(doc) == 0 {
		return "", ErrEmptyDocument
	}
	if path == "" {
		return "", ErrEmptyPath
	}
	if !gjson.ValidBytes(doc) {
		return "", ErrInvalidJSON
	}

	result := gjson.GetBytes(doc, toGJSON(path))
	if !result.Exists() {
		return "", &NotFoundError{Path: path}
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll extracts every named path. Values that were found are returned
// even when others fail; failures are joined into one error in name order.
func ExtractAll(doc []byte, paths map[string]string) (map[string]string, error) {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]string, len(paths))
	var failures []string
	for _, name := range names {
		value, err := Extract(doc, paths[name])
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		values[name] = value
	}

	if len(failures) > 0 {
		return values, fmt.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return values, nil
}

// toGJSON rewrites "$.a['b c'][0]" as "a.b c.0". gjson metacharacters in
// member names are escaped.
func toGJSON(path string) string {
	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}

	var segments []string
	for i := 0; i < len(path); {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				segments = append(segments, escape(path[i+1:]))
				i = len(path)
				continue
			}
			inner := strings.Trim(path[i+1:i+end], `'"`)
			segments = append(segments, escape(inner))
			i += end + 1
		default:
			end := strings.IndexAny(path[i:], ".[")
			if end < 0 {
				end = len(path) - i
			}
			segments = append(segments, escape(path[i:i+end]))
			i += end
		}
	}
	return strings.Join(segments, ".")
}

func escape(segment string) string {
	var sb strings.Builder
	for _, r := range segment {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
