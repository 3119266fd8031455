// Package config loads request files: named request descriptors with shared
// variables, written in YAML or JSON.
//
//	variables:
//	  host: api.example.com
//	requests:
//	  health:
//	    method: GET
//	    url: https://{{host}}/health
//	    headers: ["Accept: application/json"]
//	    timeout_ms: 2000
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/syncreq/internal/request"
)

// File is a parsed and schema-checked request file.
type File struct {
	Path      string
	Variables map[string]string

	dir      string
	requests map[string]map[string]interface{}
}

type document struct {
	Variables map[string]string                 `json:"variables"`
	Requests  map[string]map[string]interface{} `json:"requests"`
}

// Keys holding file system paths; relative values resolve against the
// file's directory.
var pathKeys = []string{request.KeyCA, request.KeyCert, request.KeyPFX, request.KeyKey}

// Keys whose string values take {{var}} substitution.
var templatedKeys = []string{
	request.KeyMethod, request.KeyURL, request.KeyBody, request.KeyPassphrase,
	request.KeyCA, request.KeyCert, request.KeyPFX, request.KeyKey,
}

var variablePattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// LoadFile reads and parses a request file.
func LoadFile(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("request file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading request file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes data as JSON when path ends in .json and as YAML otherwise,
// then validates it. Schema failures are returned as ValidationErrors.
func Parse(data []byte, path string) (*File, error) {
	doc, err := decode(data, path)
	if err != nil {
		return nil, err
	}
	if errs := validateDocument(doc); len(errs) > 0 {
		return nil, errs
	}

	// The normalized form already round-trips through JSON.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error parsing request file: %w", err)
	}
	var parsed document
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing request file: %w", err)
	}

	return &File{
		Path:      path,
		Variables: parsed.Variables,
		dir:       filepath.Dir(path),
		requests:  parsed.Requests,
	}, nil
}

// decode returns the file content as the values encoding/json would
// produce, so YAML and JSON files validate identically.
func decode(data []byte, path string) (interface{}, error) {
	var doc interface{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error parsing JSON request file: %w", err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing YAML request file: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error parsing YAML request file: %w", err)
	}
	doc = nil
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("error parsing YAML request file: %w", err)
	}
	return doc, nil
}

// Names returns the request names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.requests))
	for name := range f.requests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Request builds the descriptor for one named request. vars override the
// file's variables.
func (f *File) Request(name string, vars map[string]string) (*request.Descriptor, error) {
	entry, ok := f.requests[name]
	if !ok {
		return nil, fmt.Errorf("request not found: %s", name)
	}

	env := MergeEnvironments(f.Variables, vars)
	m, err := f.render(name, entry, env)
	if err != nil {
		return nil, err
	}

	d, err := request.FromMap(m)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", name, err)
	}
	return d, nil
}

// Requests builds every named request.
func (f *File) Requests(vars map[string]string) (map[string]*request.Descriptor, error) {
	out := make(map[string]*request.Descriptor, len(f.requests))
	for _, name := range f.Names() {
		d, err := f.Request(name, vars)
		if err != nil {
			return nil, err
		}
		out[name] = d
	}
	return out, nil
}

// render copies entry with variables substituted and paths resolved.
func (f *File) render(name string, entry map[string]interface{}, env map[string]string) (map[string]interface{}, error) {
	m := make(map[string]interface{}, len(entry)+1)
	for k, v := range entry {
		m[k] = v
	}

	var errs ValidationErrors
	expand := func(field, s string) string {
		for _, missing := range undefinedVariables(s, env) {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("requests.%s.%s", name, field),
				Message: fmt.Sprintf("undefined variable: %s", missing),
			})
		}
		return ProcessEnvironment(s, env)
	}

	for _, key := range templatedKeys {
		if s, ok := m[key].(string); ok {
			m[key] = expand(key, s)
		}
	}

	headers, _ := m[request.KeyHeaders].([]interface{})
	lines := make([]interface{}, 0, len(headers))
	for i, h := range headers {
		s, _ := h.(string)
		lines = append(lines, expand(fmt.Sprintf("headers.%d", i), s))
	}
	m[request.KeyHeaders] = lines

	for _, key := range pathKeys {
		if p, ok := m[key].(string); ok && p != "" && !filepath.IsAbs(p) {
			m[key] = filepath.Join(f.dir, p)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return m, nil
}

func undefinedVariables(s string, env map[string]string) []string {
	var missing []string
	for _, match := range variablePattern.FindAllStringSubmatch(s, -1) {
		if _, ok := env[match[1]]; !ok {
			missing = append(missing, match[1])
		}
	}
	return missing
}

// ProcessEnvironment replaces {{name}} placeholders with values from env.
// Unknown names are left in place.
func ProcessEnvironment(input string, env map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(placeholder string) string {
		name := variablePattern.FindStringSubmatch(placeholder)[1]
		if value, ok := env[name]; ok {
			return value
		}
		return placeholder
	})
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}
