// ABOUTME: Fail-open response shape validation against the expected decode target
// ABOUTME: Structural drift is logged for observability and never fails a request

package security

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
)

// SchemaValidator compares response payloads against the declared shape of
// the decode target. Findings are advisory: the caller keeps the payload no
// matter what the validator reports.
type SchemaValidator struct {
	logger *slog.Logger
}

// NewSchemaValidator creates a schema validator.
func NewSchemaValidator(logger *slog.Logger) *SchemaValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaValidator{logger: logger}
}

// Check inspects a response body against the target's declared fields and
// returns the structural differences it found. It never returns an error
// and never panics on malformed input.
func (s *SchemaValidator) Check(data []byte, target interface{}, endpoint string) []string {
	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	diffs := s.structuralDiffs(data, reflect.TypeOf(target))
	if len(diffs) > 0 {
		s.logger.Warn("Response shape deviates from expected schema",
			"endpoint", endpoint,
			"diff_count", len(diffs),
			"diffs", strings.Join(diffs, "; "))
	}
	return diffs
}

func (s *SchemaValidator) structuralDiffs(data []byte, t reflect.Type) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return structDiffs(data, t)
	case reflect.Slice, reflect.Array:
		var elements []json.RawMessage
		if err := json.Unmarshal(data, &elements); err != nil {
			return []string{fmt.Sprintf("expected array, got %s", jsonKind(data))}
		}
		elem := t.Elem()
		for elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct || len(elements) == 0 {
			return nil
		}
		// Sampling the first element keeps the check cheap on large lists
		diffs := structDiffs(elements[0], elem)
		for i, diff := range diffs {
			diffs[i] = "element 0: " + diff
		}
		return diffs
	default:
		return nil
	}
}

// structDiffs reports payload keys the struct does not declare and declared
// non-omitempty keys the payload does not carry.
func structDiffs(data []byte, t reflect.Type) []string {
	// Unmarshaling null into a map succeeds quietly, so it needs its own check
	if string(bytes.TrimSpace(data)) == "null" {
		return []string{"expected object, got null"}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return []string{fmt.Sprintf("expected object, got %s", jsonKind(data))}
	}

	known := make(map[string]bool)
	required := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		known[name] = true
		if !strings.Contains(opts, "omitempty") {
			required[name] = true
		}
	}

	var diffs []string
	for key := range payload {
		if !known[key] {
			diffs = append(diffs, fmt.Sprintf("unexpected field %q", key))
		}
	}
	for name := range required {
		if _, ok := payload[name]; !ok {
			diffs = append(diffs, fmt.Sprintf("missing field %q", name))
		}
	}

	sort.Strings(diffs)
	return diffs
}

// jsonKind names the JSON value kind of a payload for diff messages.
func jsonKind(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "empty"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
