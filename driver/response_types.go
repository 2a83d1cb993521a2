// ABOUTME: Response envelope types for the SurfSense backend API
// ABOUTME: Extracts human-readable messages from FastAPI error bodies

package driver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorEnvelope is the standard error body shape: {"detail": ...} where
// detail may be a plain string, a validation issue array, or an object.
type ErrorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

// validationIssue mirrors the entries FastAPI emits for 422 responses.
type validationIssue struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// DetailMessage extracts a display message from an error response body.
// Returns "" when the body carries no usable detail, letting the caller
// fall back to a status-derived message.
func DetailMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var envelope ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var issues []validationIssue
	if err := json.Unmarshal(envelope.Detail, &issues); err == nil && len(issues) > 0 {
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg == "" {
				continue
			}
			if field := issueField(issue.Loc); field != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", field, issue.Msg))
			} else {
				parts = append(parts, issue.Msg)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	var object map[string]interface{}
	if err := json.Unmarshal(envelope.Detail, &object); err == nil {
		for _, key := range []string{"msg", "message", "reason"} {
			if value, ok := object[key].(string); ok && value != "" {
				return value
			}
		}
	}

	return ""
}

// issueField returns the last string segment of a validation location path,
// skipping positional indices and the leading "body"/"query" marker.
func issueField(loc []interface{}) string {
	for i := len(loc) - 1; i >= 0; i-- {
		segment, ok := loc[i].(string)
		if !ok {
			continue
		}
		if segment == "body" || segment == "query" || segment == "path" {
			continue
		}
		return segment
	}
	return ""
}
