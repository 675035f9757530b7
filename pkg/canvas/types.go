package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/younsl/gradesync/pkg/publishing"
)

// ErrUnauthorized is returned when Canvas rejects the API token
var ErrUnauthorized = errors.New("canvas rejected the API token")

// APIError is a non-2xx response from Canvas
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvas returned HTTP %d: %s", e.StatusCode, e.Body)
}

// PublishForm is the form payload sent with a publish request
type PublishForm struct {
	AuthenticityToken string `url:"authenticity_token,omitempty"`
	PublishGrades     bool   `url:"publish_grades,int"`
}

const (
	fieldOverallStatus = "sis_publish_overall_status"
	fieldStatuses      = "sis_publish_statuses"
)

// statusPayload is the JSON object returned by both the GET and the POST
// endpoint. Fields are kept raw so an odd value in one of them does not fail
// the whole response.
type statusPayload map[string]json.RawMessage

func (p statusPayload) toResponse() *publishing.Response {
	resp := &publishing.Response{}
	if raw, ok := p[fieldOverallStatus]; ok {
		resp.OverallStatus = rawString(raw)
		resp.HasStatus = true
	}
	if raw, ok := p[fieldStatuses]; ok {
		resp.Statuses = countStudents(raw)
	}
	return resp
}

// rawString returns the decoded value of a JSON string, or the raw JSON text
// for anything else so it never matches a known status.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// countStudents maps each message to the length of its student list. Entries
// that are not lists count as zero; a value that is not an object yields an
// empty report.
func countStudents(raw json.RawMessage) publishing.StatusReport {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return publishing.StatusReport{}
	}

	report := make(publishing.StatusReport, len(entries))
	for message, value := range entries {
		var students []json.RawMessage
		if err := json.Unmarshal(value, &students); err != nil {
			report[message] = 0
			continue
		}
		report[message] = len(students)
	}
	return report
}
