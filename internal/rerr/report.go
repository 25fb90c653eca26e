package rerr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Report is the canonical structured error type. All error builders
// return *Report wrapped as a ReportError, which survives errors.As
// unwrapping.
type Report struct {
	Schema  string         `json:"schema"` // Always "rbrinfo.error/v1"
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error
type ReportError struct {
	Rep *Report
}

// Error implements the error interface
func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// Newf builds a coded error
func Newf(code, format string, args ...any) error {
	return &ReportError{Rep: &Report{
		Schema:  "rbrinfo.error/v1",
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}}
}

// AsReport attempts to extract a Report from an error chain
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// IsFatal reports whether the error carries a fatal code. Errors
// without a structured report are treated as fatal.
func IsFatal(err error) bool {
	if rep, ok := AsReport(err); ok {
		return Fatal(rep.Code)
	}
	return err != nil
}

// ToJSON renders a report deterministically
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
