package models

import (
	"encoding/json"
	"strings"
)

// StatusSuccess is the status value of a successful envelope.
const StatusSuccess = "success"

// Envelope represents the {status, data} wrapper some endpoints respond with.
type Envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ErrorResponse represents an error body. Detail is either a plain string
// or a list of field errors.
type ErrorResponse struct {
	Detail  json.RawMessage `json:"detail,omitempty"`
	Message string          `json:"message,omitempty"`
}

// FieldError is a single validation failure.
type FieldError struct {
	Loc  []any  `json:"loc,omitempty"`
	Msg  string `json:"msg"`
	Type string `json:"type,omitempty"`
}

// DetailResponse is an error body with a string detail.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// ValidationResponse is an error body listing field errors.
type ValidationResponse struct {
	Detail []FieldError `json:"detail"`
}

// ParseErrorResponse decodes an error body, returning a zero value when
// the body is not JSON.
func ParseErrorResponse(body []byte) ErrorResponse {
	var resp ErrorResponse
	_ = json.Unmarshal(body, &resp)
	return resp
}

// DetailString returns the detail when it is a plain string.
func (e ErrorResponse) DetailString() (string, bool) {
	var s string
	if err := json.Unmarshal(e.Detail, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// FieldErrors returns the detail when it is a list of field errors.
func (e ErrorResponse) FieldErrors() []FieldError {
	var fields []FieldError
	if err := json.Unmarshal(e.Detail, &fields); err != nil {
		return nil
	}
	return fields
}

// Summary returns the best human readable message in the body: the string
// detail, the joined field messages, or the message field.
func (e ErrorResponse) Summary() string {
	if s, ok := e.DetailString(); ok {
		return s
	}
	if fields := e.FieldErrors(); len(fields) > 0 {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, ", ")
	}
	return e.Message
}
