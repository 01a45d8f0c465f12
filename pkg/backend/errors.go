package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrAuthExpired is returned for 401/403: the stored credential is no
	// longer accepted and the visitor should be treated as logged out.
	ErrAuthExpired = errors.New("backend: credential rejected")
	// ErrNotFound is returned for 404.
	ErrNotFound = errors.New("backend: not found")
	// ErrValidation matches any *ValidationError.
	ErrValidation = errors.New("backend: validation rejected")
	// ErrMutationFailed covers 5xx, transport failures and field-less 4xx on
	// writes. A lost claim race lands here too.
	ErrMutationFailed = errors.New("backend: mutation failed")
	// ErrReadFailed covers 5xx, transport failures and field-less 4xx on reads.
	ErrReadFailed = errors.New("backend: read failed")
	// ErrMalformedResponse is returned when a 2xx body does not decode.
	ErrMalformedResponse = errors.New("backend: malformed response")
)

// Error describes a failed backend call. It unwraps to one of the sentinel
// errors above and, when present, the underlying transport or decode error.
type Error struct {
	Method string
	Path   string
	Status int // 0 when no response was received
	Err    error
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Method, e.Path)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	msg += ": " + e.Err.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// ValidationError carries the field-level messages of a rejected form.
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for f := range v.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field level validation error.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// StatusOf returns the HTTP status of a backend error, or 0.
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}

// FieldErrors returns the field messages of a validation failure, or nil.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.FieldErrors
	}
	return nil
}

// parseFieldErrors understands both {"field": "msg"} / {"field": ["msg", ...]}
// and the same shape nested under "errors". A body holding only "detail" has
// no field errors.
func parseFieldErrors(body []byte) map[string]string {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil
	}
	if nested, ok := top["errors"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil {
			top = inner
		}
	}

	out := make(map[string]string)
	for field, raw := range top {
		if field == "detail" {
			continue
		}
		var one string
		if err := json.Unmarshal(raw, &one); err == nil {
			out[field] = one
			continue
		}
		var many []string
		if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
			out[field] = strings.Join(many, "; ")
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// classify maps an HTTP outcome onto the error taxonomy.
func classify(method, path string, status int, body []byte, mutation bool) error {
	if status >= 200 && status < 300 {
		return nil
	}

	e := &Error{Method: method, Path: path, Status: status}
	switch {
	case status == 401 || status == 403:
		e.Err = ErrAuthExpired
	case status == 404:
		e.Err = ErrNotFound
	case status >= 400 && status < 500:
		if fields := parseFieldErrors(body); fields != nil {
			e.Err = &ValidationError{FieldErrors: fields}
		} else if mutation {
			e.Err = ErrMutationFailed
		} else {
			e.Err = ErrReadFailed
		}
	default:
		if mutation {
			e.Err = ErrMutationFailed
		} else {
			e.Err = ErrReadFailed
		}
	}
	return e
}

// NewError builds the error a call to method/path would produce for the given
// status and body. Non-GET methods are treated as mutations.
func NewError(method, path string, status int, body []byte) error {
	return classify(method, path, status, body, method != "GET")
}
