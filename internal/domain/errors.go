package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart is returned when checkout is attempted against a cart with no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidInput marks a request the caller must correct before retrying.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError names one checkout form field that is missing or malformed.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors holds every violation found in one pass, in form field order.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes each violation so errors.As can reach a *ValidationError.
func (v ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(v))
	for _, e := range v {
		out = append(out, e)
	}
	return out
}

// Fields lists the offending field names in order.
func (v ValidationErrors) Fields() []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		out = append(out, e.Field)
	}
	return out
}

// SubmissionError reports a failed checkout submission.
// Status is zero and Err is set when the request never got an HTTP response.
type SubmissionError struct {
	Status int
	Body   any
	Raw    string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("checkout submission failed: %v", e.Err)
	}
	if e.Raw != "" {
		return fmt.Sprintf("checkout rejected: status %d: %s", e.Status, e.Raw)
	}
	return fmt.Sprintf("checkout rejected: status %d", e.Status)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Rejected reports whether the server answered with a structured rejection,
// as opposed to a transport failure.
func (e *SubmissionError) Rejected() bool {
	return e.Status != 0 && e.Body != nil
}
