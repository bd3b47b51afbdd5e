package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

var (
	ErrNotConfirmed    = &DomainError{Code: "NOT_CONFIRMED", Message: "delete was not confirmed"}
	ErrSessionNotFound = &DomainError{Code: "SESSION_NOT_FOUND", Message: "session not found or expired"}
	ErrLoadSuperseded  = &DomainError{Code: "LOAD_SUPERSEDED", Message: "a newer load replaced this one"}
	ErrLeadNotFound    = &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead not found"}
)

// FetchError is returned by collection loads. The store is left empty.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindConflict     ErrorKind = "conflict"
	KindServer       ErrorKind = "server"
	KindUnknown      ErrorKind = "unknown"
)

// APIError is a non-2xx answer from the backend during a mutation.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
	// Fields maps form fields to messages for conflicts that could be attributed.
	Fields map[string]string
	Err    error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// statusError is implemented by gateway errors that carry an HTTP answer.
type statusError interface {
	error
	HTTPStatus() int
	ErrorCode() string
	ErrorMessage() string
}

// ClassifyError turns any gateway error into an *APIError.
func ClassifyError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var se statusError
	if !errors.As(err, &se) {
		return &APIError{Kind: KindUnknown, Message: err.Error(), Err: err}
	}

	status := se.HTTPStatus()
	out := &APIError{
		Status:  status,
		Code:    se.ErrorCode(),
		Message: se.ErrorMessage(),
		Err:     err,
	}
	if out.Message == "" {
		out.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		out.Kind = KindUnauthorized
	case status == http.StatusConflict:
		out.Kind = KindConflict
	case status == http.StatusBadRequest && isDuplicate(out.Code, out.Message):
		out.Kind = KindConflict
	case status >= http.StatusInternalServerError:
		out.Kind = KindServer
		out.Message = fmt.Sprintf("Server error: %s. This is likely a backend issue.", out.Message)
	default:
		out.Kind = KindUnknown
	}
	return out
}

// IsUnauthorized reports a 401 anywhere in the chain.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindUnauthorized
	}
	var se statusError
	return errors.As(err, &se) && se.HTTPStatus() == http.StatusUnauthorized
}

func isDuplicate(code, message string) bool {
	if strings.HasSuffix(strings.ToUpper(code), "_EXISTS") {
		return true
	}
	msg := strings.ToLower(message)
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "already used") ||
		strings.Contains(msg, "duplicate")
}
