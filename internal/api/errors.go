package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind classifies every transport or server failure into the taxonomy
// the session and store layers consume.
type ErrorKind int

const (
	KindUnauthorized ErrorKind = iota
	KindForbidden
	KindNotFound
	KindRateLimited
	KindValidation
	KindServerError
	KindClientError
	KindNetworkError
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	default:
		return "network_error"
	}
}

// Error is the normalized request failure. Status is zero for transport
// failures that never produced a response.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Fields holds field-level validation messages when Kind is KindValidation.
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

// KindOf extracts the [ErrorKind] from err, defaulting to KindNetworkError
// for anything that is not an [*Error].
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetworkError
}

// IsKind reports whether err is an [*Error] of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// MessageOr returns the server-extracted message from err, or fallback when
// err carries none. Used by session and stores to build result objects.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// errorPayload mirrors the backend's error body shapes: a top-level "error",
// a DRF-style "detail", or a field → messages validation map.
type errorPayload struct {
	Error   string              `json:"error"`
	Detail  string              `json:"detail"`
	Details map[string][]string `json:"details"`
}

// newError builds a normalized [*Error] from a non-2xx response body.
func newError(status int, body []byte) *Error {
	e := &Error{Status: status}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status >= 500:
		e.Kind = KindServerError
	default:
		e.Kind = KindClientError
	}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}

	// Field-level validation maps arrive either under "details" or as the
	// top-level object itself.
	fields := payload.Details
	if fields == nil && payload.Error == "" && payload.Detail == "" {
		var raw map[string][]string
		if err := json.Unmarshal(body, &raw); err == nil && len(raw) > 0 {
			fields = raw
		}
	}

	switch {
	case payload.Error != "":
		e.Message = payload.Error
	case payload.Detail != "":
		e.Message = payload.Detail
	case len(fields) > 0:
		e.Message = joinFieldErrors(fields)
	}

	if len(fields) > 0 && e.Kind == KindClientError {
		e.Kind = KindValidation
		e.Fields = fields
	}

	return e
}

// joinFieldErrors flattens a validation map into one human-readable string,
// in stable field order.
func joinFieldErrors(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		if len(fields[name]) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(fields[name], ", ")))
	}
	return strings.Join(parts, "; ")
}

// networkError wraps a transport failure (dial, TLS, timeout, canceled
// context) into the taxonomy.
func networkError(err error) *Error {
	return &Error{Kind: KindNetworkError, Message: err.Error()}
}
