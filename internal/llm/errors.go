// internal/llm/errors.go
// Package: llm
package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a completion call failed.
type Kind string

const (
	KindConnectivity      Kind = "connectivity"
	KindTimeout           Kind = "timeout"
	KindAuthentication    Kind = "authentication"
	KindRateLimit         Kind = "rate_limit"
	KindServer            Kind = "server"
	KindMalformedResponse Kind = "malformed_response"
	// KindUnknown marks an error that did not come from Client.
	KindUnknown Kind = "unknown"
)

var (
	ErrConnectivity      = errors.New("llm: connectivity failure")
	ErrTimeout           = errors.New("llm: request timed out")
	ErrAuthentication    = errors.New("llm: authentication rejected")
	ErrRateLimit         = errors.New("llm: rate limited")
	ErrServer            = errors.New("llm: endpoint returned an error status")
	ErrMalformedResponse = errors.New("llm: malformed response")
)

var sentinels = map[Kind]error{
	KindConnectivity:      ErrConnectivity,
	KindTimeout:           ErrTimeout,
	KindAuthentication:    ErrAuthentication,
	KindRateLimit:         ErrRateLimit,
	KindServer:            ErrServer,
	KindMalformedResponse: ErrMalformedResponse,
}

// Error is returned by Client.Complete for every failure. It keeps the HTTP
// status and a body excerpt so the caller can log the full diagnostic.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("llm %s", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status=%d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += " body=" + e.Body
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the failure kind of err: "" for nil, KindUnknown for an
// error that is not an *Error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

// kindForStatus maps a non-2xx HTTP status to a failure kind.
func kindForStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindServer
	}
}
