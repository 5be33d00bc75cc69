package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Kind is the failure category of a backend call.
type Kind string

const (
	// KindValidation is a local rejection; no request was issued.
	KindValidation Kind = "VALIDATION_FAILURE"
	// KindConflict is the backend refusing a duplicate (409).
	KindConflict Kind = "CONFLICT"
	// KindRouteNotFound is a 404, which for this desk means a misconfigured path.
	KindRouteNotFound Kind = "ROUTE_NOT_FOUND"
	// KindBadRequest is the backend rejecting the payload shape (400).
	KindBadRequest Kind = "BAD_REQUEST"
	// KindTimeout is the bounded wait running out.
	KindTimeout Kind = "TIMEOUT"
	// KindUnreachable means no connection could be made at all.
	KindUnreachable Kind = "UNREACHABLE"
	// KindConnection is any other transport failure before a response arrived.
	KindConnection Kind = "CONNECTION"
	// KindServer is a 5xx or any other unexpected status.
	KindServer Kind = "SERVER_ERROR"
	// KindMalformed is a 2xx whose body is not the expected shape.
	KindMalformed Kind = "MALFORMED_RESPONSE"
)

// Error is returned by every Client method that fails.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 when no response was received
	Message string // server-provided message, if any
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("backend: ")
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the category of err, or "" when err is not a backend error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// AsError unwraps err into a *Error.
func AsError(err error) (*Error, bool) {
	var be *Error
	ok := errors.As(err, &be)
	return be, ok
}

// classifyTransport turns a failure that produced no response into an Error.
func classifyTransport(err error) *Error {
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return &Error{Kind: KindTimeout, Err: err}
	case isDialFailure(err):
		return &Error{Kind: KindUnreachable, Err: err}
	default:
		return &Error{Kind: KindConnection, Err: err}
	}
}

func isDialFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// classifyStatus turns a non-2xx response into an Error.
func classifyStatus(status int, body []byte) *Error {
	e := &Error{Status: status, Message: serverMessage(body)}
	switch status {
	case http.StatusConflict:
		e.Kind = KindConflict
	case http.StatusNotFound:
		e.Kind = KindRouteNotFound
	case http.StatusBadRequest:
		e.Kind = KindBadRequest
	default:
		e.Kind = KindServer
	}
	return e
}

// serverMessage pulls a human message out of an error body. Backends answer
// with {"message": ...}; some frameworks use {"error": ...}.
func serverMessage(body []byte) string {
	var b struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &b); err != nil {
		return ""
	}
	if b.Message != "" {
		return strings.TrimSpace(b.Message)
	}
	return strings.TrimSpace(b.Error)
}
