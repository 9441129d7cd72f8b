package boticord

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindTransport covers network/TLS/timeout failures and non-2xx responses.
	KindTransport ErrorKind = iota + 1
	// KindDecode means the response body did not match the expected schema.
	KindDecode
	// KindURL means the base URL, version or path could not be composed into a valid URL.
	KindURL
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client methods.
type Error struct {
	Kind ErrorKind
	// Op is the client method that failed, e.g. "GetBotInfo".
	Op  string
	URL string
	// Status is the HTTP status code, zero when no response was received.
	Status int
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("boticord")
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by the error, if any.
func (e *Error) StatusCode() (int, bool) {
	if e == nil || e.Status == 0 {
		return 0, false
	}
	return e.Status, true
}

// StatusCode extracts the HTTP status from any error chain containing an *Error.
func StatusCode(err error) (int, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.StatusCode()
}

// IsTransport reports whether err is a transport error.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// IsDecode reports whether err is a decode error.
func IsDecode(err error) bool { return isKind(err, KindDecode) }

// IsURL reports whether err is a URL composition error.
func IsURL(err error) bool { return isKind(err, KindURL) }

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func transportError(op, url string, status int, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, URL: url, Status: status, Err: err}
}

func decodeError(op, url string, status int, err error) *Error {
	return &Error{Kind: KindDecode, Op: op, URL: url, Status: status, Err: err}
}

func urlError(op, url string, err error) *Error {
	return &Error{Kind: KindURL, Op: op, URL: url, Err: err}
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
