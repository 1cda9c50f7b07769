package apiclient

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures produced by the client.
type ErrorType string

const (
	// ErrorTypeConnectivity covers transport failures and retry budget
	// exhaustion: the API never produced a usable response.
	ErrorTypeConnectivity ErrorType = "connectivity"
	// ErrorTypeTimeout covers deadline expiry, on a single attempt or on
	// the caller's context.
	ErrorTypeTimeout ErrorType = "timeout"
)

// ClientError is implemented by every typed error returned from Client calls.
type ClientError interface {
	error
	Type() ErrorType
}

// requestError is the concrete ClientError carrying request diagnostics.
type requestError struct {
	errType    ErrorType
	message    string
	method     string
	url        string
	attempts   int
	lastStatus int
	cause      error
}

// NewConnectivityError builds a connectivity-typed ClientError wrapping the
// transport cause.
func NewConnectivityError(message, method, url string, attempts int, cause error) ClientError {
	return &requestError{
		errType:  ErrorTypeConnectivity,
		message:  message,
		method:   method,
		url:      url,
		attempts: attempts,
		cause:    cause,
	}
}

// NewTimeoutError builds a timeout-typed ClientError wrapping the deadline
// cause.
func NewTimeoutError(message, method, url string, attempts int, cause error) ClientError {
	return &requestError{
		errType:  ErrorTypeTimeout,
		message:  message,
		method:   method,
		url:      url,
		attempts: attempts,
		cause:    cause,
	}
}

// NewRetryBudgetError marks a request that kept hitting transient statuses
// until the retry budget ran out.
func NewRetryBudgetError(method, url string, attempts, lastStatus int) ClientError {
	return &requestError{
		errType:    ErrorTypeConnectivity,
		message:    fmt.Sprintf("retry budget exhausted, last status %d", lastStatus),
		method:     method,
		url:        url,
		attempts:   attempts,
		lastStatus: lastStatus,
	}
}

func (e *requestError) Error() string {
	msg := fmt.Sprintf("%s error: %s %s: %s (attempts: %d)", e.errType, e.method, e.url, e.message, e.attempts)
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *requestError) Type() ErrorType { return e.errType }

func (e *requestError) Unwrap() error { return e.cause }

// Attempts reports how many attempts were made before giving up.
func (e *requestError) Attempts() int { return e.attempts }

// StatusCode reports the last transient status observed, 0 for transport
// level failures.
func (e *requestError) StatusCode() int { return e.lastStatus }

// IsErrorType reports whether err, or anything it wraps, is a ClientError
// of the given type.
func IsErrorType(err error, t ErrorType) bool {
	var ce ClientError
	if errors.As(err, &ce) {
		return ce.Type() == t
	}
	return false
}

// IsConnectivity reports whether err is attributable to reaching the API at
// all rather than to what it returned.
func IsConnectivity(err error) bool {
	return IsErrorType(err, ErrorTypeConnectivity) || IsErrorType(err, ErrorTypeTimeout)
}

// IsSuccessStatus reports whether an HTTP status code is in the 2xx range.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}
