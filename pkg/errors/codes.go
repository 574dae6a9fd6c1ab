// Package errors provides centralized error code definitions used by the
// collaborators around the release buffer core.
package errors

import "net/http"

// ErrorCode represents a typed error code used throughout the sources and
// demo harness built around pkg/relabuf.
type ErrorCode int

// ─────────────────────────────────────────────────────────────────────────────
// General / cross-cutting error codes  (1xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeOK indicates no error.
	CodeOK ErrorCode = 0

	// CodeUnknown is a catch-all for errors that have not been categorised.
	CodeUnknown ErrorCode = 10000

	// CodeInvalidParam is returned when one or more parameters fail
	// validation (missing required fields, out-of-range values, etc.).
	CodeInvalidParam ErrorCode = 10001

	// CodeUnauthorized is returned when an operation lacks valid credentials.
	CodeUnauthorized ErrorCode = 10002

	// CodeForbidden is returned when credentials do not grant access to the
	// requested resource or action.
	CodeForbidden ErrorCode = 10003

	// CodeNotFound is returned when the requested resource does not exist.
	CodeNotFound ErrorCode = 10004

	// CodeConflict is returned when an operation violates a uniqueness or
	// state constraint.
	CodeConflict ErrorCode = 10005

	// CodeRateLimit is returned when a caller has exceeded an allowed rate.
	CodeRateLimit ErrorCode = 10006

	// CodeInternal is returned for unexpected failures not attributable to
	// the caller.
	CodeInternal ErrorCode = 10007

	// CodeNotImplemented is returned when a requested feature is not yet
	// implemented.
	CodeNotImplemented ErrorCode = 10008
)

// ─────────────────────────────────────────────────────────────────────────────
// Release-buffer collaborator error codes  (2xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeConfigInvalid is returned when a collaborator configuration fails
	// validation (e.g. a negative synthetic setting). relabuf.Config
	// validation returns relabuf.ErrInvalidConfig instead.
	CodeConfigInvalid ErrorCode = 20001

	// CodeBufferTerminal is returned when an operation is attempted against
	// a buffer that has already surfaced its terminal error and finished
	// draining.
	CodeBufferTerminal ErrorCode = 20002

	// CodeSourceUnavailable is returned when a pull source's backing
	// collaborator (Kafka broker, Redis server, Postgres pool) cannot be
	// reached.
	CodeSourceUnavailable ErrorCode = 20003

	// CodeSourceExhausted is returned when a pull source has permanently
	// run out of items to deliver (e.g. the configured topic/table was
	// deleted, or a synthetic source reached its emission limit).
	CodeSourceExhausted ErrorCode = 20004

	// CodeOutboxConflict is returned when the transactional-outbox source
	// loses a row to a concurrent claimant unexpectedly (outside the normal
	// SELECT ... FOR UPDATE SKIP LOCKED race, which is not itself an error).
	CodeOutboxConflict ErrorCode = 20005
)

// ─────────────────────────────────────────────────────────────────────────────
// String — human-readable name of the error code
// ─────────────────────────────────────────────────────────────────────────────

// String returns the human-readable name associated with an ErrorCode.
// It is safe to call on any value, including unknown codes.
func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeUnknown:
		return "UNKNOWN"
	case CodeInvalidParam:
		return "INVALID_PARAM"
	case CodeUnauthorized:
		return "UNAUTHORIZED"
	case CodeForbidden:
		return "FORBIDDEN"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeConflict:
		return "CONFLICT"
	case CodeRateLimit:
		return "RATE_LIMIT"
	case CodeInternal:
		return "INTERNAL_ERROR"
	case CodeNotImplemented:
		return "NOT_IMPLEMENTED"

	case CodeConfigInvalid:
		return "CONFIG_INVALID"
	case CodeBufferTerminal:
		return "BUFFER_TERMINAL"
	case CodeSourceUnavailable:
		return "SOURCE_UNAVAILABLE"
	case CodeSourceExhausted:
		return "SOURCE_EXHAUSTED"
	case CodeOutboxConflict:
		return "OUTBOX_CONFLICT"

	default:
		return "UNKNOWN_CODE"
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTPStatus — mapping from error codes to HTTP status codes
// ─────────────────────────────────────────────────────────────────────────────

// HTTPStatus returns the most appropriate HTTP status code for the given
// ErrorCode.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK

	case CodeInvalidParam, CodeConfigInvalid:
		return http.StatusBadRequest

	case CodeUnauthorized:
		return http.StatusUnauthorized

	case CodeForbidden:
		return http.StatusForbidden

	case CodeNotFound:
		return http.StatusNotFound

	case CodeConflict, CodeOutboxConflict:
		return http.StatusConflict

	case CodeRateLimit:
		return http.StatusTooManyRequests

	case CodeSourceUnavailable:
		return http.StatusServiceUnavailable

	case CodeBufferTerminal, CodeSourceExhausted:
		return http.StatusGone

	case CodeNotImplemented:
		return http.StatusNotImplemented

	default:
		// CodeUnknown, CodeInternal, and all unrecognised codes.
		return http.StatusInternalServerError
	}
}
