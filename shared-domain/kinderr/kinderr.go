// Package kinderr models the error taxonomy shared by every service: a
// small, closed set of kinds rather than a type per failure, so callers
// switch on Kind() instead of type-asserting concrete error types.
package kinderr

import "fmt"

type Kind string

const (
	// BusinessError is a definite negative outcome from a legitimate
	// request (insufficient availability, payment declined, not found).
	// Surfaced to the caller; triggers compensation in the orchestrator.
	BusinessError Kind = "BUSINESS_ERROR"

	// ServiceUnavailable means an internal dependency (the durable
	// idempotency store) could not answer safely. The operation must not
	// proceed, and the caller should retry later with the same key.
	ServiceUnavailable Kind = "SERVICE_UNAVAILABLE"

	// UnclearRemoteOutcome is a remote call whose result is undetermined
	// (timeout, 503/504, connection reset). Never treated as success or
	// failure; propagates upward as PendingUnclear.
	UnclearRemoteOutcome Kind = "UNCLEAR_REMOTE_OUTCOME"

	// PendingUnclear is the orchestrator-level signal mapped to an
	// Accepted response. The booking stays at its last written saga_step.
	PendingUnclear Kind = "PENDING_UNCLEAR"

	// InternalError is an unexpected bug. Logged, surfaced generically.
	InternalError Kind = "INTERNAL_ERROR"
)

// Code is a stable machine-readable identifier nested under a Kind, e.g.
// INSUFFICIENT_AVAILABILITY under BusinessError.
type Code string

const (
	CodeInsufficientAvailability Code = "INSUFFICIENT_AVAILABILITY"
	CodeIdempotencyConflict      Code = "IDEMPOTENCY_CONFLICT"
	CodePaymentDeclined          Code = "PAYMENT_DECLINED"
	CodeResourceNotFound         Code = "RESOURCE_NOT_FOUND"
	CodeLockTimeout              Code = "LOCK_TIMEOUT"
	CodeInvalidRequest           Code = "INVALID_REQUEST"
)

// Error is the single error type every component returns; collaborators
// observe only its Kind and Code, never a concrete Go type.
type Error struct {
	kind    Kind
	code    Code
	message string
	cause   error
}

func New(kind Kind, code Code, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

func Wrap(kind Kind, code Code, message string, cause error) *Error {
	return &Error{kind: kind, code: code, message: message, cause: cause}
}

func (e *Error) Kind() Kind    { return e.kind }
func (e *Error) Code() Code    { return e.code }
func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.kind, e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.kind, e.code, e.message)
}

// Is reports whether err is a *Error of the given kind. Used by callers
// that only care about the classification, not the code.
func Is(err error, kind Kind) bool {
	var ke *Error
	if e, ok := err.(*Error); ok {
		ke = e
	} else {
		return false
	}
	return ke.kind == kind
}

func InsufficientAvailability() *Error {
	return New(BusinessError, CodeInsufficientAvailability, "insufficient availability for requested dates")
}

func IdempotencyConflict() *Error {
	return New(BusinessError, CodeIdempotencyConflict, "idempotency key reused with a different request payload")
}

func PaymentDeclined(message string) *Error {
	return New(BusinessError, CodePaymentDeclined, message)
}

func NotFound(message string) *Error {
	return New(BusinessError, CodeResourceNotFound, message)
}

func Unavailable(message string, cause error) *Error {
	return Wrap(ServiceUnavailable, "", message, cause)
}

func Unclear(message string, cause error) *Error {
	return Wrap(UnclearRemoteOutcome, "", message, cause)
}

func Internal(message string, cause error) *Error {
	return Wrap(InternalError, "", message, cause)
}
