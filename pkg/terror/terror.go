// Package terror defines the unified error taxonomy used across the
// synchronization core. Every component that can fail returns a *terror.Error
// (or wraps one), so callers can branch on Kind without caring which package
// produced the failure.
package terror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by the recovery policy the core applies to it.
type Kind int

const (
	// KindGeneric is the catch-all for foreign errors with no typed mapping.
	KindGeneric Kind = iota
	KindShutdown
	KindBadValue
	KindMissingField
	KindMissingData
	KindNotFound
	KindCryptoFailure
	KindAPIFailure
	KindTryAgain
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindShutdown:
		return "shutdown"
	case KindBadValue:
		return "bad_value"
	case KindMissingField:
		return "missing_field"
	case KindMissingData:
		return "missing_data"
	case KindNotFound:
		return "not_found"
	case KindCryptoFailure:
		return "crypto_failure"
	case KindAPIFailure:
		return "api_failure"
	case KindTryAgain:
		return "try_again"
	case KindNotImplemented:
		return "not_implemented"
	default:
		return "generic"
	}
}

// Error is the single error type produced by every package in this module.
type Error struct {
	Kind   Kind
	Msg    string
	Status int   // only meaningful for KindAPIFailure
	Cause  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func new_(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Shutdown reports a failure caused by the engine tearing down. Nothing in
// this module returns it; a crypto future canceled by pool shutdown
// resolves with Generic("oneshot canceled") instead.
func Shutdown() *Error { return new_(KindShutdown, "shutting down") }

// Generic wraps any error this package doesn't have a typed mapping for.
func Generic(msg string) *Error { return new_(KindGeneric, msg) }

// BadValue reports a caller-supplied value that fails validation or a
// permission check.
func BadValue(msg string) *Error { return new_(KindBadValue, msg) }

// MissingField reports an expected field absent from a model or payload.
func MissingField(name string) *Error { return new_(KindMissingField, name) }

// MissingData reports state that should exist in memory (profile, keychain)
// but doesn't.
func MissingData(name string) *Error { return new_(KindMissingData, name) }

// NotFound reports a lookup by id that found nothing.
func NotFound(msg string) *Error { return new_(KindNotFound, msg) }

// TryAgain marks a transient failure the caller may retry after backoff.
func TryAgain() *Error { return new_(KindTryAgain, "try again") }

// NotImplemented marks an unimplemented dispatch path. Never swallowed.
func NotImplemented(msg string) *Error { return new_(KindNotImplemented, msg) }

// CryptoFailure wraps an error raised by the crypto codec.
func CryptoFailure(cause error) *Error {
	return &Error{Kind: KindCryptoFailure, Msg: "crypto error", Cause: cause}
}

// APIFailure wraps a non-2xx HTTP response from the remote API.
func APIFailure(status int) *Error {
	return &Error{
		Kind:   KindAPIFailure,
		Msg:    fmt.Sprintf("api error: %s", http.StatusText(status)),
		Status: status,
	}
}

// Wrap converts a foreign error into a *Error, collapsing to KindGeneric
// unless err already is (or wraps) a *Error, in which case it's returned
// unchanged.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return &Error{Kind: KindGeneric, Msg: err.Error(), Cause: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	return te.Kind == kind
}
