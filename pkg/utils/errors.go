// Package utils provides shared error-handling and environment helpers
// used across the replay engine.
package utils

import (
	"errors"
	"fmt"
)

// Wrap adds context to an error message. It returns nil if err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Kind is the error taxonomy of §7: every error that crosses a component
// boundary in the replay engine carries one of these, so callers can
// dispatch on Kind instead of matching error strings.
type Kind uint8

const (
	// KindNotFound: chain data absent at the requested version. Returned
	// as an absence (nil, nil) by transports; only promoted to an error
	// at a required-object boundary.
	KindNotFound Kind = iota
	// KindTransient: rate limit or transport unavailability. Retried
	// with bounded backoff before being surfaced.
	KindTransient
	// KindMalformed: deserialization failure of bytecode or BCS.
	KindMalformed
	// KindHydrationGap: a required input or child was unavailable after
	// every prefetch/hydration strategy was exhausted.
	KindHydrationGap
	// KindRuntimeError: a native-level abort (FIELD_ALREADY_EXISTS, ...).
	KindRuntimeError
	// KindVersionCheck: an object's embedded version constant disagreed
	// with the bytecode's expected constant.
	KindVersionCheck
	// KindComparisonMismatch: replayed effects diverged from on-chain
	// effects. Non-fatal.
	KindComparisonMismatch
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindMalformed:
		return "malformed"
	case KindHydrationGap:
		return "hydration_gap"
	case KindRuntimeError:
		return "runtime_error"
	case KindVersionCheck:
		return "version_check"
	case KindComparisonMismatch:
		return "comparison_mismatch"
	default:
		return "unknown"
	}
}

// ReplayError is the typed error carried across component boundaries.
// Wrap it with fmt.Errorf("...: %w", err) the way Wrap does for plain
// errors; errors.As still finds the *ReplayError underneath.
type ReplayError struct {
	Kind    Kind
	Message string
	Cause   error
}

func NewReplayError(kind Kind, message string, cause error) *ReplayError {
	return &ReplayError{Kind: kind, Message: message, Cause: cause}
}

func (e *ReplayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ReplayError) Unwrap() error { return e.Cause }

// KindOf extracts the Kind of err if it is (or wraps) a *ReplayError,
// returning ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}
