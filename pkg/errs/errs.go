// Package errs defines the closed error taxonomy surfaced by the SDK. Every
// failure that crosses the SDK boundary is an *Error carrying one of the
// enumerated Kind values, so callers can handle each case exhaustively
// without matching on message strings. The original cause is always kept
// reachable through Unwrap for diagnostics.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one failure class in the closed taxonomy.
type Kind string

// Network failures.
const (
	NetworkError Kind = "NetworkError"
	RpcError     Kind = "RpcError"
	TimeoutError Kind = "TimeoutError"
)

// Transaction failures.
const (
	TransactionFailed   Kind = "TransactionFailed"
	TransactionReverted Kind = "TransactionReverted"
	InsufficientFunds   Kind = "InsufficientFunds"
	GasEstimationFailed Kind = "GasEstimationFailed"
)

// Contract failures.
const (
	ContractNotDeployed    Kind = "ContractNotDeployed"
	InvalidContractAddress Kind = "InvalidContractAddress"
)

// License failures.
const (
	InvalidTokenId         Kind = "InvalidTokenId"
	LicenseNotFound        Kind = "LicenseNotFound"
	LicenseExpired         Kind = "LicenseExpired"
	LicenseRevoked         Kind = "LicenseRevoked"
	InvalidLicenseMetadata Kind = "InvalidLicenseMetadata"
)

// Permission failures.
const (
	Unauthorized            Kind = "Unauthorized"
	InsufficientPermissions Kind = "InsufficientPermissions"
	RoleNotGranted          Kind = "RoleNotGranted"
)

// Validation failures.
const (
	InvalidAddress  Kind = "InvalidAddress"
	InvalidNetwork  Kind = "InvalidNetwork"
	InvalidConfig   Kind = "InvalidConfig"
	InvalidMetadata Kind = "InvalidMetadata"
	ValidationError Kind = "ValidationError"
)

// UnknownError is the catch-all for causes that match no known pattern.
const UnknownError Kind = "UnknownError"

// Group returns the taxonomy group a kind belongs to. It is intended for
// structured logging, not for control flow.
func (k Kind) Group() string {
	switch k {
	case NetworkError, RpcError, TimeoutError:
		return "network"
	case TransactionFailed, TransactionReverted, InsufficientFunds, GasEstimationFailed:
		return "transaction"
	case ContractNotDeployed, InvalidContractAddress:
		return "contract"
	case InvalidTokenId, LicenseNotFound, LicenseExpired, LicenseRevoked, InvalidLicenseMetadata:
		return "license"
	case Unauthorized, InsufficientPermissions, RoleNotGranted:
		return "permission"
	case InvalidAddress, InvalidNetwork, InvalidConfig, InvalidMetadata, ValidationError:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the only failure type returned across the SDK boundary.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the original cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an *Error with the given kind and message and no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns an *Error with a formatted message and no cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error with the given kind and message keeping cause
// reachable through Unwrap. A nil cause yields the same result as New.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the Kind carried by err, or UnknownError if err is not an
// *Error from this package (directly or through wrapping).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UnknownError
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Retryable reports whether err is a transient failure worth retrying.
// Only the network group (NetworkError, RpcError, TimeoutError) qualifies;
// everything else must surface to the caller on first occurrence.
func Retryable(err error) bool {
	switch KindOf(err) {
	case NetworkError, RpcError, TimeoutError:
		return true
	default:
		return false
	}
}
