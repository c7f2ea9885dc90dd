package shmap

import (
	"errors"
	"fmt"

	"github.com/yndnr/shmap-go/internal/namelock"
	"github.com/yndnr/shmap-go/internal/shm"
)

// Error is a store error with a stable code.
//
// Codes have the form SM-<AREA>-<NNNN>; the first digit of NNNN follows HTTP
// conventions (4 = caller or data problem, 5 = system failure). Two errors
// match under errors.Is when their codes are equal, so callers compare
// against the exported sentinels:
//
//	if errors.Is(err, shmap.ErrCrypto) { ... }
//
// The OS error, if any, stays reachable through errors.Unwrap.
type Error struct {
	Code    string // e.g. "SM-SEGM-5001"
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Details != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	case e.Cause != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates an Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// WithCause returns a copy of the error wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, Cause: cause}
}

// Wrap is shorthand for WithCause.
func (e *Error) Wrap(cause error) *Error {
	return e.WithCause(cause)
}

// IsShmapError reports whether err is an *Error, optionally with a given code.
func IsShmapError(err error, code string) bool {
	var se *Error
	if errors.As(err, &se) {
		return code == "" || se.Code == code
	}
	return false
}

// GetErrorCode returns the code of err, or "" if err is not an *Error.
func GetErrorCode(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// ============================================================================
// Segment Errors (SEGM)
// ============================================================================

var (
	// ErrNameInvalid indicates a segment name that the OS would reject.
	ErrNameInvalid = NewError("SM-SEGM-4000", "invalid segment name")

	// ErrSegmentNotFound indicates a missing segment. Public operations turn
	// it into an absent result and never return it.
	ErrSegmentNotFound = NewError("SM-SEGM-4040", "segment not found")

	// ErrSegmentOpen indicates the segment could not be opened or read.
	ErrSegmentOpen = NewError("SM-SEGM-5001", "segment open failed")

	// ErrSegmentTruncate indicates the segment could not be resized.
	ErrSegmentTruncate = NewError("SM-SEGM-5002", "segment truncate failed")

	// ErrSegmentUnlink indicates the segment could not be removed.
	ErrSegmentUnlink = NewError("SM-SEGM-5003", "segment unlink failed")

	// ErrSegmentMap indicates mmap, munmap or the copy through the mapping failed.
	ErrSegmentMap = NewError("SM-SEGM-5004", "segment mapping failed")
)

// ============================================================================
// Lock Errors (LOCK)
// ============================================================================

var (
	// ErrLock indicates the named lock could not be created or acquired.
	ErrLock = NewError("SM-LOCK-5000", "lock failed")
)

// ============================================================================
// Codec Errors (CODE)
// ============================================================================

var (
	// ErrCodecEncode indicates a value or metadata record could not be encoded.
	ErrCodecEncode = NewError("SM-CODE-4000", "encode failed")

	// ErrCodecDecode indicates stored bytes could not be decoded.
	ErrCodecDecode = NewError("SM-CODE-4220", "decode failed")
)

// ============================================================================
// Crypto / TTL / System Errors
// ============================================================================

var (
	// ErrCrypto indicates authenticated decryption failed or the store has no
	// key for an encrypted record.
	ErrCrypto = NewError("SM-CRYP-4010", "decryption failed")

	// ErrTTLOutOfRange indicates a TTL that cannot be turned into an
	// expiration instant.
	ErrTTLOutOfRange = NewError("SM-TTL-4000", "ttl out of range")

	// ErrIO indicates a filesystem failure outside the segment API.
	ErrIO = NewError("SM-SYS-5000", "i/o error")
)

// translateErr maps errors from the segment and lock layers onto the public
// taxonomy. Errors that already carry a code pass through unchanged.
func translateErr(err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(err, shm.ErrNameInvalid):
		return ErrNameInvalid.Wrap(err)
	case errors.Is(err, shm.ErrNotFound):
		return ErrSegmentNotFound.Wrap(err)
	case errors.Is(err, namelock.ErrLock):
		return ErrLock.Wrap(err)
	}

	var op *shm.OpError
	if errors.As(err, &op) {
		switch op.Op {
		case "open", "stat", "read":
			return ErrSegmentOpen.Wrap(err)
		case "truncate":
			return ErrSegmentTruncate.Wrap(err)
		case "unlink":
			return ErrSegmentUnlink.Wrap(err)
		case "map", "unmap", "write":
			return ErrSegmentMap.Wrap(err)
		}
	}
	return ErrIO.Wrap(err)
}
