// SPDX-License-Identifier: MIT

package durafs

import (
	"fmt"
	iofs "io/fs"
	"syscall"

	"emperror.dev/errors"
)

var (
	// ErrIsDirectory is an error for when an operation that operates only on
	// files is given a path to a directory.
	ErrIsDirectory = errors.Sentinel("durafs: is a directory")
	// ErrNotDirectory is an error for when an operation that requires a
	// directory is given a path to a file.
	ErrNotDirectory = errors.Sentinel("durafs: not a directory")
	// ErrInvalidPath is an error for when a path value fails validation.
	ErrInvalidPath = errors.Sentinel("durafs: invalid path")

	// ErrClosed is an error for when a handle was used after being closed.
	ErrClosed = iofs.ErrClosed
	// ErrInvalid is an error for when an invalid argument was used.
	ErrInvalid = iofs.ErrInvalid
	// ErrExist is an error for when an entry already exists.
	ErrExist = iofs.ErrExist
	// ErrNotExist is an error for when an entry does not exist.
	ErrNotExist = iofs.ErrNotExist
	// ErrPermission is an error for when the required permissions to perform
	// an operation are missing.
	ErrPermission = iofs.ErrPermission
)

// ErrorCode identifies a failure mode of a write or copy operation. Codes
// form a closed set per operation so callers can exhaustively handle every
// failure without parsing error strings.
type ErrorCode string

const (
	// ErrCodeParentMissing indicates the destination's parent directory does
	// not exist and CreateIntermediates was not requested.
	ErrCodeParentMissing ErrorCode = "parent_missing"
	// ErrCodeParentNotDirectory indicates the destination's parent path
	// exists but is not a directory.
	ErrCodeParentNotDirectory ErrorCode = "parent_not_directory"
	// ErrCodeParentAccessDenied indicates the destination's parent directory
	// is not accessible.
	ErrCodeParentAccessDenied ErrorCode = "parent_access_denied"
	// ErrCodeDestinationExists indicates the destination already exists under
	// a NoClobber or no-overwrite policy. The destination is untouched.
	ErrCodeDestinationExists ErrorCode = "destination_exists"
	// ErrCodeSourceNotFound indicates the copy source does not exist.
	ErrCodeSourceNotFound ErrorCode = "source_not_found"
	// ErrCodeIsDirectory indicates a file-only operation was given a
	// directory.
	ErrCodeIsDirectory ErrorCode = "is_directory"
	// ErrCodePermissionDenied indicates the operating system refused access.
	ErrCodePermissionDenied ErrorCode = "permission_denied"
	// ErrCodeWriteFailed indicates a write syscall failed or underran. The
	// error carries the number of bytes written and expected.
	ErrCodeWriteFailed ErrorCode = "write_failed"
	// ErrCodeSyncFailed indicates a requested flush failed before commit.
	// The temp file was removed and the destination is untouched.
	ErrCodeSyncFailed ErrorCode = "sync_failed"
	// ErrCodeRenameFailed indicates the commit rename failed. The temp file
	// was removed and the destination is untouched.
	ErrCodeRenameFailed ErrorCode = "rename_failed"
	// ErrCodeCopyFailed indicates a data transfer failure during copy.
	ErrCodeCopyFailed ErrorCode = "copy_failed"
	// ErrCodeDirSyncFailedAfterCommit indicates the rename succeeded and the
	// new content is visible, but the containing directory could not be
	// flushed. The durability of the directory entry is uncertain; this is
	// deliberately distinct from both success and failure.
	ErrCodeDirSyncFailedAfterCommit ErrorCode = "directory_sync_failed_after_commit"
	// ErrCodeDurabilityNotGuaranteed indicates a flush was requested but the
	// calling context was cancelled before it could run. The data may be
	// visible; its durability is unknown.
	ErrCodeDurabilityNotGuaranteed ErrorCode = "durability_not_guaranteed"
	// ErrCodeRandomGenerationFailed indicates the cryptographically strong
	// random source could not produce bytes for a temp file name. The
	// operation is never downgraded to a weaker generator.
	ErrCodeRandomGenerationFailed ErrorCode = "random_generation_failed"
	// ErrCodePlatformIncompatible indicates a requested feature is not
	// supported on this operating system or kernel version.
	ErrCodePlatformIncompatible ErrorCode = "platform_incompatible"
	// ErrCodeUnknownError is the zero value catch-all for failures that do
	// not map to a more specific code.
	ErrCodeUnknownError ErrorCode = "unknown"
)

// Error is the structured error type returned by the write and copy engines.
// It carries enough context (paths, byte counts, OS error numbers) for a
// caller to decide on a retry, abort, or user-facing message without
// re-deriving anything from the formatted string.
type Error struct {
	code ErrorCode
	op   string
	path string

	// written and expected carry partial progress for write failures.
	written  int64
	expected int64

	// errno holds the raw OS error number when one was observed.
	errno syscall.Errno

	err error
}

// Code returns the error code describing the failure mode.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Path returns the filesystem path the failed operation targeted.
func (e *Error) Path() string {
	return e.path
}

// BytesWritten returns the number of bytes written before a write failure.
func (e *Error) BytesWritten() int64 {
	return e.written
}

// BytesExpected returns the number of bytes the failed write was expected
// to persist.
func (e *Error) BytesExpected() int64 {
	return e.expected
}

// Errno returns the raw OS error number, or zero when none was observed.
func (e *Error) Errno() syscall.Errno {
	return e.errno
}

// Unwrap returns the underlying cause of the error, if one exists.
func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Error() string {
	var msg string
	switch e.code {
	case ErrCodeParentMissing:
		msg = "parent directory does not exist"
	case ErrCodeParentNotDirectory:
		msg = "parent path is not a directory"
	case ErrCodeParentAccessDenied:
		msg = "parent directory is not accessible"
	case ErrCodeDestinationExists:
		msg = "destination already exists"
	case ErrCodeSourceNotFound:
		msg = "source does not exist"
	case ErrCodeIsDirectory:
		msg = "target is a directory"
	case ErrCodePermissionDenied:
		msg = "permission denied"
	case ErrCodeWriteFailed:
		msg = fmt.Sprintf("write failed after %d of %d bytes", e.written, e.expected)
	case ErrCodeSyncFailed:
		msg = "flush failed before commit"
	case ErrCodeRenameFailed:
		msg = "commit rename failed"
	case ErrCodeCopyFailed:
		msg = "copy failed"
	case ErrCodeDirSyncFailedAfterCommit:
		msg = "data committed but directory flush failed; directory entry durability is uncertain"
	case ErrCodeDurabilityNotGuaranteed:
		msg = "cancelled before requested flush; durability is unknown"
	case ErrCodeRandomGenerationFailed:
		msg = "random source failed to produce temp file name"
	case ErrCodePlatformIncompatible:
		msg = "requested feature is not supported on this platform"
	default:
		msg = "an unknown error was encountered"
	}
	if e.op != "" {
		msg = e.op + ": " + msg
	}
	if e.path != "" {
		msg = msg + " [" + e.path + "]"
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return "durafs: " + msg
}

// newError wraps a new Error of the given code with a stack trace attached
// at the point of creation, unless the underlying error already carries one.
func newError(code ErrorCode, op, path string, err error) error {
	return errors.WithStackIf(&Error{code: code, op: op, path: path, err: err, errno: errnoOf(err)})
}

func newWriteError(op, path string, written, expected int64, err error) error {
	return errors.WithStackIf(&Error{
		code:     ErrCodeWriteFailed,
		op:       op,
		path:     path,
		written:  written,
		expected: expected,
		errno:    errnoOf(err),
		err:      err,
	})
}

// errnoOf extracts the raw OS error number from an error chain.
func errnoOf(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return 0
}

// IsErrorCode checks if the given error is a durafs Error with the given
// code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.code == code
	}
	return false
}
