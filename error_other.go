// SPDX-License-Identifier: MIT

//go:build !unix

package durafs

import (
	iofs "io/fs"
	"os"

	"emperror.dev/errors"
)

// PathError records an error and the operation and file path that caused it.
type PathError = iofs.PathError

// SyscallError records an error from a specific system call.
type SyscallError = os.SyscallError

// convertErrorType converts raw syscall errors into our sentinel errors to
// ensure consistent error values across platforms. The os package already
// maps platform error numbers onto the io/fs sentinels on non-unix systems,
// so only the path error shape is normalized here.
func convertErrorType(err error) error {
	if err == nil {
		return nil
	}
	var pErr *PathError
	switch {
	case errors.As(err, &pErr):
		switch {
		case errors.Is(pErr.Err, ErrExist):
			return &PathError{Op: pErr.Op, Path: pErr.Path, Err: ErrExist}
		case errors.Is(pErr.Err, ErrNotExist):
			return &PathError{Op: pErr.Op, Path: pErr.Path, Err: ErrNotExist}
		case errors.Is(pErr.Err, ErrPermission):
			return &PathError{Op: pErr.Op, Path: pErr.Path, Err: ErrPermission}
		}
	}
	return err
}
