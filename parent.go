// SPDX-License-Identifier: MIT

package durafs

import (
	"os"

	"emperror.dev/errors"
)

// CheckParent verifies that the parent directory of path exists, is a
// directory, and is accessible. It is invoked before any destructive
// operation begins, so a missing or unusable parent is reported before a
// single byte has been written.
func CheckParent(path Path) error {
	dir := path.Dir().String()
	st, err := os.Stat(dir)
	switch {
	case err == nil:
		if !st.IsDir() {
			return newError(ErrCodeParentNotDirectory, "check-parent", dir, ErrNotDirectory)
		}
		return nil
	case errors.Is(err, ErrNotExist):
		return newError(ErrCodeParentMissing, "check-parent", dir, err)
	case errors.Is(err, ErrPermission):
		return newError(ErrCodeParentAccessDenied, "check-parent", dir, err)
	default:
		return newError(ErrCodeParentAccessDenied, "check-parent", dir, err)
	}
}

// mkdirAll creates the directory chain leading to path's parent. Used when
// CreateIntermediates is requested.
func mkdirAll(path Path, mode FileMode) error {
	if err := os.MkdirAll(path.Dir().String(), mode); err != nil {
		if errors.Is(err, ErrNotExist) {
			return newError(ErrCodeParentMissing, "mkdir-all", path.Dir().String(), err)
		}
		if errors.Is(err, ErrPermission) {
			return newError(ErrCodeParentAccessDenied, "mkdir-all", path.Dir().String(), err)
		}
		return newError(ErrCodeParentNotDirectory, "mkdir-all", path.Dir().String(), convertErrorType(err))
	}
	return nil
}
