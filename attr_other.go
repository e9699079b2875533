// SPDX-License-Identifier: MIT

//go:build !unix

package durafs

import (
	"os"
	"time"

	"emperror.dev/errors"
)

// preserveAttributes copies the requested metadata from the file currently
// at dstPath onto the temp file. Without a unix syscall surface only
// permission bits and the modification time can be carried; requesting
// ownership, extended attribute, or ACL preservation fails with a platform
// incompatibility error instead of being silently skipped.
func preserveAttributes(tmp *Handle, tmpPath, dstPath string, opts AtomicOptions) error {
	if opts.PreserveOwnership || opts.PreserveExtendedAttributes || opts.PreserveACLs {
		return newError(ErrCodePlatformIncompatible, "preserve-attributes", dstPath, nil)
	}

	st, err := os.Stat(dstPath)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil
		}
		return newError(ErrCodeUnknownError, "preserve-attributes", dstPath, convertErrorType(err))
	}

	if opts.PreservePermissions {
		if err := os.Chmod(tmpPath, st.Mode().Perm()); err != nil {
			return newError(ErrCodeUnknownError, "preserve-permissions", tmpPath, convertErrorType(err))
		}
	}

	if opts.PreserveTimestamps {
		// Only the modification time is carried over; the zero atime leaves
		// the access time unchanged.
		if err := os.Chtimes(tmpPath, time.Time{}, st.ModTime()); err != nil {
			return newError(ErrCodeUnknownError, "preserve-timestamps", tmpPath, convertErrorType(err))
		}
	}

	return nil
}
