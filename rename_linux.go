// SPDX-License-Identifier: MIT

//go:build linux

package durafs

import (
	"golang.org/x/sys/unix"
)

// renameNoReplace renames oldpath to newpath, failing with EEXIST if
// newpath already exists. The existence check and the rename are a single
// renameat2(RENAME_NOREPLACE) syscall, so there is no window in which a
// concurrently created destination could be clobbered.
//
// renameat2 was added in kernel 3.15 and some filesystems still refuse the
// flag; both conditions fall back to the link+unlink protocol.
func renameNoReplace(oldpath, newpath string) error {
	err := ignoringEINTR(func() error {
		return unix.Renameat2(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, newpath, unix.RENAME_NOREPLACE)
	})
	if err == unix.ENOSYS || err == unix.EINVAL {
		return linkNoReplace(oldpath, newpath)
	}
	return err
}
