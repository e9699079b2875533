// SPDX-License-Identifier: MIT

//go:build darwin

package durafs

import (
	"golang.org/x/sys/unix"
)

// renameNoReplace renames oldpath to newpath, failing with EEXIST if
// newpath already exists. Darwin exposes this as renameatx_np with
// RENAME_EXCL; filesystems that refuse the flag fall back to the
// link+unlink protocol.
func renameNoReplace(oldpath, newpath string) error {
	err := ignoringEINTR(func() error {
		return unix.RenameatxNp(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, newpath, unix.RENAME_EXCL)
	})
	if err == unix.ENOTSUP || err == unix.EINVAL {
		return linkNoReplace(oldpath, newpath)
	}
	return err
}
