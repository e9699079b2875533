// SPDX-License-Identifier: MIT

//go:build darwin

package durafs

import (
	"os"

	"golang.org/x/sys/unix"
)

// copyContents transfers the contents of srcPath into a freshly created
// dstPath. Darwin's fast path is clonefile(2), a whole-file copy-on-write
// clone; it requires the destination to not exist, which prepareDestination
// has already arranged. A clone duplicates the inode's data extents, so it
// is metadata-preserving regardless of the attribute options.
func copyContents(srcPath, dstPath string, st FileInfo, perm FileMode) error {
	err := ignoringEINTR(func() error {
		return unix.Clonefile(srcPath, dstPath, 0)
	})
	switch err {
	case nil:
		return nil
	case unix.ENOTSUP, unix.EXDEV, unix.EINVAL:
		// Filesystem without clone support (anything but APFS) or a
		// cross-device pair; fall through to the generic loop.
	default:
		return err
	}

	sf, err := os.Open(srcPath)
	if err != nil {
		return convertErrorType(err)
	}
	defer sf.Close()

	df, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return convertErrorType(err)
	}
	defer df.Close()

	return bufferedCopy(df, sf)
}
