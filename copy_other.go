// SPDX-License-Identifier: MIT

//go:build !linux && !darwin

package durafs

import (
	"os"
)

// copyContents transfers the contents of srcPath into a freshly created
// dstPath with the generic bounded read/write loop. No kernel fast path is
// wired on this platform.
func copyContents(srcPath, dstPath string, st FileInfo, perm FileMode) error {
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
