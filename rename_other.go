// SPDX-License-Identifier: MIT

//go:build !linux && !darwin

package durafs

// renameNoReplace renames oldpath to newpath, failing with an
// already-exists error if newpath exists. Without a rename-without-replace
// syscall the link+unlink protocol provides the same exclusivity.
func renameNoReplace(oldpath, newpath string) error {
	return linkNoReplace(oldpath, newpath)
}
