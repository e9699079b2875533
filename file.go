// SPDX-License-Identifier: MIT

package durafs

import (
	iofs "io/fs"
)

// FileInfo describes a file and is returned by Stat and Lstat.
type FileInfo = iofs.FileInfo

// FileMode represents a file's mode and permission bits.
// The bits have the same definition on all systems, so that
// information about files can be moved from one system
// to another portably.
type FileMode = iofs.FileMode

const (
	// ModeDir represents a directory.
	ModeDir = iofs.ModeDir
	// ModeSymlink represents a symbolic link.
	ModeSymlink = iofs.ModeSymlink
	// ModeNamedPipe represents a named pipe (FIFO).
	ModeNamedPipe = iofs.ModeNamedPipe
	// ModeIrregular represents a non-regular file; nothing else is known.
	ModeIrregular = iofs.ModeIrregular
	// ModeSetuid represents a setuid file.
	ModeSetuid = iofs.ModeSetuid
	// ModeSetgid represents a setgid file.
	ModeSetgid = iofs.ModeSetgid
	// ModeSticky represents a file with the sticky bit set.
	ModeSticky = iofs.ModeSticky

	// ModeType is the mask for the type bits of a FileMode.
	ModeType = iofs.ModeType

	// ModePerm is the mask for the Unix permission bits, 0o777.
	ModePerm = iofs.ModePerm
)
