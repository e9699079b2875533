// SPDX-License-Identifier: MIT

//go:build darwin

package durafs

import (
	"os"

	"golang.org/x/sys/unix"
)

// fsyncFull flushes file data and metadata to stable storage. On darwin a
// plain fsync only pushes data to the drive, not through its track cache, so
// full durability requires the F_FULLFSYNC fcntl. If the filesystem refuses
// F_FULLFSYNC the requested level cannot be honored and the error is
// surfaced rather than downgraded.
func fsyncFull(f *os.File) error {
	return ignoringEINTR(func() error {
		_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
		return err
	})
}

// fdatasync flushes file data to stable storage. Darwin ships no usable
// fdatasync; fsync is a strictly stronger flush, so the data-only level is
// honored by issuing it.
func fdatasync(f *os.File) error {
	return ignoringEINTR(func() error {
		return unix.Fsync(int(f.Fd()))
	})
}

// syncDir flushes the directory entry table of dir.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return convertErrorType(err)
	}
	err = ignoringEINTR(func() error {
		return unix.Fsync(int(f.Fd()))
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
