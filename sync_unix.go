// SPDX-License-Identifier: MIT

//go:build unix && !linux && !darwin

package durafs

import (
	"os"

	"golang.org/x/sys/unix"
)

// fsyncFull flushes file data and metadata to stable storage.
func fsyncFull(f *os.File) error {
	return ignoringEINTR(func() error {
		return unix.Fsync(int(f.Fd()))
	})
}

// fdatasync flushes file data to stable storage. Not every BSD exposes
// fdatasync through the unix package; fsync is strictly stronger, so the
// data-only level is honored by issuing it.
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
