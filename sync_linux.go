// SPDX-License-Identifier: MIT

//go:build linux

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

// fdatasync flushes file data to stable storage; metadata not needed to
// retrieve the data (size changes included) is flushed, the rest is
// best-effort.
func fdatasync(f *os.File) error {
	return ignoringEINTR(func() error {
		return unix.Fdatasync(int(f.Fd()))
	})
}

// syncDir flushes the directory entry table of dir. Required after a rename
// commit for the new entry to be durable against power loss.
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
