// SPDX-License-Identifier: MIT

//go:build !unix

package durafs

import (
	"os"
)

// fsyncFull flushes file data and metadata to stable storage. On Windows
// this is FlushFileBuffers, which covers both.
func fsyncFull(f *os.File) error {
	return f.Sync()
}

// fdatasync flushes file data to stable storage. No data-only flush
// primitive exists here; the full flush is strictly stronger, so the
// data-only level is honored by issuing it.
func fdatasync(f *os.File) error {
	return f.Sync()
}

// syncDir is a no-op: directory entries are flushed with the volume and no
// per-directory flush primitive is exposed.
func syncDir(string) error {
	return nil
}
