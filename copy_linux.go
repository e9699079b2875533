// SPDX-License-Identifier: MIT

//go:build linux

package durafs

import (
	"os"

	"golang.org/x/sys/unix"
)

// maxCopyChunk caps a single copy_file_range or sendfile request. The
// kernel may still copy less; the loops below resume until done.
const maxCopyChunk = 1 << 30

// copyContents transfers the contents of srcPath into a freshly created
// dstPath, trying each platform mechanism in order: FICLONE reflink,
// copy_file_range, sendfile, generic read/write loop. A mechanism only
// falls through on a "not supported for this pair" condition; genuine I/O
// errors propagate immediately.
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

	err = tryClone(df, sf)
	if err == nil {
		return nil
	}
	if err != errFastPathUnsupported {
		return err
	}

	err = tryCopyFileRange(df, sf, st.Size())
	if err == nil {
		return nil
	}
	if err != errFastPathUnsupported {
		return err
	}

	err = trySendfile(df, sf, st.Size())
	if err == nil {
		return nil
	}
	if err != errFastPathUnsupported {
		return err
	}

	return bufferedCopy(df, sf)
}

// tryClone duplicates the source's data extents into dst with the FICLONE
// ioctl (copy-on-write reflink). Near-instant where the filesystem supports
// it; both files must be on the same filesystem.
func tryClone(dst, src *os.File) error {
	err := ignoringEINTR(func() error {
		return unix.IoctlFileClone(int(dst.Fd()), int(src.Fd()))
	})
	switch err {
	case nil:
		return nil
	case unix.ENOSYS, unix.ENOTTY, unix.EOPNOTSUPP, unix.EINVAL, unix.EXDEV, unix.EBADF:
		return errFastPathUnsupported
	default:
		return err
	}
}

// tryCopyFileRange copies size bytes with copy_file_range in a loop that
// tolerates partial progress: each call may copy fewer bytes than requested
// (interrupted, size-limited, or simply "some" by contract), so a
// remaining-byte counter resumes at the updated offset until the full
// length is copied, EOF is observed, or a genuine error occurs. Zero
// progress with bytes still remaining and no error is EOF, not a spin
// hazard.
func tryCopyFileRange(dst, src *os.File, size int64) error {
	remaining := size
	for remaining > 0 {
		chunk := remaining
		if chunk > maxCopyChunk {
			chunk = maxCopyChunk
		}
		n, err := unix.CopyFileRange(int(src.Fd()), nil, int(dst.Fd()), nil, int(chunk), 0)
		switch err {
		case nil:
		case unix.EINTR:
			continue
		case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.EOPNOTSUPP, unix.EBADF:
			if remaining == size {
				// Nothing copied yet, safe to hand off to the next
				// mechanism from offset zero.
				return errFastPathUnsupported
			}
			return err
		default:
			return err
		}
		if n == 0 {
			// EOF: the source is shorter than its stat size reported,
			// which can happen when it shrank mid-copy.
			return nil
		}
		remaining -= int64(n)
	}
	return nil
}

// trySendfile streams size bytes through the kernel without a userspace
// buffer. Used when copy_file_range refuses, typically across devices.
func trySendfile(dst, src *os.File, size int64) error {
	remaining := size
	for remaining > 0 {
		chunk := remaining
		if chunk > maxCopyChunk {
			chunk = maxCopyChunk
		}
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), nil, int(chunk))
		switch err {
		case nil:
		case unix.EINTR:
			continue
		case unix.ENOSYS, unix.EINVAL, unix.EOPNOTSUPP:
			if remaining == size {
				return errFastPathUnsupported
			}
			return err
		default:
			return err
		}
		if n == 0 {
			return nil
		}
		remaining -= int64(n)
	}
	return nil
}
