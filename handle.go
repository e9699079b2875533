// SPDX-License-Identifier: MIT

package durafs

import (
	"io"
	"os"
	"syscall"

	"emperror.dev/errors"
)

// isNotSeekable reports whether err indicates the descriptor does not
// support positional I/O (pipes, sockets, some character devices).
func isNotSeekable(err error) bool {
	return errors.Is(err, syscall.ESPIPE)
}

// Handle owns exactly one open file descriptor. A Handle is consumed by
// Close: any use after Close, including a second Close, fails with ErrClosed.
// Every Handle opened internally by the write and copy engines is closed on
// every exit path, success or error.
type Handle struct {
	f      *os.File
	closed bool
}

// OpenHandle opens the named file with the specified flag (os.O_RDONLY etc.)
// and, when creating, permission bits (before umask).
func OpenHandle(path Path, flag int, perm FileMode) (*Handle, error) {
	f, err := os.OpenFile(path.String(), flag, perm)
	if err != nil {
		return nil, convertErrorType(err)
	}
	return &Handle{f: f}, nil
}

// HandleFromFile wraps an already open file. Ownership of the descriptor
// moves to the returned Handle; the file must not be used directly
// afterwards.
func HandleFromFile(f *os.File) *Handle {
	return &Handle{f: f}
}

// newHandle wraps an already open file for internal use.
func newHandle(f *os.File) *Handle {
	return &Handle{f: f}
}

// Name returns the name of the file the handle was opened with.
func (h *Handle) Name() string {
	if h.f == nil {
		return ""
	}
	return h.f.Name()
}

// Fd returns the integer file descriptor referencing the open file. The
// descriptor becomes invalid once the handle is closed.
func (h *Handle) Fd() uintptr {
	return h.f.Fd()
}

// Stat returns the FileInfo structure describing the open file.
func (h *Handle) Stat() (FileInfo, error) {
	if h.closed {
		return nil, ErrClosed
	}
	s, err := h.f.Stat()
	return s, convertErrorType(err)
}

// Read reads up to len(p) bytes into p.
func (h *Handle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, ErrClosed
	}
	return h.f.Read(p)
}

// Write writes len(p) bytes from p to the file at the current offset.
func (h *Handle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, ErrClosed
	}
	return h.f.Write(p)
}

// WriteAll writes all of p, failing with a write error carrying partial
// progress if the underlying descriptor underruns.
func (h *Handle) WriteAll(p []byte) error {
	if h.closed {
		return ErrClosed
	}
	n, err := h.f.Write(p)
	if err != nil {
		return newWriteError("write", h.Name(), int64(n), int64(len(p)), err)
	}
	if n != len(p) {
		return newWriteError("write", h.Name(), int64(n), int64(len(p)), io.ErrShortWrite)
	}
	return nil
}

// Seek sets the offset for the next Read or Write, interpreted according to
// whence, and returns the new offset.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	if h.closed {
		return 0, ErrClosed
	}
	n, err := h.f.Seek(offset, whence)
	return n, convertErrorType(err)
}

// Pwrite writes len(p) bytes from p at the given offset without moving the
// file offset. On descriptors that do not support seeking (pipes), a
// positional write at offset zero falls back to an ordinary sequential
// write; positional writes at non-zero offsets on such descriptors fail.
func (h *Handle) Pwrite(p []byte, offset int64) (int, error) {
	if h.closed {
		return 0, ErrClosed
	}
	n, err := h.f.WriteAt(p, offset)
	if err != nil && isNotSeekable(err) {
		if offset != 0 {
			return 0, errors.WithMessage(ErrInvalid, "positional write at non-zero offset on non-seekable descriptor")
		}
		return h.f.Write(p)
	}
	return n, err
}

// PwriteAll writes all of p at the given offset, resuming after short
// writes, with the same non-seekable fallback as Pwrite.
func (h *Handle) PwriteAll(p []byte, offset int64) error {
	total := int64(len(p))
	var written int64
	for len(p) > 0 {
		n, err := h.Pwrite(p, offset+written)
		written += int64(n)
		if err != nil {
			return newWriteError("pwrite", h.Name(), written, total, err)
		}
		if n == 0 {
			return newWriteError("pwrite", h.Name(), written, total, io.ErrShortWrite)
		}
		p = p[n:]
	}
	return nil
}

// Sync flushes the file according to the requested durability level. A
// DurabilityNone request returns immediately without issuing a flush
// syscall. If the platform cannot honor the requested level the call fails
// rather than silently downgrading.
func (h *Handle) Sync(level Durability) error {
	if h.closed {
		return ErrClosed
	}
	switch level {
	case DurabilityNone:
		return nil
	case DurabilityDataOnly:
		return fdatasync(h.f)
	case DurabilityFull:
		return fsyncFull(h.f)
	default:
		return errors.WithMessage(ErrInvalid, "unknown durability level")
	}
}

// Close consumes the handle, releasing the descriptor. A second Close
// returns ErrClosed.
func (h *Handle) Close() error {
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	return h.f.Close()
}
