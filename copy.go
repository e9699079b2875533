// SPDX-License-Identifier: MIT

package durafs

import (
	"io"
	"os"

	"emperror.dev/errors"
	"github.com/apex/log"
)

// copyBufferSize bounds the intermediate buffer of the generic read/write
// loop. The whole file is never held in memory.
const copyBufferSize = 128 * 1024

// CopyOptions controls a whole-file copy.
type CopyOptions struct {
	// Overwrite removes an existing destination file or symlink (the link
	// itself, never its target) immediately before the copy begins.
	// Directories are never removed this way; a directory destination is
	// refused even under Overwrite.
	Overwrite bool
	// CopyAttributes copies permission bits and the modification timestamp
	// after the data transfer completes. When false the destination
	// receives filesystem-default permissions (subject to umask) and a
	// fresh timestamp.
	CopyAttributes bool
	// FollowSymlinks copies the content of a symlink's target. When false
	// a symlink source produces a new symlink at the destination pointing
	// at the same target string, with no content bytes copied.
	FollowSymlinks bool
}

// DefaultCopyOptions returns the default copy options: no overwrite,
// attributes copied, symlinks followed.
func DefaultCopyOptions() CopyOptions {
	return CopyOptions{
		CopyAttributes: true,
		FollowSymlinks: true,
	}
}

// CopyFile copies the file at src to dst, choosing the fastest safe
// platform mechanism available (whole-file clone, kernel range copy,
// sendfile) and falling back to a bounded read/write loop when a mechanism
// is unavailable or refuses the pair of paths.
//
// Copy is best-effort with respect to concurrent mutation of the source: no
// locking is performed and a source modified mid-copy may yield destination
// content mixing old and new bytes. A failed copy removes the
// partially-written destination it created.
func CopyFile(src, dst Path, opts CopyOptions) error {
	li, err := os.Lstat(src.String())
	if err != nil {
		return classifyCopyError("lstat", src.String(), err)
	}

	if li.Mode()&ModeSymlink != 0 && !opts.FollowSymlinks {
		return copySymlink(src, dst, opts)
	}

	st, err := os.Stat(src.String())
	if err != nil {
		return classifyCopyError("stat", src.String(), err)
	}
	if st.IsDir() {
		return newError(ErrCodeIsDirectory, "copy", src.String(), ErrIsDirectory)
	}

	if err := prepareDestination(dst, opts.Overwrite); err != nil {
		return err
	}

	// Without attribute copying the destination keeps its umask-subjected
	// creation default; with it, the exact bits are applied after the data
	// transfer.
	perm := FileMode(0o666)
	if opts.CopyAttributes {
		perm = st.Mode().Perm()
	}

	if err := copyContents(src.String(), dst.String(), st, perm); err != nil {
		if rerr := os.Remove(dst.String()); rerr != nil && !errors.Is(rerr, ErrNotExist) {
			log.WithField("subsystem", "durafs").
				WithField("path", dst.String()).
				WithError(rerr).Debug("failed to remove partially copied destination")
		}
		var e *Error
		if errors.As(err, &e) {
			return err
		}
		return newError(ErrCodeCopyFailed, "copy", dst.String(), err)
	}

	if opts.CopyAttributes {
		if err := os.Chmod(dst.String(), st.Mode().Perm()); err != nil {
			return newError(ErrCodeCopyFailed, "chmod", dst.String(), convertErrorType(err))
		}
		if err := os.Chtimes(dst.String(), st.ModTime(), st.ModTime()); err != nil {
			return newError(ErrCodeCopyFailed, "chtimes", dst.String(), convertErrorType(err))
		}
	}

	return nil
}

// copySymlink re-creates the source link at the destination, pointing at
// the same target string. No target-file content is duplicated.
func copySymlink(src, dst Path, opts CopyOptions) error {
	target, err := os.Readlink(src.String())
	if err != nil {
		return classifyCopyError("readlink", src.String(), err)
	}
	if err := prepareDestination(dst, opts.Overwrite); err != nil {
		return err
	}
	if err := os.Symlink(target, dst.String()); err != nil {
		if lerr, ok := err.(*os.LinkError); ok {
			err = lerr.Err
		}
		if errors.Is(err, ErrExist) {
			return newError(ErrCodeDestinationExists, "symlink", dst.String(), err)
		}
		return newError(ErrCodeCopyFailed, "symlink", dst.String(), err)
	}
	return nil
}

// prepareDestination enforces the overwrite policy. An existing destination
// file or symlink is unlinked (the link itself, never followed, so the copy
// can never be written through a symlink into an unrelated file); an
// existing directory is refused.
func prepareDestination(dst Path, overwrite bool) error {
	li, err := os.Lstat(dst.String())
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil
		}
		return classifyCopyError("lstat", dst.String(), err)
	}
	if li.IsDir() {
		return newError(ErrCodeIsDirectory, "copy", dst.String(), ErrIsDirectory)
	}
	if !overwrite {
		return newError(ErrCodeDestinationExists, "copy", dst.String(), ErrExist)
	}
	if err := os.Remove(dst.String()); err != nil {
		return classifyCopyError("remove", dst.String(), err)
	}
	return nil
}

// classifyCopyError maps an OS error observed during copy preconditions
// onto the copy error taxonomy.
func classifyCopyError(op, path string, err error) error {
	switch {
	case errors.Is(err, ErrNotExist):
		return newError(ErrCodeSourceNotFound, op, path, err)
	case errors.Is(err, ErrPermission):
		return newError(ErrCodePermissionDenied, op, path, err)
	default:
		return newError(ErrCodeCopyFailed, op, path, convertErrorType(err))
	}
}

// errFastPathUnsupported signals that a platform fast path refused this
// pair of files and the engine should fall through to the next mechanism.
// It is distinguished from genuine I/O errors, which propagate immediately.
var errFastPathUnsupported = errors.Sentinel("durafs: fast path unsupported for this pair")

// bufferedCopy is the generic bounded read/write loop, used when every
// platform fast path has refused or on platforms that have none.
func bufferedCopy(dst, src *os.File) error {
	buf := make([]byte, copyBufferSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			if werr != nil {
				return werr
			}
			if w != n {
				return io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
