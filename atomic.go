// SPDX-License-Identifier: MIT

package durafs

import (
	"context"
	"os"

	"emperror.dev/errors"
	"github.com/apex/log"
)

// defaultFileMode is the permission set (before umask) for files the engine
// creates when there is no existing destination to preserve from.
const defaultFileMode FileMode = 0o644

// intermediateDirMode is the permission set (before umask) for directories
// created by CreateIntermediates.
const intermediateDirMode FileMode = 0o755

// AtomicOptions controls a single atomic write. Options are pure value
// types constructed per call; the zero value is not useful, start from
// DefaultAtomicOptions.
type AtomicOptions struct {
	// Strategy selects the collision policy at commit time.
	Strategy Strategy
	// Durability selects how much of the write must reach stable storage
	// before the call returns.
	Durability Durability

	// PreservePermissions copies the permission bits of an existing
	// destination onto the new content before it becomes visible.
	PreservePermissions bool
	// PreserveOwnership copies uid/gid of an existing destination,
	// best-effort: a refusal (typically EPERM for non-root callers) is
	// logged and ignored unless StrictOwnership is set.
	PreserveOwnership bool
	// StrictOwnership escalates an ownership preservation failure from
	// best-effort to failing the whole operation.
	StrictOwnership bool
	// PreserveTimestamps copies the modification time of an existing
	// destination.
	PreserveTimestamps bool
	// PreserveExtendedAttributes copies user extended attributes of an
	// existing destination.
	PreserveExtendedAttributes bool
	// PreserveACLs copies POSIX ACLs (stored as system xattrs) of an
	// existing destination.
	PreserveACLs bool

	// CreateIntermediates creates the destination's missing parent
	// directory chain instead of failing the parent check.
	CreateIntermediates bool

	// Random overrides the random source used for temp file names. Leave
	// nil for the kernel CSPRNG.
	Random RandomSource
}

// DefaultAtomicOptions returns the default write options: replace an
// existing destination, full durability, permissions preserved, everything
// else off.
func DefaultAtomicOptions() AtomicOptions {
	return AtomicOptions{
		Strategy:            ReplaceExisting,
		Durability:          DurabilityFull,
		PreservePermissions: true,
	}
}

// WriteFile writes data to path atomically: the bytes are written to a temp
// sibling of path, flushed according to the requested durability, and
// renamed into place. The destination path, observed at any moment, holds
// either exactly its previous state or exactly data — never a partial
// buffer. An interrupted call leaves the destination untouched and no temp
// file behind.
func WriteFile(path Path, data []byte, opts AtomicOptions) error {
	return commitAtomic(context.Background(), path, func(tmp *Handle) error {
		return tmp.WriteAll(data)
	}, opts)
}

// commitAtomic runs the temp-sibling write protocol: parent check, exclusive
// temp create, produce, flush, attribute preservation, rename, directory
// flush. produce writes the payload into the temp handle; everything else is
// shared between the whole-buffer and streaming entry points.
func commitAtomic(ctx context.Context, dst Path, produce func(*Handle) error, opts AtomicOptions) error {
	if opts.CreateIntermediates {
		if err := mkdirAll(dst, intermediateDirMode); err != nil {
			return err
		}
	} else if err := CheckParent(dst); err != nil {
		return err
	}

	tmpPath, err := tempSibling(dst, opts.Random)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaultFileMode)
	if err != nil {
		return newWriteError("open-temp", tmpPath, 0, 0, convertErrorType(err))
	}
	tmp := newHandle(f)

	committed := false
	defer func() {
		if committed {
			return
		}
		if !tmp.closed {
			_ = tmp.Close()
		}
		if err := os.Remove(tmpPath); err != nil {
			log.WithField("subsystem", "durafs").
				WithField("path", tmpPath).
				WithError(err).Debug("failed to remove temp file after aborted write")
		}
	}()

	if err := produce(tmp); err != nil {
		return err
	}

	// Sync point: a cancellation observed here aborts cleanly. The temp
	// file is removed and the destination was never touched, so the caller
	// may simply retry.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := tmp.Sync(opts.Durability); err != nil {
		return newError(ErrCodeSyncFailed, "sync", tmpPath, err)
	}

	// Metadata is applied to the temp file before the rename so the moment
	// the destination name becomes visible it already carries its final
	// attributes.
	if err := preserveAttributes(tmp, tmpPath, dst.String(), opts); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		// A deferred write error surfacing at close time means the data
		// never fully reached the temp file.
		return newError(ErrCodeWriteFailed, "close-temp", tmpPath, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	switch opts.Strategy {
	case NoClobber:
		if err := renameNoReplace(tmpPath, dst.String()); err != nil {
			if errors.Is(err, ErrExist) {
				return newError(ErrCodeDestinationExists, "commit", dst.String(), err)
			}
			return newError(ErrCodeRenameFailed, "commit", dst.String(), err)
		}
	case ReplaceExisting:
		if err := os.Rename(tmpPath, dst.String()); err != nil {
			return newError(ErrCodeRenameFailed, "commit", dst.String(), convertErrorType(err))
		}
	default:
		return errors.WithMessage(ErrInvalid, "unknown write strategy")
	}
	committed = true

	if opts.Durability == DurabilityFull {
		// The new content is already visible under the destination name.
		// From here on a failure no longer means "nothing happened"; it
		// means the directory entry's durability is uncertain, and the
		// caller must be told exactly that.
		if err := ctx.Err(); err != nil {
			return newError(ErrCodeDurabilityNotGuaranteed, "sync-dir", dst.String(), err)
		}
		if err := syncDir(dst.Dir().String()); err != nil {
			return newError(ErrCodeDirSyncFailedAfterCommit, "sync-dir", dst.Dir().String(), err)
		}
	}

	return nil
}
