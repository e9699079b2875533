// SPDX-License-Identifier: MIT

package durafs

import (
	"context"
	"io"
	"iter"
	"os"

	"emperror.dev/errors"
)

// DirectStrategy selects how a direct (non-atomic) commit opens its
// destination.
type DirectStrategy int

const (
	// DirectCreate creates the destination and fails if it already exists.
	DirectCreate DirectStrategy = iota
	// DirectTruncate replaces the contents of an existing destination in
	// place, keeping the same inode, creating the file if needed.
	DirectTruncate
)

// String returns a human-readable name for the direct strategy.
func (s DirectStrategy) String() string {
	switch s {
	case DirectCreate:
		return "create"
	case DirectTruncate:
		return "truncate"
	default:
		return "invalid"
	}
}

// DirectOptions controls a direct commit: writes go straight into the
// destination descriptor with no temp file and no rename. The destination
// may observe partial content if the process is interrupted mid-sequence.
// This is a deliberate trade-off for callers that do not need atomicity and
// want to avoid a second full copy at commit time, e.g. reconstructing a
// cache file they will re-verify anyway.
//
// Combining DirectOptions with DurabilityNone is legal even though the
// write then carries no safety property at all.
type DirectOptions struct {
	Strategy   DirectStrategy
	Durability Durability
}

// CommitPolicy selects how a streamed write reaches its destination: the
// default atomic temp-file protocol, or the direct opt-out. Construct values
// with AtomicPolicy or DirectPolicy.
type CommitPolicy interface {
	isCommitPolicy()
}

type atomicPolicy struct {
	opts AtomicOptions
}

func (atomicPolicy) isCommitPolicy() {}

type directPolicy struct {
	opts DirectOptions
}

func (directPolicy) isCommitPolicy() {}

// AtomicPolicy commits the chunk sequence with the atomic write protocol
// described on WriteFile.
func AtomicPolicy(opts AtomicOptions) CommitPolicy {
	return atomicPolicy{opts: opts}
}

// DirectPolicy commits the chunk sequence directly into the destination.
func DirectPolicy(opts DirectOptions) CommitPolicy {
	return directPolicy{opts: opts}
}

// WriteChunks writes a sequence of chunks to path under the given commit
// policy. The sequence is consumed lazily, in order, and is never buffered
// in full; empty chunks are legal and contribute zero bytes, and an empty
// sequence commits a zero-length file.
//
// Cancellation is checked at sync points. If ctx is cancelled after data
// has been written but before a requested flush could run, the call fails
// with ErrCodeDurabilityNotGuaranteed: the caller is told durability is
// unknown rather than falsely told the flush happened.
func WriteChunks(ctx context.Context, path Path, chunks iter.Seq[[]byte], policy CommitPolicy) error {
	switch p := policy.(type) {
	case atomicPolicy:
		return commitAtomic(ctx, path, func(tmp *Handle) error {
			for chunk := range chunks {
				if len(chunk) == 0 {
					continue
				}
				if err := tmp.WriteAll(chunk); err != nil {
					return err
				}
			}
			return nil
		}, p.opts)
	case directPolicy:
		return commitDirect(ctx, path, chunks, p.opts)
	default:
		return errors.WithMessage(ErrInvalid, "unknown commit policy")
	}
}

// WriteReader streams r to path under the given commit policy using a
// bounded intermediate buffer.
func WriteReader(ctx context.Context, path Path, r io.Reader, policy CommitPolicy) error {
	return WriteChunks(ctx, path, readerChunks(r), policy)
}

// readerChunks adapts an io.Reader into a chunk sequence. A read error
// stops the sequence; the write then underruns and reports partial
// progress, which is the honest outcome for a broken producer.
func readerChunks(r io.Reader) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		buf := make([]byte, copyBufferSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if !yield(buf[:n]) {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}
}

// commitDirect writes chunks straight into the destination. No temp file,
// no rename: an interruption leaves whatever prefix was written.
func commitDirect(ctx context.Context, dst Path, chunks iter.Seq[[]byte], opts DirectOptions) error {
	if err := CheckParent(dst); err != nil {
		return err
	}

	flag := os.O_WRONLY | os.O_CREATE
	switch opts.Strategy {
	case DirectCreate:
		flag |= os.O_EXCL
	case DirectTruncate:
		flag |= os.O_TRUNC
	default:
		return errors.WithMessage(ErrInvalid, "unknown direct strategy")
	}

	f, err := os.OpenFile(dst.String(), flag, defaultFileMode)
	if err != nil {
		if errors.Is(err, ErrExist) {
			return newError(ErrCodeDestinationExists, "open", dst.String(), err)
		}
		return newWriteError("open", dst.String(), 0, 0, convertErrorType(err))
	}
	h := newHandle(f)
	defer func() {
		if !h.closed {
			_ = h.Close()
		}
	}()

	for chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		if err := h.WriteAll(chunk); err != nil {
			return err
		}
	}

	if opts.Durability != DurabilityNone {
		// Sync point: the data is already in the destination, so a
		// cancellation here leaves its durability unknown, not the
		// operation unperformed.
		if err := ctx.Err(); err != nil {
			return newError(ErrCodeDurabilityNotGuaranteed, "sync", dst.String(), err)
		}
		if err := h.Sync(opts.Durability); err != nil {
			return newError(ErrCodeSyncFailed, "sync", dst.String(), err)
		}
	}

	if err := h.Close(); err != nil {
		return newError(ErrCodeWriteFailed, "close", dst.String(), err)
	}
	return nil
}
