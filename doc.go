// SPDX-License-Identifier: MIT

// Package durafs provides durable, atomic file write and copy primitives on
// top of raw operating system file APIs. It is designed to be used in-place
// of ad-hoc `os` package write sequences whenever a caller needs a guarantee
// that a destination path is never observed in a half-written state.
//
// The package exposes three entry points: WriteFile performs an atomic
// whole-buffer write (temp sibling, flush, rename), WriteChunks generalizes
// it to a streamed sequence of chunks with an opt-out direct commit policy,
// and CopyFile copies whole files using the fastest safe platform mechanism
// (reflink, copy_file_range, sendfile) with an OS-agnostic fallback chain.
//
// All operations are synchronous blocking calls. The package provides no
// mutual exclusion between concurrent operations on the same path; two
// concurrent atomic writes race exactly as two rename syscalls do, and the
// last rename wins.
package durafs
