// SPDX-License-Identifier: MIT

package durafs

// Durability selects how much of a committed write must have reached stable
// storage before an operation reports success. Levels form a total order of
// guarantee strength; an operation never silently downgrades the requested
// level. If a level cannot be honored on the running platform the operation
// fails instead of pretending to have synced.
type Durability int

const (
	// DurabilityFull flushes file data and metadata before the operation
	// returns (fsync; F_FULLFSYNC on darwin). After a successful atomic
	// commit at this level both the file content and the directory entry
	// are durable against power loss.
	DurabilityFull Durability = iota
	// DurabilityDataOnly flushes file data, metadata best-effort
	// (fdatasync where the platform provides it).
	DurabilityDataOnly
	// DurabilityNone requests no flush. The operation never blocks on a
	// flush syscall at this level.
	DurabilityNone
)

// String returns a human-readable name for the durability level.
func (d Durability) String() string {
	switch d {
	case DurabilityFull:
		return "full"
	case DurabilityDataOnly:
		return "data-only"
	case DurabilityNone:
		return "none"
	default:
		return "invalid"
	}
}

// Strategy controls how an atomic commit behaves when the destination path
// already exists at commit time.
type Strategy int

const (
	// ReplaceExisting atomically renames the temp file over an existing
	// destination. Platform rename semantics guarantee the replacement is
	// atomic; readers observe either the old content or the new content.
	ReplaceExisting Strategy = iota
	// NoClobber fails the commit with ErrCodeDestinationExists if the
	// destination exists at commit time, leaving it untouched. The check
	// is performed by an exclusive rename-without-replace (or link)
	// primitive rather than a separate existence test, so there is no
	// check-then-act race window.
	NoClobber
)

// String returns a human-readable name for the strategy.
func (s Strategy) String() string {
	switch s {
	case ReplaceExisting:
		return "replace-existing"
	case NoClobber:
		return "no-clobber"
	default:
		return "invalid"
	}
}
