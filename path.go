// SPDX-License-Identifier: MIT

package durafs

import (
	"emperror.dev/errors"
)

// Path is a validated byte-sequence identifying a filesystem location. It is
// an immutable value type: construction rejects NUL bytes, C0 control
// characters, and empty strings, so every Path held by a caller is known to
// be safe to hand to a syscall.
//
// Path components are byte sequences, not text. They are not guaranteed to
// be decodable as UTF-8 and are never round-tripped through a text transform
// by this package.
type Path struct {
	raw string
}

// NewPath validates raw and returns it as a Path. It fails with
// ErrInvalidPath if raw is empty or contains a NUL byte or a C0 control
// character.
func NewPath(raw string) (Path, error) {
	if raw == "" {
		return Path{}, errors.WithMessage(ErrInvalidPath, "empty path")
	}
	for i := 0; i < len(raw); i++ {
		// Go strings are raw bytes; iterate bytes, not runes, so invalid
		// UTF-8 sequences pass through untouched.
		if raw[i] == 0 {
			return Path{}, errors.WithMessage(ErrInvalidPath, "path contains NUL byte")
		}
		if raw[i] < 0x20 {
			return Path{}, errors.WithMessage(ErrInvalidPath, "path contains control character")
		}
	}
	return Path{raw: raw}, nil
}

// MustPath is like NewPath but panics if raw fails validation. It is
// intended for paths known valid at compile time, typically in tests.
func MustPath(raw string) Path {
	p, err := NewPath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the raw path bytes. The result is not guaranteed to be
// valid UTF-8.
func (p Path) String() string {
	return p.raw
}

// IsZero reports whether p is the zero Path, which is never produced by
// NewPath.
func (p Path) IsZero() bool {
	return p.raw == ""
}

// Join appends elem to p with a single separator. The element is validated
// under the same rules as NewPath.
func (p Path) Join(elem string) (Path, error) {
	if _, err := NewPath(elem); err != nil {
		return Path{}, err
	}
	raw := p.raw
	for len(raw) > 1 && raw[len(raw)-1] == '/' {
		raw = raw[:len(raw)-1]
	}
	if raw == "/" {
		return Path{raw: raw + elem}, nil
	}
	return Path{raw: raw + "/" + elem}, nil
}

// Dir returns the parent directory of p, or "." if p has no directory
// component.
func (p Path) Dir() Path {
	dir, _ := splitPath(p.raw)
	return Path{raw: dir}
}

// Base returns the final component of p.
func (p Path) Base() string {
	_, base := splitPath(p.raw)
	return base
}

// splitPath returns the parent directory and base name.
func splitPath(path string) (string, string) {
	// if no better parent is found, the path is relative from "here"
	dirname := "."

	// Remove all but one leading slash.
	for len(path) > 1 && path[0] == '/' && path[1] == '/' {
		path = path[1:]
	}

	i := len(path) - 1

	// Remove trailing slashes.
	for ; i > 0 && path[i] == '/'; i-- {
		path = path[:i]
	}

	// if no slashes in path, base is path
	basename := path

	// Remove leading directory path
	for i--; i >= 0; i-- {
		if path[i] == '/' {
			if i == 0 {
				dirname = path[:1]
			} else {
				dirname = path[:i]
			}
			basename = path[i+1:]
			break
		}
	}

	return dirname, basename
}
