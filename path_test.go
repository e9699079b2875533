// SPDX-License-Identifier: MIT

package durafs_test

import (
	"errors"
	"testing"

	"github.com/durafs/durafs"
)

func TestNewPath(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		if _, err := durafs.NewPath(""); !errors.Is(err, durafs.ErrInvalidPath) {
			t.Errorf("expected an invalid path error, but got: %v", err)
		}
	})

	t.Run("nul byte", func(t *testing.T) {
		if _, err := durafs.NewPath("foo\x00bar"); !errors.Is(err, durafs.ErrInvalidPath) {
			t.Errorf("expected an invalid path error, but got: %v", err)
		}
	})

	t.Run("control character", func(t *testing.T) {
		if _, err := durafs.NewPath("foo\nbar"); !errors.Is(err, durafs.ErrInvalidPath) {
			t.Errorf("expected an invalid path error, but got: %v", err)
		}
	})

	t.Run("plain path", func(t *testing.T) {
		p, err := durafs.NewPath("/tmp/some/file")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if p.String() != "/tmp/some/file" {
			t.Errorf("unexpected path value: %q", p.String())
		}
	})

	t.Run("undecodable bytes survive", func(t *testing.T) {
		// File names are byte sequences, not text. An invalid UTF-8
		// sequence must pass validation and round-trip untouched.
		raw := "/tmp/\xff\xfe\xfd"
		p, err := durafs.NewPath(raw)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if p.String() != raw {
			t.Errorf("path bytes did not round-trip: %q", p.String())
		}
	})
}

func TestPath_Join(t *testing.T) {
	t.Parallel()

	t.Run("plain join", func(t *testing.T) {
		p := durafs.MustPath("/srv/data")
		j, err := p.Join("file.db")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if j.String() != "/srv/data/file.db" {
			t.Errorf("unexpected joined path: %q", j.String())
		}
	})

	t.Run("trailing slash collapsed", func(t *testing.T) {
		p := durafs.MustPath("/srv/data/")
		j, err := p.Join("file.db")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if j.String() != "/srv/data/file.db" {
			t.Errorf("unexpected joined path: %q", j.String())
		}
	})

	t.Run("root", func(t *testing.T) {
		p := durafs.MustPath("/")
		j, err := p.Join("file.db")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if j.String() != "/file.db" {
			t.Errorf("unexpected joined path: %q", j.String())
		}
	})

	t.Run("invalid element", func(t *testing.T) {
		p := durafs.MustPath("/srv/data")
		if _, err := p.Join("bad\x00name"); !errors.Is(err, durafs.ErrInvalidPath) {
			t.Errorf("expected an invalid path error, but got: %v", err)
		}
	})
}

func TestPath_DirBase(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		path string
		dir  string
		base string
	}{
		{"/tmp/x", "/tmp", "x"},
		{"/tmp/a/b/c", "/tmp/a/b", "c"},
		{"relative", ".", "relative"},
		{"/x", "/", "x"},
		{"/tmp/trailing/", "/tmp", "trailing"},
	} {
		p := durafs.MustPath(tc.path)
		if got := p.Dir().String(); got != tc.dir {
			t.Errorf("Dir(%q) = %q, want %q", tc.path, got, tc.dir)
		}
		if got := p.Base(); got != tc.base {
			t.Errorf("Base(%q) = %q, want %q", tc.path, got, tc.base)
		}
	}
}
