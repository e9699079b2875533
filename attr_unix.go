// SPDX-License-Identifier: MIT

//go:build unix

package durafs

import (
	"os"
	"strings"
	"syscall"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"golang.org/x/sys/unix"
)

// aclXattrPrefix is the namespace POSIX ACLs live under on Linux. Other
// unixes without this xattr simply list nothing under it.
const aclXattrPrefix = "system.posix_acl_"

// preserveAttributes copies the requested metadata from the file currently
// at dstPath onto the temp file, before the rename makes the temp file
// visible under the destination name. A destination that does not exist yet
// has nothing to preserve; the temp file keeps its creation defaults.
//
// Ownership preservation is best-effort unless strict mode was requested:
// only root may generally chown to another user, and refusing to commit a
// write because of that would make the engine unusable for ordinary callers.
func preserveAttributes(tmp *Handle, tmpPath, dstPath string, opts AtomicOptions) error {
	st, err := os.Stat(dstPath)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil
		}
		return newError(ErrCodeUnknownError, "preserve-attributes", dstPath, convertErrorType(err))
	}

	fd := int(tmp.Fd())

	if opts.PreservePermissions {
		if err := ignoringEINTR(func() error {
			return unix.Fchmod(fd, uint32(syscallMode(st.Mode())))
		}); err != nil {
			return newError(ErrCodeUnknownError, "preserve-permissions", tmpPath, err)
		}
	}

	if opts.PreserveOwnership {
		sys, ok := st.Sys().(*syscall.Stat_t)
		if !ok {
			return newError(ErrCodePlatformIncompatible, "preserve-ownership", dstPath, nil)
		}
		err := ignoringEINTR(func() error {
			return unix.Fchown(fd, int(sys.Uid), int(sys.Gid))
		})
		if err != nil {
			if opts.StrictOwnership {
				return newError(ErrCodePermissionDenied, "preserve-ownership", tmpPath, err)
			}
			log.WithField("subsystem", "durafs").
				WithField("path", tmpPath).
				WithError(err).Debug("best-effort ownership preservation failed")
		}
	}

	if opts.PreserveTimestamps {
		// Only the modification time is carried over; the zero atime leaves
		// the access time unchanged.
		if err := os.Chtimes(tmpPath, time.Time{}, st.ModTime()); err != nil {
			return newError(ErrCodeUnknownError, "preserve-timestamps", tmpPath, convertErrorType(err))
		}
	}

	if opts.PreserveExtendedAttributes || opts.PreserveACLs {
		if err := copyXattrs(dstPath, tmpPath, opts.PreserveExtendedAttributes, opts.PreserveACLs); err != nil {
			return err
		}
	}

	return nil
}

// copyXattrs copies extended attributes from src to dst. ACLs are stored as
// xattrs in the system.posix_acl_ namespace and are gated separately from
// user xattrs. A filesystem without xattr support lists nothing to copy and
// is not an error.
func copyXattrs(src, dst string, xattrs, acls bool) error {
	names, err := listXattrNames(src)
	if err != nil {
		if err == unix.ENOTSUP || err == unix.EOPNOTSUPP {
			return nil
		}
		return newError(ErrCodeUnknownError, "list-xattrs", src, err)
	}
	for _, name := range names {
		isACL := strings.HasPrefix(name, aclXattrPrefix)
		if isACL && !acls {
			continue
		}
		if !isACL && !xattrs {
			continue
		}
		value, err := getXattr(src, name)
		if err != nil {
			return newError(ErrCodeUnknownError, "get-xattr", src, err)
		}
		if err := ignoringEINTR(func() error {
			return unix.Setxattr(dst, name, value, 0)
		}); err != nil {
			if err == unix.ENOTSUP || err == unix.EOPNOTSUPP || err == unix.EPERM {
				// The temp file's filesystem refuses this attribute
				// namespace; xattrs are best-effort metadata.
				log.WithField("subsystem", "durafs").
					WithField("path", dst).
					WithField("xattr", name).
					WithError(err).Debug("failed to preserve extended attribute")
				continue
			}
			return newError(ErrCodeUnknownError, "set-xattr", dst, err)
		}
	}
	return nil
}

// listXattrNames returns the extended attribute names present on path.
func listXattrNames(path string) ([]string, error) {
	size, err := unix.Listxattr(path, nil)
	if err != nil || size == 0 {
		return nil, err
	}
	buf := make([]byte, size)
	read, err := unix.Listxattr(path, buf)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, name := range strings.Split(string(buf[:read]), "\x00") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// getXattr returns the value of the named extended attribute on path.
func getXattr(path, name string) ([]byte, error) {
	size, err := unix.Getxattr(path, name, nil)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	read, err := unix.Getxattr(path, name, buf)
	if err != nil {
		return nil, err
	}
	return buf[:read], nil
}
