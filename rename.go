// SPDX-License-Identifier: MIT

package durafs

import (
	"os"

	"github.com/apex/log"
)

// linkNoReplace commits oldpath under newpath exclusively using a hard link.
// link(2) fails with EEXIST if newpath exists, which gives the same
// atomicity as rename-without-replace on any filesystem that supports hard
// links. The now-redundant oldpath link is unlinked afterwards; a failure to
// unlink leaves a stray temp link but never a wrong destination, so it is
// logged and ignored.
func linkNoReplace(oldpath, newpath string) error {
	if err := os.Link(oldpath, newpath); err != nil {
		if lerr, ok := err.(*os.LinkError); ok {
			return lerr.Err
		}
		return err
	}
	if err := os.Remove(oldpath); err != nil {
		log.WithField("subsystem", "durafs").
			WithField("path", oldpath).
			WithError(err).Debug("failed to unlink temp file after exclusive link commit")
	}
	return nil
}
