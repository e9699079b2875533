// SPDX-License-Identifier: MIT

package durafs

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomSource provides cryptographically strong random bytes for temp file
// name generation. It is an injected capability so tests can substitute a
// failing source and exercise the random-generation failure path
// deterministically.
type RandomSource interface {
	// Fill fills buf entirely with random bytes or fails.
	Fill(buf []byte) error
}

// cryptoRandSource reads from the kernel CSPRNG via crypto/rand.
type cryptoRandSource struct{}

func (cryptoRandSource) Fill(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

// tempNameBytes is the amount of randomness in a temp sibling name. 64 bits
// keeps collisions with concurrent writers to the same destination out of
// practical reach.
const tempNameBytes = 8

// tempSibling generates a collision-resistant temporary path in the same
// directory as dst. Same-directory placement keeps the final rename on one
// filesystem, which is what makes it atomic.
func tempSibling(dst Path, rnd RandomSource) (string, error) {
	if rnd == nil {
		rnd = cryptoRandSource{}
	}
	var buf [tempNameBytes]byte
	if err := rnd.Fill(buf[:]); err != nil {
		return "", newError(ErrCodeRandomGenerationFailed, "temp-name", dst.String(), err)
	}
	dir := dst.Dir().String()
	if dir == "/" {
		return "/." + dst.Base() + ".tmp-" + hex.EncodeToString(buf[:]), nil
	}
	return dir + "/." + dst.Base() + ".tmp-" + hex.EncodeToString(buf[:]), nil
}
