// Package cryptox provides content hashing for media payloads. Two assets
// with the same digest carry the same bytes and can share one cloud object.
package cryptox

import (
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"
)

// HashContent returns the hex encoded BLAKE2b-256 digest of content.
func HashContent(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashReader streams r through BLAKE2b-256 and returns the hex digest along
// with the number of bytes read.
func HashReader(r io.Reader) (string, int64, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
