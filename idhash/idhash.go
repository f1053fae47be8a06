// Package idhash generates the base62 identifiers used for movies, genres, users and tokens.
package idhash

import (
	"crypto/rand"
	"crypto/sha256"

	"github.com/jxskiss/base62"
)

// maxIDLength is the length of a base62 encoded 128 bit value, rounded up.
const maxIDLength = 22

// Hash returns a base62-encoded id, based upon sha256 of string.
// Equal input always yields the same id.
func Hash(s string) string {
	return HashBytes([]byte(s))
}

// HashBytes returns a base62-encoded id, based upon sha256 of bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return base62.StdEncoding.EncodeToString(sum[:16])
}

// NewRandomID generates a random base62-encoded id.
func NewRandomID() string {
	var r [16]byte
	if _, err := rand.Read(r[:]); err != nil {
		panic(err)
	}
	return base62.StdEncoding.EncodeToString(r[:])
}

// Valid reports whether id looks like an id generated by this package.
func Valid(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	_, err := base62.StdEncoding.DecodeString(id)
	return err == nil
}
