package gitcore

import (
	"crypto/sha1" //nolint:gosec // the object store only needs a stable string->hex digest, not cryptographic strength
	"encoding/hex"
	"fmt"
)

// Hash is a hex-encoded content digest identifying a stored object.
// Any deterministic string->hex function satisfies the object store's
// content-addressing contract; SHA-1 is used here for familiarity with the
// on-disk layout it produces.
type Hash string

// HashContent computes the Hash of raw object content (the exact bytes that
// get written to the object store — header included, the same bytes that are
// later read back by Read).
func HashContent(content []byte) Hash {
	sum := sha1.Sum(content) //nolint:gosec // see Hash doc comment
	return Hash(hex.EncodeToString(sum[:]))
}

// Short returns a seven-character prefix of the hash, or the whole hash if
// it is shorter than that.
func (h Hash) Short() string {
	if len(h) < 7 {
		return string(h)
	}
	return string(h)[:7]
}

// IsZero reports whether h is the empty/absent hash.
func (h Hash) IsZero() bool { return h == "" }

func (h Hash) String() string { return string(h) }

// looksLikeHash reports whether s has the shape of a stored object hash
// (40 hex characters, either case), without checking the store for its presence.
func looksLikeHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	if _, err := hex.DecodeString(s); err != nil {
		return false
	}
	return true
}

// ErrObjectNotFound is returned by operations that require an object to be
// present in the store but the hash has no corresponding object.
var ErrObjectNotFound = fmt.Errorf("object not found")
