package redis

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyPrefixMemo is the prefix for memoized operation results.
const KeyPrefixMemo = "hindsight:memo:"

// MemoKey derives the cache key for an operation and its full argument
// tuple: a hash of the operation name plus each argument, with a
// separator so ("a", "bc") and ("ab", "c") never collide.
func MemoKey(op string, args ...string) string {
	h := sha256.New()
	h.Write([]byte(op))
	for _, a := range args {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	return KeyPrefixMemo + hex.EncodeToString(h.Sum(nil))
}
