package railstore

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of a rail's decompressed source bytes.
type Hash [32]byte

// digestKey separates rail source digests from any other BLAKE3 use.
var digestKey = [32]byte{
	'r', 'a', 'i', 'l', '-', 'e', 'n', 'g', 'i', 'n', 'e', '.', 'r', 'a', 'i', 'l',
	'.', 's', 'o', 'u', 'r', 'c', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Digest returns the keyed BLAKE3 hash of data.
func Digest(data []byte) Hash {
	h, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		// Only reachable with a key that is not 32 bytes.
		panic("railstore: blake3 keyed hasher: " + err.Error())
	}
	h.Write(data)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Short returns the first 12 hex digits, for logs.
func (h Hash) Short() string { return h.String()[:12] }
