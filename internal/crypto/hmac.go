package crypto

import "golang.org/x/crypto/blake2b"

// MemoHmac computes a keyed-Blake2b MAC over the encoded memo fields,
// truncated to the 16-byte memo signature length.
func MemoHmac(key []byte, chunks ...[]byte) [16]byte {
	h, err := blake2b.New256(key)
	if err != nil {
		panic(err)
	}
	for _, c := range chunks {
		h.Write(c)
	}
	var sum [32]byte
	h.Sum(sum[:0])

	var out [16]byte
	copy(out[:], sum[:16])
	return out
}
