package keys

import (
	"golang.org/x/crypto/blake2b"

	"mobsigner/internal/domain"
)

const addressHashTag = "mc-address"

// AddressHash digests a public address (view public, spend public, fog
// report url, fog authority signature) to its 16-byte short hash, the
// form carried as the sender address hash of TxMemoSign.
func AddressHash(viewPublic, spendPublic domain.RistrettoPublic, fogURL string, fogSig []byte) domain.AddressHash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(addressHashTag))
	h.Write(viewPublic.Slice())
	h.Write(spendPublic.Slice())
	h.Write([]byte(fogURL))
	h.Write(fogSig)

	var sum [32]byte
	h.Sum(sum[:0])

	var out domain.AddressHash
	copy(out[:], sum[:16])
	return out
}
