package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20"

	"mobsigner/internal/util/memzero"
)

// Rng is a deterministic random stream with scalar sampling helpers.
type Rng struct {
	stream cipher.Stream
}

// NewSigningRng builds the deterministic ring-signing generator. The
// ChaCha20 key is derived from the caller seed folded with the message
// so a seed cannot be replayed across transactions.
func NewSigningRng(seed [32]byte, message []byte) *Rng {
	key := HKDF(seed[:], []byte("mobsigner-ring-signing"), message, chacha20.KeySize)
	defer memzero.Zero(key)

	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce[:])
	if err != nil {
		panic(err)
	}
	return &Rng{stream: stream}
}

// NewSessionRng builds an AES-CTR generator for session nonces and the
// Random instruction, keyed from fresh OS entropy.
func NewSessionRng() (*Rng, error) {
	var key [32]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, err
	}
	defer memzero.Zero32(&key)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	var iv [aes.BlockSize]byte
	return &Rng{stream: cipher.NewCTR(block, iv[:])}, nil
}

// Fill overwrites b with the next keystream bytes.
func (r *Rng) Fill(b []byte) {
	for i := range b {
		b[i] = 0
	}
	r.stream.XORKeyStream(b, b)
}

// Scalar samples a uniformly distributed scalar.
func (r *Rng) Scalar() *Scalar {
	var wide [64]byte
	r.Fill(wide[:])
	defer memzero.Zero64(&wide)
	return ScalarFromWide(wide[:])
}
