package domain

import (
	"fmt"

	"mobsigner/internal/util/memzero"
)

// ------------- Ristretto encodings -------------

// RistrettoPublic is a compressed ristretto255 group element.
type RistrettoPublic [32]byte

// RistrettoPrivate is a canonical ristretto255 scalar encoding.
type RistrettoPrivate [32]byte

func (k RistrettoPublic) Slice() []byte  { return k[:] }
func (k RistrettoPrivate) Slice() []byte { return k[:] }

// Wipe zeroes the private scalar encoding.
func (k *RistrettoPrivate) Wipe() { memzero.Zero32((*[32]byte)(k)) }

func MustRistrettoPublic(b []byte) RistrettoPublic {
	if len(b) != 32 {
		panic(fmt.Errorf("ristretto public: want 32 bytes, got %d", len(b)))
	}
	var out RistrettoPublic
	copy(out[:], b)
	return out
}

func MustRistrettoPrivate(b []byte) RistrettoPrivate {
	if len(b) != 32 {
		panic(fmt.Errorf("ristretto private: want 32 bytes, got %d", len(b)))
	}
	var out RistrettoPrivate
	copy(out[:], b)
	return out
}

// ------------- Ed25519 -------------

type Ed25519Public [32]byte

func (k Ed25519Public) Slice() []byte { return k[:] }

// ------------- Derived values -------------

// KeyImage is the compressed key image point for a spent output.
type KeyImage [32]byte

func (k KeyImage) Slice() []byte { return k[:] }

// Digest is a 32-byte message or transcript digest.
type Digest [32]byte

func (d Digest) Slice() []byte { return d[:] }

// AddressHash is the short hash identifying a public address.
type AddressHash [16]byte

func (h AddressHash) Slice() []byte { return h[:] }
