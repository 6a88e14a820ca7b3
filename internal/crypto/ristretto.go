package crypto

import (
	"errors"

	"github.com/gtank/ristretto255"
	"golang.org/x/crypto/blake2b"

	"mobsigner/internal/domain"
)

// Domain tags kept bit-compatible with the MobileCoin reference
// derivation.
const (
	onetimeKeyHashTag = "mc_onetime_key_hash"
	challengeTag      = "mc_ring_mlsag_challenge"
)

// ErrDecode indicates a non-canonical scalar or point encoding.
var ErrDecode = errors.New("crypto: invalid ristretto encoding")

// Scalar aliases the ristretto255 scalar type.
type Scalar = ristretto255.Scalar

// Point aliases the ristretto255 group element type.
type Point = ristretto255.Element

// NewScalar returns a zero scalar.
func NewScalar() *Scalar { return ristretto255.NewScalar() }

// NewPoint returns the identity element.
func NewPoint() *Point { return ristretto255.NewElement() }

// ScalarOne returns the scalar 1.
func ScalarOne() *Scalar {
	var b [32]byte
	b[0] = 1
	s := ristretto255.NewScalar()
	if err := s.Decode(b[:]); err != nil {
		panic(err)
	}
	return s
}

// BasePoint returns the ristretto255 generator G.
func BasePoint() *Point {
	return ristretto255.NewElement().ScalarBaseMult(ScalarOne())
}

// DecodeScalar parses a canonical 32-byte scalar encoding.
func DecodeScalar(b []byte) (*Scalar, error) {
	s := ristretto255.NewScalar()
	if err := s.Decode(b); err != nil {
		return nil, ErrDecode
	}
	return s, nil
}

// DecodePoint parses a canonical 32-byte group element encoding.
func DecodePoint(b []byte) (*Point, error) {
	p := ristretto255.NewElement()
	if err := p.Decode(b); err != nil {
		return nil, ErrDecode
	}
	return p, nil
}

// EncodeScalar returns the canonical 32-byte encoding of s.
func EncodeScalar(s *Scalar) domain.RistrettoPrivate {
	var out domain.RistrettoPrivate
	s.Encode(out[:0])
	return out
}

// EncodePoint returns the canonical 32-byte encoding of p.
func EncodePoint(p *Point) domain.RistrettoPublic {
	var out domain.RistrettoPublic
	p.Encode(out[:0])
	return out
}

// PublicFromPrivate returns s·G.
func PublicFromPrivate(s *Scalar) *Point {
	return ristretto255.NewElement().ScalarBaseMult(s)
}

// HashToPoint maps a compressed public key to a group element by
// hashing with Blake2b-512 and applying the uniform-bytes map.
func HashToPoint(b []byte) *Point {
	sum := blake2b.Sum512(b)
	return ristretto255.NewElement().FromUniformBytes(sum[:])
}

// HashToScalar hashes a domain tag and payload chunks to a scalar via
// Blake2b-512 wide reduction.
func HashToScalar(tag string, chunks ...[]byte) *Scalar {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(tag))
	for _, c := range chunks {
		h.Write(c)
	}
	var sum [64]byte
	h.Sum(sum[:0])
	return ristretto255.NewScalar().FromUniformBytes(sum[:])
}

// OnetimeKeyHash derives the shared-secret scalar Hs(vR) used in
// onetime key recovery.
func OnetimeKeyHash(sharedSecret *Point) *Scalar {
	enc := EncodePoint(sharedSecret)
	return HashToScalar(onetimeKeyHashTag, enc.Slice())
}

// ChallengeScalar derives the next MLSAG challenge from the message and
// the per-row commitments.
func ChallengeScalar(message []byte, l0, r0, l1 *Point) *Scalar {
	e0 := EncodePoint(l0)
	e1 := EncodePoint(r0)
	e2 := EncodePoint(l1)
	return HashToScalar(challengeTag, message, e0.Slice(), e1.Slice(), e2.Slice())
}

// CopyScalar returns an owned copy of s.
func CopyScalar(s *Scalar) *Scalar {
	out := ristretto255.NewScalar()
	return out.Add(out, s)
}

// WipeScalar overwrites a scalar with zero; the canonical encoding of
// the zero scalar is all zero bytes, so this clears the backing words.
func WipeScalar(s *Scalar) {
	if s == nil {
		return
	}
	var zero [32]byte
	if err := s.Decode(zero[:]); err != nil {
		panic(err)
	}
}

// KeyImage computes x·Hp(x·G) for the onetime private key x.
func KeyImage(onetimePrivate *Scalar) domain.KeyImage {
	pub := EncodePoint(PublicFromPrivate(onetimePrivate))
	hp := HashToPoint(pub.Slice())
	img := ristretto255.NewElement().ScalarMult(onetimePrivate, hp)
	var out domain.KeyImage
	img.Encode(out[:0])
	return out
}
