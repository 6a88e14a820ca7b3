package crypto

import (
	"encoding/binary"

	"github.com/gtank/ristretto255"
)

const pedersenGensTag = "mc_pedersen_gens"

// PedersenGens holds the generator pair for value commitments of one
// token id. The blinding generator is the group base point; the value
// generator is derived from the token id.
type PedersenGens struct {
	Value    *Point
	Blinding *Point
}

// Generators derives the commitment generators for a token id.
func Generators(tokenID uint64) PedersenGens {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], tokenID)

	seed := append([]byte(pedersenGensTag), le[:]...)
	return PedersenGens{
		Value:    HashToPoint(seed),
		Blinding: BasePoint(),
	}
}

// Commit computes value·H + blinding·G.
func (g PedersenGens) Commit(value uint64, blinding *Scalar) *Point {
	v := scalarFromUint64(value)
	c := ristretto255.NewElement().ScalarMult(v, g.Value)
	b := ristretto255.NewElement().ScalarMult(blinding, g.Blinding)
	return ristretto255.NewElement().Add(c, b)
}

func scalarFromUint64(v uint64) *Scalar {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], v)
	s := ristretto255.NewScalar()
	if err := s.Decode(b[:]); err != nil {
		panic(err)
	}
	return s
}
