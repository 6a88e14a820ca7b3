package engine

import (
	"errors"

	"mobsigner/internal/crypto"
	"mobsigner/internal/domain"
)

// RingMember is one public ring row used for verification.
type RingMember struct {
	TargetPublic domain.RistrettoPublic
	Commitment   domain.RistrettoPublic
}

// ErrInvalidSignature indicates an MLSAG that fails verification.
var ErrInvalidSignature = errors.New("invalid ring signature")

// VerifyRing checks an assembled MLSAG against the ring, the
// pseudo-output commitment and the key image. Responses are the
// interleaved (target, commitment) scalar pairs, two per row.
func VerifyRing(
	message []byte,
	ring []RingMember,
	pseudoOut domain.RistrettoPublic,
	keyImage domain.KeyImage,
	cZero domain.RistrettoPrivate,
	responses []domain.RistrettoPrivate,
) error {
	n := len(ring)
	if n == 0 || len(responses) != 2*n {
		return ErrInvalidSignature
	}

	imagePoint, err := crypto.DecodePoint(keyImage.Slice())
	if err != nil {
		return ErrCrypto
	}
	pseudo, err := crypto.DecodePoint(pseudoOut.Slice())
	if err != nil {
		return ErrCrypto
	}
	c, err := crypto.DecodeScalar(cZero.Slice())
	if err != nil {
		return ErrCrypto
	}

	c0 := crypto.CopyScalar(c)

	for i := 0; i < n; i++ {
		target, err := crypto.DecodePoint(ring[i].TargetPublic.Slice())
		if err != nil {
			return ErrCrypto
		}
		commit, err := crypto.DecodePoint(ring[i].Commitment.Slice())
		if err != nil {
			return ErrCrypto
		}
		r0, err := crypto.DecodeScalar(responses[2*i].Slice())
		if err != nil {
			return ErrCrypto
		}
		r1, err := crypto.DecodeScalar(responses[2*i+1].Slice())
		if err != nil {
			return ErrCrypto
		}

		hp := crypto.HashToPoint(ring[i].TargetPublic.Slice())

		l0 := crypto.NewPoint().Add(
			crypto.PublicFromPrivate(r0),
			crypto.NewPoint().ScalarMult(c, target),
		)
		r0p := crypto.NewPoint().Add(
			crypto.NewPoint().ScalarMult(r0, hp),
			crypto.NewPoint().ScalarMult(c, imagePoint),
		)
		diff := crypto.NewPoint().Subtract(commit, pseudo)
		l1 := crypto.NewPoint().Add(
			crypto.PublicFromPrivate(r1),
			crypto.NewPoint().ScalarMult(c, diff),
		)

		c = crypto.ChallengeScalar(message, l0, r0p, l1)
	}

	if c.Equal(c0) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
