package engine

import (
	"crypto/ed25519"

	"mobsigner/internal/domain"
	"mobsigner/internal/util/memzero"
)

// MaxIdentURILen bounds the identity URI.
const MaxIdentURILen = 128

// identSession tracks one identity challenge-signing request.
type identSession struct {
	identityIndex uint32
	uri           string
	challenge     domain.Digest
}

func newIdentSession(index uint32, uri string, challenge domain.Digest) (*identSession, error) {
	if len(uri) == 0 || len(uri) > MaxIdentURILen {
		return nil, ErrParse
	}
	for _, c := range []byte(uri) {
		if c < 0x20 || c > 0x7e {
			return nil, ErrParse
		}
	}
	return &identSession{
		identityIndex: index,
		uri:           uri,
		challenge:     challenge,
	}, nil
}

// sign derives the identity key and signs the stored challenge.
func (s *identSession) sign(provider KeyProvider) (IdentSignatureOutput, error) {
	priv := provider.IdentityKey(s.identityIndex, s.uri)
	defer memzero.Zero(priv)

	var out IdentSignatureOutput
	copy(out.PublicKey[:], priv.Public().(ed25519.PublicKey))
	copy(out.Signature[:], ed25519.Sign(priv, s.challenge.Slice()))
	return out, nil
}

// wipe clears the challenge material.
func (s *identSession) wipe() {
	memzero.Zero32((*[32]byte)(&s.challenge))
	s.uri = ""
}
