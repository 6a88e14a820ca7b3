package keys

import (
	"crypto/ed25519"
	"encoding/binary"

	"mobsigner/internal/crypto"
	"mobsigner/internal/util/memzero"
)

const identKdfSalt = "mobilecoin-ident"

// Provider maps derivation requests onto a root seed held by the host.
// It is stateless aside from the seed handle and never exposes the
// seed bytes.
type Provider struct {
	seed []byte
}

// NewProvider wraps a root seed. The provider owns the slice; callers
// must not retain it.
func NewProvider(seed []byte) *Provider {
	return &Provider{seed: seed}
}

// AccountKeys derives the account at a wallet index.
func (p *Provider) AccountKeys(accountIndex uint32) *Account {
	key := Slip10Ed25519(p.seed, WalletPath(accountIndex))
	a := AccountFromSlip10(key)
	memzero.Zero32(&key)
	return a
}

// SubaddressKeys derives the subaddress key pair for an account and
// subaddress index.
func (p *Provider) SubaddressKeys(accountIndex uint32, subaddressIndex uint64) *Subaddress {
	a := p.AccountKeys(accountIndex)
	s := a.Subaddress(subaddressIndex)
	a.Wipe()
	return s
}

// IdentityKey derives the ed25519 signing key for a decentralized
// identity: HKDF of the account-0 view private, bound to the identity
// index and URI.
func (p *Provider) IdentityKey(identityIndex uint32, uri string) ed25519.PrivateKey {
	a := p.AccountKeys(0)

	var le [4]byte
	binary.LittleEndian.PutUint32(le[:], identityIndex)
	info := append(le[:], uri...)

	viewEnc := crypto.EncodeScalar(a.ViewPrivate())
	seed := crypto.HKDF(viewEnc.Slice(), []byte(identKdfSalt), info, ed25519.SeedSize)
	viewEnc.Wipe()
	a.Wipe()

	k := ed25519.NewKeyFromSeed(seed)
	memzero.Zero(seed)
	return k
}

// Wipe clears the seed handle.
func (p *Provider) Wipe() {
	memzero.Zero(p.seed)
	p.seed = nil
}
