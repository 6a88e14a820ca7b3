package keys

import (
	"encoding/binary"

	"github.com/gtank/ristretto255"

	"mobsigner/internal/crypto"
	"mobsigner/internal/domain"
	"mobsigner/internal/util/memzero"
)

const (
	viewKdfSalt  = "mobilecoin-ristretto255-view"
	spendKdfSalt = "mobilecoin-ristretto255-spend"

	subaddressTag = "mc_subaddress"
)

// DefaultSubaddressIndex is the primary receive subaddress.
const DefaultSubaddressIndex uint64 = 0

// ChangeSubaddressIndex is the reserved change subaddress.
const ChangeSubaddressIndex uint64 = 0x7fffffff

// Account holds the root (view, spend) key pair for one wallet index.
type Account struct {
	viewPrivate  *crypto.Scalar
	spendPrivate *crypto.Scalar
}

// AccountFromSlip10 derives an account from a SLIP-0010 ed25519 key,
// matching the reference MobileCoin expansion.
func AccountFromSlip10(key [32]byte) *Account {
	viewWide := crypto.HKDF(key[:], []byte(viewKdfSalt), nil, 64)
	spendWide := crypto.HKDF(key[:], []byte(spendKdfSalt), nil, 64)

	a := &Account{
		viewPrivate:  crypto.ScalarFromWide(viewWide),
		spendPrivate: crypto.ScalarFromWide(spendWide),
	}
	memzero.Zero(viewWide)
	memzero.Zero(spendWide)
	return a
}

// ViewPrivate returns the root view private scalar.
func (a *Account) ViewPrivate() *crypto.Scalar { return a.viewPrivate }

// SpendPrivate returns the root spend private scalar.
func (a *Account) SpendPrivate() *crypto.Scalar { return a.spendPrivate }

// ViewPublic returns the compressed root view public key.
func (a *Account) ViewPublic() domain.RistrettoPublic {
	return crypto.EncodePoint(crypto.PublicFromPrivate(a.viewPrivate))
}

// SpendPublic returns the compressed root spend public key.
func (a *Account) SpendPublic() domain.RistrettoPublic {
	return crypto.EncodePoint(crypto.PublicFromPrivate(a.spendPrivate))
}

// Wipe clears the private scalars.
func (a *Account) Wipe() {
	crypto.WipeScalar(a.viewPrivate)
	crypto.WipeScalar(a.spendPrivate)
}

// Subaddress holds the derived key pair for one subaddress index.
type Subaddress struct {
	viewPrivate  *crypto.Scalar
	spendPrivate *crypto.Scalar
}

// Subaddress derives the keys for a subaddress index:
//
//	m = Hs(tag ‖ a ‖ index)
//	d = b + m, c = a·d
func (a *Account) Subaddress(index uint64) *Subaddress {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], index)

	viewEnc := crypto.EncodeScalar(a.viewPrivate)
	m := crypto.HashToScalar(subaddressTag, viewEnc.Slice(), le[:])
	viewEnc.Wipe()

	d := crypto.NewScalar().Add(a.spendPrivate, m)
	c := crypto.NewScalar().Multiply(a.viewPrivate, d)
	crypto.WipeScalar(m)

	return &Subaddress{viewPrivate: c, spendPrivate: d}
}

// ViewPrivate returns the subaddress view private scalar.
func (s *Subaddress) ViewPrivate() *crypto.Scalar { return s.viewPrivate }

// SpendPrivate returns the subaddress spend private scalar.
func (s *Subaddress) SpendPrivate() *crypto.Scalar { return s.spendPrivate }

// ViewPublic returns the compressed subaddress view public key.
func (s *Subaddress) ViewPublic() domain.RistrettoPublic {
	return crypto.EncodePoint(crypto.PublicFromPrivate(s.viewPrivate))
}

// SpendPublic returns the compressed subaddress spend public key.
func (s *Subaddress) SpendPublic() domain.RistrettoPublic {
	return crypto.EncodePoint(crypto.PublicFromPrivate(s.spendPrivate))
}

// Wipe clears the private scalars.
func (s *Subaddress) Wipe() {
	crypto.WipeScalar(s.viewPrivate)
	crypto.WipeScalar(s.spendPrivate)
}

// RecoverOnetimePrivate recomputes the onetime private key for an
// owned output: Hs(a·R) + d.
func RecoverOnetimePrivate(txPublic *crypto.Point, viewPrivate, subaddressSpendPrivate *crypto.Scalar) *crypto.Scalar {
	shared := ristretto255.NewElement().ScalarMult(viewPrivate, txPublic)
	hs := crypto.OnetimeKeyHash(shared)
	out := crypto.NewScalar().Add(hs, subaddressSpendPrivate)
	crypto.WipeScalar(hs)
	return out
}

