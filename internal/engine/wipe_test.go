package engine

import (
	"testing"

	"mobsigner/internal/crypto"
)

// zeroed reports whether a scalar's canonical encoding is all zero.
func zeroed(s *crypto.Scalar) bool {
	enc := crypto.EncodeScalar(s)
	for _, b := range enc.Slice() {
		if b != 0 {
			return false
		}
	}
	return true
}

func TestRingSessionWipeClearsScalars(t *testing.T) {
	blinding := crypto.HashToScalar("wipe-test", []byte{1})
	outputBlinding := crypto.HashToScalar("wipe-test", []byte{2})
	viewPrivate := crypto.HashToScalar("wipe-test", []byte{3})
	subSpend := crypto.HashToScalar("wipe-test", []byte{4})
	onetime := crypto.HashToScalar("wipe-test", []byte{5})

	r := &ringSession{
		blinding:        blinding,
		outputBlinding:  outputBlinding,
		viewPrivate:     viewPrivate,
		subSpendPrivate: subSpend,
		onetimePrivate:  onetime,
	}
	r.wipe()

	for i, s := range []*crypto.Scalar{blinding, outputBlinding, viewPrivate, subSpend, onetime} {
		if !zeroed(s) {
			t.Fatalf("scalar %d not wiped", i)
		}
	}
	if r.blinding != nil || r.onetimePrivate != nil {
		t.Fatal("wiped session retains scalar references")
	}
}

func TestIdentSessionWipeClearsChallenge(t *testing.T) {
	s, err := newIdentSession(0, "mob://example", identDigest())
	if err != nil {
		t.Fatalf("newIdentSession: %v", err)
	}
	s.wipe()

	for _, b := range s.challenge {
		if b != 0 {
			t.Fatal("challenge not wiped")
		}
	}
	if s.uri != "" {
		t.Fatal("uri not cleared")
	}
}

func identDigest() (d [32]byte) {
	for i := range d {
		d[i] = byte(i + 1)
	}
	return d
}
