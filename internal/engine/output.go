package engine

import "mobsigner/internal/domain"

// Output is the engine's response to one event.
type Output interface {
	isOutput()
}

// StateOutput reports the engine state and session digest.
type StateOutput struct {
	State  State
	Digest domain.Digest
}

// PendingOutput signals that the engine is holding at an approval gate.
type PendingOutput struct {
	State  State
	Digest domain.Digest
}

// AppInfoOutput reports application metadata and session state.
type AppInfoOutput struct {
	Name         string
	Version      string
	ProtoVersion uint8
	State        State
	Digest       domain.Digest
}

// WalletKeysOutput carries the root key material for one account. The
// view private is exported so the host can scan for owned outputs.
type WalletKeysOutput struct {
	AccountIndex uint32
	ViewPublic   domain.RistrettoPublic
	SpendPublic  domain.RistrettoPublic
	ViewPrivate  domain.RistrettoPrivate
}

// SubaddressKeysOutput carries the derived subaddress keys.
type SubaddressKeysOutput struct {
	AccountIndex    uint32
	SubaddressIndex uint64
	ViewPublic      domain.RistrettoPublic
	SpendPublic     domain.RistrettoPublic
	ViewPrivate     domain.RistrettoPrivate
}

// KeyImageOutput carries a standalone key image.
type KeyImageOutput struct {
	KeyImage domain.KeyImage
}

// RandomOutput carries freshly generated bytes.
type RandomOutput struct {
	Data []byte
}

// IdentSignatureOutput carries a signed identity challenge.
type IdentSignatureOutput struct {
	PublicKey domain.Ed25519Public
	Signature [64]byte
}

// TxKeyImageOutput carries the signed ring's key image and initial
// challenge.
type TxKeyImageOutput struct {
	KeyImage domain.KeyImage
	CZero    domain.RistrettoPrivate
}

// TxResponseOutput carries one response row of the signed ring.
type TxResponseOutput struct {
	Index              uint8
	CZero              domain.RistrettoPrivate
	Response           domain.RistrettoPrivate
	CommitmentResponse domain.RistrettoPrivate
}

// MemoSigOutput carries a sender-memo HMAC signature.
type MemoSigOutput struct {
	State  State
	Digest domain.Digest
	Hmac   [16]byte
}

func (StateOutput) isOutput() {}
func (PendingOutput) isOutput() {}
func (AppInfoOutput) isOutput() {}
func (WalletKeysOutput) isOutput() {}
func (SubaddressKeysOutput) isOutput() {}
func (KeyImageOutput) isOutput() {}
func (RandomOutput) isOutput() {}
func (IdentSignatureOutput) isOutput() {}
func (TxKeyImageOutput) isOutput() {}
func (TxResponseOutput) isOutput() {}
func (MemoSigOutput) isOutput() {}
