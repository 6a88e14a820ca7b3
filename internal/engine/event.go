package engine

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"mobsigner/internal/domain"
)

// Event is a decoded request consumed by the dispatcher.
type Event interface {
	isEvent()
}

// AppInfoEvent requests application and session state.
type AppInfoEvent struct{}

// WalletKeysEvent requests the root keys for a wallet index.
type WalletKeysEvent struct {
	AccountIndex uint32
}

// SubaddressKeysEvent requests the keys for a subaddress.
type SubaddressKeysEvent struct {
	AccountIndex    uint32
	SubaddressIndex uint64
}

// KeyImageEvent requests the key image for an owned output.
type KeyImageEvent struct {
	SubaddressIndex uint64
	TxPublic        domain.RistrettoPublic
}

// RandomEvent requests n random bytes.
type RandomEvent struct {
	N uint8
}

// IdentInitEvent starts an identity challenge-signing session.
type IdentInitEvent struct {
	IdentityIndex uint32
	URI           string
	Challenge     domain.Digest
}

// ApprovalEvent carries the user's decision for a pending gate. It is
// injected by the UI surface, never decoded from the wire.
type ApprovalEvent struct {
	Approve bool
}

// TxInitEvent starts a transaction session.
type TxInitEvent struct {
	AccountIndex uint32
	NumRings     uint8
}

// TxSetMessageEvent records the 32-byte message to sign directly,
// bypassing summary verification (block versions < 3).
type TxSetMessageEvent struct {
	Digest domain.Digest
}

// TxSummaryInitEvent starts the streaming summary verifier.
type TxSummaryInitEvent struct {
	Message      domain.Digest
	BlockVersion uint32
	NumOutputs   uint8
	NumInputs    uint8
	Fee          uint64
	TokenID      uint64
	Tombstone    uint64
}

// TxSummaryAddTxOutEvent supplies one output record.
type TxSummaryAddTxOutEvent struct {
	Flags        uint8
	TargetPublic domain.RistrettoPublic
	Commitment   domain.RistrettoPublic
}

// TxSummaryAddTxOutUnblindingEvent opens the preceding output.
type TxSummaryAddTxOutUnblindingEvent struct {
	Value    uint64
	TokenID  uint64
	Blinding domain.RistrettoPrivate
	FogID    FogID
}

// TxSummaryAddTxInEvent supplies one input record.
type TxSummaryAddTxInEvent struct {
	Value    uint64
	TokenID  uint64
	Blinding domain.RistrettoPrivate
}

// TxSummaryBuildEvent finalises the summary and requests approval.
type TxSummaryBuildEvent struct{}

// TxRingInitEvent starts one ring-signing sub-session.
type TxRingInitEvent struct {
	RealIndex       uint8
	Value           uint64
	TokenID         uint64
	Blinding        domain.RistrettoPrivate
	OutputBlinding  domain.RistrettoPrivate
	SubaddressIndex uint64
}

// TxSetBlindingEvent records the real input's amount commitment.
type TxSetBlindingEvent struct {
	RealCommitment domain.RistrettoPublic
}

// TxAddTxOutEvent appends one ring member.
type TxAddTxOutEvent struct {
	Index        uint8
	TxPublic     domain.RistrettoPublic
	TargetPublic domain.RistrettoPublic
	Commitment   domain.RistrettoPublic
}

// TxRingSignEvent executes the ring signature with a deterministic
// signing seed.
type TxRingSignEvent struct {
	Seed [32]byte
}

// TxGetKeyImageEvent fetches the key image of the signed ring.
type TxGetKeyImageEvent struct{}

// TxGetResponseEvent fetches one response row of the signed ring.
type TxGetResponseEvent struct {
	Index uint8
}

// TxMemoSignEvent requests a sender-memo HMAC signature.
type TxMemoSignEvent struct {
	TargetPublic domain.RistrettoPublic
	AddressHash  domain.AddressHash
	TxPublic     domain.RistrettoPublic
}

// TxCompleteEvent closes the transaction session.
type TxCompleteEvent struct{}

// ResetEvent aborts and zeroises everything.
type ResetEvent struct{}

func (AppInfoEvent) isEvent() {}
func (WalletKeysEvent) isEvent() {}
func (SubaddressKeysEvent) isEvent() {}
func (KeyImageEvent) isEvent() {}
func (RandomEvent) isEvent() {}
func (IdentInitEvent) isEvent() {}
func (ApprovalEvent) isEvent() {}
func (TxInitEvent) isEvent() {}
func (TxSetMessageEvent) isEvent() {}
func (TxSummaryInitEvent) isEvent() {}
func (TxSummaryAddTxOutEvent) isEvent() {}
func (TxSummaryAddTxOutUnblindingEvent) isEvent() {}
func (TxSummaryAddTxInEvent) isEvent() {}
func (TxSummaryBuildEvent) isEvent() {}
func (TxRingInitEvent) isEvent() {}
func (TxSetBlindingEvent) isEvent() {}
func (TxAddTxOutEvent) isEvent() {}
func (TxRingSignEvent) isEvent() {}
func (TxGetKeyImageEvent) isEvent() {}
func (TxGetResponseEvent) isEvent() {}
func (TxMemoSignEvent) isEvent() {}
func (TxCompleteEvent) isEvent() {}
func (ResetEvent) isEvent() {}

// eventDigest serialises a mutating event for the running session
// digest. Read-only events return ok=false and are not folded.
func eventDigest(ev Event) (sum [32]byte, ok bool) {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	le32 := func(v uint32) { _ = binary.Write(h, binary.LittleEndian, v) }
	le64 := func(v uint64) { _ = binary.Write(h, binary.LittleEndian, v) }

	switch e := ev.(type) {
	case TxInitEvent:
		h.Write([]byte{0x30})
		le32(e.AccountIndex)
		h.Write([]byte{e.NumRings})
	case TxSetMessageEvent:
		h.Write([]byte{0x31})
		h.Write(e.Digest.Slice())
	case TxSummaryInitEvent:
		h.Write([]byte{0x32})
		h.Write(e.Message.Slice())
		le32(e.BlockVersion)
		h.Write([]byte{e.NumOutputs, e.NumInputs})
		le64(e.Fee)
		le64(e.TokenID)
		le64(e.Tombstone)
	case TxSummaryAddTxOutEvent:
		h.Write([]byte{0x33, e.Flags})
		h.Write(e.TargetPublic.Slice())
		h.Write(e.Commitment.Slice())
	case TxSummaryAddTxOutUnblindingEvent:
		h.Write([]byte{0x34})
		le64(e.Value)
		le64(e.TokenID)
		h.Write(e.Blinding.Slice())
		h.Write([]byte{uint8(e.FogID)})
	case TxSummaryAddTxInEvent:
		h.Write([]byte{0x35})
		le64(e.Value)
		le64(e.TokenID)
		h.Write(e.Blinding.Slice())
	case TxSummaryBuildEvent:
		h.Write([]byte{0x36})
	case TxRingInitEvent:
		h.Write([]byte{0x40, e.RealIndex})
		le64(e.Value)
		le64(e.TokenID)
		h.Write(e.Blinding.Slice())
		h.Write(e.OutputBlinding.Slice())
		le64(e.SubaddressIndex)
	case TxSetBlindingEvent:
		h.Write([]byte{0x41})
		h.Write(e.RealCommitment.Slice())
	case TxAddTxOutEvent:
		h.Write([]byte{0x42, e.Index})
		h.Write(e.TxPublic.Slice())
		h.Write(e.TargetPublic.Slice())
		h.Write(e.Commitment.Slice())
	case TxRingSignEvent:
		h.Write([]byte{0x43})
		h.Write(e.Seed[:])
	case TxMemoSignEvent:
		h.Write([]byte{0x50})
		h.Write(e.TargetPublic.Slice())
		h.Write(e.AddressHash.Slice())
		h.Write(e.TxPublic.Slice())
	default:
		return sum, false
	}

	h.Sum(sum[:0])
	return sum, true
}
