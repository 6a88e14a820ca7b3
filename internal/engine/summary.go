package engine

import (
	"encoding/binary"
	"hash"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/blake2b"

	"mobsigner/internal/crypto"
	"mobsigner/internal/domain"
)

// MaxRecords bounds outputs and inputs per summary.
const MaxRecords = 16

// MaxTokens bounds the number of distinct token ids per transaction.
const MaxTokens = 4

// Output flag bits carried by TxSummaryAddTxOut.
const (
	FlagChange uint8 = 1 << 0
	FlagOurs   uint8 = 1 << 1
	FlagFog    uint8 = 1 << 2
	FlagSwap   uint8 = 1 << 3
)

const summaryDigestTag = "mobsigner-tx-summary"

type summaryState uint8

const (
	summaryStateInit summaryState = iota
	summaryStateAddOutputs
	summaryStateAddInputs
	summaryStateReady
	summaryStateComplete
)

// tokenBalance accumulates per-token value flows. Totals are 256-bit
// so sums of up to MaxRecords u64 values cannot wrap.
type tokenBalance struct {
	tokenID uint64
	outputs uint256.Int
	change  uint256.Int
	inflow  uint256.Int
	inputs  uint256.Int
}

// pendingOutput caches an output record until its unblinding arrives.
type pendingOutput struct {
	flags      uint8
	commitment domain.RistrettoPublic
}

// Recipient is one entry of the display recipient list.
type Recipient struct {
	FogID   FogID
	Label   string
	Unknown bool
}

// TokenReport is the per-token display summary handed to the UI.
type TokenReport struct {
	TokenID uint64
	Outflow *uint256.Int
	Change  *uint256.Int
	Net     *uint256.Int
}

// Report is the verified summary published for user confirmation.
type Report struct {
	Tokens         []TokenReport
	Fee            uint64
	FeeTokenID     uint64
	TombstoneBlock uint64
	Recipients     []Recipient
	RequiresScroll bool
}

// summarySession is the streaming transaction-summary verifier.
type summarySession struct {
	state summaryState

	messageDigest domain.Digest
	hasher        hash.Hash

	blockVersion uint32
	totalOutputs int
	totalInputs  int
	counted      int
	countedIn    int

	fee        uint64
	feeTokenID uint64
	tombstone  uint64

	pending *pendingOutput

	balances     [MaxTokens]tokenBalance
	balanceCount int

	recipients     [MaxTokens]Recipient
	recipientCount int
	unknownFog     bool

	report *Report
}

func newSummarySession(ev TxSummaryInitEvent) (*summarySession, error) {
	if ev.NumOutputs == 0 || ev.NumInputs == 0 {
		return nil, ErrInvalidState
	}
	if int(ev.NumOutputs) > MaxRecords || int(ev.NumInputs) > MaxRecords {
		return nil, ErrOutOfBounds
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, ErrRngFailure
	}

	s := &summarySession{
		state:         summaryStateInit,
		messageDigest: ev.Message,
		hasher:        h,
		blockVersion:  ev.BlockVersion,
		totalOutputs:  int(ev.NumOutputs),
		totalInputs:   int(ev.NumInputs),
		fee:           ev.Fee,
		feeTokenID:    ev.TokenID,
		tombstone:     ev.Tombstone,
	}

	h.Write([]byte(summaryDigestTag))
	h.Write(ev.Message.Slice())
	s.writeUint32(ev.BlockVersion)
	h.Write([]byte{ev.NumOutputs, ev.NumInputs})
	s.writeUint64(ev.Fee)
	s.writeUint64(ev.TokenID)
	s.writeUint64(ev.Tombstone)

	return s, nil
}

func (s *summarySession) writeUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.hasher.Write(b[:])
}

func (s *summarySession) writeUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	s.hasher.Write(b[:])
}

// balance returns the accumulator for a token id, allocating a slot if
// needed.
func (s *summarySession) balance(tokenID uint64) (*tokenBalance, error) {
	for i := 0; i < s.balanceCount; i++ {
		if s.balances[i].tokenID == tokenID {
			return &s.balances[i], nil
		}
	}
	if s.balanceCount == MaxTokens {
		return nil, ErrOutOfBounds
	}
	b := &s.balances[s.balanceCount]
	b.tokenID = tokenID
	s.balanceCount++
	return b, nil
}

// addOutput records an output; its unblinding must follow before the
// next output.
func (s *summarySession) addOutput(ev TxSummaryAddTxOutEvent) error {
	switch s.state {
	case summaryStateInit, summaryStateAddOutputs:
	default:
		return ErrInvalidState
	}
	if s.pending != nil {
		return ErrInvalidState
	}
	if s.counted == s.totalOutputs {
		return ErrOutOfBounds
	}

	s.hasher.Write([]byte{0x01, ev.Flags})
	s.hasher.Write(ev.TargetPublic.Slice())
	s.hasher.Write(ev.Commitment.Slice())

	s.pending = &pendingOutput{flags: ev.Flags, commitment: ev.Commitment}
	s.state = summaryStateAddOutputs
	return nil
}

// addUnblinding opens the pending output, verifies the commitment and
// folds the flows into the balance table.
func (s *summarySession) addUnblinding(ev TxSummaryAddTxOutUnblindingEvent) error {
	if s.state != summaryStateAddOutputs || s.pending == nil {
		return ErrInvalidState
	}

	blinding, err := crypto.DecodeScalar(ev.Blinding.Slice())
	if err != nil {
		return ErrCrypto
	}
	gens := crypto.Generators(ev.TokenID)
	open := crypto.EncodePoint(gens.Commit(ev.Value, blinding))
	crypto.WipeScalar(blinding)
	if open != s.pending.commitment {
		return ErrCommitmentMismatch
	}

	s.hasher.Write([]byte{0x02})
	s.writeUint64(ev.Value)
	s.writeUint64(ev.TokenID)
	s.hasher.Write(ev.Blinding.Slice())
	s.hasher.Write([]byte{uint8(ev.FogID)})

	b, err := s.balance(ev.TokenID)
	if err != nil {
		return err
	}
	v := uint256.NewInt(ev.Value)
	b.outputs.Add(&b.outputs, v)
	if s.pending.flags&FlagChange != 0 {
		b.change.Add(&b.change, v)
	} else if s.pending.flags&FlagOurs != 0 {
		b.inflow.Add(&b.inflow, v)
	} else {
		s.recordRecipient(ev.FogID)
	}

	s.pending = nil
	s.counted++
	if s.counted == s.totalOutputs {
		s.state = summaryStateAddInputs
	}
	return nil
}

// recordRecipient tracks up to MaxTokens distinct fog targets.
func (s *summarySession) recordRecipient(fog FogID) {
	for i := 0; i < s.recipientCount; i++ {
		if s.recipients[i].FogID == fog {
			return
		}
	}
	if !fog.Known() {
		s.unknownFog = true
	}
	if s.recipientCount < MaxTokens {
		s.recipients[s.recipientCount] = Recipient{
			FogID:   fog,
			Label:   fog.Label(),
			Unknown: !fog.Known(),
		}
		s.recipientCount++
	}
}

// addInput records one input's unmasked amount.
func (s *summarySession) addInput(ev TxSummaryAddTxInEvent) error {
	if s.state != summaryStateAddInputs {
		return ErrInvalidState
	}
	if s.countedIn == s.totalInputs {
		return ErrOutOfBounds
	}

	blinding, err := crypto.DecodeScalar(ev.Blinding.Slice())
	if err != nil {
		return ErrCrypto
	}
	gens := crypto.Generators(ev.TokenID)
	pseudo := crypto.EncodePoint(gens.Commit(ev.Value, blinding))
	crypto.WipeScalar(blinding)

	s.hasher.Write([]byte{0x03})
	s.writeUint64(ev.Value)
	s.writeUint64(ev.TokenID)
	s.hasher.Write(pseudo.Slice())

	b, err := s.balance(ev.TokenID)
	if err != nil {
		return err
	}
	b.inputs.Add(&b.inputs, uint256.NewInt(ev.Value))

	s.countedIn++
	return nil
}

// build validates counts and mass balance, finalises the digest and
// assembles the display report.
func (s *summarySession) build() (domain.Digest, error) {
	if s.state != summaryStateAddInputs || s.pending != nil {
		return domain.Digest{}, ErrInvalidState
	}
	if s.counted != s.totalOutputs || s.countedIn != s.totalInputs {
		return domain.Digest{}, ErrInvalidState
	}

	// Per-token conservation: inputs must equal outputs plus the fee
	// for the fee token.
	for i := 0; i < s.balanceCount; i++ {
		b := &s.balances[i]
		expect := new(uint256.Int).Set(&b.outputs)
		if b.tokenID == s.feeTokenID {
			expect.Add(expect, uint256.NewInt(s.fee))
		}
		if b.inputs.Cmp(expect) != 0 {
			return domain.Digest{}, ErrUnbalancedSummary
		}
	}

	var digest domain.Digest
	s.hasher.Sum(digest[:0])

	tokens := make([]TokenReport, 0, s.balanceCount)
	for i := 0; i < s.balanceCount; i++ {
		b := &s.balances[i]
		outflow := new(uint256.Int).Set(&b.outputs)
		net := new(uint256.Int).Sub(outflow, &b.change)
		net.Sub(net, &b.inflow)
		tokens = append(tokens, TokenReport{
			TokenID: b.tokenID,
			Outflow: outflow,
			Change:  new(uint256.Int).Set(&b.change),
			Net:     net,
		})
	}

	s.report = &Report{
		Tokens:         tokens,
		Fee:            s.fee,
		FeeTokenID:     s.feeTokenID,
		TombstoneBlock: s.tombstone,
		Recipients:     append([]Recipient(nil), s.recipients[:s.recipientCount]...),
		RequiresScroll: s.unknownFog,
	}

	s.state = summaryStateReady
	return digest, nil
}

// approve marks the verified summary as confirmed.
func (s *summarySession) approve() {
	if s.state == summaryStateReady {
		s.state = summaryStateComplete
	}
}

// progress reports accumulation completion as a percentage.
func (s *summarySession) progress() int {
	total := s.totalOutputs + s.totalInputs + 1
	idx := 0
	switch s.state {
	case summaryStateInit:
		idx = 0
	case summaryStateAddOutputs:
		idx = s.counted
	case summaryStateAddInputs:
		idx = s.totalOutputs + s.countedIn
	case summaryStateReady:
		idx = s.totalOutputs + s.totalInputs
	case summaryStateComplete:
		idx = total
	}
	return idx * 100 / total
}
