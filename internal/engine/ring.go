package engine

import (
	"mobsigner/internal/crypto"
	"mobsigner/internal/domain"
	"mobsigner/internal/keys"
)

// MaxRingSize is the hard upper bound on ring members. The upstream
// protocol allows larger rings in principle; this engine rejects them.
const MaxRingSize = 16

type ringState uint8

const (
	ringStateInit ringState = iota
	ringStateBuild
	ringStateComplete
)

// ringMember is one (txout public, target, commitment) row.
type ringMember struct {
	set          bool
	txPublic     domain.RistrettoPublic
	targetPublic domain.RistrettoPublic
	commitment   domain.RistrettoPublic
}

// ringSession accumulates one ring and produces its MLSAG signature.
type ringSession struct {
	state ringState

	realIndex       int
	value           uint64
	tokenID         uint64
	subaddressIndex uint64

	blinding       *crypto.Scalar
	outputBlinding *crypto.Scalar

	// Root view private and subaddress spend private, retained until
	// the real member arrives and the onetime key is recovered.
	viewPrivate     *crypto.Scalar
	subSpendPrivate *crypto.Scalar
	onetimePrivate  *crypto.Scalar

	gens crypto.PedersenGens

	members     [MaxRingSize]ringMember
	memberCount int

	realCommitment    domain.RistrettoPublic
	realCommitmentSet bool

	cZero     domain.RistrettoPrivate
	responses [2 * MaxRingSize]domain.RistrettoPrivate
	keyImage  domain.KeyImage
}

func newRingSession(ev TxRingInitEvent, account *keys.Account, sub *keys.Subaddress) (*ringSession, error) {
	if int(ev.RealIndex) >= MaxRingSize {
		return nil, ErrOutOfBounds
	}

	blinding, err := crypto.DecodeScalar(ev.Blinding.Slice())
	if err != nil {
		return nil, ErrCrypto
	}
	outputBlinding, err := crypto.DecodeScalar(ev.OutputBlinding.Slice())
	if err != nil {
		return nil, ErrCrypto
	}

	return &ringSession{
		state:           ringStateInit,
		realIndex:       int(ev.RealIndex),
		value:           ev.Value,
		tokenID:         ev.TokenID,
		subaddressIndex: ev.SubaddressIndex,
		blinding:        blinding,
		outputBlinding:  outputBlinding,
		viewPrivate:     crypto.CopyScalar(account.ViewPrivate()),
		subSpendPrivate: crypto.CopyScalar(sub.SpendPrivate()),
	}, nil
}

// setRealCommitment stores the real input's amount commitment for the
// value-preservation check at signing time.
func (r *ringSession) setRealCommitment(c domain.RistrettoPublic) {
	r.realCommitment = c
	r.realCommitmentSet = true
}

// addMember appends one ring row at an explicit index. The real row
// must match the onetime public key recovered from the subaddress
// spend key and the txout public key.
func (r *ringSession) addMember(ev TxAddTxOutEvent) error {
	if r.state == ringStateComplete {
		return ErrInvalidState
	}
	idx := int(ev.Index)
	if idx >= MaxRingSize {
		return ErrOutOfBounds
	}
	if r.members[idx].set {
		return ErrDuplicateMember
	}

	if idx == r.realIndex {
		txPublic, err := crypto.DecodePoint(ev.TxPublic.Slice())
		if err != nil {
			return ErrCrypto
		}

		onetime := keys.RecoverOnetimePrivate(txPublic, r.viewPrivate, r.subSpendPrivate)
		derived := crypto.EncodePoint(crypto.PublicFromPrivate(onetime))
		if derived != ev.TargetPublic {
			crypto.WipeScalar(onetime)
			return ErrRealIndexMismatch
		}
		r.onetimePrivate = onetime

		// Recovery keys are no longer needed once the onetime key is
		// held.
		crypto.WipeScalar(r.viewPrivate)
		crypto.WipeScalar(r.subSpendPrivate)
		r.viewPrivate = nil
		r.subSpendPrivate = nil
	}

	r.members[idx] = ringMember{
		set:          true,
		txPublic:     ev.TxPublic,
		targetPublic: ev.TargetPublic,
		commitment:   ev.Commitment,
	}
	r.memberCount++
	r.state = ringStateBuild
	return nil
}

// sign executes the MLSAG over the accumulated ring. All alpha and
// response scalars come from a generator derived from the caller seed
// and the message, so identical inputs produce identical signatures.
func (r *ringSession) sign(seed [32]byte, message []byte) error {
	n := r.memberCount
	if n == 0 || r.realIndex >= n {
		return ErrInvalidState
	}
	for i := 0; i < n; i++ {
		if !r.members[i].set {
			return ErrInvalidState
		}
	}
	if r.onetimePrivate == nil || !r.realCommitmentSet {
		return ErrInvalidState
	}

	r.gens = crypto.Generators(r.tokenID)

	// The real row's commitment must open to (value, blinding) and
	// match the commitment supplied out of band.
	realOpen := crypto.EncodePoint(r.gens.Commit(r.value, r.blinding))
	if realOpen != r.members[r.realIndex].commitment || realOpen != r.realCommitment {
		return ErrCommitmentMismatch
	}

	// Decode ring rows.
	targets := make([]*crypto.Point, n)
	commits := make([]*crypto.Point, n)
	for i := 0; i < n; i++ {
		var err error
		if targets[i], err = crypto.DecodePoint(r.members[i].targetPublic.Slice()); err != nil {
			return ErrCrypto
		}
		if commits[i], err = crypto.DecodePoint(r.members[i].commitment.Slice()); err != nil {
			return ErrCrypto
		}
	}

	pseudoOut := r.gens.Commit(r.value, r.outputBlinding)
	z := crypto.NewScalar().Subtract(r.blinding, r.outputBlinding)

	keyImage := crypto.KeyImage(r.onetimePrivate)
	imagePoint, err := crypto.DecodePoint(keyImage.Slice())
	if err != nil {
		return ErrCrypto
	}

	rng := crypto.NewSigningRng(seed, message)
	alpha0 := rng.Scalar()
	alpha1 := rng.Scalar()

	hpReal := crypto.HashToPoint(r.members[r.realIndex].targetPublic.Slice())

	challenges := make([]*crypto.Scalar, n)
	next := (r.realIndex + 1) % n
	challenges[next] = crypto.ChallengeScalar(
		message,
		crypto.PublicFromPrivate(alpha0),
		crypto.NewPoint().ScalarMult(alpha0, hpReal),
		crypto.PublicFromPrivate(alpha1),
	)

	// Walk the decoy rows in cyclic order, chaining challenges.
	for off := 1; off < n; off++ {
		j := (r.realIndex + off) % n
		k := (j + 1) % n

		r0 := rng.Scalar()
		r1 := rng.Scalar()
		r.responses[2*j] = crypto.EncodeScalar(r0)
		r.responses[2*j+1] = crypto.EncodeScalar(r1)

		hp := crypto.HashToPoint(r.members[j].targetPublic.Slice())
		c := challenges[j]

		l0 := crypto.NewPoint().Add(
			crypto.PublicFromPrivate(r0),
			crypto.NewPoint().ScalarMult(c, targets[j]),
		)
		r0p := crypto.NewPoint().Add(
			crypto.NewPoint().ScalarMult(r0, hp),
			crypto.NewPoint().ScalarMult(c, imagePoint),
		)
		diff := crypto.NewPoint().Subtract(commits[j], pseudoOut)
		l1 := crypto.NewPoint().Add(
			crypto.PublicFromPrivate(r1),
			crypto.NewPoint().ScalarMult(c, diff),
		)

		challenges[k] = crypto.ChallengeScalar(message, l0, r0p, l1)
	}

	// Close the ring at the real row.
	cReal := challenges[r.realIndex]
	r0Real := crypto.NewScalar().Subtract(
		alpha0, crypto.NewScalar().Multiply(cReal, r.onetimePrivate),
	)
	r1Real := crypto.NewScalar().Subtract(
		alpha1, crypto.NewScalar().Multiply(cReal, z),
	)
	r.responses[2*r.realIndex] = crypto.EncodeScalar(r0Real)
	r.responses[2*r.realIndex+1] = crypto.EncodeScalar(r1Real)

	r.cZero = crypto.EncodeScalar(challenges[0])
	r.keyImage = keyImage
	r.state = ringStateComplete

	crypto.WipeScalar(alpha0)
	crypto.WipeScalar(alpha1)
	crypto.WipeScalar(z)
	return nil
}

// response returns the response pair for one ring row.
func (r *ringSession) response(index uint8) (TxResponseOutput, error) {
	if r.state != ringStateComplete {
		return TxResponseOutput{}, ErrInvalidState
	}
	if int(index) >= r.memberCount {
		return TxResponseOutput{}, ErrOutOfBounds
	}
	return TxResponseOutput{
		Index:              index,
		CZero:              r.cZero,
		Response:           r.responses[2*index],
		CommitmentResponse: r.responses[2*index+1],
	}, nil
}

// progress reports ring completion as a percentage.
func (r *ringSession) progress() int {
	switch r.state {
	case ringStateInit:
		return 0
	case ringStateBuild:
		return r.memberCount * 100 / (MaxRingSize + 2)
	case ringStateComplete:
		return 100
	}
	return 0
}

// wipe clears every secret the session holds.
func (r *ringSession) wipe() {
	crypto.WipeScalar(r.blinding)
	crypto.WipeScalar(r.outputBlinding)
	crypto.WipeScalar(r.viewPrivate)
	crypto.WipeScalar(r.subSpendPrivate)
	crypto.WipeScalar(r.onetimePrivate)
	r.blinding = nil
	r.outputBlinding = nil
	r.viewPrivate = nil
	r.subSpendPrivate = nil
	r.onetimePrivate = nil
}
