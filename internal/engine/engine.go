package engine

import (
	"crypto/ed25519"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"mobsigner/internal/crypto"
	"mobsigner/internal/domain"
	"mobsigner/internal/keys"
	"mobsigner/internal/util/memzero"
)

const (
	// AppName identifies the engine to the host.
	AppName = "mobsigner"
	// AppVersion is the reported application version.
	AppVersion = "0.1.0"
	// ProtoVersion is the wire protocol revision.
	ProtoVersion uint8 = 1

	// DefaultSessionTimeout resets an idle session.
	DefaultSessionTimeout = 5 * time.Minute
)

// KeyProvider maps derivation requests onto the host-held root seed.
type KeyProvider interface {
	AccountKeys(accountIndex uint32) *keys.Account
	SubaddressKeys(accountIndex uint32, subaddressIndex uint64) *keys.Subaddress
	IdentityKey(identityIndex uint32, uri string) ed25519.PrivateKey
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTimeout overrides the idle session timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is the single-session transaction engine. It is not safe for
// concurrent use; the scheduling model is strictly cooperative.
type Engine struct {
	provider KeyProvider
	log      *zap.Logger
	now      func() time.Time
	timeout  time.Duration

	lastEvent time.Time
	unlocked  bool

	state        State
	accountIndex uint32
	numRings     int
	ringCount    int
	memoCount    int

	messageSet bool
	message    domain.Digest

	digest domain.Digest

	rng *crypto.Rng

	ident   *identSession
	ring    *ringSession
	summary *summarySession

	summaryRejected bool
}

// New builds an engine over a key provider. Engines start unlocked;
// the idle timeout locks them again.
func New(provider KeyProvider, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		log:      zap.NewNop(),
		now:      time.Now,
		timeout:  DefaultSessionTimeout,
		unlocked: true,
		state:    StateInit,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// State returns the engine state byte.
func (e *Engine) State() State { return e.state }

// Digest returns the running session digest.
func (e *Engine) Digest() domain.Digest { return e.digest }

// IsUnlocked reports whether key requests are allowed.
func (e *Engine) IsUnlocked() bool { return e.unlocked }

// Unlock allows key requests and scanning.
func (e *Engine) Unlock() { e.unlocked = true }

// Lock re-arms the approval requirement for key requests.
func (e *Engine) Lock() { e.unlocked = false }

// Message returns the 32-byte message to be signed, if set.
func (e *Engine) Message() (domain.Digest, bool) {
	return e.message, e.messageSet
}

// Report returns the verified summary report for display, if one is
// pending or approved.
func (e *Engine) Report() *Report {
	if e.summary == nil {
		return nil
	}
	return e.summary.report
}

// PendingIdent returns the identity request awaiting approval.
func (e *Engine) PendingIdent() (uri string, index uint32, ok bool) {
	if e.state != StateIdent || e.ident == nil {
		return "", 0, false
	}
	return e.ident.uri, e.ident.identityIndex, true
}

// Progress reports completion of the current streaming operation.
func (e *Engine) Progress() int {
	switch {
	case e.state == StateSummary && e.summary != nil:
		return e.summary.progress()
	case e.ring != nil && (e.state == StateRingInit || e.state == StateRingBuild || e.state == StateRingSigned):
		return e.ring.progress()
	}
	return 0
}

// Reset aborts and zeroises all sessions.
func (e *Engine) Reset() {
	e.wipeSessions()
	e.state = StateInit
	e.messageSet = false
	memzero.Zero32((*[32]byte)(&e.message))
	memzero.Zero32((*[32]byte)(&e.digest))
	e.numRings = 0
	e.ringCount = 0
	e.memoCount = 0
	e.summaryRejected = false
}

func (e *Engine) wipeSessions() {
	if e.ident != nil {
		e.ident.wipe()
		e.ident = nil
	}
	if e.ring != nil {
		e.ring.wipe()
		e.ring = nil
	}
	e.summary = nil
}

// Update dispatches one event and returns its output. Every error has
// already torn down the offending session if it was terminal.
func (e *Engine) Update(ev Event) (Output, error) {
	now := e.now()
	if e.state != StateInit && !e.lastEvent.IsZero() && now.Sub(e.lastEvent) > e.timeout {
		e.log.Warn("session timeout, resetting")
		e.Reset()
		e.Lock()
		e.lastEvent = now
		return nil, ErrTimeout
	}
	e.lastEvent = now

	if sum, ok := eventDigest(ev); ok {
		e.foldDigest(sum)
	}

	out, err := e.dispatch(ev)
	if err != nil {
		if terminal(err) {
			e.log.Warn("terminal error, zeroising session", zap.Error(err))
			e.wipeSessions()
			e.state = StateError
		}
		return nil, err
	}
	return out, nil
}

// foldDigest chains a mutating event into the session digest.
func (e *Engine) foldDigest(sum [32]byte) {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(e.digest.Slice())
	h.Write(sum[:])
	h.Sum(e.digest[:0])
}

func (e *Engine) dispatch(ev Event) (Output, error) {
	switch ev := ev.(type) {
	case AppInfoEvent:
		return AppInfoOutput{
			Name:         AppName,
			Version:      AppVersion,
			ProtoVersion: ProtoVersion,
			State:        e.state,
			Digest:       e.digest,
		}, nil

	case ResetEvent:
		e.Reset()
		return StateOutput{State: e.state, Digest: e.digest}, nil

	case ApprovalEvent:
		return e.handleApproval(ev.Approve)

	case WalletKeysEvent:
		return e.walletKeys(ev.AccountIndex)

	case SubaddressKeysEvent:
		return e.subaddressKeys(ev.AccountIndex, ev.SubaddressIndex)

	case KeyImageEvent:
		return e.keyImage(ev)

	case RandomEvent:
		return e.random(ev.N)

	case IdentInitEvent:
		return e.identInit(ev)

	case TxInitEvent:
		return e.txInit(ev)

	case TxMemoSignEvent:
		return e.memoSign(ev)

	case TxSetMessageEvent:
		switch e.state {
		case StateSignMemos, StateSetMessage:
		case StateInit:
			return nil, ErrNoSession
		default:
			return nil, ErrInvalidState
		}
		e.message = ev.Digest
		e.messageSet = true
		e.state = StatePending
		return PendingOutput{State: e.state, Digest: e.digest}, nil

	case TxSummaryInitEvent:
		switch e.state {
		case StateSignMemos, StateSetMessage:
		case StateInit:
			return nil, ErrNoSession
		default:
			return nil, ErrInvalidState
		}
		s, err := newSummarySession(ev)
		if err != nil {
			return nil, err
		}
		e.summary = s
		e.state = StateSummary
		return StateOutput{State: e.state, Digest: e.digest}, nil

	case TxSummaryAddTxOutEvent:
		if err := e.requireSummary(); err != nil {
			return nil, err
		}
		if err := e.summary.addOutput(ev); err != nil {
			return nil, err
		}
		return StateOutput{State: e.state, Digest: e.digest}, nil

	case TxSummaryAddTxOutUnblindingEvent:
		if err := e.requireSummary(); err != nil {
			return nil, err
		}
		if err := e.summary.addUnblinding(ev); err != nil {
			return nil, err
		}
		return StateOutput{State: e.state, Digest: e.digest}, nil

	case TxSummaryAddTxInEvent:
		if err := e.requireSummary(); err != nil {
			return nil, err
		}
		if err := e.summary.addInput(ev); err != nil {
			return nil, err
		}
		return StateOutput{State: e.state, Digest: e.digest}, nil

	case TxSummaryBuildEvent:
		if err := e.requireSummary(); err != nil {
			return nil, err
		}
		digest, err := e.summary.build()
		if err != nil {
			// A summary that fails verification can never be signed.
			e.summaryRejected = true
			return nil, err
		}
		// A message supplied ahead of the summary must match the
		// reconstructed digest; otherwise the digest becomes the
		// message the rings sign.
		if e.messageSet && digest != e.message {
			e.summaryRejected = true
			return nil, ErrDigestMismatch
		}
		e.message = digest
		e.messageSet = true
		e.state = StatePending
		return PendingOutput{State: e.state, Digest: e.digest}, nil

	case TxRingInitEvent:
		return e.ringInit(ev)

	case TxSetBlindingEvent:
		if err := e.requireRing(); err != nil {
			return nil, err
		}
		e.ring.setRealCommitment(ev.RealCommitment)
		return StateOutput{State: e.state, Digest: e.digest}, nil

	case TxAddTxOutEvent:
		if err := e.requireRing(); err != nil {
			return nil, err
		}
		if err := e.ring.addMember(ev); err != nil {
			return nil, err
		}
		e.state = StateRingBuild
		return StateOutput{State: e.state, Digest: e.digest}, nil

	case TxRingSignEvent:
		return e.ringSign(ev)

	case TxGetKeyImageEvent:
		if err := e.requireRing(); err != nil {
			return nil, err
		}
		if e.ring.state != ringStateComplete {
			return nil, ErrInvalidState
		}
		return TxKeyImageOutput{KeyImage: e.ring.keyImage, CZero: e.ring.cZero}, nil

	case TxGetResponseEvent:
		if err := e.requireRing(); err != nil {
			return nil, err
		}
		return e.ring.response(ev.Index)

	case TxCompleteEvent:
		if e.state == StateInit {
			return nil, ErrNoSession
		}
		e.wipeSessions()
		e.state = StateComplete
		return StateOutput{State: e.state, Digest: e.digest}, nil
	}

	return nil, ErrInvalidState
}

func (e *Engine) requireSummary() error {
	if e.state != StateSummary || e.summary == nil {
		if e.state == StateInit {
			return ErrNoSession
		}
		return ErrInvalidState
	}
	return nil
}

func (e *Engine) requireRing() error {
	switch e.state {
	case StateRingInit, StateRingBuild, StateRingSigned:
		if e.ring != nil {
			return nil
		}
	case StateInit:
		return ErrNoSession
	}
	return ErrInvalidState
}

func (e *Engine) handleApproval(approve bool) (Output, error) {
	switch {
	case e.state == StateIdent && e.ident != nil:
		ident := e.ident
		e.ident = nil
		if !approve {
			ident.wipe()
			e.state = StateInit
			return nil, ErrUserRejected
		}
		out, err := ident.sign(e.provider)
		ident.wipe()
		if err != nil {
			return nil, err
		}
		e.state = StateInit
		return out, nil

	case e.state == StatePending:
		if !approve {
			if e.summary != nil {
				e.summaryRejected = true
			}
			e.wipeSessions()
			e.state = StateDenied
			return nil, ErrUserRejected
		}
		if e.summary != nil {
			e.summary.approve()
		}
		e.state = StateReady
		return StateOutput{State: e.state, Digest: e.digest}, nil
	}

	return nil, ErrInvalidState
}

func (e *Engine) walletKeys(accountIndex uint32) (Output, error) {
	if !e.unlocked {
		return nil, ErrUnauthorized
	}
	a := e.provider.AccountKeys(accountIndex)
	defer a.Wipe()

	return WalletKeysOutput{
		AccountIndex: accountIndex,
		ViewPublic:   a.ViewPublic(),
		SpendPublic:  a.SpendPublic(),
		ViewPrivate:  crypto.EncodeScalar(a.ViewPrivate()),
	}, nil
}

func (e *Engine) subaddressKeys(accountIndex uint32, subaddressIndex uint64) (Output, error) {
	if !e.unlocked {
		return nil, ErrUnauthorized
	}
	s := e.provider.SubaddressKeys(accountIndex, subaddressIndex)
	defer s.Wipe()

	return SubaddressKeysOutput{
		AccountIndex:    accountIndex,
		SubaddressIndex: subaddressIndex,
		ViewPublic:      s.ViewPublic(),
		SpendPublic:     s.SpendPublic(),
		ViewPrivate:     crypto.EncodeScalar(s.ViewPrivate()),
	}, nil
}

func (e *Engine) keyImage(ev KeyImageEvent) (Output, error) {
	if !e.unlocked {
		return nil, ErrUnauthorized
	}
	txPublic, err := crypto.DecodePoint(ev.TxPublic.Slice())
	if err != nil {
		return nil, ErrCrypto
	}

	a := e.provider.AccountKeys(e.accountIndex)
	s := a.Subaddress(ev.SubaddressIndex)

	onetime := keys.RecoverOnetimePrivate(txPublic, a.ViewPrivate(), s.SpendPrivate())
	a.Wipe()
	s.Wipe()

	img := crypto.KeyImage(onetime)
	crypto.WipeScalar(onetime)

	return KeyImageOutput{KeyImage: img}, nil
}

func (e *Engine) random(n uint8) (Output, error) {
	if err := e.ensureRng(); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	e.rng.Fill(out)
	return RandomOutput{Data: out}, nil
}

func (e *Engine) ensureRng() error {
	if e.rng != nil {
		return nil
	}
	rng, err := crypto.NewSessionRng()
	if err != nil {
		return ErrRngFailure
	}
	e.rng = rng
	return nil
}

func (e *Engine) identInit(ev IdentInitEvent) (Output, error) {
	switch e.state {
	case StateInit, StateIdent, StateComplete, StateDenied:
	default:
		return nil, ErrBusy
	}

	s, err := newIdentSession(ev.IdentityIndex, ev.URI, ev.Challenge)
	if err != nil {
		return nil, err
	}
	e.wipeSessions()
	e.ident = s
	e.state = StateIdent
	e.log.Info("identity request pending approval",
		zap.String("uri", ev.URI), zap.Uint32("index", ev.IdentityIndex))
	return PendingOutput{State: e.state, Digest: e.digest}, nil
}

func (e *Engine) txInit(ev TxInitEvent) (Output, error) {
	if e.state == StateIdent {
		return nil, ErrBusy
	}
	if err := e.ensureRng(); err != nil {
		return nil, err
	}

	// An existing transaction session is reset before starting over.
	e.Reset()

	e.accountIndex = ev.AccountIndex
	e.numRings = int(ev.NumRings)

	var seed [32]byte
	e.rng.Fill(seed[:])
	sum := blake2b.Sum256(seed[:])
	copy(e.digest[:], sum[:])

	e.state = StateSignMemos
	e.log.Info("transaction session started",
		zap.Uint32("account", ev.AccountIndex), zap.Uint8("rings", ev.NumRings))
	return StateOutput{State: e.state, Digest: e.digest}, nil
}

func (e *Engine) memoSign(ev TxMemoSignEvent) (Output, error) {
	switch e.state {
	case StateSignMemos:
	case StateInit:
		return nil, ErrNoSession
	default:
		return nil, ErrInvalidState
	}

	targetPublic, err := crypto.DecodePoint(ev.TargetPublic.Slice())
	if err != nil {
		return nil, ErrCrypto
	}

	s := e.provider.SubaddressKeys(e.accountIndex, keys.DefaultSubaddressIndex)
	shared := crypto.NewPoint().ScalarMult(s.SpendPrivate(), targetPublic)
	s.Wipe()

	key := crypto.EncodePoint(shared)
	hmac := crypto.MemoHmac(key[:], []byte("mobsigner-memo"), ev.TxPublic.Slice(), ev.AddressHash.Slice())
	memzero.Zero(key[:])

	e.memoCount++
	return MemoSigOutput{State: e.state, Digest: e.digest, Hmac: hmac}, nil
}

func (e *Engine) ringInit(ev TxRingInitEvent) (Output, error) {
	if e.summaryRejected {
		return nil, ErrSummaryRejected
	}
	switch e.state {
	case StateReady, StateRingSigned:
	case StateInit:
		return nil, ErrNoSession
	default:
		return nil, ErrInvalidState
	}
	if !e.messageSet {
		return nil, ErrInvalidState
	}

	a := e.provider.AccountKeys(e.accountIndex)
	s := a.Subaddress(ev.SubaddressIndex)

	ring, err := newRingSession(ev, a, s)
	a.Wipe()
	s.Wipe()
	if err != nil {
		return nil, err
	}

	if e.ring != nil {
		e.ring.wipe()
		e.ringCount++
	}
	e.ring = ring
	e.state = StateRingInit
	return StateOutput{State: e.state, Digest: e.digest}, nil
}

func (e *Engine) ringSign(ev TxRingSignEvent) (Output, error) {
	if e.summaryRejected {
		return nil, ErrSummaryRejected
	}
	if err := e.requireRing(); err != nil {
		return nil, err
	}
	if !e.messageSet {
		return nil, ErrInvalidState
	}

	if err := e.ring.sign(ev.Seed, e.message.Slice()); err != nil {
		return nil, err
	}
	e.state = StateRingSigned
	return StateOutput{State: e.state, Digest: e.digest}, nil
}
