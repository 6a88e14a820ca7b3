package engine

import "errors"

// Error kinds surfaced by the engine. Each maps onto an APDU status
// word in internal/apdu.
var (
	// ErrParse indicates a malformed request record.
	ErrParse = errors.New("parse failed")

	// ErrUnknownInstruction indicates an unrecognised instruction tag.
	ErrUnknownInstruction = errors.New("unknown instruction")

	// ErrWrongLength indicates a request body length mismatch.
	ErrWrongLength = errors.New("wrong length")

	// ErrInvalidState indicates an event that is not permitted in the
	// current session state.
	ErrInvalidState = errors.New("invalid state")

	// ErrNoSession indicates a non-init request with no live session.
	ErrNoSession = errors.New("no session")

	// ErrBusy indicates a session-starting event while a different
	// function is live.
	ErrBusy = errors.New("busy")

	// ErrUnauthorized indicates an operation attempted without the
	// required approval.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserRejected indicates the user denied a pending request.
	ErrUserRejected = errors.New("user rejected")

	// ErrSummaryRejected indicates signing was attempted after the
	// transaction summary was rejected.
	ErrSummaryRejected = errors.New("summary rejected")

	// ErrRealIndexMismatch indicates the ring member at the real index
	// does not match the derived onetime public key.
	ErrRealIndexMismatch = errors.New("real index mismatch")

	// ErrDuplicateMember indicates a ring index supplied twice.
	ErrDuplicateMember = errors.New("duplicate ring member")

	// ErrCommitmentMismatch indicates an amount commitment that does
	// not open to the claimed value and blinding.
	ErrCommitmentMismatch = errors.New("commitment mismatch")

	// ErrDigestMismatch indicates the reconstructed summary digest
	// differs from the message to be signed.
	ErrDigestMismatch = errors.New("summary digest mismatch")

	// ErrUnbalancedSummary indicates per-token value conservation does
	// not hold.
	ErrUnbalancedSummary = errors.New("unbalanced summary")

	// ErrOutOfBounds indicates an index outside the session's bounds.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrCrypto is the catch-all for scalar or point decode failures.
	ErrCrypto = errors.New("crypto failure")

	// ErrRngFailure indicates the session randomness source failed.
	ErrRngFailure = errors.New("rng failure")

	// ErrTimeout indicates the session idle timeout expired.
	ErrTimeout = errors.New("session timeout")
)

// terminal reports whether an error must tear down the live session.
// Parse and bounds errors preserve the session; crypto, commitment and
// balance errors do not.
func terminal(err error) bool {
	switch {
	case errors.Is(err, ErrParse),
		errors.Is(err, ErrUnknownInstruction),
		errors.Is(err, ErrWrongLength),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrNoSession),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUserRejected),
		errors.Is(err, ErrSummaryRejected),
		errors.Is(err, ErrOutOfBounds):
		return false
	}
	return true
}
