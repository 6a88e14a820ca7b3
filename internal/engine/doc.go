// Package engine implements the hardware-wallet transaction engine: a
// single-session state machine that derives account keys, signs
// identity challenges, verifies streamed transaction summaries and
// produces MLSAG ring signatures.
//
// The engine consumes typed Events (decoded by internal/apdu) through
// Update and returns one Output per event. Approval flows through the
// same dispatcher as an ApprovalEvent; the UI surface observes state
// through getters only. All private scalars are wiped on every
// terminal transition.
package engine
