package engine_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"mobsigner/internal/domain"
	"mobsigner/internal/engine"
)

func identChallenge() domain.Digest {
	var c domain.Digest
	for i := range c {
		c[i] = byte(i + 1)
	}
	return c
}

func TestIdentSignApproved(t *testing.T) {
	e := newTestEngine(t)

	out, err := e.Update(engine.IdentInitEvent{
		IdentityIndex: 0,
		URI:           "mob://example",
		Challenge:     identChallenge(),
	})
	require.NoError(t, err)
	require.IsType(t, engine.PendingOutput{}, out)
	require.Equal(t, engine.StateIdent, e.State())

	uri, index, ok := e.PendingIdent()
	require.True(t, ok)
	require.Equal(t, "mob://example", uri)
	require.Equal(t, uint32(0), index)

	out, err = e.Update(engine.ApprovalEvent{Approve: true})
	require.NoError(t, err)
	sig := out.(engine.IdentSignatureOutput)

	challenge := identChallenge()
	require.True(t, ed25519.Verify(
		ed25519.PublicKey(sig.PublicKey.Slice()), challenge.Slice(), sig.Signature[:],
	))
	require.Equal(t, engine.StateInit, e.State())
}

func TestIdentSignRejected(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Update(engine.IdentInitEvent{
		URI:       "mob://example",
		Challenge: identChallenge(),
	})
	require.NoError(t, err)

	_, err = e.Update(engine.ApprovalEvent{Approve: false})
	require.ErrorIs(t, err, engine.ErrUserRejected)

	// Re-issuing the request is legal after rejection.
	_, err = e.Update(engine.IdentInitEvent{
		URI:       "mob://example",
		Challenge: identChallenge(),
	})
	require.NoError(t, err)
	require.Equal(t, engine.StateIdent, e.State())
}

func TestIdentSignatureBinding(t *testing.T) {
	sign := func(index uint32, uri string) engine.IdentSignatureOutput {
		e := newTestEngine(t)
		_, err := e.Update(engine.IdentInitEvent{
			IdentityIndex: index, URI: uri, Challenge: identChallenge(),
		})
		require.NoError(t, err)
		out, err := e.Update(engine.ApprovalEvent{Approve: true})
		require.NoError(t, err)
		return out.(engine.IdentSignatureOutput)
	}

	a := sign(0, "mob://example")
	b := sign(0, "mob://example")
	require.Equal(t, a, b, "identity signing must be deterministic")

	c := sign(1, "mob://example")
	require.NotEqual(t, a.PublicKey, c.PublicKey, "identity index must bind the key")

	d := sign(0, "mob://other")
	require.NotEqual(t, a.PublicKey, d.PublicKey, "identity uri must bind the key")
}

func TestIdentRejectsBadURI(t *testing.T) {
	e := newTestEngine(t)

	// Non-printable bytes are refused.
	_, err := e.Update(engine.IdentInitEvent{
		URI: "mob://bad\x01uri", Challenge: identChallenge(),
	})
	require.ErrorIs(t, err, engine.ErrParse)

	// Empty URIs are refused.
	_, err = e.Update(engine.IdentInitEvent{Challenge: identChallenge()})
	require.ErrorIs(t, err, engine.ErrParse)

	// Oversized URIs are refused.
	long := make([]byte, engine.MaxIdentURILen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = e.Update(engine.IdentInitEvent{URI: string(long), Challenge: identChallenge()})
	require.ErrorIs(t, err, engine.ErrParse)

	// The engine remains usable.
	require.Equal(t, engine.StateInit, e.State())
}

func TestIdentSignWithoutApproval(t *testing.T) {
	e := newTestEngine(t)

	// An approval event with no pending gate is refused.
	_, err := e.Update(engine.ApprovalEvent{Approve: true})
	require.ErrorIs(t, err, engine.ErrInvalidState)
}
