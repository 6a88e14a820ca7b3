package engine_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"mobsigner/internal/crypto"
	"mobsigner/internal/domain"
	"mobsigner/internal/engine"
)

// summaryOutput pairs an output record with its unblinding.
type summaryOutput struct {
	flags    uint8
	value    uint64
	tokenID  uint64
	blinding *crypto.Scalar
	fog      engine.FogID
}

// summaryFixture drives a transaction session up to the summary and
// streams the given outputs and inputs.
func streamSummary(
	t *testing.T,
	e *engine.Engine,
	outputs []summaryOutput,
	inputs []summaryOutput,
	fee uint64,
) error {
	t.Helper()

	_, err := e.Update(engine.TxInitEvent{AccountIndex: 0, NumRings: 1})
	require.NoError(t, err)

	_, err = e.Update(engine.TxSummaryInitEvent{
		Message:      testMessage(),
		BlockVersion: 3,
		NumOutputs:   uint8(len(outputs)),
		NumInputs:    uint8(len(inputs)),
		Fee:          fee,
		TokenID:      0,
		Tombstone:    1000,
	})
	require.NoError(t, err)

	for _, o := range outputs {
		gens := crypto.Generators(o.tokenID)
		commitment := crypto.EncodePoint(gens.Commit(o.value, o.blinding))
		target := crypto.EncodePoint(crypto.PublicFromPrivate(
			crypto.HashToScalar("summary-target", commitment.Slice()),
		))

		_, err = e.Update(engine.TxSummaryAddTxOutEvent{
			Flags:        o.flags,
			TargetPublic: target,
			Commitment:   commitment,
		})
		if err != nil {
			return err
		}
		_, err = e.Update(engine.TxSummaryAddTxOutUnblindingEvent{
			Value:    o.value,
			TokenID:  o.tokenID,
			Blinding: crypto.EncodeScalar(o.blinding),
			FogID:    o.fog,
		})
		if err != nil {
			return err
		}
	}

	for _, in := range inputs {
		_, err = e.Update(engine.TxSummaryAddTxInEvent{
			Value:    in.value,
			TokenID:  in.tokenID,
			Blinding: crypto.EncodeScalar(in.blinding),
		})
		if err != nil {
			return err
		}
	}

	_, err = e.Update(engine.TxSummaryBuildEvent{})
	return err
}

func blindingScalar(i byte) *crypto.Scalar {
	return crypto.HashToScalar("summary-blinding", []byte{i})
}

func TestSummaryBalancedFlow(t *testing.T) {
	e := newTestEngine(t)

	outputs := []summaryOutput{
		{flags: 0, value: 60, tokenID: 0, blinding: blindingScalar(1), fog: engine.FogMobMain},
		{flags: engine.FlagChange, value: 30, tokenID: 0, blinding: blindingScalar(2)},
	}
	inputs := []summaryOutput{
		{value: 100, tokenID: 0, blinding: blindingScalar(3)},
	}

	// outputs 90 + fee 10 == inputs 100.
	err := streamSummary(t, e, outputs, inputs, 10)
	require.NoError(t, err)
	require.Equal(t, engine.StatePending, e.State())

	report := e.Report()
	require.NotNil(t, report)
	require.Equal(t, uint64(10), report.Fee)
	require.Equal(t, uint64(1000), report.TombstoneBlock)
	require.Len(t, report.Tokens, 1)
	require.Equal(t, uint256.NewInt(90), report.Tokens[0].Outflow)
	require.Equal(t, uint256.NewInt(30), report.Tokens[0].Change)
	require.Equal(t, uint256.NewInt(60), report.Tokens[0].Net)
	require.Len(t, report.Recipients, 1)
	require.Equal(t, "MobileCoin", report.Recipients[0].Label)
	require.False(t, report.RequiresScroll)

	// Approval publishes the summary digest as the signing message.
	out, err := e.Update(engine.ApprovalEvent{Approve: true})
	require.NoError(t, err)
	require.Equal(t, engine.StateReady, out.(engine.StateOutput).State)

	msg, ok := e.Message()
	require.True(t, ok)
	require.NotEqual(t, domain.Digest{}, msg)
}

func TestSummaryUnbalanced(t *testing.T) {
	e := newTestEngine(t)

	outputs := []summaryOutput{
		{value: 100, tokenID: 0, blinding: blindingScalar(1), fog: engine.FogMobMain},
	}
	inputs := []summaryOutput{
		{value: 99, tokenID: 0, blinding: blindingScalar(2)},
	}

	// outputs 100 + fee 0 != inputs 99.
	err := streamSummary(t, e, outputs, inputs, 0)
	require.ErrorIs(t, err, engine.ErrUnbalancedSummary)

	// Ring signing stays refused afterwards.
	_, err = e.Update(engine.TxRingSignEvent{})
	require.ErrorIs(t, err, engine.ErrSummaryRejected)
	f := newRingFixture(t, 0, 2)
	_, err = e.Update(f.ringInitEvent())
	require.ErrorIs(t, err, engine.ErrSummaryRejected)
}

func TestSummaryUnblindingMismatch(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Update(engine.TxInitEvent{AccountIndex: 0, NumRings: 1})
	require.NoError(t, err)
	_, err = e.Update(engine.TxSummaryInitEvent{
		Message:      testMessage(),
		BlockVersion: 3,
		NumOutputs:   1,
		NumInputs:    1,
		Fee:          0,
		TokenID:      0,
		Tombstone:    1,
	})
	require.NoError(t, err)

	b := blindingScalar(1)
	commitment := crypto.EncodePoint(crypto.Generators(0).Commit(100, b))
	_, err = e.Update(engine.TxSummaryAddTxOutEvent{
		TargetPublic: crypto.EncodePoint(crypto.PublicFromPrivate(b)),
		Commitment:   commitment,
	})
	require.NoError(t, err)

	// The unblinding claims a different value.
	_, err = e.Update(engine.TxSummaryAddTxOutUnblindingEvent{
		Value:    101,
		TokenID:  0,
		Blinding: crypto.EncodeScalar(b),
	})
	require.ErrorIs(t, err, engine.ErrCommitmentMismatch)
	require.Equal(t, engine.StateError, e.State())
}

func TestSummaryRejectedByUser(t *testing.T) {
	e := newTestEngine(t)

	outputs := []summaryOutput{
		{value: 50, tokenID: 0, blinding: blindingScalar(1), fog: engine.FogID(200)},
	}
	inputs := []summaryOutput{
		{value: 50, tokenID: 0, blinding: blindingScalar(2)},
	}

	err := streamSummary(t, e, outputs, inputs, 0)
	require.NoError(t, err)

	// Unknown fog targets force per-recipient review.
	report := e.Report()
	require.True(t, report.RequiresScroll)
	require.True(t, report.Recipients[0].Unknown)
	require.Equal(t, "unknown", report.Recipients[0].Label)

	_, err = e.Update(engine.ApprovalEvent{Approve: false})
	require.ErrorIs(t, err, engine.ErrUserRejected)
	require.Equal(t, engine.StateDenied, e.State())

	f := newRingFixture(t, 0, 2)
	_, err = e.Update(f.ringInitEvent())
	require.ErrorIs(t, err, engine.ErrSummaryRejected)
}

func TestSummaryCountTracking(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Update(engine.TxInitEvent{AccountIndex: 0, NumRings: 1})
	require.NoError(t, err)
	_, err = e.Update(engine.TxSummaryInitEvent{
		Message:      testMessage(),
		BlockVersion: 3,
		NumOutputs:   2,
		NumInputs:    1,
		TokenID:      0,
		Tombstone:    1,
	})
	require.NoError(t, err)

	// Inputs are refused while outputs remain outstanding.
	_, err = e.Update(engine.TxSummaryAddTxInEvent{
		Value: 1, Blinding: crypto.EncodeScalar(blindingScalar(9)),
	})
	require.ErrorIs(t, err, engine.ErrInvalidState)

	// An unblinding with no preceding output is refused.
	e2 := newTestEngine(t)
	_, err = e2.Update(engine.TxInitEvent{AccountIndex: 0, NumRings: 1})
	require.NoError(t, err)
	_, err = e2.Update(engine.TxSummaryInitEvent{
		Message: testMessage(), BlockVersion: 3, NumOutputs: 1, NumInputs: 1, Tombstone: 1,
	})
	require.NoError(t, err)
	_, err = e2.Update(engine.TxSummaryAddTxOutUnblindingEvent{
		Value: 1, Blinding: crypto.EncodeScalar(blindingScalar(9)),
	})
	require.ErrorIs(t, err, engine.ErrInvalidState)
}

func TestSummaryInitBounds(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Update(engine.TxInitEvent{AccountIndex: 0, NumRings: 1})
	require.NoError(t, err)

	// Zero counts are refused.
	_, err = e.Update(engine.TxSummaryInitEvent{
		Message: testMessage(), BlockVersion: 3, NumOutputs: 0, NumInputs: 1,
	})
	require.ErrorIs(t, err, engine.ErrInvalidState)

	// Counts above the record cap are refused.
	e2 := newTestEngine(t)
	_, err = e2.Update(engine.TxInitEvent{AccountIndex: 0, NumRings: 1})
	require.NoError(t, err)
	_, err = e2.Update(engine.TxSummaryInitEvent{
		Message: testMessage(), BlockVersion: 3,
		NumOutputs: engine.MaxRecords + 1, NumInputs: 1,
	})
	require.ErrorIs(t, err, engine.ErrOutOfBounds)
}

func TestSummaryMultiToken(t *testing.T) {
	e := newTestEngine(t)

	outputs := []summaryOutput{
		{value: 40, tokenID: 0, blinding: blindingScalar(1), fog: engine.FogMobMain},
		{value: 25, tokenID: 1, blinding: blindingScalar(2), fog: engine.FogSignalMain},
	}
	inputs := []summaryOutput{
		{value: 45, tokenID: 0, blinding: blindingScalar(3)},
		{value: 25, tokenID: 1, blinding: blindingScalar(4)},
	}

	// Token 0: 40 + fee 5 == 45; token 1: 25 == 25.
	err := streamSummary(t, e, outputs, inputs, 5)
	require.NoError(t, err)

	report := e.Report()
	require.Len(t, report.Tokens, 2)
	require.Len(t, report.Recipients, 2)
}
