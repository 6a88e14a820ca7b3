package apdu_test

import (
	"errors"
	"testing"

	"mobsigner/internal/apdu"
	"mobsigner/internal/domain"
	"mobsigner/internal/engine"
)

// frame builds a framed request for a body.
func frame(t *testing.T, ins uint8, body []byte) []byte {
	t.Helper()
	req, err := apdu.EncodeRequest(ins, 0, 0, body)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	return req
}

func TestDecodeWalletKeys(t *testing.T) {
	req := frame(t, apdu.InsWalletKeys, []byte{0x02, 0x01, 0x00, 0x00})

	ev, err := apdu.Decode(req)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	wk, ok := ev.(engine.WalletKeysEvent)
	if !ok {
		t.Fatalf("unexpected event %T", ev)
	}
	if wk.AccountIndex != 0x0102 {
		t.Fatalf("account index %#x", wk.AccountIndex)
	}
}

func TestDecodeIdentSign(t *testing.T) {
	uri := "mob://example"
	body := []byte{0x05, 0x00, 0x00, 0x00, uint8(len(uri))}
	body = append(body, uri...)
	challenge := make([]byte, 32)
	for i := range challenge {
		challenge[i] = byte(i + 1)
	}
	body = append(body, challenge...)

	ev, err := apdu.Decode(frame(t, apdu.InsIdentSign, body))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	is, ok := ev.(engine.IdentInitEvent)
	if !ok {
		t.Fatalf("unexpected event %T", ev)
	}
	if is.IdentityIndex != 5 || is.URI != uri {
		t.Fatalf("decoded %v", is)
	}
	if is.Challenge != domain.Digest([32]byte(challenge)) {
		t.Fatal("challenge mismatch")
	}
}

func TestDecodeTxRingInit(t *testing.T) {
	body := make([]byte, 0, 89)
	body = append(body, 3)                                     // real_index
	body = append(body, 100, 0, 0, 0, 0, 0, 0, 0)             // value
	body = append(body, 0, 0, 0, 0, 0, 0, 0, 0)               // token
	blinding := make([]byte, 32)
	blinding[0] = 0xaa
	body = append(body, blinding...)
	outputBlinding := make([]byte, 32)
	outputBlinding[0] = 0xbb
	body = append(body, outputBlinding...)
	body = append(body, 4, 0, 0, 0, 0, 0, 0, 0) // subaddress

	ev, err := apdu.Decode(frame(t, apdu.InsTxRingInit, body))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ri, ok := ev.(engine.TxRingInitEvent)
	if !ok {
		t.Fatalf("unexpected event %T", ev)
	}
	if ri.RealIndex != 3 || ri.Value != 100 || ri.SubaddressIndex != 4 {
		t.Fatalf("decoded %+v", ri)
	}
	if ri.Blinding[0] != 0xaa || ri.OutputBlinding[0] != 0xbb {
		t.Fatal("blinding fields mismatch")
	}
}

func TestDecodeErrors(t *testing.T) {
	// Truncated header.
	if _, err := apdu.Decode([]byte{0x00, 0x00}); !errors.Is(err, engine.ErrParse) {
		t.Fatalf("want ErrParse, got %v", err)
	}

	// Body length mismatch.
	if _, err := apdu.Decode([]byte{apdu.InsWalletKeys, 0, 0, 4, 0x01}); !errors.Is(err, engine.ErrWrongLength) {
		t.Fatalf("want ErrWrongLength, got %v", err)
	}

	// Unknown instruction.
	if _, err := apdu.Decode([]byte{0xee, 0, 0, 0}); !errors.Is(err, engine.ErrUnknownInstruction) {
		t.Fatalf("want ErrUnknownInstruction, got %v", err)
	}

	// Trailing bytes after a parsed body.
	body := []byte{0x00, 0x00, 0x00, 0x00, 0xff}
	if _, err := apdu.Decode(frame(t, apdu.InsWalletKeys, body)); !errors.Is(err, engine.ErrWrongLength) {
		t.Fatalf("want ErrWrongLength, got %v", err)
	}

	// Truncated body field.
	if _, err := apdu.Decode(frame(t, apdu.InsWalletKeys, []byte{0x01})); !errors.Is(err, engine.ErrParse) {
		t.Fatalf("want ErrParse, got %v", err)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status uint16
	}{
		{nil, apdu.StatusOk},
		{engine.ErrParse, apdu.StatusInvalidParameter},
		{engine.ErrUnknownInstruction, apdu.StatusUnknownInstruction},
		{engine.ErrWrongLength, apdu.StatusWrongLength},
		{engine.ErrInvalidState, apdu.StatusInvalidState},
		{engine.ErrNoSession, apdu.StatusInvalidState},
		{engine.ErrBusy, apdu.StatusInvalidState},
		{engine.ErrTimeout, apdu.StatusInvalidState},
		{engine.ErrUnauthorized, apdu.StatusUnauthorized},
		{engine.ErrUserRejected, apdu.StatusUserRejected},
		{engine.ErrSummaryRejected, apdu.StatusUserRejected},
		{engine.ErrRealIndexMismatch, apdu.StatusInvalidParameter},
		{engine.ErrDuplicateMember, apdu.StatusInvalidParameter},
		{engine.ErrCommitmentMismatch, apdu.StatusInvalidParameter},
		{engine.ErrUnbalancedSummary, apdu.StatusInvalidParameter},
		{engine.ErrOutOfBounds, apdu.StatusInvalidParameter},
		{engine.ErrCrypto, apdu.StatusInvalidParameter},
		{engine.ErrRngFailure, apdu.StatusInvalidParameter},
	}

	for _, tc := range tests {
		if got := apdu.StatusFor(tc.err); got != tc.status {
			t.Fatalf("StatusFor(%v) = %#04x, want %#04x", tc.err, got, tc.status)
		}
	}
}

func TestEncodeResponseStatus(t *testing.T) {
	resp, err := apdu.EncodeResponse(engine.KeyImageOutput{})
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	status, err := apdu.Status(resp)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != apdu.StatusOk {
		t.Fatalf("status %#04x", status)
	}
	body, err := apdu.Body(resp)
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if len(body) != 32 {
		t.Fatalf("body length %d", len(body))
	}
}
