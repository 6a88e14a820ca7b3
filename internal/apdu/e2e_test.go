package apdu_test

import (
	"testing"

	"github.com/tyler-smith/go-bip39"

	"mobsigner/internal/apdu"
	"mobsigner/internal/engine"
	"mobsigner/internal/keys"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon abandon abandon art"

// exchange runs one framed request through the engine and returns the
// response body, failing the test on a non-success status.
func exchange(t *testing.T, e *engine.Engine, ins uint8, body []byte) []byte {
	t.Helper()

	req, err := apdu.EncodeRequest(ins, 0, 0, body)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	ev, err := apdu.Decode(req)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := e.Update(ev)
	if err != nil {
		t.Fatalf("Update(0x%02x): %v (status %#04x)", ins, err, apdu.StatusFor(err))
	}
	resp, err := apdu.EncodeResponse(out)
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
	respBody, err := apdu.Body(resp)
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	return respBody
}

// TestWalletKeysOverWire covers the framed derivation round trip: the
// same account queried twice yields identical key material.
func TestWalletKeysOverWire(t *testing.T) {
	seed := bip39.NewSeed(testMnemonic, "")
	e := engine.New(keys.NewProvider(seed))

	info := exchange(t, e, apdu.InsAppInfo, nil)
	if info[0] != uint8(engine.ProtoVersion) {
		t.Fatalf("proto version %d", info[0])
	}

	body := []byte{0, 0, 0, 0}
	first := exchange(t, e, apdu.InsWalletKeys, body)
	second := exchange(t, e, apdu.InsWalletKeys, body)

	if len(first) != 4+32*3 {
		t.Fatalf("wallet keys body length %d", len(first))
	}
	if string(first) != string(second) {
		t.Fatal("wallet key derivation not stable over the wire")
	}

	// Subaddress 1 differs from the root spend key.
	sub := exchange(t, e, apdu.InsSubaddressKeys, []byte{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0})
	if string(sub[12+32:12+64]) == string(first[4+32:4+64]) {
		t.Fatal("subaddress spend key must differ from root spend key")
	}

	// Reset over the wire, then a non-init request is refused.
	exchange(t, e, apdu.InsReset, nil)
	req, err := apdu.EncodeRequest(apdu.InsTxSetMessage, 0, 0, make([]byte, 32))
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	ev, err := apdu.Decode(req)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := e.Update(ev); err == nil {
		t.Fatal("non-init request after reset must fail")
	} else if apdu.StatusFor(err) != apdu.StatusInvalidState {
		t.Fatalf("status %#04x", apdu.StatusFor(err))
	}
}
