package commands

import (
	"fmt"

	"mobsigner/internal/apdu"
	"mobsigner/internal/engine"
)

// exchange frames a request, runs it through the engine and returns
// the decoded response body, mimicking a device round trip.
func exchange(e *engine.Engine, ins, p1, p2 uint8, body []byte) ([]byte, error) {
	req, err := apdu.EncodeRequest(ins, p1, p2, body)
	if err != nil {
		return nil, err
	}
	ev, err := apdu.Decode(req)
	if err != nil {
		return nil, err
	}
	out, err := e.Update(ev)
	if err != nil {
		return nil, fmt.Errorf("status 0x%04x: %w", apdu.StatusFor(err), err)
	}
	resp, err := apdu.EncodeResponse(out)
	if err != nil {
		return nil, err
	}
	return apdu.Body(resp)
}
