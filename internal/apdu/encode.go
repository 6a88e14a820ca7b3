package apdu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"mobsigner/internal/engine"
)

// EncodeRequest frames an instruction and body into a request record.
func EncodeRequest(ins, p1, p2 uint8, body []byte) ([]byte, error) {
	if len(body) > MaxBodyLen {
		return nil, fmt.Errorf("%w: body %d exceeds %d", engine.ErrWrongLength, len(body), MaxBodyLen)
	}
	out := make([]byte, 0, 4+len(body))
	out = append(out, ins, p1, p2, uint8(len(body)))
	return append(out, body...), nil
}

// EncodeResponse serialises an engine output with a success status.
func EncodeResponse(out engine.Output) ([]byte, error) {
	body, err := encodeBody(out)
	if err != nil {
		return nil, err
	}
	if len(body) > MaxBodyLen {
		return nil, fmt.Errorf("%w: response %d exceeds %d", engine.ErrWrongLength, len(body), MaxBodyLen)
	}
	return appendStatus(body, StatusOk), nil
}

// EncodeError serialises a failure as a bare status word.
func EncodeError(err error) []byte {
	return appendStatus(nil, StatusFor(err))
}

// StatusFor maps an engine error onto its status word.
func StatusFor(err error) uint16 {
	switch {
	case err == nil:
		return StatusOk
	case errors.Is(err, engine.ErrUnknownInstruction):
		return StatusUnknownInstruction
	case errors.Is(err, engine.ErrWrongLength):
		return StatusWrongLength
	case errors.Is(err, engine.ErrUnauthorized):
		return StatusUnauthorized
	case errors.Is(err, engine.ErrUserRejected),
		errors.Is(err, engine.ErrSummaryRejected):
		return StatusUserRejected
	case errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrNoSession),
		errors.Is(err, engine.ErrBusy),
		errors.Is(err, engine.ErrTimeout):
		return StatusInvalidState
	default:
		// Parse, bounds, crypto, commitment and balance failures are
		// all parameter faults from the host's perspective.
		return StatusInvalidParameter
	}
}

func appendStatus(body []byte, status uint16) []byte {
	var sw [2]byte
	binary.BigEndian.PutUint16(sw[:], status)
	return append(body, sw[:]...)
}

func encodeBody(out engine.Output) ([]byte, error) {
	w := &writer{}
	switch o := out.(type) {
	case engine.StateOutput:
		w.u8(uint8(o.State))
		w.bytes(o.Digest.Slice())

	case engine.PendingOutput:
		w.u8(uint8(o.State))
		w.bytes(o.Digest.Slice())

	case engine.AppInfoOutput:
		w.u8(o.ProtoVersion)
		w.str(o.Name)
		w.str(o.Version)
		w.u8(uint8(o.State))
		w.bytes(o.Digest.Slice())

	case engine.WalletKeysOutput:
		w.u32(o.AccountIndex)
		w.bytes(o.ViewPublic.Slice())
		w.bytes(o.SpendPublic.Slice())
		w.bytes(o.ViewPrivate.Slice())

	case engine.SubaddressKeysOutput:
		w.u32(o.AccountIndex)
		w.u64(o.SubaddressIndex)
		w.bytes(o.ViewPublic.Slice())
		w.bytes(o.SpendPublic.Slice())
		w.bytes(o.ViewPrivate.Slice())

	case engine.KeyImageOutput:
		w.bytes(o.KeyImage.Slice())

	case engine.RandomOutput:
		w.bytes(o.Data)

	case engine.IdentSignatureOutput:
		w.bytes(o.PublicKey.Slice())
		w.bytes(o.Signature[:])

	case engine.TxKeyImageOutput:
		w.bytes(o.KeyImage.Slice())
		w.bytes(o.CZero.Slice())

	case engine.TxResponseOutput:
		w.u8(o.Index)
		w.bytes(o.CZero.Slice())
		w.bytes(o.Response.Slice())
		w.bytes(o.CommitmentResponse.Slice())

	case engine.MemoSigOutput:
		w.u8(uint8(o.State))
		w.bytes(o.Digest.Slice())
		w.bytes(o.Hmac[:])

	default:
		return nil, fmt.Errorf("%w: unhandled output %T", engine.ErrInvalidState, out)
	}
	return w.b, nil
}

// writer accumulates a little-endian response body.
type writer struct {
	b []byte
}

func (w *writer) u8(v uint8) { w.b = append(w.b, v) }

func (w *writer) u32(v uint32) {
	var le [4]byte
	binary.LittleEndian.PutUint32(le[:], v)
	w.b = append(w.b, le[:]...)
}

func (w *writer) u64(v uint64) {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], v)
	w.b = append(w.b, le[:]...)
}

func (w *writer) bytes(v []byte) { w.b = append(w.b, v...) }

// str writes a length-prefixed string.
func (w *writer) str(s string) {
	if len(s) > 255 {
		s = s[:255]
	}
	w.u8(uint8(len(s)))
	w.b = append(w.b, s...)
}

// Status extracts the trailing status word of a response.
func Status(resp []byte) (uint16, error) {
	if len(resp) < 2 {
		return 0, engine.ErrParse
	}
	return binary.BigEndian.Uint16(resp[len(resp)-2:]), nil
}

// Body strips the trailing status word of a response.
func Body(resp []byte) ([]byte, error) {
	if len(resp) < 2 {
		return nil, engine.ErrParse
	}
	return resp[:len(resp)-2], nil
}
