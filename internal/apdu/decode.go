package apdu

import (
	"fmt"

	"mobsigner/internal/domain"
	"mobsigner/internal/engine"
)

// reader walks a request body with bounds checking.
type reader struct {
	b   []byte
	off int
}

func (r *reader) u8() (uint8, error) {
	if r.off+1 > len(r.b) {
		return 0, parseErr(r.off)
	}
	v := r.b[r.off]
	r.off++
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.off+4 > len(r.b) {
		return 0, parseErr(r.off)
	}
	v := uint32(r.b[r.off]) | uint32(r.b[r.off+1])<<8 |
		uint32(r.b[r.off+2])<<16 | uint32(r.b[r.off+3])<<24
	r.off += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	lo, err := r.u32()
	if err != nil {
		return 0, err
	}
	hi, err := r.u32()
	if err != nil {
		return 0, err
	}
	return uint64(lo) | uint64(hi)<<32, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.off+n > len(r.b) {
		return nil, parseErr(r.off)
	}
	v := r.b[r.off : r.off+n]
	r.off += n
	return v, nil
}

func (r *reader) arr32() (out [32]byte, err error) {
	b, err := r.bytes(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func (r *reader) done() error {
	if r.off != len(r.b) {
		return fmt.Errorf("%w: %d trailing bytes", engine.ErrWrongLength, len(r.b)-r.off)
	}
	return nil
}

func parseErr(offset int) error {
	return fmt.Errorf("%w at offset %d", engine.ErrParse, offset)
}

// Decode parses one framed request record into a typed event.
func Decode(b []byte) (engine.Event, error) {
	if len(b) < 4 {
		return nil, parseErr(len(b))
	}
	ins := b[0]
	bodyLen := int(b[3])
	body := b[4:]
	if len(body) != bodyLen {
		return nil, fmt.Errorf("%w: header says %d, have %d", engine.ErrWrongLength, bodyLen, len(body))
	}

	r := &reader{b: body}
	ev, err := decodeBody(ins, r)
	if err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return ev, nil
}

func decodeBody(ins uint8, r *reader) (engine.Event, error) {
	switch ins {
	case InsAppInfo:
		return engine.AppInfoEvent{}, nil

	case InsWalletKeys:
		account, err := r.u32()
		if err != nil {
			return nil, err
		}
		return engine.WalletKeysEvent{AccountIndex: account}, nil

	case InsSubaddressKeys:
		account, err := r.u32()
		if err != nil {
			return nil, err
		}
		sub, err := r.u64()
		if err != nil {
			return nil, err
		}
		return engine.SubaddressKeysEvent{AccountIndex: account, SubaddressIndex: sub}, nil

	case InsKeyImage:
		sub, err := r.u64()
		if err != nil {
			return nil, err
		}
		txPub, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.KeyImageEvent{
			SubaddressIndex: sub,
			TxPublic:        domain.RistrettoPublic(txPub),
		}, nil

	case InsRandom:
		n, err := r.u8()
		if err != nil {
			return nil, err
		}
		return engine.RandomEvent{N: n}, nil

	case InsIdentSign:
		index, err := r.u32()
		if err != nil {
			return nil, err
		}
		uriLen, err := r.u8()
		if err != nil {
			return nil, err
		}
		uri, err := r.bytes(int(uriLen))
		if err != nil {
			return nil, err
		}
		challenge, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.IdentInitEvent{
			IdentityIndex: index,
			URI:           string(uri),
			Challenge:     domain.Digest(challenge),
		}, nil

	case InsTxInit:
		account, err := r.u32()
		if err != nil {
			return nil, err
		}
		numRings, err := r.u8()
		if err != nil {
			return nil, err
		}
		return engine.TxInitEvent{AccountIndex: account, NumRings: numRings}, nil

	case InsTxSetMessage:
		digest, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.TxSetMessageEvent{Digest: domain.Digest(digest)}, nil

	case InsTxSummaryInit:
		message, err := r.arr32()
		if err != nil {
			return nil, err
		}
		blockVersion, err := r.u32()
		if err != nil {
			return nil, err
		}
		numOut, err := r.u8()
		if err != nil {
			return nil, err
		}
		numIn, err := r.u8()
		if err != nil {
			return nil, err
		}
		fee, err := r.u64()
		if err != nil {
			return nil, err
		}
		token, err := r.u64()
		if err != nil {
			return nil, err
		}
		tombstone, err := r.u64()
		if err != nil {
			return nil, err
		}
		return engine.TxSummaryInitEvent{
			Message:      domain.Digest(message),
			BlockVersion: blockVersion,
			NumOutputs:   numOut,
			NumInputs:    numIn,
			Fee:          fee,
			TokenID:      token,
			Tombstone:    tombstone,
		}, nil

	case InsTxSummaryAddTxOut:
		flags, err := r.u8()
		if err != nil {
			return nil, err
		}
		target, err := r.arr32()
		if err != nil {
			return nil, err
		}
		commitment, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.TxSummaryAddTxOutEvent{
			Flags:        flags,
			TargetPublic: domain.RistrettoPublic(target),
			Commitment:   domain.RistrettoPublic(commitment),
		}, nil

	case InsTxSummaryAddTxOutUnblinding:
		value, err := r.u64()
		if err != nil {
			return nil, err
		}
		token, err := r.u64()
		if err != nil {
			return nil, err
		}
		blinding, err := r.arr32()
		if err != nil {
			return nil, err
		}
		fog, err := r.u8()
		if err != nil {
			return nil, err
		}
		return engine.TxSummaryAddTxOutUnblindingEvent{
			Value:    value,
			TokenID:  token,
			Blinding: domain.RistrettoPrivate(blinding),
			FogID:    engine.FogID(fog),
		}, nil

	case InsTxSummaryAddTxIn:
		value, err := r.u64()
		if err != nil {
			return nil, err
		}
		token, err := r.u64()
		if err != nil {
			return nil, err
		}
		blinding, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.TxSummaryAddTxInEvent{
			Value:    value,
			TokenID:  token,
			Blinding: domain.RistrettoPrivate(blinding),
		}, nil

	case InsTxSummaryBuild:
		return engine.TxSummaryBuildEvent{}, nil

	case InsTxRingInit:
		realIndex, err := r.u8()
		if err != nil {
			return nil, err
		}
		value, err := r.u64()
		if err != nil {
			return nil, err
		}
		token, err := r.u64()
		if err != nil {
			return nil, err
		}
		blinding, err := r.arr32()
		if err != nil {
			return nil, err
		}
		outputBlinding, err := r.arr32()
		if err != nil {
			return nil, err
		}
		sub, err := r.u64()
		if err != nil {
			return nil, err
		}
		return engine.TxRingInitEvent{
			RealIndex:       realIndex,
			Value:           value,
			TokenID:         token,
			Blinding:        domain.RistrettoPrivate(blinding),
			OutputBlinding:  domain.RistrettoPrivate(outputBlinding),
			SubaddressIndex: sub,
		}, nil

	case InsTxSetBlinding:
		commitment, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.TxSetBlindingEvent{
			RealCommitment: domain.RistrettoPublic(commitment),
		}, nil

	case InsTxAddTxOut:
		index, err := r.u8()
		if err != nil {
			return nil, err
		}
		txPub, err := r.arr32()
		if err != nil {
			return nil, err
		}
		target, err := r.arr32()
		if err != nil {
			return nil, err
		}
		commitment, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.TxAddTxOutEvent{
			Index:        index,
			TxPublic:     domain.RistrettoPublic(txPub),
			TargetPublic: domain.RistrettoPublic(target),
			Commitment:   domain.RistrettoPublic(commitment),
		}, nil

	case InsTxRingSign:
		seed, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.TxRingSignEvent{Seed: seed}, nil

	case InsTxGetKeyImage:
		return engine.TxGetKeyImageEvent{}, nil

	case InsTxGetResponse:
		index, err := r.u8()
		if err != nil {
			return nil, err
		}
		return engine.TxGetResponseEvent{Index: index}, nil

	case InsTxMemoSign:
		target, err := r.arr32()
		if err != nil {
			return nil, err
		}
		hashBytes, err := r.bytes(16)
		if err != nil {
			return nil, err
		}
		var addressHash domain.AddressHash
		copy(addressHash[:], hashBytes)
		txPub, err := r.arr32()
		if err != nil {
			return nil, err
		}
		return engine.TxMemoSignEvent{
			TargetPublic: domain.RistrettoPublic(target),
			AddressHash:  addressHash,
			TxPublic:     domain.RistrettoPublic(txPub),
		}, nil

	case InsTxComplete:
		return engine.TxCompleteEvent{}, nil

	case InsReset:
		return engine.ResetEvent{}, nil
	}

	return nil, fmt.Errorf("%w: 0x%02x", engine.ErrUnknownInstruction, ins)
}
