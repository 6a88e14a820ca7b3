package keys

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"mobsigner/internal/util/memzero"
)

const hardened = uint32(1) << 31

// walletCoinType is the SLIP-0044 coin type for MobileCoin.
const walletCoinType = 866

// WalletPath returns the BIP-44 style hardened path for an account.
func WalletPath(accountIndex uint32) []uint32 {
	return []uint32{44 | hardened, walletCoinType | hardened, accountIndex | hardened}
}

// Slip10Ed25519 derives the SLIP-0010 ed25519 private key for a
// hardened path. Every path element is derived hardened (the hardened
// bit is set if the caller left it clear); the scheme defines no
// non-hardened ed25519 children.
func Slip10Ed25519(seed []byte, path []uint32) [32]byte {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)

	var key, chain [32]byte
	copy(key[:], sum[:32])
	copy(chain[:], sum[32:])
	memzero.Zero(sum)

	for _, idx := range path {
		var data [1 + 32 + 4]byte
		copy(data[1:33], key[:])
		binary.BigEndian.PutUint32(data[33:], idx|hardened)

		mac = hmac.New(sha512.New, chain[:])
		mac.Write(data[:])
		sum = mac.Sum(nil)

		copy(key[:], sum[:32])
		copy(chain[:], sum[32:])
		memzero.Zero(sum)
		memzero.Zero(data[:])
	}

	memzero.Zero32(&chain)
	return key
}
