// Package keys derives MobileCoin account material from a root seed.
//
// The provider maps a SLIP-0010 ed25519 derivation of the BIP-39 seed
// onto the (view, spend) ristretto255 key pair, then derives
// subaddresses, onetime keys for owned outputs, and identity signing
// keys. Nothing here is persisted; callers wipe accounts when done.
package keys
