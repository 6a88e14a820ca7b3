// Package crypto exposes the primitives used by the transaction engine.
//
// Contents
//
//   - ristretto255 scalar/point helpers: decoding, hash-to-point and
//     hash-to-scalar with Blake2b-512 (HashToPoint, HashToScalar)
//   - Pedersen value commitments with per-token generators (Generators,
//     Commit)
//   - HKDF-SHA512 key expansion (HKDF)
//   - keyed-Blake2b MACs for memo signatures (MemoHmac)
//   - deterministic random generators: a ChaCha20 stream for ring
//     signing and an AES-CTR stream for session nonces (NewSigningRng,
//     NewSessionRng)
//
// # Notes
//
// All functions treat 32-byte encodings as canonical little-endian
// ristretto255 values. Callers should wipe secret scalars with
// memzero when their lifetime ends.
package crypto
