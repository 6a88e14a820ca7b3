package crypto

import (
	"crypto/sha512"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF expands ikm into outLen bytes with HKDF-SHA512.
func HKDF(ikm, salt, info []byte, outLen int) []byte {
	r := hkdf.New(sha512.New, ikm, salt, info)
	out := make([]byte, outLen)
	if _, err := io.ReadFull(r, out); err != nil {
		panic(err)
	}
	return out
}

// ScalarFromWide reduces 64 uniform bytes to a scalar.
func ScalarFromWide(b []byte) *Scalar {
	if len(b) != 64 {
		panic("crypto: wide scalar input must be 64 bytes")
	}
	return NewScalar().FromUniformBytes(b)
}
