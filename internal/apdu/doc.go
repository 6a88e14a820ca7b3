// Package apdu implements the fixed binary request/response records
// used to talk to the engine.
//
// Requests are | instruction:u8 | p1:u8 | p2:u8 | length:u8 | body |,
// responses are | body | status:u16 (big-endian) |. All multi-byte
// body fields are little-endian; 32-byte fields are ristretto255
// encodings. The codec is pure: it performs no cryptography and never
// allocates beyond the bounded response buffer.
package apdu
