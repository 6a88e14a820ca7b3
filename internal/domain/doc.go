// Package domain defines the fixed-size wire types shared across the app.
// It contains plain encodings only; group arithmetic lives in
// internal/crypto and key derivation in internal/keys.
package domain
