package seedstore

import (
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"mobsigner/internal/util/memzero"
)

const (
	seedFile = "seed.enc"

	keyBytes  = 32
	saltBytes = 16
)

// ErrNotFound indicates no stored mnemonic.
var ErrNotFound = errors.New("seedstore: no mnemonic stored")

// Store persists one passphrase-encrypted mnemonic on disk.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a store rooted at dir.
func New(dir string) *Store { return &Store{dir: dir} }

// Exists reports whether a mnemonic has been stored.
func (s *Store) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, seedFile))
	return err == nil
}

// Save encrypts the mnemonic under the passphrase and writes it.
func (s *Store) Save(passphrase, mnemonic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return err
	}

	kek := deriveKEK(passphrase, salt)
	defer memzero.Zero(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	ct := aead.Seal(nil, nonce, []byte(mnemonic), nil)

	blob := make([]byte, 0, len(salt)+len(nonce)+len(ct))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ct...)

	return os.WriteFile(filepath.Join(s.dir, seedFile), blob, 0o600)
}

// Load decrypts the stored mnemonic with the passphrase.
func (s *Store) Load(passphrase string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(filepath.Join(s.dir, seedFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(blob) < saltBytes+chacha20poly1305.NonceSize {
		return "", errors.New("seedstore: truncated blob")
	}

	salt := blob[:saltBytes]
	nonce := blob[saltBytes : saltBytes+chacha20poly1305.NonceSize]
	ct := blob[saltBytes+chacha20poly1305.NonceSize:]

	kek := deriveKEK(passphrase, salt)
	defer memzero.Zero(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return "", err
	}
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// deriveKEK derives a key-encryption key with Argon2id.
func deriveKEK(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 1<<16, 8, keyBytes)
}
