package seedstore_test

import (
	"errors"
	"testing"

	"mobsigner/internal/seedstore"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := seedstore.New(t.TempDir())

	if s.Exists() {
		t.Fatal("store should start empty")
	}
	if _, err := s.Load("pass"); !errors.Is(err, seedstore.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	const mnemonic = "abandon ability able about above absent absorb abstract " +
		"absurd abuse access accident"
	if err := s.Save("pass", mnemonic); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Exists() {
		t.Fatal("store should report the saved mnemonic")
	}

	got, err := s.Load("pass")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != mnemonic {
		t.Fatalf("got %q, want %q", got, mnemonic)
	}
}

func TestWrongPassphrase(t *testing.T) {
	s := seedstore.New(t.TempDir())

	if err := s.Save("correct", "some mnemonic"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Load("wrong"); err == nil {
		t.Fatal("wrong passphrase must not decrypt")
	}
}
