package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/peer-wallet/internal/crypto"
	"github.com/AlexZinkM/peer-wallet/internal/logging"
)

// SealedSlot encrypts everything written to the wrapped slot with a password
type SealedSlot struct {
	inner          Slot
	password       []byte
	params         crypto.ScryptParams
	allowPlaintext bool
}

// ErrNotSealed is returned when a sealed slot holds an unencrypted document
var ErrNotSealed = errors.New("wallet is not encrypted")

// NewSealedSlot wraps inner. password is copied; the caller should zero its own copy.
func NewSealedSlot(inner Slot, password []byte, params crypto.ScryptParams) (*SealedSlot, error) {
	if inner == nil {
		return nil, errors.New("inner slot is nil")
	}
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	pw := make([]byte, len(password))
	copy(pw, password)
	return &SealedSlot{inner: inner, password: pw, params: params}, nil
}

// AllowPlaintext lets Read return a document written before sealing was enabled.
// It gets sealed on the next Write. Only migrations (rekey) should turn this on.
func (s *SealedSlot) AllowPlaintext() {
	s.allowPlaintext = true
}

// Read opens the sealed document. An unencrypted document fails with ErrNotSealed
// unless AllowPlaintext was called.
func (s *SealedSlot) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !crypto.IsSealed(data) {
		if !s.allowPlaintext {
			clear(data)
			return nil, fmt.Errorf("slot %q: %w", key, ErrNotSealed)
		}
		logging.Warnf("slot %q is not encrypted, it will be sealed on next write", key)
		return data, nil
	}
	plaintext, err := crypto.Open(data, s.password)
	if err != nil {
		return nil, fmt.Errorf("failed to open slot %q: %w", key, err)
	}
	return plaintext, nil
}

func (s *SealedSlot) Write(ctx context.Context, key string, data []byte) error {
	sealed, err := crypto.Seal(data, s.password, s.params)
	if err != nil {
		return fmt.Errorf("failed to seal slot %q: %w", key, err)
	}
	return s.inner.Write(ctx, key, sealed)
}

func (s *SealedSlot) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Rekey re-encrypts the slot under a new password
func (s *SealedSlot) Rekey(ctx context.Context, key string, newPassword []byte) error {
	if len(newPassword) == 0 {
		return errors.New("new password cannot be empty")
	}
	plaintext, err := s.Read(ctx, key)
	if err != nil {
		return err
	}
	defer clear(plaintext)

	sealed, err := crypto.Seal(plaintext, newPassword, s.params)
	if err != nil {
		return fmt.Errorf("failed to seal slot %q: %w", key, err)
	}
	if err := s.inner.Write(ctx, key, sealed); err != nil {
		return err
	}

	clear(s.password)
	s.password = make([]byte, len(newPassword))
	copy(s.password, newPassword)
	return nil
}

// Close wipes the password and closes the wrapped slot
func (s *SealedSlot) Close() error {
	clear(s.password)
	return s.inner.Close()
}
