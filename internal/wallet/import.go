package wallet

import (
	"errors"

	"github.com/AlexZinkM/peer-wallet/internal/codec"
	"github.com/AlexZinkM/peer-wallet/internal/crypto"
)

// ImportErrorKind tells why an import was rejected
type ImportErrorKind string

const (
	BadFormat      ImportErrorKind = "BadFormat"
	NoReferenceKey ImportErrorKind = "NoReferenceKey"
	KeyMismatch    ImportErrorKind = "KeyMismatch"
)

// ImportError is returned by ImportSeed. Compare with errors.Is against the Err* values.
type ImportError struct {
	Kind    ImportErrorKind
	Message string
}

func (e *ImportError) Error() string {
	return e.Message
}

// Is matches on Kind so wrapped errors still compare equal to the sentinels
func (e *ImportError) Is(target error) bool {
	t, ok := target.(*ImportError)
	return ok && t.Kind == e.Kind
}

var (
	ErrBadFormat      = &ImportError{Kind: BadFormat, Message: "seed must be exactly 64 hex characters (32 bytes)"}
	ErrNoReferenceKey = &ImportError{Kind: NoReferenceKey, Message: "no public key to verify the seed against"}
	ErrKeyMismatch    = &ImportError{Kind: KeyMismatch, Message: "seed does not belong to the expected public key"}
)

// IsImportError checks if err is an ImportError and returns its kind
func IsImportError(err error) (ImportErrorKind, bool) {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind, true
	}
	return "", false
}

// ImportSeed validates externally supplied seed hex against the public key it must belong to.
// It is the only way foreign key material gets into a Store: the caller hands the result to Admit.
// On failure the candidate is wiped and nothing is retained.
func ImportSeed(rawInput, expectedPublicKey string) (crypto.Seed, error) {
	candidate := codec.NormalizeHex(rawInput)
	if !codec.IsHexOfLength(candidate, crypto.SeedSize) {
		return nil, ErrBadFormat
	}

	expected := codec.NormalizeHex(expectedPublicKey)
	if expected == "" {
		return nil, ErrNoReferenceKey
	}

	b, err := codec.DecodeHexOfLength(candidate, crypto.SeedSize)
	if err != nil {
		return nil, ErrBadFormat
	}
	seed := crypto.Seed(b)

	derived, err := crypto.DerivePublicKey(seed)
	if err != nil {
		seed.Zero()
		return nil, ErrBadFormat
	}
	if !codec.EqualHex(derived.Hex(), expected) {
		seed.Zero()
		return nil, ErrKeyMismatch
	}
	return seed, nil
}

// ImportMnemonic accepts a 24-word backup phrase instead of hex
func ImportMnemonic(words, expectedPublicKey string) (crypto.Seed, error) {
	seed, err := crypto.MnemonicToSeed(words)
	if err != nil {
		return nil, ErrBadFormat
	}
	defer seed.Zero()
	return ImportSeed(seed.Hex(), expectedPublicKey)
}

// Import verifies rawInput against expectedPublicKey and admits it.
// The store is unchanged on any failure.
func (s *Store) Import(rawInput, expectedPublicKey string) (crypto.PublicKey, error) {
	seed, err := ImportSeed(rawInput, expectedPublicKey)
	if err != nil {
		return crypto.PublicKey{}, err
	}
	defer seed.Zero()
	return s.Admit(seed)
}

// ImportMnemonic is Import for a backup phrase
func (s *Store) ImportMnemonic(words, expectedPublicKey string) (crypto.PublicKey, error) {
	seed, err := ImportMnemonic(words, expectedPublicKey)
	if err != nil {
		return crypto.PublicKey{}, err
	}
	defer seed.Zero()
	return s.Admit(seed)
}

// ExportMnemonic returns the backup phrase of a stored key
func (s *Store) ExportMnemonic(publicKey string) (string, bool, error) {
	seed, ok := s.GetSeed(publicKey)
	if !ok {
		return "", false, nil
	}
	defer seed.Zero()
	words, err := crypto.SeedToMnemonic(seed)
	return words, true, err
}
