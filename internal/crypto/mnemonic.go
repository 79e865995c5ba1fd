package crypto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const mnemonicWords = 24

// ErrInvalidMnemonic is returned for phrases that fail the BIP-39 word list or checksum
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// SeedToMnemonic encodes the 32 seed bytes as a 24-word BIP-39 phrase.
// The phrase is the seed itself used as entropy, not a PBKDF2-stretched BIP-39 seed.
func SeedToMnemonic(seed Seed) (string, error) {
	if len(seed) != SeedSize {
		return "", ErrInvalidSeed
	}
	words, err := bip39.NewMnemonic(seed)
	if err != nil {
		return "", fmt.Errorf("failed to encode mnemonic: %w", err)
	}
	return words, nil
}

// MnemonicToSeed decodes a phrase produced by SeedToMnemonic
func MnemonicToSeed(words string) (Seed, error) {
	fields := strings.Fields(strings.ToLower(words))
	if len(fields) != mnemonicWords {
		return nil, fmt.Errorf("%w: expected %d words, got %d", ErrInvalidMnemonic, mnemonicWords, len(fields))
	}
	words = strings.Join(fields, " ")
	if !bip39.IsMnemonicValid(words) {
		return nil, ErrInvalidMnemonic
	}

	entropy, err := bip39.EntropyFromMnemonic(words)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	defer clear(entropy)

	if len(entropy) > SeedSize {
		return nil, fmt.Errorf("%w: phrase encodes %d bytes", ErrInvalidMnemonic, len(entropy))
	}

	// left-pad in case leading zero bytes were dropped by the big-int decode
	seed := make(Seed, SeedSize)
	copy(seed[SeedSize-len(entropy):], entropy)
	return seed, nil
}
