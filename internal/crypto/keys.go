package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/AlexZinkM/peer-wallet/internal/codec"

	"github.com/gagliardetto/solana-go"
)

const (
	SeedSize      = ed25519.SeedSize      // 32 bytes, the only secret
	PublicKeySize = ed25519.PublicKeySize // 32 bytes
	SignatureSize = ed25519.SignatureSize // 64 bytes
)

var (
	ErrInvalidSeed      = fmt.Errorf("seed must be %d bytes", SeedSize)
	ErrInvalidPublicKey = fmt.Errorf("public key must be %d hex encoded bytes", PublicKeySize)
)

// Seed holds the 32 secret bytes of an Ed25519 key.
// Printing a Seed never reveals its content.
type Seed []byte

// String redacts the seed for fmt.Print* convenience.
func (s Seed) String() string { return "[SEED]" }

// Format implements fmt.Formatter so %v, %x, %#v and friends are redacted too.
func (s Seed) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, "[SEED]")
}

// Hex returns the seed as lowercase hex. Only persistence code should call it.
func (s Seed) Hex() string {
	return codec.EncodeHex(s)
}

// Clone returns a copy of the seed. Caller must Zero it after use.
func (s Seed) Clone() Seed {
	out := make(Seed, len(s))
	copy(out, s)
	return out
}

// Zero wipes the seed in place
func (s Seed) Zero() {
	clear(s)
}

// PublicKey is an Ed25519 public key
type PublicKey [PublicKeySize]byte

// Hex returns the canonical form used as the wallet map key: lowercase, no prefix
func (p PublicKey) Hex() string {
	return codec.EncodeHex(p[:])
}

func (p PublicKey) String() string {
	return p.Hex()
}

// Address returns the base58 rendering of the key, as wallets usually display it
func (p PublicKey) Address() string {
	return solana.PublicKeyFromBytes(p[:]).String()
}

// IsZero reports whether the key was never set
func (p PublicKey) IsZero() bool {
	return p == PublicKey{}
}

// ParsePublicKey parses a hex public key (case-insensitive, optional 0x prefix)
func ParsePublicKey(s string) (PublicKey, error) {
	var pub PublicKey
	b, err := codec.DecodeHexOfLength(s, PublicKeySize)
	if err != nil {
		return pub, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	copy(pub[:], b)
	return pub, nil
}

// Signature is an Ed25519 signature
type Signature [SignatureSize]byte

// Hex returns the signature as lowercase hex without prefix
func (s Signature) Hex() string {
	return codec.EncodeHex(s[:])
}

// GenerateSeed reads a fresh seed from the system CSPRNG.
// An error here means the entropy source is broken and must be treated as fatal.
func GenerateSeed() (Seed, error) {
	seed := make(Seed, SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("failed to read entropy: %w", err)
	}
	return seed, nil
}

// GenerateKeyPair generates a fresh seed and its public key
func GenerateKeyPair() (PublicKey, Seed, error) {
	seed, err := GenerateSeed()
	if err != nil {
		return PublicKey{}, nil, err
	}
	pub, err := DerivePublicKey(seed)
	if err != nil {
		seed.Zero()
		return PublicKey{}, nil, err
	}
	return pub, seed, nil
}

// DerivePublicKey derives the public key of seed
func DerivePublicKey(seed Seed) (PublicKey, error) {
	priv, err := privateKey(seed)
	if err != nil {
		return PublicKey{}, err
	}
	defer clear(priv)

	return PublicKey(priv.PublicKey()), nil
}

// Sign signs message with seed. Ed25519 is deterministic: same input, same signature.
func Sign(message []byte, seed Seed) (Signature, error) {
	priv, err := privateKey(seed)
	if err != nil {
		return Signature{}, err
	}
	defer clear(priv)

	sig, err := priv.Sign(message)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sign message: %w", err)
	}
	return Signature(sig), nil
}

// Verify checks signature over message against publicKey.
// Malformed signatures or keys yield false, never a panic.
func Verify(signature, message, publicKey []byte) bool {
	if len(signature) != SignatureSize || len(publicKey) != PublicKeySize {
		return false
	}
	sig := solana.SignatureFromBytes(signature)
	return sig.Verify(solana.PublicKeyFromBytes(publicKey), message)
}

// privateKey expands seed into the full 64-byte key. Caller must clear the result.
func privateKey(seed Seed) (solana.PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed
	}
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}

// IsInvalidSeed checks if err is caused by a malformed seed
func IsInvalidSeed(err error) bool {
	return errors.Is(err, ErrInvalidSeed)
}
