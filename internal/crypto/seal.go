package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	envelopeVersion = 1
	kdfScrypt       = "scrypt"
	scryptKeyLen    = 32
	saltLen         = 32
	nonceLen        = 12

	// limits on cost parameters read back from an envelope
	maxScryptN      = 1 << 20
	maxScryptR      = 32
	maxScryptP      = 16
	maxScryptMemory = 1 << 30 // 128 * N * r bytes
)

// ScryptParams are the scrypt cost parameters used when sealing
type ScryptParams struct {
	N int
	R int
	P int
}

// DefaultScryptParams for a local wallet.
// Security is prioritized over performance.
//
// N=2^18 (~256MB RAM, 0.5-2s):
//   - still works on phones (4-16GB RAM) and desktops alike
//   - brute-force attacks remain extremely expensive
//
// N=2^20 (~1GB) fails on mobile due to per-app memory limits.
var DefaultScryptParams = ScryptParams{N: 1 << 18, R: 8, P: 1}

// Validate checks that the parameters are usable and bounded in memory and time
func (p ScryptParams) Validate() error {
	if p.N < 2 || p.N > maxScryptN || p.N&(p.N-1) != 0 {
		return fmt.Errorf("scrypt N %d must be a power of two between 2 and %d", p.N, maxScryptN)
	}
	if p.R < 1 || p.R > maxScryptR {
		return fmt.Errorf("scrypt r %d must be between 1 and %d", p.R, maxScryptR)
	}
	if p.P < 1 || p.P > maxScryptP {
		return fmt.Errorf("scrypt p %d must be between 1 and %d", p.P, maxScryptP)
	}
	if 128*int64(p.N)*int64(p.R) > maxScryptMemory {
		return fmt.Errorf("scrypt N=%d r=%d needs more than %d bytes", p.N, p.R, maxScryptMemory)
	}
	return nil
}

// ErrInvalidPassword is returned by Open when authentication of the ciphertext fails
var ErrInvalidPassword = errors.New("invalid password")

// Envelope is the on-disk structure of sealed data
type Envelope struct {
	Version    int    `json:"version"`
	KDF        string `json:"kdf"`
	N          int    `json:"n"`
	R          int    `json:"r"`
	P          int    `json:"p"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Seal encrypts plaintext with a key derived from password and returns the JSON envelope.
// password must be []byte for security (caller should zero it after use)
func Seal(plaintext, password []byte, params ScryptParams) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	envelope := Envelope{
		Version:    envelopeVersion,
		KDF:        kdfScrypt,
		N:          params.N,
		R:          params.R,
		P:          params.P,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	// Add UTF-8 BOM for proper display in Windows
	return append(append([]byte{}, utf8BOM...), data...), nil
}

// Open decrypts an envelope produced by Seal.
// The caller owns the returned plaintext and should clear it after use.
func Open(data, password []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("envelope is empty")
	}

	// Skip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, utf8BOM)

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if envelope.Version != envelopeVersion || envelope.KDF != kdfScrypt {
		return nil, fmt.Errorf("unsupported envelope version %d (kdf %q)", envelope.Version, envelope.KDF)
	}

	params := ScryptParams{N: envelope.N, R: envelope.R, P: envelope.P}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	if len(salt) != saltLen {
		return nil, fmt.Errorf("invalid salt length %d", len(salt))
	}

	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	if len(nonce) != nonceLen {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

// IsSealed reports whether data looks like a sealed envelope
func IsSealed(data []byte) bool {
	data = bytes.TrimPrefix(data, utf8BOM)
	var probe struct {
		KDF        string `json:"kdf"`
		CipherText string `json:"cipherText"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.KDF != "" && probe.CipherText != ""
}

func newGCM(password, salt []byte, params ScryptParams) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
