package codec

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
)

// NormalizeHex trims whitespace, strips an optional 0x prefix and lowercases the result.
// Example: NormalizeHex("  0xDEADbeef ") = "deadbeef"
func NormalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	return strings.ToLower(s)
}

// IsHex reports whether s is a non-empty string of hex digits (no prefix).
func IsHex(s string) bool {
	return govalidator.IsHexadecimal(s)
}

// IsHexOfLength reports whether s is hex encoding exactly n bytes.
func IsHexOfLength(s string, n int) bool {
	return len(s) == n*2 && IsHex(s)
}

// EncodeHex converts bytes to lowercase hex without prefix
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex normalizes s and converts it to bytes
func DecodeHex(s string) ([]byte, error) {
	s = NormalizeHex(s)
	if s == "" {
		return nil, fmt.Errorf("empty hex string")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

// DecodeHexOfLength decodes s and checks that it holds exactly n bytes
func DecodeHexOfLength(s string, n int) ([]byte, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		clear(b)
		return nil, fmt.Errorf("invalid length: expected %d bytes, got %d", n, len(b))
	}
	return b, nil
}

// EqualHex compares two hex strings ignoring case, surrounding whitespace and 0x prefix
func EqualHex(a, b string) bool {
	return NormalizeHex(a) == NormalizeHex(b)
}
