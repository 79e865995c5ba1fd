// Package storage provides durable key-value slots for the wallet document.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Read when nothing was ever written under the key
var ErrNotFound = errors.New("slot not found")

// Slot is a durable key-value cell addressed by an application-chosen storage key
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// IsNotFound checks if err means the slot is absent
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// validateKey rejects keys that would escape a directory or collide with temp files
func validateKey(key string) error {
	if key == "" {
		return errors.New("storage key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
