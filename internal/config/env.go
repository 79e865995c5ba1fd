package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Backend names accepted by WALLET_BACKEND
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime or taken from WALLET_PASSWORD and kept out of
// this struct - use GetPasswordBytes()
type Config struct {
	Port        string        `envconfig:"PORT" default:"8484"`
	PeerURL     string        `envconfig:"PEER_URL" default:"https://peer.convex.live"`
	PeerTimeout time.Duration `envconfig:"PEER_TIMEOUT" default:"15s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`

	Backend    string `envconfig:"WALLET_BACKEND" default:"file"`
	Dir        string `envconfig:"WALLET_DIR"` // empty means ~/.peerwallet
	StorageKey string `envconfig:"WALLET_STORAGE_KEY" default:"wallet"`
	Encrypt    bool   `envconfig:"WALLET_ENCRYPT" default:"true"`
	ScryptN    int    `envconfig:"WALLET_SCRYPT_N" default:"262144"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads an optional .env file, then configuration from environment variables.
func Init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.validate(); err != nil {
		return err
	}
	cfg = c

	if pw := os.Getenv("WALLET_PASSWORD"); pw != "" {
		SetPassword([]byte(pw))
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFile, BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("invalid WALLET_BACKEND %q: want %s, %s or %s", c.Backend, BackendFile, BackendBadger, BackendMemory)
	}
	if c.PeerTimeout <= 0 {
		return fmt.Errorf("invalid PEER_TIMEOUT %s: must be positive", c.PeerTimeout)
	}
	if c.ScryptN < 2 || c.ScryptN > 1<<20 || c.ScryptN&(c.ScryptN-1) != 0 {
		return fmt.Errorf("invalid WALLET_SCRYPT_N %d: must be a power of two up to 1048576", c.ScryptN)
	}
	if c.StorageKey == "" {
		return errors.New("WALLET_STORAGE_KEY cannot be empty")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetWalletDir returns the wallet directory, defaulting to ~/.peerwallet
func GetWalletDir() (string, error) {
	if dir := Get().Dir; dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".peerwallet"), nil
}

var passwordBytes []byte

// PromptForPassword prompts the user for the wallet password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := readPassword("Enter wallet password: ")
	if err != nil {
		return err
	}
	SetPassword(raw)
	clear(raw)
	return nil
}

// PromptNewPassword asks for a new password twice and returns it. It is not stored.
// Caller must zero the returned slice after use.
func PromptNewPassword() ([]byte, error) {
	first, err := readPassword("Enter new wallet password: ")
	if err != nil {
		return nil, err
	}
	second, err := readPassword("Repeat new wallet password: ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)
	if string(first) != string(second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

func readPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run interactively or set WALLET_PASSWORD")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}

// SetPassword stores a copy of password in memory
func SetPassword(password []byte) {
	clear(passwordBytes)
	passwordBytes = make([]byte, len(password))
	copy(passwordBytes, password)
}

// HasPassword reports whether a password was set
func HasPassword() bool {
	return len(passwordBytes) > 0
}

// GetPasswordBytes returns the password stored in memory (from PromptForPassword or WALLET_PASSWORD).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup or set WALLET_PASSWORD")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}

// ClearPassword zeroes and forgets the stored password
func ClearPassword() {
	clear(passwordBytes)
	passwordBytes = nil
}
