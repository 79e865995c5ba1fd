// Package endpoint holds the active peer base URL. It only manages the pointer:
// whether the peer is alive is answered by a status query, not here.
package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrEmptyURL is returned when a URL normalizes to the empty string
var ErrEmptyURL = errors.New("peer URL cannot be empty")

// Preset is a labeled peer URL
type Preset struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// DefaultPresets are the peers offered out of the box
var DefaultPresets = []Preset{
	{Label: "Mainnet", URL: "https://peer.convex.live"},
	{Label: "Testnet", URL: "https://mikera1337-convex-testnet.hf.space"},
	{Label: "Local", URL: "http://localhost:8080"},
}

// Config is the active peer pointer plus the static preset list
type Config struct {
	mu      sync.RWMutex
	current string
	presets []Preset
}

// New creates a Config pointing at initial. presets nil means DefaultPresets.
func New(initial string, presets []Preset) (*Config, error) {
	if presets == nil {
		presets = DefaultPresets
	}
	c := &Config{presets: append([]Preset(nil), presets...)}
	if err := c.Set(initial); err != nil {
		return nil, err
	}
	return c, nil
}

// Normalize trims surrounding whitespace and trailing slashes
// Example: Normalize(" https://peer.example/// ") = "https://peer.example"
func Normalize(url string) (string, error) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return "", ErrEmptyURL
	}
	return url, nil
}

// Presets returns a copy of the labeled presets
func (c *Config) Presets() []Preset {
	return append([]Preset(nil), c.presets...)
}

// Get returns the active base URL
func (c *Config) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set replaces the active base URL
func (c *Config) Set(url string) error {
	normalized, err := Normalize(url)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.current = normalized
	c.mu.Unlock()
	return nil
}

// Select activates the preset with the given label (case-insensitive)
func (c *Config) Select(label string) error {
	for _, p := range c.presets {
		if strings.EqualFold(p.Label, strings.TrimSpace(label)) {
			return c.Set(p.URL)
		}
	}
	return fmt.Errorf("unknown preset %q", label)
}
