package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/AlexZinkM/peer-wallet/internal/codec"
	"github.com/AlexZinkM/peer-wallet/internal/crypto"
	"github.com/AlexZinkM/peer-wallet/internal/logging"
	"github.com/AlexZinkM/peer-wallet/internal/storage"
)

// Store maps public keys to seeds.
// Every entry satisfies pub == DerivePublicKey(seed): entries only come from AddKey,
// Admit (after import verification) or a Load that re-derives each key.
type Store struct {
	mu    sync.RWMutex
	seeds map[string]crypto.Seed // normalized hex public key -> seed

	// removed holds keys deleted since the last persist so a merge does not bring them back.
	// gen counts mutations; dirty is set while some are not persisted yet.
	removed map[string]struct{}
	gen     uint64
	dirty   bool

	// persistMu orders snapshot+write so a stale snapshot never overwrites a newer one
	persistMu   sync.Mutex
	slot        storage.Slot
	storageKey  string
	autoPersist bool
}

// Option configures a Store
type Option func(*Store)

// WithSlot makes Persist/Load sync with slot under storageKey.
// Without it (or with an empty key) the store is memory-only.
func WithSlot(slot storage.Slot, storageKey string) Option {
	return func(s *Store) {
		s.slot = slot
		s.storageKey = storageKey
	}
}

// WithAutoPersist persists after every mutation. Failures are logged, not returned.
func WithAutoPersist() Option {
	return func(s *Store) {
		s.autoPersist = true
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{seeds: make(map[string]crypto.Seed), removed: make(map[string]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddKey generates a fresh key pair, stores it and returns the public key.
// An error means the entropy source failed.
func (s *Store) AddKey() (crypto.PublicKey, error) {
	pub, seed, err := crypto.GenerateKeyPair()
	if err != nil {
		return crypto.PublicKey{}, fmt.Errorf("failed to generate key: %w", err)
	}

	s.mu.Lock()
	s.seeds[pub.Hex()] = seed
	s.markLocked(pub.Hex(), false)
	s.mu.Unlock()

	logging.Infof("wallet: added key %s", pub.Hex())
	s.afterMutation()
	return pub, nil
}

// Admit stores a seed that already passed ImportSeed. The public key is re-derived here.
func (s *Store) Admit(seed crypto.Seed) (crypto.PublicKey, error) {
	pub, err := crypto.DerivePublicKey(seed)
	if err != nil {
		return crypto.PublicKey{}, err
	}

	s.mu.Lock()
	if old, ok := s.seeds[pub.Hex()]; ok {
		old.Zero()
	}
	s.seeds[pub.Hex()] = seed.Clone()
	s.markLocked(pub.Hex(), false)
	s.mu.Unlock()

	logging.Infof("wallet: admitted key %s", pub.Hex())
	s.afterMutation()
	return pub, nil
}

// RemoveKey deletes the entry for publicKey. Removing an absent key is a no-op.
func (s *Store) RemoveKey(publicKey string) {
	key := codec.NormalizeHex(publicKey)

	s.mu.Lock()
	seed, ok := s.seeds[key]
	if ok {
		delete(s.seeds, key)
		s.markLocked(key, true)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	// zero after unlocking: SignWith works on copies, nobody else holds this slice
	seed.Zero()
	logging.Infof("wallet: removed key %s", key)
	s.afterMutation()
}

// GetSeed returns a copy of the seed for publicKey. Caller must Zero it after use.
func (s *Store) GetSeed(publicKey string) (crypto.Seed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seed, ok := s.seeds[codec.NormalizeHex(publicKey)]
	if !ok {
		return nil, false
	}
	return seed.Clone(), true
}

// SignWith signs message with the seed of publicKey.
// ok is false when no such key is stored; err is only set for a cryptographic failure.
func (s *Store) SignWith(publicKey string, message []byte) (sig crypto.Signature, ok bool, err error) {
	seed, ok := s.GetSeed(publicKey)
	if !ok {
		return crypto.Signature{}, false, nil
	}
	defer seed.Zero()

	sig, err = crypto.Sign(message, seed)
	if err != nil {
		return crypto.Signature{}, true, err
	}
	return sig, true, nil
}

// Has reports whether publicKey is stored
func (s *Store) Has(publicKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seeds[codec.NormalizeHex(publicKey)]
	return ok
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seeds)
}

// Keys returns the stored public keys sorted by hex
func (s *Store) Keys() []crypto.PublicKey {
	s.mu.RLock()
	hexKeys := make([]string, 0, len(s.seeds))
	for k := range s.seeds {
		hexKeys = append(hexKeys, k)
	}
	s.mu.RUnlock()

	sort.Strings(hexKeys)
	keys := make([]crypto.PublicKey, 0, len(hexKeys))
	for _, k := range hexKeys {
		pub, err := crypto.ParsePublicKey(k)
		if err != nil {
			continue
		}
		keys = append(keys, pub)
	}
	return keys
}

// Dirty reports whether the store holds mutations that were not persisted
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush persists only when there are unpersisted mutations, so an idle process never
// overwrites what another process wrote to the same slot.
func (s *Store) Flush(ctx context.Context) error {
	if !s.Dirty() {
		return nil
	}
	return s.Persist(ctx)
}

// Persist writes the whole store to the slot as {"<pubhex>":"<seedhex>"}.
// The slot is read first: entries another process added are kept and adopted, entries
// removed here stay removed. A slot that cannot be read is never overwritten.
// No-op without a slot or storage key.
func (s *Store) Persist(ctx context.Context) error {
	if s.slot == nil || s.storageKey == "" {
		return nil
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	current, err := s.slot.Read(ctx, s.storageKey)
	if err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("failed to read wallet before persisting: %w", err)
	}
	onDisk, _ := decodeDocument(current)
	clear(current)

	// single point-in-time snapshot, merged with the slot content
	s.mu.Lock()
	adopted := 0
	for pub, seed := range onDisk {
		_, known := s.seeds[pub]
		_, removed := s.removed[pub]
		if known || removed {
			seed.Zero()
			continue
		}
		s.seeds[pub] = seed
		adopted++
	}
	doc := make(map[string]string, len(s.seeds))
	for pub, seed := range s.seeds {
		doc[pub] = seed.Hex()
	}
	tombstones := make([]string, 0, len(s.removed))
	for pub := range s.removed {
		tombstones = append(tombstones, pub)
	}
	gen := s.gen
	s.mu.Unlock()

	if adopted > 0 {
		logging.Infof("wallet: adopted %d keys written to slot %q by another process", adopted, s.storageKey)
	}

	data, err := json.Marshal(doc)
	clear(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}
	defer clear(data)

	if err := s.slot.Write(ctx, s.storageKey, data); err != nil {
		return fmt.Errorf("failed to persist wallet: %w", err)
	}

	s.mu.Lock()
	for _, pub := range tombstones {
		if _, back := s.seeds[pub]; !back {
			delete(s.removed, pub)
		}
	}
	if s.gen == gen {
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

// Load replaces the store content with what the slot holds.
// An absent slot means an empty wallet. A malformed document is discarded, and so is
// every entry whose seed is not 32 hex bytes or does not derive its public key.
// Only slot read failures (I/O, wrong password) are returned; the store is then untouched.
func (s *Store) Load(ctx context.Context) error {
	if s.slot == nil || s.storageKey == "" {
		return nil
	}

	data, err := s.slot.Read(ctx, s.storageKey)
	if err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("failed to load wallet: %w", err)
	}
	defer clear(data)

	loaded, dropped := decodeDocument(data)
	if dropped > 0 {
		logging.Warnf("wallet: discarded %d malformed entries from slot %q", dropped, s.storageKey)
	}

	s.mu.Lock()
	for _, seed := range s.seeds {
		seed.Zero()
	}
	s.seeds = loaded
	s.removed = make(map[string]struct{})
	s.dirty = false
	n := len(s.seeds)
	s.mu.Unlock()

	logging.Infof("wallet: loaded %d keys from slot %q", n, s.storageKey)
	return nil
}

// decodeDocument validates the persisted shape and returns the surviving entries
// together with how many were dropped. It never fails: garbage means an empty wallet.
func decodeDocument(data []byte) (map[string]crypto.Seed, int) {
	seeds := make(map[string]crypto.Seed)
	if len(data) == 0 {
		return seeds, 0
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logging.Warnf("wallet: stored document is not a JSON object, ignoring it")
		return seeds, 1
	}

	dropped := 0
	for pubHex, value := range raw {
		var seedHex string
		if err := json.Unmarshal(value, &seedHex); err != nil {
			dropped++
			continue
		}
		seed, err := ImportSeed(seedHex, pubHex)
		if err != nil {
			dropped++
			continue
		}
		seeds[codec.NormalizeHex(pubHex)] = seed
	}
	return seeds, dropped
}

// markLocked records a mutation of key. Caller holds mu.
func (s *Store) markLocked(key string, removed bool) {
	if removed {
		s.removed[key] = struct{}{}
	} else {
		delete(s.removed, key)
	}
	s.gen++
	s.dirty = true
}

func (s *Store) afterMutation() {
	if !s.autoPersist {
		return
	}
	if err := s.Persist(context.Background()); err != nil {
		logging.Errorf("wallet: auto-persist failed: %v", err)
	}
}
