// Package app wires the wallet store, peer client and endpoint config together.
// Handlers and CLI commands receive an *App instead of reaching for globals.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/peer-wallet/internal/client"
	"github.com/AlexZinkM/peer-wallet/internal/config"
	"github.com/AlexZinkM/peer-wallet/internal/crypto"
	"github.com/AlexZinkM/peer-wallet/internal/endpoint"
	"github.com/AlexZinkM/peer-wallet/internal/logging"
	"github.com/AlexZinkM/peer-wallet/internal/storage"
	"github.com/AlexZinkM/peer-wallet/internal/wallet"
)

// Options selects the storage backend and the peer
type Options struct {
	Backend    string // config.BackendFile, BackendBadger or BackendMemory
	Dir        string
	StorageKey string

	// Password seals the slot when non-empty. It is copied.
	Password []byte
	Scrypt   crypto.ScryptParams
	// AllowPlaintext accepts an unencrypted wallet under a password so rekey can seal it
	AllowPlaintext bool

	PeerURL     string
	PeerTimeout time.Duration
}

// OptionsFromConfig builds Options from the loaded config.
// When encryption is on the password must already be set (prompt or WALLET_PASSWORD).
func OptionsFromConfig() (Options, error) {
	c := config.Get()

	dir, err := config.GetWalletDir()
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		Backend:     c.Backend,
		Dir:         dir,
		StorageKey:  c.StorageKey,
		Scrypt:      crypto.ScryptParams{N: c.ScryptN, R: crypto.DefaultScryptParams.R, P: crypto.DefaultScryptParams.P},
		PeerURL:     c.PeerURL,
		PeerTimeout: c.PeerTimeout,
	}
	if c.Encrypt && c.Backend != config.BackendMemory {
		pw, err := config.GetPasswordBytes()
		if err != nil {
			return Options{}, err
		}
		opts.Password = pw
	}
	return opts, nil
}

// App owns the long-lived components of a wallet process
type App struct {
	Store     *wallet.Store
	Client    *client.PeerClient
	Endpoints *endpoint.Config

	slot storage.Slot
}

// New opens the slot, loads the wallet from it and builds the peer client.
// The store persists itself after every mutation.
func New(ctx context.Context, opts Options) (*App, error) {
	slot, err := OpenSlot(opts)
	if err != nil {
		return nil, err
	}

	store := wallet.NewStore(wallet.WithSlot(slot, opts.StorageKey), wallet.WithAutoPersist())
	if err := store.Load(ctx); err != nil {
		_ = slot.Close()
		if errors.Is(err, crypto.ErrInvalidPassword) {
			return nil, fmt.Errorf("failed to unlock wallet: %w", err)
		}
		if errors.Is(err, storage.ErrNotSealed) {
			return nil, fmt.Errorf("%w: run `peerwallet rekey` to encrypt it", err)
		}
		return nil, err
	}

	endpoints, err := endpoint.New(opts.PeerURL, nil)
	if err != nil {
		_ = slot.Close()
		return nil, fmt.Errorf("failed to configure peer endpoint: %w", err)
	}

	logging.With("backend", opts.Backend, "keys", store.Len(), "peer", endpoints.Get()).Info("wallet ready")

	return &App{
		Store:     store,
		Client:    client.NewPeerClient(endpoints, store, opts.PeerTimeout),
		Endpoints: endpoints,
		slot:      slot,
	}, nil
}

// OpenSlot opens the backend named by opts.Backend, sealed when a password is given
func OpenSlot(opts Options) (storage.Slot, error) {
	var (
		slot storage.Slot
		err  error
	)
	switch opts.Backend {
	case config.BackendFile, "":
		slot, err = storage.NewFileSlot(opts.Dir)
	case config.BackendBadger:
		slot, err = storage.OpenBadgerSlot(filepath.Join(opts.Dir, "badger"))
	case config.BackendMemory:
		slot = storage.NewMemorySlot()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if len(opts.Password) == 0 {
		return slot, nil
	}
	params := opts.Scrypt
	if params.N == 0 {
		params = crypto.DefaultScryptParams
	}
	sealed, err := storage.NewSealedSlot(slot, opts.Password, params)
	if err != nil {
		_ = slot.Close()
		return nil, err
	}
	if opts.AllowPlaintext {
		sealed.AllowPlaintext()
	}
	return sealed, nil
}

// Rekey re-encrypts the wallet slot under newPassword.
// Fails if the wallet was opened without a password.
func (a *App) Rekey(ctx context.Context, storageKey string, newPassword []byte) error {
	sealed, ok := a.slot.(*storage.SealedSlot)
	if !ok {
		return errors.New("wallet is not encrypted: enable WALLET_ENCRYPT and set a password first")
	}
	if err := a.Store.Persist(ctx); err != nil {
		return err
	}
	if err := sealed.Rekey(ctx, storageKey, newPassword); err != nil {
		return fmt.Errorf("failed to rekey wallet: %w", err)
	}
	return nil
}

// Close persists mutations that are still pending and releases the slot.
// A wallet that did not change is not written back.
func (a *App) Close(ctx context.Context) error {
	persistErr := a.Store.Flush(ctx)
	closeErr := a.slot.Close()
	return errors.Join(persistErr, closeErr)
}
