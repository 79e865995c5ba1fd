package app

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/AlexZinkM/peer-wallet/internal/config"
	"github.com/AlexZinkM/peer-wallet/internal/crypto"
	"github.com/AlexZinkM/peer-wallet/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScrypt = crypto.ScryptParams{N: 1 << 10, R: 8, P: 1}

func testOptions(t *testing.T, backend string, password string) Options {
	t.Helper()
	opts := Options{
		Backend:     backend,
		Dir:         t.TempDir(),
		StorageKey:  "wallet",
		Scrypt:      testScrypt,
		PeerURL:     "http://localhost:8080/",
		PeerTimeout: time.Second,
	}
	if password != "" {
		opts.Password = []byte(password)
	}
	return opts
}

func TestNew_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testOptions(t, config.BackendMemory, ""))
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Equal(t, 0, a.Store.Len())
	assert.Equal(t, "http://localhost:8080", a.Endpoints.Get())
	assert.NotNil(t, a.Client)
}

func TestNew_ReloadsPersistedKeys(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			opts := testOptions(t, backend, "correct horse")

			a, err := New(ctx, opts)
			require.NoError(t, err)
			pub, err := a.Store.AddKey()
			require.NoError(t, err)
			require.NoError(t, a.Close(ctx))

			b, err := New(ctx, opts)
			require.NoError(t, err)
			defer b.Close(ctx)
			assert.True(t, b.Store.Has(pub.Hex()))
		})
	}
}

func TestNew_WrongPassword(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t, config.BackendFile, "right")

	a, err := New(ctx, opts)
	require.NoError(t, err)
	_, err = a.Store.AddKey()
	require.NoError(t, err)
	require.NoError(t, a.Close(ctx))

	opts.Password = []byte("wrong")
	_, err = New(ctx, opts)
	assert.ErrorIs(t, err, crypto.ErrInvalidPassword)
}

func TestRekey(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t, config.BackendFile, "old")

	a, err := New(ctx, opts)
	require.NoError(t, err)
	pub, err := a.Store.AddKey()
	require.NoError(t, err)
	require.NoError(t, a.Rekey(ctx, opts.StorageKey, []byte("new")))
	require.NoError(t, a.Close(ctx))

	_, err = New(ctx, opts)
	assert.ErrorIs(t, err, crypto.ErrInvalidPassword)

	opts.Password = []byte("new")
	b, err := New(ctx, opts)
	require.NoError(t, err)
	defer b.Close(ctx)
	assert.True(t, b.Store.Has(pub.Hex()))
}

func TestRekey_Unencrypted(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testOptions(t, config.BackendMemory, ""))
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Error(t, a.Rekey(ctx, "wallet", []byte("pw")))
}

func TestOpenSlot_UnknownBackend(t *testing.T) {
	_, err := OpenSlot(testOptions(t, "s3", ""))
	assert.Error(t, err)
}

func TestClose_DoesNotClobberOtherProcess(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t, config.BackendFile, "pw")

	server, err := New(ctx, opts)
	require.NoError(t, err)

	cli, err := New(ctx, opts)
	require.NoError(t, err)
	pub, err := cli.Store.AddKey()
	require.NoError(t, err)
	require.NoError(t, cli.Close(ctx))

	require.NoError(t, server.Close(ctx))

	after, err := New(ctx, opts)
	require.NoError(t, err)
	defer after.Close(ctx)
	assert.True(t, after.Store.Has(pub.Hex()), "an idle process must not overwrite a newer wallet")
}

func TestPersist_MergesConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t, config.BackendFile, "pw")

	a, err := New(ctx, opts)
	require.NoError(t, err)
	b, err := New(ctx, opts)
	require.NoError(t, err)

	fromB, err := b.Store.AddKey()
	require.NoError(t, err)
	require.NoError(t, b.Close(ctx))

	fromA, err := a.Store.AddKey()
	require.NoError(t, err)
	assert.True(t, a.Store.Has(fromB.Hex()), "the key written by the other process is adopted")
	require.NoError(t, a.Close(ctx))

	after, err := New(ctx, opts)
	require.NoError(t, err)
	defer after.Close(ctx)
	assert.True(t, after.Store.Has(fromA.Hex()))
	assert.True(t, after.Store.Has(fromB.Hex()))
}

func TestNew_PlaintextWalletNeedsRekey(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t, config.BackendFile, "")

	plain, err := New(ctx, opts)
	require.NoError(t, err)
	pub, err := plain.Store.AddKey()
	require.NoError(t, err)
	require.NoError(t, plain.Close(ctx))

	opts.Password = []byte("pw")
	_, err = New(ctx, opts)
	require.ErrorIs(t, err, storage.ErrNotSealed)

	opts.AllowPlaintext = true
	a, err := New(ctx, opts)
	require.NoError(t, err)
	require.NoError(t, a.Rekey(ctx, opts.StorageKey, []byte("pw")))
	require.NoError(t, a.Close(ctx))

	file, err := storage.NewFileSlot(opts.Dir)
	require.NoError(t, err)
	raw, err := os.ReadFile(file.Path(opts.StorageKey))
	require.NoError(t, err)
	assert.True(t, crypto.IsSealed(raw))

	opts.AllowPlaintext = false
	b, err := New(ctx, opts)
	require.NoError(t, err)
	defer b.Close(ctx)
	assert.True(t, b.Store.Has(pub.Hex()))
}
