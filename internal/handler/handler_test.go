package handler

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexZinkM/peer-wallet/internal/client"
	"github.com/AlexZinkM/peer-wallet/internal/crypto"
	"github.com/AlexZinkM/peer-wallet/internal/endpoint"
	"github.com/AlexZinkM/peer-wallet/internal/model"
	"github.com/AlexZinkM/peer-wallet/internal/wallet"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router    *mux.Router
	store     *wallet.Store
	endpoints *endpoint.Config
	peerCalls *atomic.Int32
}

func newFixture(t *testing.T, peer http.HandlerFunc) *fixture {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		peer(w, r)
	}))
	t.Cleanup(srv.Close)

	endpoints, err := endpoint.New(srv.URL, nil)
	require.NoError(t, err)
	store := wallet.NewStore()
	c := client.NewPeerClient(endpoints, store, 2*time.Second)

	ph := NewPeerHandler(c)
	wh := NewWalletHandler(store)
	eh := NewEndpointHandler(endpoints)

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/status", ph.Status).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/query", ph.Query).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/transact", ph.Transact).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/accounts/{address}", ph.Account).Methods(http.MethodGet)
	r.HandleFunc("/identicon/{hex}", ph.Identicon).Methods(http.MethodGet)
	r.HandleFunc("/wallet/keys", wh.ListKeys).Methods(http.MethodGet)
	r.HandleFunc("/wallet/keys", wh.AddKey).Methods(http.MethodPost)
	r.HandleFunc("/wallet/keys/{publicKey}", wh.RemoveKey).Methods(http.MethodDelete)
	r.HandleFunc("/wallet/keys/{publicKey}/import", wh.ImportKey).Methods(http.MethodPost)
	r.HandleFunc("/wallet/keys/{publicKey}/qr", wh.QRCode).Methods(http.MethodGet)
	r.HandleFunc("/endpoint", eh.Get).Methods(http.MethodGet)
	r.HandleFunc("/endpoint", eh.Set).Methods(http.MethodPut)

	return &fixture{router: r, store: store, endpoints: endpoints, peerCalls: calls}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestQuery_Proxy(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":3}`))
	})

	rec := f.do(t, http.MethodPost, "/api/v1/query", model.QueryRequest{Source: "(+ 1 2)"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, float64(3), resp["value"])
	assert.Contains(t, resp, "latencyMs")
	assert.Equal(t, float64(client.EstimateJuice("(+ 1 2)")), resp["juice"])
}

func TestQuery_PeerStatusPassedThrough(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`"boom"`))
	})

	rec := f.do(t, http.MethodPost, "/api/v1/query", model.QueryRequest{Source: "x"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[model.RPCErrorResponse](t, rec)
	assert.Equal(t, "PEER_ERROR", resp.ErrorCode)
	assert.Equal(t, "Peer returned 500: boom", resp.ErrorMessage)
}

func TestQuery_BadInput(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := f.do(t, http.MethodPost, "/api/v1/query", model.QueryRequest{Source: "x", Address: "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ADDRESS", decode[model.RPCErrorResponse](t, rec).ErrorCode)

	rec = f.do(t, http.MethodPost, "/api/v1/query", model.QueryRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, int32(0), f.peerCalls.Load())
}

func TestTransact_NoKeyIs412(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := f.do(t, http.MethodPost, "/api/v1/transact", model.TransactRequest{
		Source: "(def x 1)", Address: "#12", PublicKey: strings.Repeat("ab", 32),
	})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "NO_SIGNING_KEY", decode[model.RPCErrorResponse](t, rec).ErrorCode)
	assert.Equal(t, int32(0), f.peerCalls.Load())
}

func TestTransact_SignsWithStoredKey(t *testing.T) {
	var sent map[string]string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	})
	pub, err := f.store.AddKey()
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/v1/transact", model.TransactRequest{
		Source: "(def x 1)", Address: "12", PublicKey: pub.Hex(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["value"])

	assert.NotContains(t, sent, "publicKey")
	sig, err := hex.DecodeString(sent["signature"])
	require.NoError(t, err)
	payload, err := client.SigningPayload("(def x 1)", "12")
	require.NoError(t, err)
	assert.True(t, crypto.Verify(sig, payload, pub[:]))
}

func TestNetworkFailureIs502(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, f.endpoints.Set("http://127.0.0.1:1"))

	rec := f.do(t, http.MethodGet, "/api/v1/status", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "NETWORK", decode[model.ErrorResponse](t, rec).Code)
}

func TestStatus_PeerOverrideQueryParam(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"peer":"other"}`))
	}))
	defer other.Close()

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"peer":"main"}`))
	})
	before := f.endpoints.Get()

	rec := f.do(t, http.MethodGet, "/api/v1/status?peer="+other.URL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"peer":"other"}`, rec.Body.String())
	assert.Equal(t, before, f.endpoints.Get())
}

func TestAccount(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"address":7,"balance":5}`))
	})

	rec := f.do(t, http.MethodGet, "/api/v1/accounts/%237", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"address":7,"balance":5}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/accounts/seven", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(1), f.peerCalls.Load())
}

func TestAccount_PassesPeerStatusThrough(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		_, _ = w.Write([]byte(`{"address":7}`))
	})

	rec := f.do(t, http.MethodGet, "/api/v1/accounts/7", nil)
	assert.Equal(t, http.StatusNonAuthoritativeInfo, rec.Code)
	assert.JSONEq(t, `{"address":7}`, rec.Body.String())
}

func TestQuery_PeerErrorReportsLatency(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`"nope"`))
	})

	rec := f.do(t, http.MethodPost, "/api/v1/query", model.QueryRequest{Source: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[model.RPCErrorResponse](t, rec)
	assert.Positive(t, resp.LatencyMs)
}

func TestIdenticon_CacheHeader(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})

	rec := f.do(t, http.MethodGet, "/identicon/abcDEF", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = f.do(t, http.MethodGet, "/identicon/nothex", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_HEX", decode[model.ErrorResponse](t, rec).Code)
	assert.Equal(t, int32(1), f.peerCalls.Load())
}

func TestWalletKeys_Lifecycle(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := f.do(t, http.MethodPost, "/wallet/keys", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.GenerateResponse](t, rec)
	assert.True(t, created.Success)
	assert.Len(t, created.Key.PublicKey, 64)
	assert.NotEmpty(t, created.Key.Address)

	rec = f.do(t, http.MethodGet, "/wallet/keys", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[model.KeysResponse](t, rec)
	require.Len(t, list.Keys, 1)
	assert.Equal(t, created.Key, list.Keys[0])
	assert.NotContains(t, rec.Body.String(), "seed")

	rec = f.do(t, http.MethodGet, "/wallet/keys/"+created.Key.PublicKey+"/qr", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}))

	for i := 0; i < 2; i++ {
		rec = f.do(t, http.MethodDelete, "/wallet/keys/"+created.Key.PublicKey, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 0, f.store.Len())

	rec = f.do(t, http.MethodGet, "/wallet/keys/"+created.Key.PublicKey+"/qr", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWalletImport(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	pub, seed, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	_, otherSeed, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	path := "/wallet/keys/" + pub.Hex() + "/import"

	rec := f.do(t, http.MethodPost, path, model.ImportRequest{Seed: "deadbeef"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BadFormat", decode[model.ErrorResponse](t, rec).Code)

	rec = f.do(t, http.MethodPost, path, model.ImportRequest{Seed: otherSeed.Hex()})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "KeyMismatch", decode[model.ErrorResponse](t, rec).Code)
	assert.Equal(t, 0, f.store.Len())

	rec = f.do(t, http.MethodPost, path, model.ImportRequest{Seed: seed.Hex(), Mnemonic: "a b c"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, path, model.ImportRequest{Seed: "0x" + seed.Hex()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pub.Hex(), decode[model.ImportResponse](t, rec).Key.PublicKey)
	assert.True(t, f.store.Has(pub.Hex()))
}

func TestWalletImport_Mnemonic(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	pub, seed, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	words, err := crypto.SeedToMnemonic(seed)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/wallet/keys/"+pub.Hex()+"/import", model.ImportRequest{Mnemonic: words})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, f.store.Has(pub.Hex()))
}

func TestEndpoint_GetSet(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := f.do(t, http.MethodGet, "/endpoint", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.EndpointResponse](t, rec)
	assert.Len(t, got.Presets, len(endpoint.DefaultPresets))

	rec = f.do(t, http.MethodPut, "/endpoint", model.EndpointRequest{URL: " https://peer.example/// "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://peer.example", decode[model.EndpointResponse](t, rec).Current)

	rec = f.do(t, http.MethodPut, "/endpoint", model.EndpointRequest{Preset: "local"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:8080", f.endpoints.Get())

	for _, bad := range []model.EndpointRequest{{}, {URL: " / "}, {Preset: "nowhere"}} {
		rec = f.do(t, http.MethodPut, "/endpoint", bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	assert.Equal(t, "http://localhost:8080", f.endpoints.Get())
}
