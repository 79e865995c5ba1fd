package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexZinkM/peer-wallet/internal/app"
	"github.com/AlexZinkM/peer-wallet/internal/config"
	"github.com/AlexZinkM/peer-wallet/internal/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *app.App) {
	t.Helper()
	ctx := context.Background()
	a, err := app.New(ctx, app.Options{
		Backend:     config.BackendMemory,
		StorageKey:  "wallet",
		PeerURL:     "http://127.0.0.1:1",
		PeerTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })
	return SetupRouter(a), a
}

// localRequest builds a request the way a local client (curl, the CLI, Swagger UI) sends it
func localRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Host = "127.0.0.1:8484"
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestRouter_Routes(t *testing.T) {
	h, a := newTestRouter(t)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/wallet/keys", http.StatusOK},
		{http.MethodPost, "/wallet/keys", http.StatusCreated},
		{http.MethodGet, "/endpoint", http.StatusOK},
		{http.MethodGet, "/api/v1/status", http.StatusBadGateway},
		{http.MethodGet, "/api/v1/accounts/x", http.StatusBadRequest},
		{http.MethodGet, "/identicon/zz", http.StatusBadRequest},
		{http.MethodPut, "/wallet/keys", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, localRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
	assert.Equal(t, 1, a.Store.Len())
}

func TestRouter_RequestID(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, localRequest(http.MethodGet, "/endpoint", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := localRequest(http.MethodGet, "/endpoint", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestRouter_SwaggerDoc(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, localRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/transact")
}

func TestRouter_RejectsCrossOriginTransact(t *testing.T) {
	var peerHits atomic.Int32
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peerHits.Add(1)
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	defer peer.Close()

	h, a := newTestRouter(t)
	pub, err := a.Store.AddKey()
	require.NoError(t, err)
	body := `{"source":"(transfer #666 1000000)","address":"#12","publicKey":"` + pub.Hex() + `"}`
	path := "/api/v1/transact?peer=" + peer.URL

	cases := []struct {
		name        string
		host        string
		origin      string
		contentType string
		want        int
	}{
		{"text/plain from another site", "127.0.0.1:8484", "https://evil.example", "text/plain", http.StatusForbidden},
		{"json from another site", "127.0.0.1:8484", "https://evil.example", "application/json", http.StatusForbidden},
		{"null origin", "127.0.0.1:8484", "null", "application/json", http.StatusForbidden},
		{"text/plain without origin", "127.0.0.1:8484", "", "text/plain", http.StatusUnsupportedMediaType},
		{"form without origin", "localhost:8484", "", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"rebound host name", "evil.example:8484", "", "application/json", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
			req.Host = tc.host
			req.Header.Set("Content-Type", tc.contentType)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, int32(0), peerHits.Load())

	// the same call from a local client goes through and is signed
	req := localRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Origin", "http://localhost:8484")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int32(1), peerHits.Load())
}

func TestIsLoopbackHost(t *testing.T) {
	for _, host := range []string{"localhost", "localhost:8484", "127.0.0.1", "127.0.0.1:8484", "[::1]:8484", "::1", "LOCALHOST:1"} {
		assert.True(t, isLoopbackHost(host), host)
	}
	for _, host := range []string{"", "example.com", "evil.example:8484", "192.168.1.10:8484", "0.0.0.0:8484", "localhost.evil.example"} {
		assert.False(t, isLoopbackHost(host), host)
	}
}

func TestRouter_KeysAddedThroughAPISign(t *testing.T) {
	h, a := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, localRequest(http.MethodPost, "/wallet/keys", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		PublicKey string `json:"publicKey"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	pub, err := crypto.ParsePublicKey(created.PublicKey)
	require.NoError(t, err)
	sig, ok, err := a.Store.SignWith(pub.Hex(), []byte("m"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, crypto.Verify(sig[:], []byte("m"), pub[:]))
}
