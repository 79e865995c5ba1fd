package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlexZinkM/peer-wallet/internal/codec"
	"github.com/AlexZinkM/peer-wallet/internal/crypto"
	"github.com/AlexZinkM/peer-wallet/internal/endpoint"
	"github.com/AlexZinkM/peer-wallet/internal/logging"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
)

const (
	DefaultTimeout  = 15 * time.Second
	maxBodyBytes    = 8 << 20
	requestIDHeader = "X-Request-ID"

	pathStatus    = "/api/v1/status"
	pathQuery     = "/api/v1/query"
	pathTransact  = "/api/v1/transact"
	pathAccounts  = "/api/v1/accounts/"
	pathIdenticon = "/identicon/"
)

// BaseURL supplies the active peer URL (endpoint.Config satisfies it)
type BaseURL interface {
	Get() string
}

// Signer produces signatures for a stored public key (wallet.Store satisfies it).
// ok is false when the key is unknown.
type Signer interface {
	SignWith(publicKey string, message []byte) (sig crypto.Signature, ok bool, err error)
}

// PeerClient is a client for the ledger peer RPC
type PeerClient struct {
	endpoints BaseURL
	signer    Signer
	client    *http.Client
	timeout   time.Duration
}

// NewPeerClient creates a client. timeout <= 0 means DefaultTimeout.
// signer may be nil, in which case every Transact fails with NO_SIGNING_KEY.
func NewPeerClient(endpoints BaseURL, signer Signer, timeout time.Duration) *PeerClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PeerClient{
		endpoints: endpoints,
		signer:    signer,
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// CallOption adjusts a single call
type CallOption func(*callOptions)

type callOptions struct {
	peer string
}

// WithPeer targets url for this call only; the configured endpoint is left untouched
func WithPeer(url string) CallOption {
	return func(o *callOptions) {
		o.peer = url
	}
}

type queryRequest struct {
	Source  string `json:"source"`
	Address string `json:"address,omitempty"`
}

type transactRequest struct {
	Source    string `json:"source"`
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// signingPayload is what gets signed for a transaction
type signingPayload struct {
	Source  string `json:"source"`
	Address string `json:"address"`
}

// SigningPayload returns the exact bytes Transact signs: {"source":...,"address":...}
func SigningPayload(source, address string) ([]byte, error) {
	b, err := json.Marshal(signingPayload{Source: source, Address: address})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signing payload: %w", err)
	}
	return b, nil
}

// Status fetches the peer status document
func (c *PeerClient) Status(ctx context.Context, opts ...CallOption) (*Result, error) {
	raw, err := c.roundTrip(ctx, http.MethodGet, pathStatus, nil, opts)
	if err != nil {
		return nil, err
	}
	return decodeResult(raw, false)
}

// Query runs a side-effect-free read. address is optional.
// Empty and non-JSON bodies are valid answers (nil value and raw text).
func (c *PeerClient) Query(ctx context.Context, source, address string, opts ...CallOption) (*Result, error) {
	addr := ""
	if strings.TrimSpace(address) != "" {
		var err error
		if addr, err = NormalizeAddress(address); err != nil {
			return nil, err
		}
	}

	raw, err := c.roundTrip(ctx, http.MethodPost, pathQuery, queryRequest{Source: source, Address: addr}, opts)
	if err != nil {
		return nil, err
	}
	return decodeResult(raw, true)
}

// Transact signs {source, address} with the key of publicKey and submits it once.
// Without a stored key it fails with NO_SIGNING_KEY before touching the network.
func (c *PeerClient) Transact(ctx context.Context, source, address, publicKey string, opts ...CallOption) (*Result, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	if c.signer == nil {
		return nil, &Error{Code: CodeNoSigningKey, Message: "no signer configured: no key can sign transactions"}
	}

	payload, err := SigningPayload(source, addr)
	if err != nil {
		return nil, err
	}

	sig, ok, err := c.signer.SignWith(publicKey, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if !ok {
		return nil, &Error{
			Code:    CodeNoSigningKey,
			Message: fmt.Sprintf("no signing key stored for public key %s", codec.NormalizeHex(publicKey)),
		}
	}

	req := transactRequest{Source: source, Address: addr, Signature: sig.Hex()}
	raw, err := c.roundTrip(ctx, http.MethodPost, pathTransact, req, opts)
	if err != nil {
		return nil, err
	}
	return decodeResult(raw, true)
}

// Account looks up an account by numeric address ("#12" and "12" are the same)
func (c *PeerClient) Account(ctx context.Context, address string, opts ...CallOption) (*Result, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	raw, err := c.roundTrip(ctx, http.MethodGet, pathAccounts+addr, nil, opts)
	if err != nil {
		return nil, err
	}
	return decodeResult(raw, false)
}

// Identicon fetches the identicon image for a hex string
func (c *PeerClient) Identicon(ctx context.Context, hex string, opts ...CallOption) (*Image, error) {
	if !codec.IsHex(hex) {
		return nil, ErrInvalidHex
	}
	raw, err := c.roundTrip(ctx, http.MethodGet, pathIdenticon+hex, nil, opts)
	if err != nil {
		return nil, err
	}
	if raw.status < 200 || raw.status > 299 {
		detail, peerCode := errorDetail(raw.body)
		return nil, peerError(raw, detail, peerCode)
	}
	return &Image{
		Data:        raw.body,
		ContentType: raw.contentType,
		Status:      raw.status,
		Latency:     raw.latency,
	}, nil
}

// NormalizeAddress strips an optional leading '#' and requires ^\d+$
func NormalizeAddress(address string) (string, error) {
	addr := strings.TrimPrefix(strings.TrimSpace(address), "#")
	if addr == "" || !govalidator.IsNumeric(addr) {
		return "", &Error{Code: CodeInvalidAddress, Message: fmt.Sprintf("invalid address %q: must match ^\\d+$", address)}
	}
	return addr, nil
}

type rawResponse struct {
	status      int
	body        []byte
	contentType string
	latency     time.Duration
	requestID   string
}

// roundTrip performs one bounded HTTP exchange. It never retries.
func (c *PeerClient) roundTrip(ctx context.Context, method, path string, payload any, opts []CallOption) (*rawResponse, error) {
	o := callOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	requestID := uuid.NewString()
	log := logging.With("requestID", requestID, "method", method, "path", path)

	base, err := c.resolveBase(o)
	if err != nil {
		return nil, networkError(err, requestID)
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, networkError(fmt.Errorf("failed to build request: %w", err), requestID)
	}
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("peer unreachable", "peer", base, "err", err)
		return nil, networkError(err, requestID)
	}
	defer resp.Body.Close()

	// one byte past the limit tells a full-size body from an oversized one
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	latency := time.Since(start)
	if err != nil {
		log.Warn("failed to read peer response", "peer", base, "err", err)
		return nil, networkError(fmt.Errorf("failed to read response: %w", err), requestID)
	}
	if len(data) > maxBodyBytes {
		clear(data)
		log.Warn("peer response too large", "peer", base, "status", resp.StatusCode, "limit", maxBodyBytes)
		return nil, networkError(fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxBodyBytes), requestID)
	}

	log.Debug("peer call", "peer", base, "status", resp.StatusCode, "latency", latency)
	return &rawResponse{
		status:      resp.StatusCode,
		body:        data,
		contentType: resp.Header.Get("Content-Type"),
		latency:     latency,
		requestID:   requestID,
	}, nil
}

func (c *PeerClient) resolveBase(o callOptions) (string, error) {
	raw := o.peer
	if strings.TrimSpace(raw) == "" {
		if c.endpoints == nil {
			return "", fmt.Errorf("no peer endpoint configured")
		}
		raw = c.endpoints.Get()
	}
	base, err := endpoint.Normalize(raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid peer URL %q", base)
	}
	return base, nil
}
