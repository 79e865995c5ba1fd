package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode classifies a failed peer call
type ErrorCode string

const (
	CodeInvalidAddress ErrorCode = "INVALID_ADDRESS" // rejected locally, no network call made
	CodeInvalidHex     ErrorCode = "INVALID_HEX"     // rejected locally, no network call made
	CodeNoSigningKey   ErrorCode = "NO_SIGNING_KEY"  // no seed for the public key, no network call made
	CodePeerError      ErrorCode = "PEER_ERROR"      // peer answered with non-2xx or an errorCode body
	CodeNetwork        ErrorCode = "NETWORK"         // DNS, refused, timeout, cancelled, unreadable body
)

// Error is the error descriptor of a failed call
type Error struct {
	Code    ErrorCode `json:"errorCode"`
	Message string    `json:"errorMessage"`

	// Status is the peer HTTP status for PEER_ERROR, 0 otherwise
	Status int `json:"-"`
	// PeerCode is the errorCode the peer put in its body, if any
	PeerCode string `json:"-"`
	// RequestID is the X-Request-ID sent with the call
	RequestID string `json:"-"`
	// Latency of the round trip when the peer answered, 0 otherwise
	Latency time.Duration `json:"-"`

	err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches on Code so errors.Is(err, ErrNoSigningKey) works for any NO_SIGNING_KEY error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidAddress = &Error{Code: CodeInvalidAddress, Message: "address must be a non-negative integer"}
	ErrInvalidHex     = &Error{Code: CodeInvalidHex, Message: "value must be hexadecimal"}
	ErrNoSigningKey   = &Error{Code: CodeNoSigningKey, Message: "no signing key stored for public key"}
	ErrPeer           = &Error{Code: CodePeerError}
	ErrNetwork        = &Error{Code: CodeNetwork}

	// ErrResponseTooLarge is wrapped by the NETWORK error for an oversized peer answer
	ErrResponseTooLarge = errors.New("peer response too large")
)

// AsError extracts the *Error from err
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNoSigningKey checks if err means there was no key to sign with
func IsNoSigningKey(err error) bool {
	return errors.Is(err, ErrNoSigningKey)
}

func networkError(err error, requestID string) *Error {
	return &Error{Code: CodeNetwork, Message: err.Error(), RequestID: requestID, err: err}
}

func peerError(raw *rawResponse, detail, peerCode string) *Error {
	return &Error{
		Code:      CodePeerError,
		Message:   fmt.Sprintf("Peer returned %d: %s", raw.status, detail),
		Status:    raw.status,
		PeerCode:  peerCode,
		RequestID: raw.requestID,
		Latency:   raw.latency,
	}
}
