package model

// QueryRequest represents request for POST /api/v1/query
type QueryRequest struct {
	Source  string `json:"source" binding:"required"`
	Address string `json:"address,omitempty"`
}

// QueryResponse represents response for POST /api/v1/query.
// Juice is a display-only estimate.
type QueryResponse struct {
	Value     any   `json:"value"`
	LatencyMs int64 `json:"latencyMs"`
	Juice     int64 `json:"juice"`
}

// TransactRequest represents request for POST /api/v1/transact.
// PublicKey selects the stored key that signs; only the signature is sent to the peer.
type TransactRequest struct {
	Source    string `json:"source" binding:"required"`
	Address   string `json:"address" binding:"required"`
	PublicKey string `json:"publicKey" binding:"required"`
}

// TransactResponse represents response for POST /api/v1/transact
type TransactResponse struct {
	Value     any   `json:"value"`
	LatencyMs int64 `json:"latencyMs"`
}
