package model

// KeyInfo describes a stored key. The seed never leaves the wallet.
type KeyInfo struct {
	PublicKey string `json:"publicKey"` // 64 lowercase hex chars
	Address   string `json:"address"`   // base58 rendering of the same key
}

// KeysResponse represents response for GET /wallet/keys
type KeysResponse struct {
	Keys []KeyInfo `json:"keys"`
}

// GenerateResponse represents response for POST /wallet/keys
type GenerateResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Key     KeyInfo `json:"key"`
}

// ImportRequest represents request for POST /wallet/keys/{publicKey}/import.
// Exactly one of Seed (64 hex chars, optional 0x) or Mnemonic (24 words) is set.
type ImportRequest struct {
	Seed     string `json:"seed,omitempty"`
	Mnemonic string `json:"mnemonic,omitempty"`
}

// ImportResponse represents response for POST /wallet/keys/{publicKey}/import
type ImportResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Key     KeyInfo `json:"key"`
}
