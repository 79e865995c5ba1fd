package model

// ErrorResponse is the JSON body of local errors (bad input, wallet and endpoint failures).
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RPCErrorResponse is the JSON body of a failed proxied peer call
type RPCErrorResponse struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	PeerCode     string `json:"peerCode,omitempty"` // errorCode the peer reported, if any
	LatencyMs    int64  `json:"latencyMs,omitempty"` // set when the peer answered
}
