package model

import "github.com/AlexZinkM/peer-wallet/internal/endpoint"

// EndpointResponse represents response for GET/PUT /endpoint
type EndpointResponse struct {
	Current string            `json:"current"`
	Presets []endpoint.Preset `json:"presets"`
}

// EndpointRequest represents request for PUT /endpoint. URL wins over Preset.
type EndpointRequest struct {
	URL    string `json:"url,omitempty"`
	Preset string `json:"preset,omitempty"`
}
