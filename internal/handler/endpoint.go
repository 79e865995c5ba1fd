package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/AlexZinkM/peer-wallet/internal/endpoint"
	"github.com/AlexZinkM/peer-wallet/internal/logging"
	"github.com/AlexZinkM/peer-wallet/internal/model"
)

// EndpointHandler reads and switches the active peer
type EndpointHandler struct {
	cfg *endpoint.Config
}

// NewEndpointHandler creates a new EndpointHandler
func NewEndpointHandler(cfg *endpoint.Config) *EndpointHandler {
	return &EndpointHandler{cfg: cfg}
}

func (h *EndpointHandler) response() model.EndpointResponse {
	return model.EndpointResponse{Current: h.cfg.Get(), Presets: h.cfg.Presets()}
}

// Get handles GET /endpoint
// @Summary      Active peer
// @Description  Returns the active peer URL and the presets
// @Tags         endpoint
// @Produce      json
// @Success      200  {object}  model.EndpointResponse
// @Router       /endpoint [get]
func (h *EndpointHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.response())
}

// Set handles PUT /endpoint
// @Summary      Switch peer
// @Description  Sets the active peer by URL or preset label. Reachability is not checked.
// @Tags         endpoint
// @Accept       json
// @Produce      json
// @Param        request  body      model.EndpointRequest  true  "URL or preset label"
// @Success      200      {object}  model.EndpointResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /endpoint [put]
func (h *EndpointHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req model.EndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var err error
	switch {
	case strings.TrimSpace(req.URL) != "":
		err = h.cfg.Set(req.URL)
	case strings.TrimSpace(req.Preset) != "":
		err = h.cfg.Select(req.Preset)
	default:
		err = errors.New("url or preset is required")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	logging.With("peer", h.cfg.Get()).Info("active peer changed")
	writeJSON(w, http.StatusOK, h.response())
}
