package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/AlexZinkM/peer-wallet/internal/client"
	"github.com/AlexZinkM/peer-wallet/internal/model"

	"github.com/gorilla/mux"
)

const identiconCacheControl = "public, max-age=86400"

// PeerHandler proxies the peer RPC. Transactions are signed locally.
type PeerHandler struct {
	client *client.PeerClient
}

// NewPeerHandler creates a new PeerHandler
func NewPeerHandler(c *client.PeerClient) *PeerHandler {
	return &PeerHandler{client: c}
}

// callOptions honours ?peer= as a one-off endpoint override
func callOptions(r *http.Request) []client.CallOption {
	if peer := strings.TrimSpace(r.URL.Query().Get("peer")); peer != "" {
		return []client.CallOption{client.WithPeer(peer)}
	}
	return nil
}

// Status handles GET /api/v1/status
// @Summary      Peer status
// @Description  Fetches the status document of the active peer
// @Tags         peer
// @Produce      json
// @Param        peer  query     string  false  "One-off peer URL override"
// @Success      200   {object}  object
// @Failure      502   {object}  model.ErrorResponse
// @Router       /api/v1/status [get]
func (h *PeerHandler) Status(w http.ResponseWriter, r *http.Request) {
	res, err := h.client.Status(r.Context(), callOptions(r)...)
	if err != nil {
		writePlainError(w, err)
		return
	}
	writeDocument(w, res)
}

// Query handles POST /api/v1/query
// @Summary      Run a query
// @Description  Runs a side-effect-free query on the peer. Nothing is signed.
// @Tags         peer
// @Accept       json
// @Produce      json
// @Param        request  body      model.QueryRequest  true  "Query"
// @Param        peer     query     string              false  "One-off peer URL override"
// @Success      200      {object}  model.QueryResponse
// @Failure      400      {object}  model.RPCErrorResponse
// @Failure      502      {object}  model.RPCErrorResponse
// @Router       /api/v1/query [post]
func (h *PeerHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req model.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusBadRequest, errors.New("source is required"))
		return
	}

	res, err := h.client.Query(r.Context(), req.Source, req.Address, callOptions(r)...)
	if err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.QueryResponse{
		Value:     res.Value,
		LatencyMs: res.Latency.Milliseconds(),
		Juice:     client.EstimateJuice(req.Source),
	})
}

// Transact handles POST /api/v1/transact
// @Summary      Submit a transaction
// @Description  Signs {source, address} with the stored key of publicKey and submits it once. The seed never leaves the wallet.
// @Tags         peer
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransactRequest  true  "Transaction"
// @Param        peer     query     string                 false  "One-off peer URL override"
// @Success      200      {object}  model.TransactResponse
// @Failure      400      {object}  model.RPCErrorResponse
// @Failure      412      {object}  model.RPCErrorResponse
// @Failure      502      {object}  model.RPCErrorResponse
// @Router       /api/v1/transact [post]
func (h *PeerHandler) Transact(w http.ResponseWriter, r *http.Request) {
	var req model.TransactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusBadRequest, errors.New("source is required"))
		return
	}

	res, err := h.client.Transact(r.Context(), req.Source, req.Address, req.PublicKey, callOptions(r)...)
	if err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TransactResponse{
		Value:     res.Value,
		LatencyMs: res.Latency.Milliseconds(),
	})
}

// Account handles GET /api/v1/accounts/{address}
// @Summary      Account lookup
// @Description  Fetches an account by numeric address; a leading # is accepted
// @Tags         peer
// @Produce      json
// @Param        address  path      string  true   "Account address"
// @Param        peer     query     string  false  "One-off peer URL override"
// @Success      200      {object}  object
// @Failure      400      {object}  model.ErrorResponse
// @Router       /api/v1/accounts/{address} [get]
func (h *PeerHandler) Account(w http.ResponseWriter, r *http.Request) {
	res, err := h.client.Account(r.Context(), mux.Vars(r)["address"], callOptions(r)...)
	if err != nil {
		writePlainError(w, err)
		return
	}
	writeDocument(w, res)
}

// Identicon handles GET /identicon/{hex}
// @Summary      Identicon
// @Description  Fetches the identicon image for a hex string
// @Tags         peer
// @Produce      png
// @Param        hex   path      string  true   "Hex string"
// @Param        peer  query     string  false  "One-off peer URL override"
// @Success      200   {file}    binary
// @Failure      400   {object}  model.ErrorResponse
// @Router       /identicon/{hex} [get]
func (h *PeerHandler) Identicon(w http.ResponseWriter, r *http.Request) {
	img, err := h.client.Identicon(r.Context(), mux.Vars(r)["hex"], callOptions(r)...)
	if err != nil {
		writePlainError(w, err)
		return
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", identiconCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// writeDocument passes a peer document and its 2xx status through unchanged
func writeDocument(w http.ResponseWriter, res *client.Result) {
	status := res.Status
	if status < 200 || status > 299 {
		status = http.StatusOK
	}
	if res.Body != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(res.Body)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, res.Value)
}
