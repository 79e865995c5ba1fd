package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AlexZinkM/peer-wallet/internal/codec"
	"github.com/AlexZinkM/peer-wallet/internal/crypto"
	"github.com/AlexZinkM/peer-wallet/internal/model"
	"github.com/AlexZinkM/peer-wallet/internal/wallet"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// WalletHandler manages the stored keys. Seeds are accepted on import and never returned.
type WalletHandler struct {
	store *wallet.Store
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(store *wallet.Store) *WalletHandler {
	return &WalletHandler{store: store}
}

func keyInfo(pub crypto.PublicKey) model.KeyInfo {
	return model.KeyInfo{PublicKey: pub.Hex(), Address: pub.Address()}
}

// ListKeys handles GET /wallet/keys
// @Summary      List keys
// @Description  Lists the public keys held by the wallet
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.KeysResponse
// @Router       /wallet/keys [get]
func (h *WalletHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys := h.store.Keys()
	resp := model.KeysResponse{Keys: make([]model.KeyInfo, 0, len(keys))}
	for _, pub := range keys {
		resp.Keys = append(resp.Keys, keyInfo(pub))
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddKey handles POST /wallet/keys
// @Summary      Generate key
// @Description  Generates a new Ed25519 key pair and stores it
// @Tags         wallet
// @Produce      json
// @Success      201  {object}  model.GenerateResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /wallet/keys [post]
func (h *WalletHandler) AddKey(w http.ResponseWriter, r *http.Request) {
	pub, err := h.store.AddKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.GenerateResponse{
		Success: true,
		Message: "Key generated successfully",
		Key:     keyInfo(pub),
	})
}

// RemoveKey handles DELETE /wallet/keys/{publicKey}
// @Summary      Remove key
// @Description  Removes a key from the wallet. Removing an absent key is not an error.
// @Tags         wallet
// @Param        publicKey  path  string  true  "Public key (hex)"
// @Success      204
// @Router       /wallet/keys/{publicKey} [delete]
func (h *WalletHandler) RemoveKey(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveKey(mux.Vars(r)["publicKey"])
	w.WriteHeader(http.StatusNoContent)
}

// ImportKey handles POST /wallet/keys/{publicKey}/import
// @Summary      Import key
// @Description  Admits a seed (64 hex chars) or a 24-word phrase after checking it derives publicKey
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        publicKey  path      string               true  "Expected public key (hex)"
// @Param        request    body      model.ImportRequest  true  "Seed or mnemonic"
// @Success      200        {object}  model.ImportResponse
// @Failure      400        {object}  model.ErrorResponse
// @Failure      409        {object}  model.ErrorResponse
// @Router       /wallet/keys/{publicKey}/import [post]
func (h *WalletHandler) ImportKey(w http.ResponseWriter, r *http.Request) {
	var req model.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	expected := mux.Vars(r)["publicKey"]
	hasSeed := strings.TrimSpace(req.Seed) != ""
	hasWords := strings.TrimSpace(req.Mnemonic) != ""

	var (
		pub crypto.PublicKey
		err error
	)
	switch {
	case hasSeed && hasWords:
		writeError(w, http.StatusBadRequest, errors.New("set either seed or mnemonic, not both"))
		return
	case hasWords:
		pub, err = h.store.ImportMnemonic(req.Mnemonic, expected)
	default:
		pub, err = h.store.Import(req.Seed, expected)
	}
	if err != nil {
		kind, _ := wallet.IsImportError(err)
		writeJSON(w, importStatus(err), model.ErrorResponse{Error: err.Error(), Code: string(kind)})
		return
	}

	writeJSON(w, http.StatusOK, model.ImportResponse{
		Success: true,
		Message: "Key imported successfully",
		Key:     keyInfo(pub),
	})
}

// QRCode handles GET /wallet/keys/{publicKey}/qr
// @Summary      Key QR code
// @Description  PNG QR code of a stored public key (hex)
// @Tags         wallet
// @Produce      png
// @Param        publicKey  path      string  true  "Public key (hex)"
// @Success      200        {file}    binary
// @Failure      404        {object}  model.ErrorResponse
// @Router       /wallet/keys/{publicKey}/qr [get]
func (h *WalletHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	publicKey := codec.NormalizeHex(mux.Vars(r)["publicKey"])
	if !h.store.Has(publicKey) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no key stored for public key %s", publicKey))
		return
	}

	png, err := generateQRCode(publicKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// generateQRCode renders text as a PNG QR code
func generateQRCode(text string) ([]byte, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}
