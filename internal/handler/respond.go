package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/peer-wallet/internal/client"
	"github.com/AlexZinkM/peer-wallet/internal/logging"
	"github.com/AlexZinkM/peer-wallet/internal/model"
	"github.com/AlexZinkM/peer-wallet/internal/wallet"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warnf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

// clientStatus maps a peer call failure to the local HTTP status
func clientStatus(e *client.Error) int {
	switch e.Code {
	case client.CodeInvalidAddress, client.CodeInvalidHex:
		return http.StatusBadRequest
	case client.CodeNoSigningKey:
		return http.StatusPreconditionFailed
	case client.CodePeerError:
		if e.Status >= 400 && e.Status <= 599 {
			return e.Status
		}
		// errorCode inside a 2xx body
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// writeRPCError writes {errorCode, errorMessage} for a failed query or transact
func writeRPCError(w http.ResponseWriter, err error) {
	e, ok := client.AsError(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, clientStatus(e), model.RPCErrorResponse{
		ErrorCode:    string(e.Code),
		ErrorMessage: e.Message,
		PeerCode:     e.PeerCode,
		LatencyMs:    e.Latency.Milliseconds(),
	})
}

// writePlainError writes {error, code} for a failed status, account or identicon call
func writePlainError(w http.ResponseWriter, err error) {
	e, ok := client.AsError(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, clientStatus(e), model.ErrorResponse{Error: e.Message, Code: string(e.Code)})
}

// importStatus maps a key import failure to the local HTTP status
func importStatus(err error) int {
	switch {
	case errors.Is(err, wallet.ErrKeyMismatch):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrBadFormat), errors.Is(err, wallet.ErrNoReferenceKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
