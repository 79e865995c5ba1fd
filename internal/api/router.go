package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"

	_ "github.com/AlexZinkM/peer-wallet/docs"
	"github.com/AlexZinkM/peer-wallet/internal/app"
	"github.com/AlexZinkM/peer-wallet/internal/handler"
	"github.com/AlexZinkM/peer-wallet/internal/logging"
	"github.com/AlexZinkM/peer-wallet/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(a *app.App) http.Handler {
	peerHandler := handler.NewPeerHandler(a.Client)
	walletHandler := handler.NewWalletHandler(a.Store)
	endpointHandler := handler.NewEndpointHandler(a.Endpoints)

	r := mux.NewRouter()
	r.Use(requestLogger)
	r.Use(localOnly)

	// Swagger UI
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Peer proxy endpoints
	r.HandleFunc("/api/v1/status", peerHandler.Status).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/query", peerHandler.Query).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/transact", peerHandler.Transact).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/accounts/{address}", peerHandler.Account).Methods(http.MethodGet)
	r.HandleFunc("/identicon/{hex}", peerHandler.Identicon).Methods(http.MethodGet)

	// Wallet endpoints
	r.HandleFunc("/wallet/keys", walletHandler.ListKeys).Methods(http.MethodGet)
	r.HandleFunc("/wallet/keys", walletHandler.AddKey).Methods(http.MethodPost)
	r.HandleFunc("/wallet/keys/{publicKey}", walletHandler.RemoveKey).Methods(http.MethodDelete)
	r.HandleFunc("/wallet/keys/{publicKey}/import", walletHandler.ImportKey).Methods(http.MethodPost)
	r.HandleFunc("/wallet/keys/{publicKey}/qr", walletHandler.QRCode).Methods(http.MethodGet)

	// Endpoint config
	r.HandleFunc("/endpoint", endpointHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/endpoint", endpointHandler.Set).Methods(http.MethodPut)

	return r
}

// requestLogger tags each local request with an id and logs it at debug level
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		logging.With("requestID", id).Debug("local request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// localOnly keeps browsers on other origins away from the signing routes.
// Host and Origin must name a loopback address (this also defeats DNS rebinding), and
// POST/PUT/PATCH must carry a JSON body type so no form or text/plain request gets through
// without a CORS preflight.
func localOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := checkLocalRequest(r); err != nil {
			logging.With("requestID", w.Header().Get("X-Request-ID")).Warn("rejected local request",
				"method", r.Method, "path", r.URL.Path, "host", r.Host, "origin", r.Header.Get("Origin"), "err", err)
			status := http.StatusForbidden
			if errors.Is(err, errNotJSON) {
				status = http.StatusUnsupportedMediaType
			}
			writeRejection(w, status, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var errNotJSON = errors.New("request body must be application/json")

func checkLocalRequest(r *http.Request) error {
	if !isLoopbackHost(r.Host) {
		return errors.New("host " + r.Host + " is not a loopback address")
	}
	if origin := r.Header.Get("Origin"); origin != "" {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" || !isLoopbackHost(u.Host) {
			return errors.New("origin " + origin + " is not allowed")
		}
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			return errNotJSON
		}
	}
	return nil
}

// isLoopbackHost accepts "localhost", loopback IPs and either with a port
func isLoopbackHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func writeRejection(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error()})
}
