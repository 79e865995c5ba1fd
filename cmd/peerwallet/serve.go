package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/peer-wallet/internal/api"
	"github.com/AlexZinkM/peer-wallet/internal/app"
	"github.com/AlexZinkM/peer-wallet/internal/config"
	"github.com/AlexZinkM/peer-wallet/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local wallet HTTP API",
		Long: `Starts the local HTTP API: the peer proxy routes (status, query, transact,
account, identicon), key management under /wallet/keys, the active peer under
/endpoint and Swagger UI under /swagger/. Listens on localhost only by default.
Requests must be addressed to a loopback host, carry no foreign Origin and send
JSON bodies, so web pages in a browser cannot drive the wallet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(cmd, func(_ context.Context, a *app.App) error {
				return serve(ctx, net.JoinHostPort(host, config.GetPort()), a)
			})
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "interface to listen on")
	return cmd
}

func serve(ctx context.Context, addr string, a *app.App) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.SetupRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.With("addr", addr, "peer", a.Endpoints.Get()).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
