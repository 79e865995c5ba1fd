// main.go sets up the peerwallet command-line interface with cobra: the root
// command, shared flags and the helpers every subcommand uses to open the wallet.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlexZinkM/peer-wallet/internal/app"
	"github.com/AlexZinkM/peer-wallet/internal/config"
	"github.com/AlexZinkM/peer-wallet/internal/logging"

	"github.com/spf13/cobra"
)

var version = "dev" // set by the linker

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

// NewRootCmd builds a fresh command tree, so tests can run commands in isolation
func NewRootCmd() *cobra.Command {
	var peer string

	cmd := &cobra.Command{
		Use:   "peerwallet",
		Short: "Local key custody and transaction signing for a ledger peer.",
		Long: `peerwallet keeps Ed25519 keys on this machine and uses them to sign
transactions for a remote ledger peer. Seeds never leave the process: only
public keys and signatures are sent over the network.

Configuration comes from the environment (and an optional .env file):
PEER_URL, PEER_TIMEOUT, WALLET_BACKEND, WALLET_DIR, WALLET_ENCRYPT,
WALLET_PASSWORD, LOG_LEVEL, PORT.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(); err != nil {
				return err
			}
			return logging.Init(config.Get().LogLevel)
		},
	}
	cmd.Version = version

	cmd.PersistentFlags().StringVar(&peer, "peer", "", "peer URL or preset label for this invocation (overrides PEER_URL)")

	cmd.AddCommand(
		newServeCmd(),
		newKeysCmd(),
		newQueryCmd(),
		newTransactCmd(),
		newStatusCmd(),
		newAccountCmd(),
		newEndpointCmd(),
		newRekeyCmd(),
	)
	return cmd
}

// openApp unlocks and loads the wallet, prompting for the password when needed.
// adjust, when set, tweaks the options built from config.
func openApp(cmd *cobra.Command, adjust func(*app.Options)) (*app.App, error) {
	c := config.Get()
	if c.Encrypt && c.Backend != config.BackendMemory && !config.HasPassword() {
		if err := config.PromptForPassword(); err != nil {
			return nil, err
		}
	}

	opts, err := app.OptionsFromConfig()
	if err != nil {
		return nil, err
	}
	defer clear(opts.Password)
	if adjust != nil {
		adjust(&opts)
	}

	a, err := app.New(cmd.Context(), opts)
	if err != nil {
		return nil, err
	}

	if peer, _ := cmd.Flags().GetString("peer"); strings.TrimSpace(peer) != "" {
		if err := a.Endpoints.Select(peer); err != nil {
			if err := a.Endpoints.Set(peer); err != nil {
				_ = a.Close(cmd.Context())
				return nil, fmt.Errorf("invalid --peer: %w", err)
			}
		}
	}
	return a, nil
}

// withApp runs fn against an opened wallet and always closes it
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	return withAppOptions(cmd, nil, fn)
}

func withAppOptions(cmd *cobra.Command, adjust func(*app.Options), fn func(ctx context.Context, a *app.App) error) error {
	a, err := openApp(cmd, adjust)
	if err != nil {
		return err
	}
	runErr := fn(cmd.Context(), a)
	if err := a.Close(context.Background()); err != nil {
		logging.Errorf("failed to close wallet: %v", err)
	}
	return runErr
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
