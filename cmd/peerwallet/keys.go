package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlexZinkM/peer-wallet/internal/app"
	"github.com/AlexZinkM/peer-wallet/internal/codec"
	"github.com/AlexZinkM/peer-wallet/internal/model"

	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the keys held by the wallet",
	}
	cmd.AddCommand(newKeysNewCmd(), newKeysListCmd(), newKeysRmCmd(), newKeysImportCmd(), newKeysExportCmd())
	return cmd
}

func newKeysNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Generate a new key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				pub, err := a.Store.AddKey()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), model.KeyInfo{PublicKey: pub.Hex(), Address: pub.Address()})
			})
		},
	}
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored public keys",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				resp := model.KeysResponse{Keys: []model.KeyInfo{}}
				for _, pub := range a.Store.Keys() {
					resp.Keys = append(resp.Keys, model.KeyInfo{PublicKey: pub.Hex(), Address: pub.Address()})
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}

func newKeysRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <publicKey>",
		Short: "Remove a key. Without a backup the key is gone for good.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				a.Store.RemoveKey(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", codec.NormalizeHex(args[0]))
				return nil
			})
		},
	}
}

func newKeysImportCmd() *cobra.Command {
	var mnemonic bool

	cmd := &cobra.Command{
		Use:   "import <publicKey>",
		Short: "Import a seed or backup phrase for a known public key",
		Long: `Reads a seed (64 hex characters, optional 0x) or, with --mnemonic, a
24-word backup phrase from stdin and admits it only if it derives the given
public key. Nothing is stored on a mismatch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				importer := a.Store.Import
				if mnemonic {
					importer = a.Store.ImportMnemonic
				}
				pub, err := importer(secret, args[0])
				if err != nil {
					return fmt.Errorf("import rejected: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), model.KeyInfo{PublicKey: pub.Hex(), Address: pub.Address()})
			})
		},
	}
	cmd.Flags().BoolVar(&mnemonic, "mnemonic", false, "read a 24-word backup phrase instead of hex")
	return cmd
}

func newKeysExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <publicKey>",
		Short: "Print the 24-word backup phrase of a key",
		Long: `Prints the backup phrase of a stored key. Anyone holding the phrase can
sign as this key: write it down offline and never paste it anywhere.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				words, ok, err := a.Store.ExportMnemonic(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no key stored for public key %s", codec.NormalizeHex(args[0]))
				}
				fmt.Fprintln(cmd.OutOrStdout(), words)
				return nil
			})
		},
	}
}

// readSecret reads one line of secret input from the command's stdin
func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && f == os.Stdin {
		fmt.Fprint(cmd.ErrOrStderr(), "Paste secret and press Enter: ")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	secret := strings.TrimSpace(line)
	if secret == "" {
		return "", errors.New("no secret given on stdin")
	}
	return secret, nil
}
