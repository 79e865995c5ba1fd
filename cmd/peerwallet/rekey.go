package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/peer-wallet/internal/app"
	"github.com/AlexZinkM/peer-wallet/internal/config"

	"github.com/spf13/cobra"
)

func newRekeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rekey",
		Short: "Re-encrypt the wallet under a new password",
		Long: `Decrypts the wallet with the current password and seals it again with a new
one (fresh salt and nonce). The new password is prompted twice, or taken from
WALLET_NEW_PASSWORD for non-interactive use. A plaintext wallet written before
encryption was enabled is only accepted by this command, which seals it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.Get()
			if !c.Encrypt || c.Backend == config.BackendMemory {
				return errors.New("rekey needs an encrypted wallet: set WALLET_ENCRYPT=true and a file or badger backend")
			}

			allowPlaintext := func(o *app.Options) { o.AllowPlaintext = true }
			return withAppOptions(cmd, allowPlaintext, func(ctx context.Context, a *app.App) error {
				newPassword, err := newPasswordBytes()
				if err != nil {
					return err
				}
				defer clear(newPassword)

				if err := a.Rekey(ctx, c.StorageKey, newPassword); err != nil {
					return err
				}
				config.SetPassword(newPassword)
				fmt.Fprintln(cmd.OutOrStdout(), "wallet re-encrypted")
				return nil
			})
		},
	}
}

func newPasswordBytes() ([]byte, error) {
	if pw := os.Getenv("WALLET_NEW_PASSWORD"); pw != "" {
		return []byte(pw), nil
	}
	return config.PromptNewPassword()
}
