package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/peer-wallet/internal/app"
	"github.com/AlexZinkM/peer-wallet/internal/client"
	"github.com/AlexZinkM/peer-wallet/internal/common"
	"github.com/AlexZinkM/peer-wallet/internal/logging"
	"github.com/AlexZinkM/peer-wallet/internal/model"

	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "query <source>",
		Short: "Run a read-only query on the peer",
		Long: `Runs source on the peer without changing state. Nothing is signed. The
juice figure printed with the result is a rough local estimate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Client.Query(ctx, args[0], address)
				if err != nil {
					return describeError(err)
				}
				return printJSON(cmd.OutOrStdout(), model.QueryResponse{
					Value:     res.Value,
					LatencyMs: res.Latency.Milliseconds(),
					Juice:     client.EstimateJuice(args[0]),
				})
			})
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "account to run the query as (e.g. #12)")
	return cmd
}

func newTransactCmd() *cobra.Command {
	var (
		address   string
		publicKey string
	)

	cmd := &cobra.Command{
		Use:   "transact <source>",
		Short: "Sign and submit a transaction",
		Long: `Signs {source, address} with the stored key of --key and submits it to the
peer exactly once. The transaction is never retried: if the result is unknown
(network error), check the account before submitting again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Client.Transact(ctx, args[0], address, publicKey)
				if err != nil {
					return describeError(err)
				}
				return printJSON(cmd.OutOrStdout(), model.TransactResponse{
					Value:     res.Value,
					LatencyMs: res.Latency.Milliseconds(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "account address the transaction runs as (required)")
	cmd.Flags().StringVar(&publicKey, "key", "", "public key (hex) whose seed signs (required)")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the peer status and round-trip latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Client.Status(ctx)
				if err != nil {
					return describeError(err)
				}
				logging.With("peer", a.Endpoints.Get(), "latency", res.Latency).Info("peer is up")
				return printJSON(cmd.OutOrStdout(), res.Value)
			})
		},
	}
}

func newAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account <address>",
		Short: "Look up an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Client.Account(ctx, args[0])
				if err != nil {
					return describeError(err)
				}
				if doc, ok := res.Value.(map[string]any); ok {
					if copper, ok := common.BalanceCopper(doc); ok {
						doc["balanceCoins"] = common.CopperToCoin(copper)
					}
				}
				return printJSON(cmd.OutOrStdout(), res.Value)
			})
		},
	}
}

// describeError turns a peer call failure into a one-line CLI error
func describeError(err error) error {
	e, ok := client.AsError(err)
	if !ok {
		return err
	}
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RequestID != "" {
		msg += " (request " + e.RequestID
		if e.Latency > 0 {
			msg += fmt.Sprintf(", %dms", e.Latency.Milliseconds())
		}
		msg += ")"
	}
	return errors.New(msg)
}
