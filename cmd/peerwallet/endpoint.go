package main

import (
	"github.com/AlexZinkM/peer-wallet/internal/config"
	"github.com/AlexZinkM/peer-wallet/internal/endpoint"
	"github.com/AlexZinkM/peer-wallet/internal/model"

	"github.com/spf13/cobra"
)

func newEndpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint",
		Short: "Show the configured peer and the presets",
		Long: `Prints the peer this invocation talks to and the labeled presets. Pick a
preset per invocation with --peer <label>, set PEER_URL to change the default,
or PUT /endpoint on a running server to switch it live.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := endpoint.New(config.Get().PeerURL, nil)
			if err != nil {
				return err
			}
			if peer, _ := cmd.Flags().GetString("peer"); peer != "" {
				if err := cfg.Select(peer); err != nil {
					if err := cfg.Set(peer); err != nil {
						return err
					}
				}
			}
			return printJSON(cmd.OutOrStdout(), model.EndpointResponse{Current: cfg.Get(), Presets: cfg.Presets()})
		},
	}
}
