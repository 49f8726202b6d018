// Command token mints a bearer token for local development using the
// configured jwt_secret.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agora-social/agora/internal/auth"
	"github.com/agora-social/agora/internal/users"
	"github.com/agora-social/agora/pkg/config"
)

var (
	provider string
	username string
)

var rootCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint a development bearer token",
	Long:  `Mint a bearer token for the given provider user id, signed with the configured jwt_secret.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.Flags().StringVarP(&provider, "provider", "p", "dev", "identity provider name")
	rootCmd.Flags().StringVarP(&username, "username", "u", "", "preferred username")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	token, err := auth.NewVerifier(cfg.Auth).Issue(users.Identity{
		Provider:   provider,
		ProviderID: args[0],
		Username:   username,
	})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
