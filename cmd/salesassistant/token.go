package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xiaoying/sales-assistant/internal/core/service"
	"github.com/xiaoying/sales-assistant/internal/pkg/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an access token for the configured account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}

		auth, err := service.NewAuthService(
			cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil, zerolog.Nop())
		if err != nil {
			return err
		}
		issued, err := auth.Login(cmd.Context(), cfg.Auth.Username, cfg.Auth.Password)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
		return nil
	},
}
