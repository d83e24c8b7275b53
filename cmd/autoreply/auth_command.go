package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize YouTube access and store the OAuth token",
		Long: `Runs the installed-app OAuth consent flow against the client secret in
youtube.client_secret_path and writes the token to youtube.token_path. The
daemon refreshes and rewrites the token on its own afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			oauthCfg, err := youtube.OAuthConfig(cfg.YouTube.ClientSecretPath)
			if err != nil {
				return err
			}
			tok, err := youtube.ConsoleFlow(cmd.Context(), oauthCfg, cfg.YouTube.TokenPath, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nToken saved to %s\n", cfg.YouTube.TokenPath)
			if tok.RefreshToken == "" {
				fmt.Fprintln(out, "Warning: no refresh token was issued; revoke the app grant and run auth again")
			}
			return nil
		},
	}
}
