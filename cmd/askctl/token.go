package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"interview-assistant/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var user auth.User
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the history API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _ := loadConfig()
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			svc, err := auth.NewService(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(user)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user.ID, "user", "", "User ID the token is issued to")
	cmd.Flags().StringVar(&user.Email, "email", "", "Optional email claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
