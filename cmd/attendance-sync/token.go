package main

import (
	"errors"
	"fmt"
	"time"

	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/config"
	"axiapac.com/attendance/security"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP endpoints",
	Long: `Sign a token with JWT_SECRET, or the jwtSecret of the secrets parameter. Tokens are required on every API route
when a secret is configured, and reimport requests need one regardless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		expires, _ := cmd.Flags().GetDuration("expires")

		cfg, err := config.Load(cmd.Context(), parameterStore)
		if err != nil {
			return err
		}
		secret := cfg.JWTSecret
		if secret == "" {
			return &core.SyncError{Code: core.CodeConfig, Err: errors.New("no jwt secret is configured")}
		}
		token, err := security.CreateIdentityToken(&security.Identity{UniqueName: name, Email: email}, secret, expires)
		if err != nil {
			return &core.SyncError{Code: core.CodeValidation, Err: err}
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("name", "", "Operator name")
	tokenCmd.Flags().String("email", "", "Operator email")
	tokenCmd.Flags().Duration("expires", time.Hour, "Token lifetime")
}
