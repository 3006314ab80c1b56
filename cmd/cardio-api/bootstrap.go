package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/pkg/config"
	"github.com/cardioassist/cardio-api/pkg/logger"
)

func bootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap-superadmin",
		Short: "Create the first SUPERADMIN account",
		Long: "Creates the first SUPERADMIN. Refuses once one exists. The password is read from\n" +
			"--password or, when the flag is empty, from BOOTSTRAP_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("BOOTSTRAP_PASSWORD")
			}

			cfg := config.Load()
			initLogger(cfg)
			log := logger.Component("bootstrap")

			a, err := wire(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			user, err := a.users.Bootstrap(cmd.Context(), domain.NewUserInput{
				Email:    email,
				Name:     name,
				Password: password,
			})
			if err != nil {
				var ve *domain.ValidationError
				switch {
				case errors.As(err, &ve):
					log.Error().Interface("fields", ve.Fields).Msg("invalid superadmin account")
				case errors.Is(err, domain.ErrSuperadminExists):
					log.Warn().Msg("a superadmin already exists; nothing to do")
				default:
					log.Error().Err(err).Msg("bootstrap failed")
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created superadmin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Account email (required)")
	cmd.Flags().String("name", "", "Display name (required)")
	cmd.Flags().String("password", "", "Account password; defaults to $BOOTSTRAP_PASSWORD")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
