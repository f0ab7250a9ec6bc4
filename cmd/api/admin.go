package main

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/CameronXie/canteen-admin/internal/authn"
	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository/postgres"
)

func newCreateAdminCmd() *cobra.Command {
	var email, name, password, rollNo string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hash, err := authn.HashPassword(password)
			if err != nil {
				return err
			}

			pool, err := postgres.NewPool(cmd.Context(), cfg.PostgresURL())
			if err != nil {
				return err
			}
			defer pool.Close()

			user := &domain.User{
				ID:           uuid.New(),
				Name:         strings.TrimSpace(name),
				Email:        strings.ToLower(strings.TrimSpace(email)),
				RollNo:       strings.TrimSpace(rollNo),
				IsAdmin:      true,
				PasswordHash: hash,
			}

			if err := postgres.NewUserRepository(pool).CreateUser(cmd.Context(), user); err != nil {
				return err
			}

			logger.Info("admin_created", "user_id", user.ID, "email", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&rollNo, "roll-no", "", "optional roll number")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
