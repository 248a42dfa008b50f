package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type demoUser struct {
	username  string
	firstName string
	lastName  string
	superuser bool
}

var demoUsers = []demoUser{
	{"johndoe", "John", "Doe", false},
	{"janesmith", "Jane", "Smith", false},
	{"bobwilson", "Bob", "Wilson", false},
	{"alicecooper", "Alice", "Cooper", false},
	{"admin", "Admin", "User", true},
}

// newSeedUsersCmd creates the demo accounts used for local development.
// Accounts that already exist are left alone.
func newSeedUsersCmd(db func() *gorm.DB) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Create demo user accounts, including one superuser named admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := service.NewUserService(db())
			out := cmd.OutOrStdout()

			for _, demo := range demoUsers {
				user, err := users.Register(cmd.Context(), &types.RegisterRequest{
					Email:     demo.username + "@example.com",
					Username:  demo.username,
					FirstName: demo.firstName,
					LastName:  demo.lastName,
					Password:  password,
				})
				var verr *service.ValidationError
				if errors.As(err, &verr) && (verr.Field == "email" || verr.Field == "username") {
					fmt.Fprintf(out, "skipped %s: %s\n", demo.username, verr.Message)
					continue
				}
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", demo.username, err)
				}

				if demo.superuser {
					if err := db().Model(&models.User{}).Where("id = ?", user.ID).
						Update("is_superuser", true).Error; err != nil {
						return fmt.Errorf("failed to promote %s: %w", demo.username, err)
					}
				}
				fmt.Fprintf(out, "created %s\n", demo.username)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "testpassword123", "password for every demo account")
	return cmd
}
