package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"filesmanager/internal/domain"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/pkg/validator"
	"filesmanager/internal/repository"
)

const minPasswordLength = 6

type adminInput struct {
	Username string `validate:"required,min=3,max=64"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func newSeedAdminCmd() *cobra.Command {
	var in adminInput

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account, or promote an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				pw, err := promptPassword()
				if err != nil {
					return err
				}
				in.Password = pw
			}

			a := appFrom(cmd)
			user, created, err := seedAdmin(cmd.Context(), repository.NewUserRepository(a.DB), in)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q created (id=%d)\n", user.Username, user.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "user %q promoted to admin (id=%d)\n", user.Username, user.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&in.Email, "email", "admin@example.com", "admin email")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password (prompted when empty)")
	return cmd
}

func promptPassword() (string, error) {
	pw, err := (&promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(s string) error {
			if len(s) < minPasswordLength {
				return fmt.Errorf("password must be at least %d characters", minPasswordLength)
			}
			return nil
		},
	}).Run()
	if err != nil {
		return "", err
	}

	confirm, err := (&promptui.Prompt{Label: "Confirm password", Mask: '*'}).Run()
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errors.New("passwords do not match")
	}
	return pw, nil
}

// seedAdmin creates the admin account. An existing account with the same
// username is promoted instead and keeps its password.
func seedAdmin(ctx context.Context, users *repository.UserRepository, in adminInput) (*domain.User, bool, error) {
	if fields := validator.Validate(in); fields != nil {
		return nil, false, fmt.Errorf("invalid admin: %v", fields)
	}

	existing, err := users.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		if err := users.UpdateRole(ctx, existing.ID, domain.RoleAdmin); err != nil {
			return nil, false, err
		}
		existing.Role = domain.RoleAdmin
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
