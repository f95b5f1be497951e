package cli

import (
	"github.com/geocoder89/timehub/internal/client"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/spf13/cobra"
)

func (a *app) signupCmd() *cobra.Command {
	var in client.SignUpInput
	var role, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := a.password(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			in.Password = pw
			in.Role = profile.Role(role)

			p, err := a.store.SignUp(cmd.Context(), in)
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Account created for %s (%s)", p.Email, p.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", string(profile.RoleEmployee), "manager or employee")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := a.password(cmd, password, "Password: ")
			if err != nil {
				return err
			}

			p, err := a.store.SignIn(cmd.Context(), email, pw)
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Signed in as %s (%s)", p.Email, p.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// sign out even when the saved session no longer resolves
			_ = a.store.Init(cmd.Context())
			if err := a.store.SignOut(cmd.Context()); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity and profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			renderSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}
