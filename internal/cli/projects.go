package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List or create projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			items, err := a.store.API().ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			renderProjects(cmd.OutOrStdout(), items)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a project (managers only)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			p, err := a.store.API().CreateProject(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created project %s (%s)", p.Name, p.ID)
			return nil
		},
	})

	return cmd
}

func (a *app) employeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "employees",
		Short: "List employees (managers only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			items, err := a.store.API().Employees(cmd.Context())
			if err != nil {
				return err
			}
			renderEmployees(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func (a *app) inviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite PROJECT_ID EMAIL",
		Short: "Invite an employee to a project (managers only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			inv, err := a.store.API().InviteEmployee(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			success(out, "Invited %s", inv.InviteEmail)
			fmt.Fprintf(out, "Link:  %s\n", inv.Link)
			fmt.Fprintf(out, "Token: %s\n", inv.Token)
			return nil
		},
	}
}

func (a *app) invitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invites PROJECT_ID",
		Short: "List invitations for a project (managers only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			items, err := a.store.API().Invitations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderInvitations(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func (a *app) acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept TOKEN|LINK",
		Short: "Accept a project invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			m, err := a.store.API().AcceptInvite(cmd.Context(), inviteToken(args[0]))
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Joined project %s", m.ProjectID)
			return nil
		},
	}
}

// inviteToken accepts either a bare token or an accept-invite link.
func inviteToken(arg string) string {
	if u, err := url.Parse(arg); err == nil && u.Query().Get("token") != "" {
		return u.Query().Get("token")
	}
	return strings.TrimSpace(arg)
}
