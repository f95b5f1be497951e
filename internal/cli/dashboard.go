package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/geocoder89/timehub/internal/client"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/gate"
	"github.com/spf13/cobra"
)

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "dashboard [manager|employee]",
		Short:     "Show your dashboard",
		Long:      "Show the dashboard for your role. Asking for the other role's dashboard shows your own instead.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(profile.RoleManager), string(profile.RoleEmployee)},
		RunE: func(cmd *cobra.Command, args []string) error {
			required := profile.RoleNone
			if len(args) == 1 {
				required = profile.Role(args[0])
				if !required.Valid() {
					return fmt.Errorf("unknown dashboard %q", args[0])
				}
			}

			if err := a.store.Init(cmd.Context()); err != nil && a.store.Snapshot().Err == nil {
				return err
			}
			return a.showDashboard(cmd.Context(), cmd.OutOrStdout(), a.store.Snapshot(), required)
		},
	}
}

// showDashboard renders whatever the gate decides for the snapshot.
func (a *app) showDashboard(ctx context.Context, out io.Writer, snap client.Snapshot, required profile.Role) error {
	d := snap.Decide(required)

	switch d.Kind {
	case gate.Pending:
		fmt.Fprintln(out, "Loading...")
		return nil
	case gate.RenderError:
		return d.Err
	case gate.Redirect:
		if d.Location == gate.LoginPath {
			return errNotSignedIn
		}
		notice(out, "You are a %s; showing %s", snap.Role(), d.Location)
		return a.renderView(ctx, out, snap.Role())
	default:
		role := required
		if role == profile.RoleNone {
			role = snap.Role()
		}
		return a.renderView(ctx, out, role)
	}
}

func (a *app) renderView(ctx context.Context, out io.Writer, role profile.Role) error {
	api := a.store.API()

	if role == profile.RoleManager {
		view, err := api.ManagerDashboard(ctx)
		if err != nil {
			return err
		}
		renderManagerView(out, view)
		return nil
	}

	view, err := api.EmployeeDashboard(ctx)
	if err != nil {
		return err
	}
	renderEmployeeView(out, view)
	return nil
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow session changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if _, err := a.requireSession(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			unsubscribe := a.store.Subscribe(func(s client.Snapshot) {
				renderSnapshot(out, s)
			})
			defer unsubscribe()

			err := a.store.Watch(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}
