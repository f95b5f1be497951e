// Package cli implements ttctl, the terminal client for timehub.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/geocoder89/timehub/internal/client"
	"github.com/spf13/cobra"
)

const DefaultBaseURL = "http://localhost:8080"

// Options wires the CLI to a server and a terminal. Zero fields fall back to
// the process environment.
type Options struct {
	BaseURL string
	Tokens  client.TokenPersister
	In      io.Reader
	Out     io.Writer
	// ReadPassword reads a secret without echo.
	ReadPassword func() (string, error)
}

type app struct {
	opts  Options
	store *client.Store
}

func NewRootCmd(opts Options) *cobra.Command {
	a := &app{opts: withDefaults(opts)}

	root := &cobra.Command{
		Use:           "ttctl",
		Short:         "Track time against timehub projects",
		Long:          "ttctl signs you in to a timehub server and lets managers run projects and employees log hours.",
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.opts.Tokens == nil {
				ts, err := client.DefaultTokenStore()
				if err != nil {
					return err
				}
				a.opts.Tokens = ts
			}
			a.store = client.NewStore(client.New(a.opts.BaseURL), a.opts.Tokens)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.opts.BaseURL, "server", a.opts.BaseURL, "timehub server URL")
	root.SetIn(a.opts.In)
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Out)

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.dashboardCmd(),
		a.watchCmd(),
		a.projectsCmd(),
		a.employeesCmd(),
		a.inviteCmd(),
		a.invitesCmd(),
		a.acceptCmd(),
		a.logCmd(),
		a.timeLogsCmd(),
	)

	return root
}

// Execute runs ttctl against the process environment.
func Execute(ctx context.Context) error {
	return NewRootCmd(Options{}).ExecuteContext(ctx)
}

func withDefaults(opts Options) Options {
	if opts.BaseURL == "" {
		opts.BaseURL = os.Getenv("TIMEHUB_URL")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ReadPassword == nil {
		opts.ReadPassword = func() (string, error) {
			b, err := term.ReadPassword(os.Stdin.Fd())
			return string(b), err
		}
	}
	return opts
}

// requireSession restores the saved session and fails unless someone is signed in.
func (a *app) requireSession(ctx context.Context) (client.Snapshot, error) {
	if err := a.store.Init(ctx); err != nil {
		return client.Snapshot{}, err
	}
	snap := a.store.Snapshot()
	if snap.Identity == nil {
		return snap, errNotSignedIn
	}
	return snap, nil
}

var errNotSignedIn = errors.New("not signed in; run `ttctl login` first")

func (a *app) password(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	pw, err := a.opts.ReadPassword()
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(pw, "\r\n"), nil
}
