package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/xrclskn/biolink/internal/client"
	"github.com/xrclskn/biolink/internal/config"
	"github.com/xrclskn/biolink/internal/editor"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/syncer"
)

var version = "0.1.0"

// app carries the resolved settings shared by every subcommand.
type app struct {
	cfg    config.Config
	apiURL string
	userID string
	out    io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "biolink",
		Short:         "Edit a link-in-bio profile from the terminal",
		Long:          "biolink loads your profile from the API, applies one edit and saves it back.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			logger.SetDefault(logger.New(
				logger.WithLevel(logger.ParseLevel(logLevel)),
				logger.WithOutput(cmd.ErrOrStderr()),
			))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), a)
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", a.cfg.APIBaseURL, "Profile API base URL")
	root.PersistentFlags().StringVar(&a.userID, "user", a.cfg.UserID, "Acting user id")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "biolink %s\n", version)
			},
		},
		newShowCmd(a),
		newProfileCmd(a),
		newLinkCmd(a),
		newSocialCmd(a),
		newThemeCmd(a),
		newUsernameCmd(a),
		newQRCmd(a),
	)
	return root
}

func (a *app) client() (*client.Client, error) {
	if a.userID == "" {
		return nil, fmt.Errorf("no user id: pass --user or set USER_ID")
	}
	return client.New(a.apiURL, a.userID, client.WithTimeout(a.cfg.HTTPTimeout)), nil
}

// open builds an engine for the acting user and loads the stored profile.
func (a *app) open(ctx context.Context) (*syncer.Engine, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	e := syncer.New(editor.NewStore(), c,
		syncer.WithDeleteRetry(uint64(a.cfg.DeleteRetryAttempts), syncer.DefaultDeleteBackoff),
	)
	if err := e.Load(ctx, a.userID); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// edit loads the profile, applies fn and saves when something changed.
func (a *app) edit(ctx context.Context, fn func(st *editor.Store) error) error {
	e, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := fn(e.Store()); err != nil {
		return err
	}
	if !e.HasUnsavedChanges() {
		fmt.Fprintln(a.out, "Nothing to save.")
		return nil
	}
	if _, err := e.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved (%s).\n", e.LastSaved())
	return nil
}

func main() {
	cfg := config.Load()
	if err := newRootCmd(&app{cfg: cfg}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
