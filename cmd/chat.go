package cmd

import (
	"context"
	"fmt"

	chatadapter "github.com/bnema/dchat/internal/adapters/render/chat"
	"github.com/bnema/dchat/internal/adapters/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newChatCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the chat dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app)
		},
	}
}

func runChat(cmd *cobra.Command, app *app) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session, err := app.chat.Open(ctx)
	if err != nil {
		return sessionError(err)
	}
	// Waits for an exchange the user quit during, so its charge is persisted
	// before the store closes.
	defer session.Shutdown(context.WithoutCancel(ctx))

	app.theme.Apply(ctx)

	opts := chatadapter.Options{
		Session: session,
		Theme:   app.theme,
		Logout:  app.chat.Logout,
		Logger:  app.logger,
	}

	watcher, err := app.newWatcher()
	if err != nil {
		app.logger.Warn("state watcher unavailable", zap.Error(err))
	}
	if watcher != nil {
		if err := watcher.Start(ctx); err != nil {
			app.logger.Warn("start state watcher", zap.Error(err))
		} else {
			opts.Changes = watcher.Changes()
		}
		defer stopWatcher(app, watcher)
	}

	result, err := app.runDashboard(ctx, opts)
	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}

	if result.LoggedOut {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	}

	return nil
}

func stopWatcher(app *app, watcher *watch.Watcher) {
	if err := watcher.Stop(); err != nil {
		app.logger.Warn("stop state watcher", zap.Error(err))
	}
}
