package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	chatadapter "github.com/bnema/dchat/internal/adapters/render/chat"
	"github.com/bnema/dchat/internal/application"
	"github.com/bnema/dchat/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// noticeError carries the notice shown for a rejected or failed send.
type noticeError struct {
	notice domain.Notice
	err    error
}

func (e *noticeError) Error() string {
	return fmt.Sprintf("%s: %s", e.notice.Title, e.notice.Description)
}

func (e *noticeError) Unwrap() error {
	return e.err
}

func newSendCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, app, strings.Join(args, " "))
		},
	}
}

func runSend(cmd *cobra.Command, app *app, text string) error {
	ctx := cmd.Context()

	session, err := app.chat.Open(ctx)
	if err != nil {
		return sessionError(err)
	}
	defer session.Shutdown(context.WithoutCancel(ctx))

	exchange, err := session.Begin(text)
	if err != nil {
		if notice := session.Notice(err); !notice.IsZero() {
			return &noticeError{notice: notice, err: err}
		}
		return err
	}

	if isTerminal(cmd.ErrOrStderr()) {
		result, err := chatadapter.RunExchange(ctx, exchange, app.theme.Get(ctx).IsDark, tea.WithOutput(cmd.ErrOrStderr()))
		if err != nil {
			return fmt.Errorf("show exchange: %w", err)
		}
		return writeReply(cmd.OutOrStdout(), result)
	}

	result := exchange.Run(ctx)
	if err := writeReply(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Notice.IsZero() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", result.Notice.Title, result.Notice.Description)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Remaining: %d/%d\n", result.User.RemainingUsage, result.User.QuotaTotal)

	return nil
}

func writeReply(w io.Writer, result application.ExchangeResult) error {
	_, err := fmt.Fprintln(w, result.Reply.Content)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
