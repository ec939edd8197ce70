package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"spaces-client/api"
	"spaces-client/chat"
	"spaces-client/commands"
	"spaces-client/models"
	"spaces-client/presence"
	"spaces-client/realtime"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [space]",
	Short: "Open the interactive chat, optionally entering a space",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// workspace is what the input loop drives.
type workspace interface {
	Viewer() models.User
	MemberNicknames() []string
	ReloadSpaces(ctx context.Context) error
	SelectSpace(ctx context.Context, query string) error
	Send(ctx context.Context, text string) error
	Edit(ctx context.Context, id models.ID, text string) error
	Delete(ctx context.Context, id models.ID) error
	React(ctx context.Context, id models.ID, reaction string) error
	Upload(ctx context.Context, path string) error
	Search(ctx context.Context, query string) error
	Members(ctx context.Context) error
	Kick(ctx context.Context, nickname string) error
	Ban(ctx context.Context, nickname, reason string) error
	SetStatus(ctx context.Context, status models.Status) error
	Profile(ctx context.Context, nickname string) error
	Notifications(ctx context.Context, markRead bool) error
	CreateSpace(ctx context.Context, name, description string) error
	LeaveRoom(ctx context.Context)
}

// prompter is the part of the dialogs the loop uses directly.
type prompter interface {
	Warning(ctx context.Context, title, message string)
	Prompt(ctx context.Context, title, message, def string) (string, error)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	maxUpload, err := a.cfg.MaxUploadBytes()
	if err != nil {
		return err
	}
	rt := realtime.New(a.cfg.WebSocketURL,
		realtime.WithLogger(a.log),
		realtime.WithEmitRate(float64(a.cfg.EmitRate), a.cfg.EmitRate),
	)
	ws := chat.NewWorkspace(a.client, rt, a.view, a.dialogs, a.store, chat.Config{
		HistoryLimit:  a.cfg.HistoryLimit,
		MaxUploadSize: maxUpload,
	}, a.log)

	if err := ws.Start(ctx); err != nil {
		_ = rt.Close()
		return err
	}

	runner := presence.NewRunner(a.client, a.cfg.HeartbeatInterval, a.cfg.StatusRefreshInterval, a.log)
	runner.Start(ctx, ws.ActiveSpace, ws.ApplyStatuses)

	defer func() {
		runner.Stop()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ws.Close(shutdown)
		if a.store.IsAuthenticated() {
			presence.GoOffline(shutdown, a.client, a.cfg.RequestTimeout, a.log)
		}
	}()

	if len(args) > 0 {
		_ = ws.SelectSpace(ctx, strings.Join(args, " "))
	}
	a.view.Notice("Type a message, or /help for commands. End a line with a tab to complete @mentions.")

	for {
		line, err := a.dialogs.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		quit, err := dispatch(ctx, ws, a.dialogs, cmd.OutOrStdout(), line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// dispatch runs one input line. The workspace reports its own failures to
// the user, so only an expired session ends the loop with an error.
func dispatch(ctx context.Context, ws workspace, d prompter, out io.Writer, line string) (bool, error) {
	if strings.HasSuffix(line, "\t") {
		completed, ok := completeMention(ctx, ws, d, strings.TrimRight(line, "\t"))
		if !ok {
			return false, nil
		}
		line = completed
	}
	if strings.TrimSpace(line) == "" {
		return false, nil
	}

	cmd, err := commands.Parse(line)
	if err != nil {
		d.Warning(ctx, "Command", err.Error())
		return false, nil
	}

	switch cmd.Name {
	case commands.Quit:
		return true, nil
	case commands.Help:
		fmt.Fprintln(out, "Commands:")
		for _, u := range commands.Usage() {
			fmt.Fprintln(out, "  "+u)
		}
		fmt.Fprintln(out, "Anything else is sent as a message. :shortcode: emoji are expanded.")
		return false, nil
	case commands.Say:
		err = ws.Send(ctx, cmd.Text)
	case commands.Join:
		err = ws.SelectSpace(ctx, cmd.Arg)
	case commands.Spaces:
		err = ws.ReloadSpaces(ctx)
	case commands.Edit:
		err = ws.Edit(ctx, cmd.ID, cmd.Text)
	case commands.Delete:
		err = ws.Delete(ctx, cmd.ID)
	case commands.React:
		err = ws.React(ctx, cmd.ID, cmd.Text)
	case commands.Upload:
		err = ws.Upload(ctx, cmd.Arg)
	case commands.Search:
		err = ws.Search(ctx, cmd.Arg)
	case commands.Members:
		err = ws.Members(ctx)
	case commands.Kick:
		err = ws.Kick(ctx, cmd.Arg)
	case commands.Ban:
		err = ws.Ban(ctx, cmd.Arg, cmd.Text)
	case commands.Status:
		err = ws.SetStatus(ctx, models.Status(cmd.Arg))
	case commands.Profile:
		nickname := cmd.Arg
		if nickname == "" {
			nickname = ws.Viewer().Nickname
		}
		err = ws.Profile(ctx, nickname)
	case commands.Notifications:
		err = ws.Notifications(ctx, cmd.Arg == "read")
	case commands.Create:
		err = ws.CreateSpace(ctx, cmd.Arg, cmd.Text)
	case commands.Leave:
		ws.LeaveRoom(ctx)
	}

	if errors.Is(err, api.ErrSessionExpired) {
		return true, err
	}
	return false, nil
}

// completeMention finishes a trailing @partial and asks before sending the
// completed line. ok is false when there is nothing to send.
func completeMention(ctx context.Context, ws workspace, d prompter, line string) (string, bool) {
	nicknames := ws.MemberNicknames()
	completed := commands.CompleteLastMention(line, nicknames)
	if completed == line {
		at := strings.LastIndexByte(line, '@')
		if at < 0 {
			return line, true
		}
		candidates := commands.CompleteMention(line[at+1:], nicknames)
		if len(candidates) == 0 {
			d.Warning(ctx, "Mention", "Nobody here matches "+line[at:]+".")
		} else {
			d.Warning(ctx, "Mention", "Did you mean @"+strings.Join(candidates, ", @")+"?")
		}
		return "", false
	}

	text, err := d.Prompt(ctx, "", "Send", strings.TrimSpace(completed))
	if err != nil {
		return "", false
	}
	return text, true
}
