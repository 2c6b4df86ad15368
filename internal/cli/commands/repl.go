package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rrens/text-to-sql-chat/internal/chat"
	"github.com/Rrens/text-to-sql-chat/internal/cli/ui"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
	"github.com/Rrens/text-to-sql-chat/internal/export"
)

const replHelp = `Commands:
  /new                 start a new session
  /sessions            list sessions
  /switch <id>         switch to a session (unique prefix is enough)
  /history             show the current session
  /export [n]          export the table of message n (default: the last table)
  /login [user] [pw]   log in; prompts for what is missing
  /logout              forget the token and the current conversation
  /help                show this help
  /quit                leave
Anything else is sent as a question.`

// replCmd is the interactive mode
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "start an interactive chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ui.Banner(out, current.client.BaseURL())
		fmt.Fprintln(out, "Type /help for commands.")

		r := NewREPL(newOrchestrator(""), cmd.InOrStdin(), out, ExportSettings{
			Dir:     current.cfg.Export.Dir,
			Options: export.Options{Strict: current.cfg.Export.Strict},
		})
		r.prompter = surveyPrompter{}
		return r.Run(cmd.Context())
	},
}

// ExportSettings controls /export
type ExportSettings struct {
	Dir     string
	Options export.Options
}

// REPL reads commands and questions line by line
type REPL struct {
	orch     *chat.Orchestrator
	in       *bufio.Scanner
	out      io.Writer
	export   ExportSettings
	prompter Prompter
	now      func() time.Time
}

// NewREPL creates a REPL over in and out
func NewREPL(orch *chat.Orchestrator, in io.Reader, out io.Writer, settings ExportSettings) *REPL {
	return &REPL{
		orch:   orch,
		in:     bufio.NewScanner(in),
		out:    out,
		export: settings,
		now:    time.Now,
	}
}

// Run loops until /quit, end of input or ctx is done
func (r *REPL) Run(ctx context.Context) error {
	for {
		fmt.Fprint(r.out, r.prompt())
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}

		if quit := r.Handle(ctx, r.in.Text()); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (r *REPL) prompt() string {
	if id := r.orch.ActiveSession(); id != "" {
		return domain.Session{ID: id}.Label() + " > "
	}
	return "> "
}

// Handle processes one line and reports whether the REPL should stop
func (r *REPL) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		r.ask(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	args := fields[1:]
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, replHelp)
	case "/new":
		r.newSession(ctx)
	case "/sessions":
		r.sessions(ctx)
	case "/switch":
		r.switchSession(ctx, args)
	case "/history":
		printMessages(r.out, r.orch.Messages())
	case "/export":
		r.exportTable(args)
	case "/login":
		r.login(ctx, args)
	case "/logout":
		r.orch.Logout()
		ui.Success(r.out, "Logged out")
	default:
		ui.Warning(r.out, "Unknown command %s, type /help", fields[0])
	}
	return false
}

func (r *REPL) ask(ctx context.Context, question string) {
	if !r.ensureSession(ctx) {
		return
	}

	reply, err := r.orch.SubmitQuery(ctx, question)
	switch {
	case errors.Is(err, domain.ErrQueryInFlight):
		ui.Warning(r.out, "Still waiting for the previous answer")
	case errors.Is(err, domain.ErrStaleResponse):
		ui.Warning(r.out, "The session changed before the answer arrived; it was not added")
	case err != nil:
		ui.Error(r.out, "%v", err)
	default:
		fmt.Fprintln(r.out, ui.RenderMessage(reply))
	}
}

// ensureSession starts a session when none is active, so every question of
// a conversation lands in the same server session
func (r *REPL) ensureSession(ctx context.Context) bool {
	id, created, err := r.orch.EnsureSession(ctx)
	if err != nil {
		ui.Error(r.out, "%v", err)
		return false
	}
	if created {
		ui.Info(r.out, "Started %s", domain.Session{ID: id}.Label())
	}
	return true
}

func (r *REPL) newSession(ctx context.Context) {
	id, err := r.orch.CreateSession(ctx)
	if err != nil {
		ui.Error(r.out, "%v", err)
		return
	}
	ui.Success(r.out, "Started %s", domain.Session{ID: id}.Label())
}

func (r *REPL) sessions(ctx context.Context) {
	sessions, err := r.orch.ListSessions(ctx)
	if err != nil {
		ui.Error(r.out, "%v", err)
		return
	}
	printSessions(r.out, sessions, r.orch.Context().SessionID())
}

func (r *REPL) switchSession(ctx context.Context, args []string) {
	if len(args) != 1 {
		ui.Warning(r.out, "Usage: /switch <id>")
		return
	}

	id, err := r.resolveSession(args[0])
	if err != nil {
		ui.Error(r.out, "%v", err)
		return
	}

	if err := r.orch.SwitchSession(ctx, id); err != nil {
		ui.Error(r.out, "%v", err)
		return
	}
	ui.Success(r.out, "Switched to %s (%d messages)", domain.Session{ID: id}.Label(), r.orch.MessageCount())
}

// resolveSession expands a prefix of a known session ID. Unknown input is
// passed through so sessions not listed yet can still be opened.
func (r *REPL) resolveSession(prefix string) (string, error) {
	var matches []string
	for _, s := range r.orch.Sessions() {
		if s.ID == prefix {
			return prefix, nil
		}
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s.ID)
		}
	}

	switch len(matches) {
	case 0:
		return prefix, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d sessions", prefix, len(matches))
	}
}

func (r *REPL) exportTable(args []string) {
	var (
		msg domain.Message
		ok  bool
	)
	if len(args) == 0 {
		msg, ok = r.orch.LastTable()
	} else {
		messages := r.orch.Messages()
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(messages) {
			ui.Warning(r.out, "No message %s, see /history for numbers", args[0])
			return
		}
		msg = messages[n-1]
		ok = msg.HasTable()
	}
	if !ok {
		ui.Warning(r.out, "Nothing to export")
		return
	}

	path, err := export.Message(msg, r.export.Dir, r.now(), r.export.Options)
	if err != nil {
		var alignment *export.AlignmentError
		if errors.As(err, &alignment) {
			ui.Error(r.out, "Rows do not match the columns: %v", err)
			return
		}
		ui.Error(r.out, "Export failed: %v", err)
		return
	}
	ui.Success(r.out, "Exported to %s", path)
}

func (r *REPL) login(ctx context.Context, args []string) {
	var username, password string
	if len(args) > 0 {
		username = args[0]
	}
	if len(args) > 1 {
		password = args[1]
	}

	if password == "" {
		if r.prompter == nil {
			ui.Warning(r.out, "Usage: /login <username> <password>")
			return
		}
		var err error
		username, password, err = r.prompter.Credentials(username)
		if err != nil {
			ui.Error(r.out, "%v", err)
			return
		}
	}

	if err := r.orch.Login(ctx, username, password); err != nil {
		ui.Error(r.out, "%v", err)
		return
	}
	ui.Success(r.out, "Logged in as %s", username)
	r.ensureSession(ctx)
}
