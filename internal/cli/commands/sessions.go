package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Rrens/text-to-sql-chat/internal/cli/ui"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// sessionsCmd lists sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "list conversation sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := newOrchestrator("").ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		printSessions(cmd.OutOrStdout(), sessions, "")
		return nil
	},
}

// historyCmd prints the log of one session
var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "print the messages of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch := newOrchestrator("")
		if err := orch.SwitchSession(cmd.Context(), args[0]); err != nil {
			return err
		}
		printMessages(cmd.OutOrStdout(), orch.Messages())
		return nil
	},
}

func printSessions(w io.Writer, sessions []domain.Session, active string) {
	if len(sessions) == 0 {
		ui.Info(w, "No sessions yet")
		return
	}
	for _, s := range sessions {
		marker := "  "
		if s.ID == active {
			marker = "* "
		}
		fmt.Fprintf(w, "%s%-16s %s\n", marker, s.Label(), s.ID)
	}
}

func printMessages(w io.Writer, messages []domain.Message) {
	if len(messages) == 0 {
		ui.Info(w, "No messages in this session")
		return
	}
	for i, msg := range messages {
		fmt.Fprintf(w, "[%d] %s\n\n", i+1, ui.RenderMessage(msg))
	}
}
