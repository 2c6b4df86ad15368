package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rrens/text-to-sql-chat/internal/cli/ui"
	"github.com/Rrens/text-to-sql-chat/internal/export"
)

var (
	askSession string
	askExport  bool
)

// askCmd sends a single question
var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "ask a single question",
	Long: `Ask one question and print the answer.

Without --session a new session is created first, so the question starts a
fresh conversation.`,
	Example: `  $ chat ask "revenue by month"
  $ chat ask --session 6f1c... "and by region?"
  $ chat ask --export "all orders this week"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "continue an existing session")
	askCmd.Flags().BoolVar(&askExport, "export", false, "write a returned table to an Excel file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	orch := newOrchestrator(askSession)
	id, created, err := orch.EnsureSession(ctx)
	if err != nil {
		return err
	}
	if created {
		ui.Info(out, "Started session %s", id)
	}

	reply, err := orch.SubmitQuery(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, ui.RenderMessage(reply))

	if askExport {
		if !reply.HasTable() {
			ui.Warning(out, "The answer has no table to export")
			return nil
		}
		path, err := export.Message(reply, current.cfg.Export.Dir, time.Now(), export.Options{Strict: current.cfg.Export.Strict})
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		ui.Success(out, "Exported to %s", path)
	}
	return nil
}
