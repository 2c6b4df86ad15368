package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rrens/text-to-sql-chat/internal/cli/ui"
	"github.com/Rrens/text-to-sql-chat/internal/security"
)

// statusCmd is the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show backend reachability and token state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	ui.Bold(out, "Server: %s", current.client.BaseURL())
	if err := current.client.Health(cmd.Context()); err != nil {
		ui.Error(out, "Backend unreachable: %v", err)
	} else {
		ui.Success(out, "Backend healthy")
	}

	token := current.cfg.Client.Token
	if token == "" {
		ui.Warning(out, "Not logged in")
		return nil
	}

	info, err := security.InspectToken(token)
	if err != nil {
		ui.Warning(out, "Token present but unreadable: %v", err)
		return nil
	}

	switch {
	case info.ExpiresAt.IsZero():
		ui.Success(out, "Logged in as %s (no expiry)", info.Subject)
	case info.Expired(time.Now()):
		ui.Warning(out, "Token for %s expired %s", info.Subject, info.ExpiresAt.Local().Format(time.RFC1123))
	default:
		ui.Success(out, "Logged in as %s until %s", info.Subject, info.ExpiresAt.Local().Format(time.RFC1123))
	}
	fmt.Fprintln(out)
	return nil
}
