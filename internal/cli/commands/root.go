package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rrens/text-to-sql-chat/internal/chat"
	"github.com/Rrens/text-to-sql-chat/internal/client"
	"github.com/Rrens/text-to-sql-chat/internal/config"
	"github.com/Rrens/text-to-sql-chat/internal/logger"
)

const version = "0.1.0"

var (
	serverFlag  string
	tokenFlag   string
	configFlag  string
	verboseFlag bool
)

// session is the state shared by every subcommand of one invocation
type session struct {
	cfg       *config.Config
	client    *client.APIClient
	logCloser io.Closer
}

var current session

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "chat",
	Short:   "Ask questions about your data in plain language",
	Version: version,
	Long: `A terminal client for a text-to-SQL chat backend. Questions are answered
with text, tables, charts and the generated SQL; tables can be exported to Excel.`,
	Example: `  # Log in and keep the token for later commands
  $ chat login -u admin
  $ export CHAT_TOKEN=<token>

  # One-shot question
  $ chat ask "revenue by month"

  # Interactive mode
  $ chat repl`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current.logCloser != nil {
			current.logCloser.Close()
		}
	},
}

// ExecuteContext executes the root command; ctx is cancelled on interrupt
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "backend base URL (default from config or CHAT_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "bearer token (default from CHAT_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "config file (default ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(replCmd)
}

// setup loads configuration, applies flag overrides and builds the API client
func setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configFlag != "" {
		cfg, err = config.LoadFile(configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if serverFlag != "" {
		cfg.Client.BaseURL = serverFlag
	}
	if tokenFlag != "" {
		cfg.Client.Token = tokenFlag
	}

	var console io.Writer = io.Discard
	if verboseFlag {
		console = os.Stderr
	}
	closer, err := logger.Setup(cfg.Logging, console)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	apiClient, err := client.New(cfg.Client.BaseURL, cfg.Client.Timeout)
	if err != nil {
		closer.Close()
		return err
	}

	current = session{cfg: cfg, client: apiClient, logCloser: closer}
	return nil
}

// newOrchestrator starts an orchestrator holding the configured token and
// the given session
func newOrchestrator(sessionID string) *chat.Orchestrator {
	return chat.NewOrchestrator(current.client, chat.NewAuthContext(current.cfg.Client.Token, sessionID))
}
