package commands

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/Rrens/text-to-sql-chat/internal/cli/ui"
	"github.com/Rrens/text-to-sql-chat/internal/security"
)

var (
	loginUsername string
	loginPassword string
)

// loginCmd is the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "authenticate with the chat backend",
	Long: `Exchange a username and password for a bearer token.

The token is printed, not stored. Export it as CHAT_TOKEN or pass it with
--token to use it in later commands.`,
	Example: `  # Prompt for both username and password
  $ chat login

  # Prompt for the password only
  $ chat login -u admin`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username for authentication")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
}

// Prompter asks the user for credentials
type Prompter interface {
	Credentials(username string) (string, string, error)
}

// surveyPrompter prompts on the terminal, skipping fields already known
type surveyPrompter struct{}

func (surveyPrompter) Credentials(username string) (string, string, error) {
	if username == "" {
		prompt := &survey.Input{Message: "Username:"}
		if err := survey.AskOne(prompt, &username, survey.WithValidator(survey.Required)); err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
	}

	var password string
	prompt := &survey.Password{Message: "Password:"}
	if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return username, password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	username := loginUsername
	if username == "" {
		username = current.cfg.Client.Username
	}
	password := loginPassword
	if username == "" || password == "" {
		var err error
		username, password, err = surveyPrompter{}.Credentials(username)
		if err != nil {
			return err
		}
	}

	ui.Info(out, "Connecting to %s...", current.client.BaseURL())

	orch := newOrchestrator("")
	if err := orch.Login(cmd.Context(), username, password); err != nil {
		ui.ErrorBox(out, "Login Failed", err.Error())
		return fmt.Errorf("authentication failed")
	}

	token := orch.Context().Token()
	content := fmt.Sprintf("Username:       %s\nServer:         %s", username, current.client.BaseURL())
	if info, err := security.InspectToken(token); err == nil && !info.ExpiresAt.IsZero() {
		content += "\nToken expires:  " + info.ExpiresAt.Local().Format(time.RFC1123)
	}
	ui.SuccessBox(out, "✓ Login Successful", content)

	fmt.Fprintln(out)
	ui.Info(out, "Use the token in later commands:")
	ui.Bold(out, "  export CHAT_TOKEN=%s", token)
	return nil
}
