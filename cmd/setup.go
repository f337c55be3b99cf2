package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/letterrip/workspace-mcp/internal/gmail"
	"github.com/letterrip/workspace-mcp/internal/google"
)

func newSetupCmd() *cobra.Command {
	var (
		account    string
		skipLabels bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Authorize a Google account and create the triage labels",
		Long: `Run the Google OAuth flow from the terminal and cache the resulting token
for the given account, then create any missing triage labels in Gmail.

The OAuth client must be configured via GOOGLE_OAUTH_CREDENTIALS (a client
secret JSON file) or the GOOGLE_OAUTH_CLIENT_ID and
GOOGLE_OAUTH_CLIENT_SECRET environment variables.

Multiple accounts can be authorized by running setup once per account:

  workspace-mcp setup --account work
  workspace-mcp setup --account personal`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, account, skipLabels)
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account name to authorize (e.g. 'work', 'personal')")
	cmd.Flags().BoolVar(&skipLabels, "skip-labels", false, "Skip creating the triage labels")

	return cmd
}

func runSetup(cmd *cobra.Command, account string, skipLabels bool) error {
	ctx := cmd.Context()

	if google.HasTokenForAccount(account) {
		fmt.Printf("Account %q is already authorized.\n", account)
	} else {
		authURL, err := google.GetAuthURLForAccount(account)
		if err != nil {
			return err
		}

		fmt.Printf("Visit this URL to authorize account %q:\n\n  %s\n\n", account, authURL)
		fmt.Print("Paste the authorization code: ")

		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		code := strings.TrimSpace(line)
		if code == "" {
			return fmt.Errorf("no authorization code provided")
		}

		if err := google.SaveTokenForAccount(ctx, account, code); err != nil {
			return err
		}
		fmt.Printf("Token saved for account %q.\n", account)
	}

	if skipLabels {
		return nil
	}

	client, err := gmail.NewClientForAccount(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to create Gmail client: %w", err)
	}

	labels, err := client.EnsureLabels()
	if err != nil {
		return fmt.Errorf("failed to create triage labels: %w", err)
	}

	names := make([]string, 0, len(labels))
	for category := range labels {
		names = append(names, category.LabelName())
	}
	sort.Strings(names)
	fmt.Printf("Triage labels ready: %s\n", strings.Join(names, ", "))

	return nil
}
