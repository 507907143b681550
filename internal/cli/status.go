package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty-crm/internal/apiclient"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks if the stored token is still valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.OutOrStdout())
		},
	}
}

func runStatus(out io.Writer) error {
	serverURL := getServerURL()
	token := getToken()

	fmt.Fprintf(out, "Server:  %s\n", serverURL)

	c := apiclient.New(serverURL, token)
	if err := c.Ping(); err != nil {
		fmt.Fprintf(out, "Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}

	if token == "" {
		fmt.Fprintln(out, "Token:   not configured")
		fmt.Fprintln(out, "\nRun 'crm login' to authenticate.")
		return nil
	}

	// A stored session past its expiry would only earn a 401.
	if cfg, err := loadConfig(); err == nil && os.Getenv("CRM_TOKEN") == "" && cfg.Expired(time.Now()) {
		fmt.Fprintf(out, "Status:  ✗ token for %s expired at %s\n",
			cfg.Username, cfg.ExpiresAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintln(out, "\nRun 'crm login' to re-authenticate.")
		return nil
	}

	u, err := c.Me()
	var apiErr *apiclient.APIError
	switch {
	case err == nil:
		fmt.Fprintf(out, "Status:  ✓ connected as %s\n", u.Username)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		fmt.Fprintf(out, "Status:  ✗ %s\n", apiErr.Message)
		fmt.Fprintln(out, "\nRun 'crm login' to re-authenticate.")
	default:
		fmt.Fprintf(out, "Status:  ✗ unexpected response (%v)\n", err)
	}

	return nil
}
