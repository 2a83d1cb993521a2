// ABOUTME: Login command establishing a backend session
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store a session credential",
	Long: `Authenticate against the SurfSense backend and persist the session
credential in the configured token store.

Credentials come from flags or from the SURFSENSE_USERNAME and
SURFSENSE_PASSWORD environment variables.

Examples:
  surfsensectl login -u dev@example.com --password secret123
  SURFSENSE_PASSWORD=secret123 surfsensectl login -u dev@example.com`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("username", "u", "", "account email (env: SURFSENSE_USERNAME)")
	loginCmd.Flags().String("password", "", "account password (env: SURFSENSE_PASSWORD)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if username == "" {
		username = os.Getenv("SURFSENSE_USERNAME")
	}
	if password == "" {
		password = os.Getenv("SURFSENSE_PASSWORD")
	}
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required (flags or SURFSENSE_USERNAME/SURFSENSE_PASSWORD)")
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	user, returnPath, err := a.sessions.Login(ctx, username, password)
	if err != nil {
		return err
	}

	a.printer.Success("Logged in as %s", user.Email)
	if returnPath != "" {
		a.printer.Info("Pick up where you left off: %s", returnPath)
	}
	return nil
}
