// ABOUTME: Logout command revoking the session and clearing local state
package main

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session and clear the stored credential",
	Long: `Revoke the backend session and clear the credential from the token
store. Local state is cleared even when the backend revocation fails.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}

	a.printer.Success("Logged out")
	return nil
}
