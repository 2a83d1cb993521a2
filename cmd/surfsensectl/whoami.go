// ABOUTME: Whoami command fetching the identity of the active session
package main

import (
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity of the active session",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)

	whoamiCmd.Flags().Bool("json", false, "output as JSON")
}

func runWhoami(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	user, err := a.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(user)
	}

	a.printer.Print("%s", user.Email)
	if verbose {
		a.printer.Print("  id:        %s", user.ID)
		a.printer.Print("  active:    %t", user.IsActive)
		a.printer.Print("  verified:  %t", user.IsVerified)
		a.printer.Print("  superuser: %t", user.IsSuperuser)
	}
	return nil
}
