// ABOUTME: Status command inspecting the stored credential and backend reachability
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MODSetter/SurfSense-sub002/service"
	"github.com/MODSetter/SurfSense-sub002/utils"
	"github.com/MODSetter/SurfSense-sub002/utils/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session credential",
	Long: `Display the state of the credential in the configured token store.

The inspection is local; no request is made unless --check is given.

Examples:
  surfsensectl status             # Inspect the stored credential
  surfsensectl status --check     # Also probe the backend identity endpoint
  surfsensectl status --json      # Output as JSON`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("json", false, "output as JSON")
	statusCmd.Flags().Bool("check", false, "probe the backend with the stored credential")
}

type backendCheck struct {
	Reachable bool   `json:"reachable"`
	Email     string `json:"email,omitempty"`
	Error     string `json:"error,omitempty"`
}

type statusReport struct {
	Credential *service.TokenStatus `json:"credential"`
	Backend    *backendCheck        `json:"backend,omitempty"`
	Metrics    []utils.Metric       `json:"metrics,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	check, _ := cmd.Flags().GetBool("check")

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	st, err := a.tokens.Status(ctx)
	if err != nil {
		return err
	}

	report := statusReport{Credential: st}
	if check {
		report.Backend = probeBackend(a)
	}

	if jsonOutput {
		report.Metrics = a.monitor.Snapshot()
		return printJSON(report)
	}

	printCredentialStatus(a.printer, st)
	if report.Backend != nil {
		printBackendCheck(a.printer, report.Backend)
	}
	if verbose {
		printMetrics(a.printer, a.monitor)
	}
	return nil
}

func probeBackend(a *app) *backendCheck {
	ctx, cancel := a.requestContext()
	defer cancel()

	user, err := a.sessions.CurrentUser(ctx)
	if err != nil {
		return &backendCheck{Error: err.Error()}
	}
	return &backendCheck{Reachable: true, Email: user.Email}
}

func printCredentialStatus(printer *output.Printer, st *service.TokenStatus) {
	printer.Header("Session")

	state, description := credentialState(st)
	printer.Print("%s %s", printer.SessionBadge(state), description)

	if !st.Exists {
		printer.Info("Run 'surfsensectl login' to start a session.")
		return
	}

	printer.Print("  token type:    %s", st.TokenType)
	printer.Print("  expires:       %s", formatExpiry(st))
	printer.Print("  refresh token: %s", yesNo(st.HasRefreshToken, "stored", "not stored"))
}

func credentialState(st *service.TokenStatus) (state, description string) {
	switch {
	case !st.Exists:
		return "none", "No credential stored"
	case st.IsValid:
		return "valid", "Session valid"
	case st.HasRefreshToken:
		return "refreshable", "Access token expired, refresh token available"
	default:
		return "expired", "Session expired"
	}
}

func formatExpiry(st *service.TokenStatus) string {
	if st.ExpiresAt.IsZero() {
		return "unknown"
	}
	if st.IsExpired {
		return fmt.Sprintf("%s (expired)", st.ExpiresAt.Format(time.RFC3339))
	}
	return fmt.Sprintf("%s (in %s)", st.ExpiresAt.Format(time.RFC3339), st.TimeUntilExpiry.Round(time.Second))
}

func printBackendCheck(printer *output.Printer, check *backendCheck) {
	printer.Header("Backend")
	if check.Reachable {
		printer.Success("Reachable, authenticated as %s", check.Email)
		return
	}
	printer.Error("Unreachable: %s", check.Error)
}

func printMetrics(printer *output.Printer, monitor *utils.Monitor) {
	metrics := monitor.Snapshot()
	if len(metrics) == 0 {
		return
	}

	printer.Header("Client metrics")
	table := output.NewTable([]string{"Name", "Type", "Value"})
	for _, m := range metrics {
		table.AddRow([]string{m.Name, string(m.Type), fmt.Sprintf("%g", m.Value)})
	}
	table.Render()
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
