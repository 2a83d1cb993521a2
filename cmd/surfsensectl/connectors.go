// ABOUTME: Search source connector commands: list, get, add, update, index, delete
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/utils/output"
)

var connectorsCmd = &cobra.Command{
	Use:   "connectors",
	Short: "Manage search source connectors",
	Long: `List, register, index, and delete search source connectors.

Connector config entries are passed as repeatable key=value flags; the
keys are connector-specific and validated by the backend.

Examples:
  surfsensectl connectors list
  surfsensectl connectors add --name "Team Slack" --type SLACK_CONNECTOR \
    --config SLACK_BOT_TOKEN=xoxb-... --indexable --search-space 3
  surfsensectl connectors index 5 --search-space 3
  surfsensectl connectors delete 5`,
}

var connectorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connectors",
	RunE:  runConnectorsList,
}

var connectorsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one connector",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorsGet,
}

var connectorsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a connector",
	RunE:  runConnectorsAdd,
}

var connectorsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update connector settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorsUpdate,
}

var connectorsIndexCmd = &cobra.Command{
	Use:   "index <id>",
	Short: "Trigger content indexing for a connector",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorsIndex,
}

var connectorsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a connector",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorsDelete,
}

func init() {
	rootCmd.AddCommand(connectorsCmd)
	connectorsCmd.AddCommand(connectorsListCmd)
	connectorsCmd.AddCommand(connectorsGetCmd)
	connectorsCmd.AddCommand(connectorsAddCmd)
	connectorsCmd.AddCommand(connectorsUpdateCmd)
	connectorsCmd.AddCommand(connectorsIndexCmd)
	connectorsCmd.AddCommand(connectorsDeleteCmd)

	connectorsListCmd.Flags().Bool("json", false, "output as JSON")

	connectorsGetCmd.Flags().Bool("json", false, "output as JSON")

	connectorsAddCmd.Flags().String("name", "", "connector name")
	connectorsAddCmd.Flags().String("type", "", "connector type")
	connectorsAddCmd.Flags().StringArray("config", nil, "config entry as key=value (repeatable)")
	connectorsAddCmd.Flags().Bool("indexable", false, "mark the connector as indexable")
	connectorsAddCmd.Flags().IntP("search-space", "s", 0, "target search space")

	connectorsUpdateCmd.Flags().String("name", "", "new connector name")
	connectorsUpdateCmd.Flags().StringArray("config", nil, "config entry as key=value (repeatable)")

	connectorsIndexCmd.Flags().IntP("search-space", "s", 0, "search space to index into")
}

func runConnectorsList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	connectors, err := a.connectors.List(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(connectors)
	}

	if len(connectors) == 0 {
		a.printer.Warning("No connectors configured")
		return nil
	}

	table := output.NewTable([]string{"ID", "Name", "Type", "Indexable", "Last indexed", "Space"})
	for _, c := range connectors {
		lastIndexed := "-"
		if c.LastIndexedAt != nil {
			lastIndexed = c.LastIndexedAt.Format("2006-01-02 15:04")
		}
		table.AddRow([]string{
			strconv.Itoa(c.ID),
			c.Name,
			string(c.ConnectorType),
			yesNo(c.IsIndexable, "yes", "no"),
			lastIndexed,
			strconv.Itoa(c.SearchSpaceID),
		})
	}
	table.Render()

	a.printer.Info("Total: %d connector(s)", len(connectors))
	return nil
}

func runConnectorsGet(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	id, err := parseID(args[0], "connector")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	connector, err := a.connectors.Get(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(connector)
	}

	a.printer.Print("%s", a.printer.Bold(connector.Name))
	a.printer.Print("  id:           %d", connector.ID)
	a.printer.Print("  type:         %s", connector.ConnectorType)
	a.printer.Print("  indexable:    %s", yesNo(connector.IsIndexable, "yes", "no"))
	if connector.LastIndexedAt != nil {
		a.printer.Print("  last indexed: %s", connector.LastIndexedAt.Format("2006-01-02 15:04"))
	}
	a.printer.Print("  search space: %d", connector.SearchSpaceID)
	return nil
}

func runConnectorsAdd(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	connType, _ := cmd.Flags().GetString("type")
	configPairs, _ := cmd.Flags().GetStringArray("config")
	indexable, _ := cmd.Flags().GetBool("indexable")
	searchSpace, _ := cmd.Flags().GetInt("search-space")

	connConfig, err := parseConfigPairs(configPairs)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	req := &models.ConnectorCreateRequest{
		Name:          name,
		ConnectorType: models.ConnectorType(connType),
		Config:        connConfig,
		IsIndexable:   indexable,
		SearchSpaceID: searchSpace,
	}
	connector, err := a.connectors.Create(ctx, req)
	if err != nil {
		return err
	}

	a.printer.Success("Connector %q registered with ID %d", connector.Name, connector.ID)
	return nil
}

func runConnectorsUpdate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	configPairs, _ := cmd.Flags().GetStringArray("config")

	id, err := parseID(args[0], "connector")
	if err != nil {
		return err
	}
	if name == "" && len(configPairs) == 0 {
		return fmt.Errorf("nothing to update, pass --name or --config")
	}

	connConfig, err := parseConfigPairs(configPairs)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	req := &models.ConnectorUpdateRequest{Name: name, Config: connConfig}
	connector, err := a.connectors.Update(ctx, id, req)
	if err != nil {
		return err
	}

	a.printer.Success("Connector %d updated", connector.ID)
	return nil
}

func runConnectorsIndex(cmd *cobra.Command, args []string) error {
	searchSpace, _ := cmd.Flags().GetInt("search-space")

	id, err := parseID(args[0], "connector")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	if err := a.connectors.Index(ctx, id, searchSpace); err != nil {
		return err
	}

	a.printer.Success("Indexing started for connector %d", id)
	return nil
}

func runConnectorsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "connector")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	if err := a.connectors.Delete(ctx, id); err != nil {
		return err
	}

	a.printer.Success("Connector %d deleted", id)
	return nil
}

// parseConfigPairs turns repeated key=value flags into a connector config
// map. A nil result (no flags) is distinct from an empty map.
func parseConfigPairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	config := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --config entry %q, expected key=value", pair)
		}
		config[key] = value
	}
	return config, nil
}
