// ABOUTME: Chat commands: list, get, and delete stored conversations
package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MODSetter/SurfSense-sub002/utils/output"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Manage research chats",
	Long: `List, inspect, and delete stored research conversations.

Examples:
  surfsensectl chats list --search-space 3
  surfsensectl chats get 9
  surfsensectl chats delete 9`,
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats",
	RunE:  runChatsList,
}

var chatsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one chat with its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsGet,
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsDelete,
}

func init() {
	rootCmd.AddCommand(chatsCmd)
	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsGetCmd)
	chatsCmd.AddCommand(chatsDeleteCmd)

	chatsListCmd.Flags().IntP("search-space", "s", 0, "restrict to one search space")
	chatsListCmd.Flags().Bool("json", false, "output as JSON")

	chatsGetCmd.Flags().Bool("json", false, "output as JSON")
}

func runChatsList(cmd *cobra.Command, args []string) error {
	searchSpace, _ := cmd.Flags().GetInt("search-space")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	chats, err := a.chats.List(ctx, searchSpace)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(chats)
	}

	if len(chats) == 0 {
		a.printer.Warning("No chats found")
		return nil
	}

	table := output.NewTable([]string{"ID", "Title", "Type", "Turns", "Space", "Created"})
	for _, c := range chats {
		table.AddRow([]string{
			strconv.Itoa(c.ID),
			c.Title,
			string(c.Type),
			strconv.Itoa(len(c.Messages)),
			strconv.Itoa(c.SearchSpaceID),
			c.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()

	a.printer.Info("Total: %d chat(s)", len(chats))
	return nil
}

func runChatsGet(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	id, err := parseID(args[0], "chat")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	chat, err := a.chats.Get(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(chat)
	}

	a.printer.Print("%s", a.printer.Bold(chat.Title))
	a.printer.Print("  id:           %d", chat.ID)
	a.printer.Print("  type:         %s", chat.Type)
	a.printer.Print("  search space: %d", chat.SearchSpaceID)
	a.printer.Print("  created:      %s", chat.CreatedAt.Format("2006-01-02 15:04"))
	for _, message := range chat.Messages {
		a.printer.Print("")
		a.printer.Print("%s", a.printer.Bold(message.Role))
		a.printer.Print("%s", message.Content)
	}
	return nil
}

func runChatsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "chat")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	if err := a.chats.Delete(ctx, id); err != nil {
		return err
	}

	a.printer.Success("Chat %d deleted", id)
	return nil
}
