// ABOUTME: Podcast commands: list, get, generate, and delete audio summaries
package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/utils/output"
)

var podcastsCmd = &cobra.Command{
	Use:   "podcasts",
	Short: "Manage generated podcasts",
	Long: `List, inspect, generate, and delete audio summaries.

Examples:
  surfsensectl podcasts list --search-space 3
  surfsensectl podcasts generate --chat 9 --chat 11 --search-space 3
  surfsensectl podcasts get 2 --transcript
  surfsensectl podcasts delete 2`,
}

var podcastsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List podcasts",
	RunE:  runPodcastsList,
}

var podcastsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one podcast",
	Args:  cobra.ExactArgs(1),
	RunE:  runPodcastsGet,
}

var podcastsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate podcasts from chats",
	Long: `Ask the backend to produce audio summaries from stored chats.

Generation happens asynchronously; poll with 'podcasts list' until the
episode is marked generated.`,
	RunE: runPodcastsGenerate,
}

var podcastsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a podcast",
	Args:  cobra.ExactArgs(1),
	RunE:  runPodcastsDelete,
}

func init() {
	rootCmd.AddCommand(podcastsCmd)
	podcastsCmd.AddCommand(podcastsListCmd)
	podcastsCmd.AddCommand(podcastsGetCmd)
	podcastsCmd.AddCommand(podcastsGenerateCmd)
	podcastsCmd.AddCommand(podcastsDeleteCmd)

	podcastsListCmd.Flags().IntP("search-space", "s", 0, "restrict to one search space")
	podcastsListCmd.Flags().Bool("json", false, "output as JSON")

	podcastsGetCmd.Flags().Bool("json", false, "output as JSON")
	podcastsGetCmd.Flags().Bool("transcript", false, "print the transcript")

	podcastsGenerateCmd.Flags().IntSlice("chat", nil, "chat ID to summarize (repeatable)")
	podcastsGenerateCmd.Flags().IntP("search-space", "s", 0, "target search space")
}

func runPodcastsList(cmd *cobra.Command, args []string) error {
	searchSpace, _ := cmd.Flags().GetInt("search-space")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	podcasts, err := a.podcasts.List(ctx, searchSpace)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(podcasts)
	}

	if len(podcasts) == 0 {
		a.printer.Warning("No podcasts found")
		return nil
	}

	table := output.NewTable([]string{"ID", "Title", "Generated", "Space", "Created"})
	for _, p := range podcasts {
		table.AddRow([]string{
			strconv.Itoa(p.ID),
			p.Title,
			yesNo(p.IsGenerated, "yes", "pending"),
			strconv.Itoa(p.SearchSpaceID),
			p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()

	a.printer.Info("Total: %d podcast(s)", len(podcasts))
	return nil
}

func runPodcastsGet(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	transcript, _ := cmd.Flags().GetBool("transcript")

	id, err := parseID(args[0], "podcast")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	podcast, err := a.podcasts.Get(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(podcast)
	}

	a.printer.Print("%s", a.printer.Bold(podcast.Title))
	a.printer.Print("  id:           %d", podcast.ID)
	a.printer.Print("  generated:    %s", yesNo(podcast.IsGenerated, "yes", "pending"))
	if podcast.FileLocation != "" {
		a.printer.Print("  file:         %s", podcast.FileLocation)
	}
	a.printer.Print("  search space: %d", podcast.SearchSpaceID)
	if transcript && podcast.PodcastTranscript != "" {
		a.printer.Print("")
		a.printer.Print("%s", podcast.PodcastTranscript)
	}
	return nil
}

func runPodcastsGenerate(cmd *cobra.Command, args []string) error {
	chatIDs, _ := cmd.Flags().GetIntSlice("chat")
	searchSpace, _ := cmd.Flags().GetInt("search-space")

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	req := &models.PodcastGenerateRequest{
		Type:          "CHAT",
		ChatIDs:       chatIDs,
		SearchSpaceID: searchSpace,
	}
	if err := a.podcasts.Generate(ctx, req); err != nil {
		return err
	}

	a.printer.Success("Podcast generation started for %d chat(s)", len(chatIDs))
	return nil
}

func runPodcastsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "podcast")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	if err := a.podcasts.Delete(ctx, id); err != nil {
		return err
	}

	a.printer.Success("Podcast %d deleted", id)
	return nil
}
