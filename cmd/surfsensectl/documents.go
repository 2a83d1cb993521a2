// ABOUTME: Document commands: list, get, add, update, and delete
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/utils/output"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage documents",
	Long: `List, inspect, ingest, and delete documents.

Examples:
  surfsensectl documents list --search-space 3
  surfsensectl documents add --type CRAWLED_URL --content https://example.com --search-space 3
  surfsensectl documents get 7
  surfsensectl documents delete 7`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE:  runDocumentsList,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsGet,
}

var documentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit content for ingestion",
	Long: `Submit raw content or URLs for ingestion into a search space.

The backend processes submissions asynchronously; the command returns as
soon as the content is accepted.

Examples:
  surfsensectl documents add --type CRAWLED_URL --content https://example.com --search-space 3
  surfsensectl documents add --type EXTENSION --content "page text" --search-space 3`,
	RunE: runDocumentsAdd,
}

var documentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename or re-type a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsUpdate,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsGetCmd)
	documentsCmd.AddCommand(documentsAddCmd)
	documentsCmd.AddCommand(documentsUpdateCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)

	documentsListCmd.Flags().IntP("search-space", "s", 0, "restrict to one search space")
	documentsListCmd.Flags().Bool("json", false, "output as JSON")

	documentsGetCmd.Flags().Bool("json", false, "output as JSON")

	documentsAddCmd.Flags().String("type", string(models.DocumentTypeCrawledURL), "document type")
	documentsAddCmd.Flags().StringArray("content", nil, "content item or URL (repeatable)")
	documentsAddCmd.Flags().IntP("search-space", "s", 0, "target search space")

	documentsUpdateCmd.Flags().String("title", "", "new title")
	documentsUpdateCmd.Flags().String("type", "", "new document type")
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	searchSpace, _ := cmd.Flags().GetInt("search-space")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	documents, err := a.documents.List(ctx, searchSpace)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(documents)
	}

	if len(documents) == 0 {
		a.printer.Warning("No documents found")
		return nil
	}

	table := output.NewTable([]string{"ID", "Title", "Type", "Space", "Created"})
	for _, d := range documents {
		table.AddRow([]string{
			strconv.Itoa(d.ID),
			d.Title,
			string(d.DocumentType),
			strconv.Itoa(d.SearchSpaceID),
			d.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()

	a.printer.Info("Total: %d document(s)", len(documents))
	return nil
}

func runDocumentsGet(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	id, err := parseID(args[0], "document")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	document, err := a.documents.Get(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(document)
	}

	a.printer.Print("%s", a.printer.Bold(document.Title))
	a.printer.Print("  id:           %d", document.ID)
	a.printer.Print("  type:         %s", document.DocumentType)
	a.printer.Print("  search space: %d", document.SearchSpaceID)
	a.printer.Print("  created:      %s", document.CreatedAt.Format("2006-01-02 15:04"))
	if document.Content != "" {
		a.printer.Print("")
		a.printer.Print("%s", document.Content)
	}
	return nil
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	docType, _ := cmd.Flags().GetString("type")
	content, _ := cmd.Flags().GetStringArray("content")
	searchSpace, _ := cmd.Flags().GetInt("search-space")

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	req := &models.DocumentCreateRequest{
		DocumentType:  models.DocumentType(docType),
		Content:       content,
		SearchSpaceID: searchSpace,
	}
	if err := a.documents.Create(ctx, req); err != nil {
		return err
	}

	a.printer.Success("Submitted %d item(s) for ingestion", len(content))
	return nil
}

func runDocumentsUpdate(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	docType, _ := cmd.Flags().GetString("type")

	id, err := parseID(args[0], "document")
	if err != nil {
		return err
	}
	if title == "" && docType == "" {
		return fmt.Errorf("nothing to update, pass --title or --type")
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	req := &models.DocumentUpdateRequest{
		Title:        title,
		DocumentType: models.DocumentType(docType),
	}
	document, err := a.documents.Update(ctx, id, req)
	if err != nil {
		return err
	}

	a.printer.Success("Document %d updated", document.ID)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "document")
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	if err := a.documents.Delete(ctx, id); err != nil {
		return err
	}

	a.printer.Success("Document %d deleted", id)
	return nil
}
