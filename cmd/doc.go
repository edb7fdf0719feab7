/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/git"
	"github.com/josephgoksu/backlog/models"
)

var docCmd = &cobra.Command{
	Use:     "doc",
	Aliases: []string{"docs"},
	Short:   "Manage project documents in backlog/docs",
}

var docCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocCreate,
}

var docListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List documents",
	Args:    cobra.NoArgs,
	RunE:    runDocList,
}

var docViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocView,
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.AddCommand(docCreateCmd, docListCmd, docViewCmd)

	docCreateCmd.Flags().String("type", string(models.DocTypeOther), "readme, guide, specification or other")
	docCreateCmd.Flags().StringSlice("tags", nil, "tags")
	docCreateCmd.Flags().String("body", "", "document content")
}

func runDocCreate(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	id, err := p.store.NextDocumentID()
	if err != nil {
		return err
	}

	docType, _ := cmd.Flags().GetString("type")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	body, _ := cmd.Flags().GetString("body")
	doc := models.Document{
		ID:          id,
		Title:       strings.TrimSpace(args[0]),
		Type:        models.DocumentType(strings.ToLower(docType)),
		Tags:        tags,
		CreatedDate: time.Now().UTC(),
		Body:        body,
	}
	if err := models.ValidateStruct(doc); err != nil {
		return err
	}
	path, err := p.store.SaveDocument(&doc)
	if err != nil {
		return err
	}
	p.commit(cmd.Context(), git.ActionCreate, doc.ID, doc.Title, path)

	if isJSON() {
		return printJSON(cmd, doc)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s - %s\n", doc.ID, doc.Title)
	return nil
}

func runDocList(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	docs, err := p.store.ListDocuments()
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, docs)
	}
	renderer(cmd, p).Documents(docs)
	return nil
}

func runDocView(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	doc, err := p.store.GetDocument(args[0])
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, doc)
	}
	renderer(cmd, p).Document(doc)
	return nil
}
