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

var decisionCmd = &cobra.Command{
	Use:     "decision",
	Aliases: []string{"decisions", "adr"},
	Short:   "Record architecture decisions in backlog/decisions",
}

var decisionCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a decision record from the template",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecisionCreate,
}

var decisionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List decisions",
	Args:    cobra.NoArgs,
	RunE:    runDecisionList,
}

var decisionViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a decision",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecisionView,
}

func init() {
	rootCmd.AddCommand(decisionCmd)
	decisionCmd.AddCommand(decisionCreateCmd, decisionListCmd, decisionViewCmd)

	decisionCreateCmd.Flags().String("status", string(models.DecisionProposed), "proposed, accepted, rejected or superseded")
}

func runDecisionCreate(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	id, err := p.store.NextDecisionID()
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	dec := models.Decision{
		ID:     id,
		Title:  strings.TrimSpace(args[0]),
		Date:   time.Now().UTC(),
		Status: models.DecisionStatus(strings.ToLower(status)),
		Body:   models.DecisionTemplate,
	}
	if err := models.ValidateStruct(dec); err != nil {
		return err
	}
	path, err := p.store.SaveDecision(&dec)
	if err != nil {
		return err
	}
	p.commit(cmd.Context(), git.ActionCreate, dec.ID, dec.Title, path)

	if isJSON() {
		return printJSON(cmd, dec)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s - %s\n", dec.ID, dec.Title)
	return nil
}

func runDecisionList(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	decs, err := p.store.ListDecisions()
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, decs)
	}
	renderer(cmd, p).Decisions(decs)
	return nil
}

func runDecisionView(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	dec, err := p.store.GetDecision(args[0])
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, dec)
	}
	renderer(cmd, p).Decision(dec)
	return nil
}
