/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/models"
)

var taskArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Move a task to backlog/archive/tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskMove(cmd, args[0], "Archived", func(ctx context.Context, p *project, id string) (models.Task, error) {
			return p.tasks.ArchiveTask(ctx, id)
		})
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Move a finished task to backlog/completed",
	Long: `Move a task to backlog/completed. Completed tasks no longer appear in
listings or sequences but keep their id reserved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskMove(cmd, args[0], "Completed", func(ctx context.Context, p *project, id string) (models.Task, error) {
			return p.tasks.CompleteTask(ctx, id)
		})
	},
}

func init() {
	taskCmd.AddCommand(taskArchiveCmd)
	taskCmd.AddCommand(taskCompleteCmd)
}

func runTaskMove(cmd *cobra.Command, id, verb string, move func(context.Context, *project, string) (models.Task, error)) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	t, err := move(cmd.Context(), p, id)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s - %s\n", verb, t.ID, t.Title)
	if verb == "Completed" && !strings.EqualFold(t.Status, p.tasks.DoneStatus()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: status is %q, not %q\n", t.Status, p.tasks.DoneStatus())
	}
	return nil
}
