/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/internal/ui"
	"github.com/josephgoksu/backlog/models"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show tasks as an interactive kanban board",
	Long: `Open a kanban board with one column per configured status. Tasks from
remote branches are shown alongside local ones. Press r to reload and
enter to see a task's details.`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	if isPlain() || isJSON() || !interactive() {
		return errors.New("the board needs an interactive terminal, use 'backlog task list' instead")
	}
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	return ui.RunBoard(cmd.Context(), p.cfg.ProjectName, p.cfg.Statuses, func(ctx context.Context) ([]models.Task, error) {
		return p.tasks.ListTasks(ctx, task.Filter{})
	})
}
