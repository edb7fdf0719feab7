/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/internal/ui"
)

var taskViewCmd = &cobra.Command{
	Use:     "view [id]",
	Aliases: []string{"show"},
	Short:   "Show a task with its sections and acceptance criteria",
	Long: `Show one task. The id may be given as "task-7", "7" or a unique prefix.
Without an id an interactive picker opens when running in a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaskView,
}

func init() {
	taskCmd.AddCommand(taskViewCmd)
}

// pickTask is replaced in tests.
var pickTask = ui.PickTask

// taskArg returns the id argument or, in a terminal, asks the user to
// pick one of the listed tasks.
func taskArg(cmd *cobra.Command, p *project, args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if isJSON() || isPlain() || !interactive() {
		return "", errors.New("a task id is required")
	}
	tasks, err := p.tasks.ListTasks(cmd.Context(), task.Filter{})
	if err != nil {
		return "", err
	}
	return pickTask(prompt, tasks)
}

func runTaskView(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	id, err := taskArg(cmd, p, args, "Select a task to view")
	if err != nil {
		return err
	}

	t, err := p.tasks.GetTask(cmd.Context(), id)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, t)
	}
	renderer(cmd, p).TaskDetail(t)
	return nil
}
