/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/task"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks", "t"},
	Short:   "Create, list, view and edit tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new task",
	Long: `Create a new task file in backlog/tasks. With --parent the task becomes a
subtask and gets the next free sub-id of its parent (task-4.1, task-4.2, ...).`,
	Example: `  backlog task create "Add CSV export" -d "Export every task" --ac "CSV has headers" --ac "Dates are ISO"
  backlog task create "Write tests" --parent 4 --depends-on 3 -l testing`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskCreate,
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskCreateCmd)

	f := taskCreateCmd.Flags()
	f.StringP("description", "d", "", "task description")
	f.StringP("status", "s", "", "initial status (default from config)")
	f.StringP("priority", "p", "", "priority: high, medium or low")
	f.StringSliceP("assignee", "a", nil, "assignees")
	f.String("reporter", "", "reporter")
	f.StringSliceP("labels", "l", nil, "labels")
	f.String("milestone", "", "milestone")
	f.StringSlice("depends-on", nil, "ids of tasks this task depends on")
	f.String("parent", "", "parent task id")
	f.StringArray("ac", nil, "acceptance criterion (repeatable)")
	f.String("plan", "", "implementation plan")
	f.String("notes", "", "implementation notes")
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}

	f := cmd.Flags()
	in := task.CreateInput{Title: args[0]}
	in.Description, _ = f.GetString("description")
	in.Status, _ = f.GetString("status")
	in.Priority, _ = f.GetString("priority")
	in.Assignees, _ = f.GetStringSlice("assignee")
	in.Reporter, _ = f.GetString("reporter")
	in.Labels, _ = f.GetStringSlice("labels")
	in.Milestone, _ = f.GetString("milestone")
	in.Dependencies, _ = f.GetStringSlice("depends-on")
	in.Parent, _ = f.GetString("parent")
	in.Criteria, _ = f.GetStringArray("ac")
	in.Plan, _ = f.GetString("plan")
	in.Notes, _ = f.GetString("notes")

	t, err := p.tasks.CreateTask(cmd.Context(), in)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s - %s\n", t.ID, t.Title)
	if isVerbose() {
		fmt.Fprintf(cmd.OutOrStdout(), "File: %s\n", t.FilePath)
	}
	return nil
}
