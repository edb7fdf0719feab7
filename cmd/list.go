/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/internal/watch"
)

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks from this branch and remote branches",
	Long: `List tasks ordered by id. Copies that only exist on remote branches, or are
newer there, are included and marked with @branch. Use --local-only to
list the working copy alone.`,
	Args: cobra.NoArgs,
	RunE: runTaskList,
}

func init() {
	taskCmd.AddCommand(taskListCmd)

	f := taskListCmd.Flags()
	f.StringP("status", "s", "", "only tasks with this status")
	f.StringP("assignee", "a", "", "only tasks assigned to this person")
	f.StringP("label", "l", "", "only tasks carrying this label")
	f.StringP("priority", "p", "", "only tasks with this priority")
	f.String("parent", "", "only subtasks of this task")
	f.BoolP("watch", "w", false, "re-list whenever a task file changes")
}

func listFilter(cmd *cobra.Command) task.Filter {
	f := cmd.Flags()
	var filter task.Filter
	filter.Status, _ = f.GetString("status")
	filter.Assignee, _ = f.GetString("assignee")
	filter.Label, _ = f.GetString("label")
	filter.Priority, _ = f.GetString("priority")
	filter.Parent, _ = f.GetString("parent")
	return filter
}

func runTaskList(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	filter := listFilter(cmd)

	show := func(ctx context.Context) error {
		tasks, err := p.tasks.ListTasks(ctx, filter)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(cmd, tasks)
		}
		renderer(cmd, p).TaskList(tasks)
		return nil
	}
	if err := show(cmd.Context()); err != nil {
		return err
	}

	if watching, _ := cmd.Flags().GetBool("watch"); !watching {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(p.paths.BacklogDir, watch.DefaultDelay, func(changes []watch.Change) {
		slog.Debug("backlog changed", "changes", len(changes))
		fmt.Fprintln(cmd.OutOrStdout())
		if err := show(ctx); err != nil {
			slog.Warn("re-listing tasks failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
