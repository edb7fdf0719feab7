/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/task"
)

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields, sections and acceptance criteria of a task",
	Long: `Apply all given changes to a task in a single write. Acceptance criteria
indices refer to the numbering shown by 'backlog task view' before the edit:
checks are applied first, then removals, then new criteria are appended.
If any change fails (unknown status, missing criterion) nothing is written.`,
	Example: `  backlog task edit 7 -s "In Progress" -a @ana
  backlog task edit 7 --check-ac 1,2 --remove-ac 4 --ac "Docs updated"
  backlog task edit 7 --append-notes "Switched to streaming writer"`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskEdit,
}

func init() {
	taskCmd.AddCommand(taskEditCmd)

	f := taskEditCmd.Flags()
	f.StringP("title", "t", "", "new title (renames the file)")
	f.StringP("status", "s", "", "new status")
	f.StringP("priority", "p", "", "new priority: high, medium or low")
	f.StringSliceP("assignee", "a", nil, "replace assignees")
	f.StringSliceP("label", "l", nil, "replace labels")
	f.StringSlice("add-label", nil, "add labels")
	f.StringSlice("remove-label", nil, "remove labels")
	f.String("milestone", "", "milestone")
	f.Int("ordinal", 0, "manual ordering hint")
	f.StringSlice("depends-on", nil, "add dependencies")
	f.StringSlice("remove-dep", nil, "remove dependencies")
	f.StringP("description", "d", "", "replace the description")
	f.String("plan", "", "replace the implementation plan")
	f.String("notes", "", "replace the implementation notes")
	f.StringArray("append-notes", nil, "append to the implementation notes (repeatable)")
	f.StringArray("ac", nil, "add an acceptance criterion (repeatable)")
	f.StringSlice("check-ac", nil, "check criteria by index")
	f.StringSlice("uncheck-ac", nil, "uncheck criteria by index")
	f.StringSlice("remove-ac", nil, "remove criteria by index")
}

// editFromFlags builds the edit from the flags that were given.
func editFromFlags(cmd *cobra.Command) (task.Edit, error) {
	f := cmd.Flags()
	e := task.Edit{
		Title:       flagString(cmd, "title"),
		Status:      flagString(cmd, "status"),
		Priority:    flagString(cmd, "priority"),
		Milestone:   flagString(cmd, "milestone"),
		Description: flagString(cmd, "description"),
		Plan:        flagString(cmd, "plan"),
		Notes:       flagString(cmd, "notes"),
	}
	if f.Changed("assignee") {
		e.Assignees, _ = f.GetStringSlice("assignee")
		if e.Assignees == nil {
			e.Assignees = []string{}
		}
	}
	if f.Changed("label") {
		e.Labels, _ = f.GetStringSlice("label")
		if e.Labels == nil {
			e.Labels = []string{}
		}
	}
	if f.Changed("ordinal") {
		ord, _ := f.GetInt("ordinal")
		e.Ordinal = &ord
	}
	e.AddLabels, _ = f.GetStringSlice("add-label")
	e.RemoveLabels, _ = f.GetStringSlice("remove-label")
	e.AddDependencies, _ = f.GetStringSlice("depends-on")
	e.RemoveDependencies, _ = f.GetStringSlice("remove-dep")
	e.AppendNotes, _ = f.GetStringArray("append-notes")
	e.AddCriteria, _ = f.GetStringArray("ac")

	for name, dst := range map[string]*[]int{
		"check-ac":   &e.CheckCriteria,
		"uncheck-ac": &e.UncheckCriteria,
		"remove-ac":  &e.RemoveCriteria,
	} {
		raw, _ := f.GetStringSlice(name)
		indices, err := parseIndices(raw)
		if err != nil {
			return task.Edit{}, fmt.Errorf("--%s: %w", name, err)
		}
		*dst = indices
	}
	return e, nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	e, err := editFromFlags(cmd)
	if err != nil {
		return err
	}
	if e.Empty() {
		return errors.New("nothing to change, see 'backlog task edit --help'")
	}

	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	t, err := p.tasks.EditTask(cmd.Context(), args[0], e)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s - %s\n", t.ID, t.Title)
	return nil
}
