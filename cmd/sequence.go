/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/task"
)

var sequenceCmd = &cobra.Command{
	Use:     "sequence",
	Aliases: []string{"seq"},
	Short:   "Group tasks into dependency levels",
}

var sequenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tasks that can be worked on in parallel, level by level",
	Long: `Partition the tasks into sequences: sequence 1 holds tasks with no
dependencies, each later sequence holds tasks whose dependencies are all in
earlier ones. Tasks in the done status are left out unless --all is given.
Dependency cycles are reported as a warning and placed after the tasks they
do not wait on.`,
	Args: cobra.NoArgs,
	RunE: runSequenceList,
}

func init() {
	rootCmd.AddCommand(sequenceCmd)
	sequenceCmd.AddCommand(sequenceListCmd)
	sequenceListCmd.Flags().Bool("all", false, "include tasks in the done status")
}

func runSequenceList(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	seqs, err := p.tasks.Sequences(cmd.Context(), all)
	if err != nil {
		return err
	}
	if isJSON() {
		if seqs == nil {
			seqs = []task.Sequence{}
		}
		return printJSON(cmd, map[string]any{"sequences": seqs})
	}

	tasks, err := p.tasks.ListTasks(cmd.Context(), task.Filter{})
	if err != nil {
		return err
	}
	renderer(cmd, p).Sequences(seqs, tasks)
	return nil
}
