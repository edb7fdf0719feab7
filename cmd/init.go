/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/config"
	"github.com/josephgoksu/backlog/store"
)

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Create the backlog directory and configuration",
	Long: `Create backlog/ with its tasks, drafts, archive, completed, docs and decisions
directories plus backlog/config.yml. The project is created at the git root
when run inside a repository, otherwise in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringSlice("statuses", nil, "workflow statuses, first is the default and last means done")
	initCmd.Flags().Bool("auto-commit", false, "commit every task change")
	initCmd.Flags().Bool("no-remote", false, "do not read tasks from remote branches")
}

func runInit(cmd *cobra.Command, args []string) error {
	paths, err := locateProject()
	if err != nil {
		return err
	}
	cfgPath := paths.ConfigPath()
	if ok, _ := afero.Exists(appFs, cfgPath); ok {
		return fmt.Errorf("backlog already initialized at %s", paths.BacklogDir)
	}

	cfg := config.Default()
	cfg.ProjectName = filepath.Base(paths.Root)
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		cfg.ProjectName = strings.TrimSpace(args[0])
	}
	if statuses, _ := cmd.Flags().GetStringSlice("statuses"); len(statuses) > 0 {
		cfg.Statuses = statuses
		cfg.DefaultStatus = statuses[0]
	}
	cfg.AutoCommit, _ = cmd.Flags().GetBool("auto-commit")
	if noRemote, _ := cmd.Flags().GetBool("no-remote"); noRemote {
		cfg.RemoteOperations = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := store.NewFileStore(appFs, paths.BacklogDir).Init(); err != nil {
		return err
	}
	if err := config.Save(appFs, cfgPath, cfg); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd, map[string]any{"root": paths.BacklogDir, "config": cfg})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized backlog %q in %s\n", cfg.ProjectName, paths.BacklogDir)
	return nil
}
