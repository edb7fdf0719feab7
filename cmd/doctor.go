/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josephgoksu/backlog/internal/config"
	"github.com/josephgoksu/backlog/internal/logger"
	"github.com/josephgoksu/backlog/internal/remote"
	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the backlog setup and diagnose issues",
	Long: `Validate the project setup.

Checks:
  • backlog/ directory and config.yml
  • dependency cycles among local tasks
  • git installation, repository and the origin remote
  • crash reports left by earlier runs

Use --last-crash to print the most recent crash report.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().Bool("last-crash", false, "print the most recent crash report")
}

// DoctorCheck represents a single diagnostic check
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warn", "fail"
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	paths, err := locateProject()
	if err != nil {
		return err
	}
	logger.SetFs(appFs)
	logger.SetBasePath(paths.BacklogDir)

	if last, _ := cmd.Flags().GetBool("last-crash"); last {
		return printLastCrash(cmd.OutOrStdout())
	}

	checks := doctorChecks(cmd.Context(), paths)
	if isJSON() {
		return printJSON(cmd, checks)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🩺 Backlog Doctor")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	hasErrors := false
	for _, c := range checks {
		printCheck(out, c)
		if c.Status == "fail" {
			hasErrors = true
		}
	}
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if hasErrors {
		fmt.Fprintln(out, "❌ Issues found. Fix the errors above before continuing.")
	} else {
		fmt.Fprintln(out, "✅ Everything looks good!")
	}
	return nil
}

func doctorChecks(ctx context.Context, paths config.Project) []DoctorCheck {
	var checks []DoctorCheck

	if !paths.Initialized {
		checks = append(checks, DoctorCheck{
			Name: "Backlog", Status: "fail",
			Message: "no backlog directory found",
			Hint:    "run 'backlog init'",
		})
	} else {
		checks = append(checks, DoctorCheck{Name: "Backlog", Status: "ok", Message: paths.BacklogDir})
		checks = append(checks, checkConfig(paths), checkDependencies(paths))
	}

	if !newGitClient(paths.Root).IsGitInstalled(ctx) {
		return append(checks, DoctorCheck{
			Name: "Git", Status: "warn",
			Message: "git is not installed",
			Hint:    "remote branches and auto-commit need git",
		}, checkCrashLogs())
	}
	if paths.GitRoot == "" {
		return append(checks, DoctorCheck{
			Name: "Git", Status: "warn",
			Message: "not inside a git repository",
			Hint:    "run 'git init' to enable remote branches and auto-commit",
		}, checkCrashLogs())
	}

	repo := newGitClient(paths.GitRoot)
	if !repo.IsRepository(ctx) {
		return append(checks, DoctorCheck{
			Name: "Git", Status: "warn",
			Message: paths.GitRoot + " is not a valid git work tree",
		}, checkCrashLogs())
	}
	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		branch = "unknown"
	}
	msg := fmt.Sprintf("%s (branch %s)", paths.GitRoot, branch)
	if dirty, err := repo.IsDirty(ctx); err == nil && dirty {
		msg += ", uncommitted changes"
	}
	checks = append(checks, DoctorCheck{Name: "Git", Status: "ok", Message: msg})

	if repo.HasRemote(ctx, remote.DefaultRemote) {
		checks = append(checks, DoctorCheck{Name: "Remote", Status: "ok", Message: "origin configured"})
	} else {
		checks = append(checks, DoctorCheck{
			Name: "Remote", Status: "warn",
			Message: "no origin remote",
			Hint:    "tasks on other branches are only read from origin",
		})
	}
	return append(checks, checkCrashLogs())
}

func checkConfig(paths config.Project) DoctorCheck {
	v, err := config.NewViper(appFs, paths.BacklogDir, viper.GetString("config"))
	if err == nil {
		_, err = config.Load(v)
	}
	if err != nil {
		return DoctorCheck{Name: "Config", Status: "fail", Message: err.Error(), Hint: "fix backlog/config.yml or run 'backlog config set'"}
	}
	return DoctorCheck{Name: "Config", Status: "ok", Message: "valid"}
}

func checkDependencies(paths config.Project) DoctorCheck {
	tasks, err := store.NewFileStore(appFs, paths.BacklogDir).ListTasks()
	if err != nil {
		return DoctorCheck{Name: "Dependencies", Status: "warn", Message: err.Error()}
	}
	if err := task.VerifyDAG(tasks); err != nil {
		return DoctorCheck{
			Name: "Dependencies", Status: "warn",
			Message: err.Error(),
			Hint:    "break it with 'backlog task edit <id> --remove-dep <dep>'",
		}
	}
	return DoctorCheck{Name: "Dependencies", Status: "ok", Message: fmt.Sprintf("%d task(s), no cycles", len(tasks))}
}

func checkCrashLogs() DoctorCheck {
	logs, err := logger.ListCrashLogs()
	if err != nil || len(logs) == 0 {
		return DoctorCheck{Name: "Crash reports", Status: "ok", Message: "none"}
	}
	return DoctorCheck{
		Name: "Crash reports", Status: "warn",
		Message: fmt.Sprintf("%d report(s), latest %s", len(logs), logs[len(logs)-1]),
		Hint:    "run 'backlog doctor --last-crash' and attach it to a bug report",
	}
}

func printLastCrash(w io.Writer) error {
	logs, err := logger.ListCrashLogs()
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Fprintln(w, "No crash reports.")
		return nil
	}
	content, err := logger.ReadCrashLog(logs[len(logs)-1])
	if err != nil {
		return err
	}
	fmt.Fprint(w, content)
	return nil
}

func printCheck(w io.Writer, c DoctorCheck) {
	var icon string
	switch c.Status {
	case "ok":
		icon = "✅"
	case "warn":
		icon = "⚠️ "
	case "fail":
		icon = "❌"
	}
	fmt.Fprintf(w, "%s %s: %s\n", icon, c.Name, c.Message)
	if c.Hint != "" {
		fmt.Fprintf(w, "   → %s\n", c.Hint)
	}
}
