package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/josephgoksu/backlog/internal/config"
	"github.com/josephgoksu/backlog/internal/git"
	"github.com/josephgoksu/backlog/internal/logger"
	"github.com/josephgoksu/backlog/internal/remote"
	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/store"
)

// Replaced in tests.
var (
	appFs afero.Fs = afero.NewOsFs()
	getwd          = os.Getwd
	newGitClient   = git.NewClient
)

// project bundles what a command needs to work on the enclosing backlog.
type project struct {
	paths config.Project
	cfg   config.Config
	store *store.FileStore
	tasks *task.Service
	git   *git.Client
}

// locateProject finds the project enclosing the working directory without
// requiring it to be initialized.
func locateProject() (config.Project, error) {
	cwd, err := getwd()
	if err != nil {
		return config.Project{}, fmt.Errorf("get working directory: %w", err)
	}
	p, err := config.FindProject(appFs, cwd, store.DefaultDir)
	if errors.Is(err, config.ErrNoProjectFound) {
		return config.Project{Root: cwd, BacklogDir: filepath.Join(cwd, store.DefaultDir)}, nil
	}
	return p, err
}

// openProject loads the configuration of the enclosing project and wires
// the store, task service and git integration.
func openProject(ctx context.Context) (*project, error) {
	paths, err := locateProject()
	if err != nil {
		return nil, err
	}
	if !paths.Initialized {
		return nil, ErrNotInitialized
	}

	v, err := config.NewViper(appFs, paths.BacklogDir, viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if isVerbose() {
		level = "debug"
	}
	logger.Setup(logger.Options{Level: level})
	logger.SetFs(appFs)
	logger.SetBasePath(paths.BacklogDir)

	st := store.NewFileStore(appFs, paths.BacklogDir)
	st.SetZeroPadding(cfg.ZeroPaddedIDs)

	svc := task.NewService(st, task.Options{
		Statuses:      cfg.Statuses,
		DefaultStatus: cfg.DefaultStatus,
		AutoCommit:    cfg.AutoCommit,
	})
	p := &project{paths: paths, cfg: cfg, store: st, tasks: svc}

	if paths.GitRoot == "" {
		slog.Debug("not a git repository, remote and commit features disabled", "root", paths.Root)
		return p, nil
	}
	p.git = newGitClient(paths.GitRoot)
	svc.SetCommitter(p.git)

	if cfg.RemoteOperations && !isLocalOnly() && p.git.HasRemote(ctx, remote.DefaultRemote) {
		svc.SetRemoteLoader(task.NewRemoteLoader(p.git, task.RemoteOptions{
			Enabled:    true,
			Branches:   cfg.RemoteBranches,
			ActiveOnly: cfg.CheckActiveBranches,
			ActiveDays: cfg.ActiveBranchDays,
			TasksDir:   remoteTasksDir(paths),
			Strategy:   task.ParseStrategy(cfg.TaskResolutionStrategy),
			Statuses:   cfg.Statuses,
		}))
	}
	return p, nil
}

// remoteTasksDir is the tasks directory relative to the git root, in the
// slash form git expects.
func remoteTasksDir(p config.Project) string {
	rel, err := filepath.Rel(p.GitRoot, p.BacklogDir)
	if err != nil {
		rel = store.DefaultDir
	}
	return filepath.ToSlash(filepath.Join(rel, store.TasksDir))
}

// commit records paths when auto_commit is on. Failures are only logged.
func (p *project) commit(ctx context.Context, action, id, title string, paths ...string) {
	if !p.cfg.AutoCommit || p.git == nil {
		return
	}
	if err := p.git.CommitChange(ctx, git.CommitMessage(action, id, title), paths...); err != nil {
		slog.Warn("auto-commit failed", "id", id, "error", err)
	}
}
