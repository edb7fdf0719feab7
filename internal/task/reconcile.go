package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/josephgoksu/backlog/internal/remote"
	"github.com/josephgoksu/backlog/internal/util"
	"github.com/josephgoksu/backlog/models"
	"github.com/josephgoksu/backlog/store"
)

// ResolutionStrategy picks between two copies of the same task.
type ResolutionStrategy string

const (
	// MostRecent keeps the copy with the later update date.
	MostRecent ResolutionStrategy = "most_recent"
	// MostProgressed keeps the copy whose status is further along the
	// configured status list.
	MostProgressed ResolutionStrategy = "most_progressed"
)

// ParseStrategy maps a config value to a strategy, defaulting to MostRecent.
func ParseStrategy(raw string) ResolutionStrategy {
	switch ResolutionStrategy(strings.ToLower(strings.TrimSpace(raw))) {
	case MostProgressed:
		return MostProgressed
	default:
		return MostRecent
	}
}

// ResolveConflict returns the copy to present. Ties keep existing.
func ResolveConflict(existing, incoming models.Task, statuses []string, strategy ResolutionStrategy) models.Task {
	if strategy == MostProgressed {
		a, b := statusRank(existing.Status, statuses), statusRank(incoming.Status, statuses)
		switch {
		case b > a:
			return incoming
		case a > b:
			return existing
		}
	}
	if incoming.LastActivity().After(existing.LastActivity()) {
		return incoming
	}
	return existing
}

func statusRank(status string, statuses []string) int {
	for i, s := range statuses {
		if strings.EqualFold(s, status) {
			return i
		}
	}
	return -1
}

// RemoteGit is the version-control surface the loader reads from.
type RemoteGit interface {
	remote.GitQuerier
	Fetch(ctx context.Context, remoteName string) error
	RemoteBranches(ctx context.Context, remoteName string) ([]string, error)
	RecentRemoteBranches(ctx context.Context, remoteName string, since time.Time) ([]string, error)
	ShowFile(ctx context.Context, ref, path string) (string, error)
}

// RemoteOptions configures cross-branch loading.
type RemoteOptions struct {
	Enabled bool
	// Branches are always queried in addition to the discovered ones.
	Branches []string
	// ActiveOnly restricts discovery to branches with a commit in the
	// last ActiveDays days.
	ActiveOnly bool
	ActiveDays int
	// TasksDir is the tasks directory relative to the repository root.
	TasksDir string
	Strategy ResolutionStrategy
	Statuses []string
}

// RemoteLoader merges task copies from remote-tracking branches into the
// local view.
type RemoteLoader struct {
	git  RemoteGit
	opts RemoteOptions
	now  func() time.Time
}

// NewRemoteLoader creates a loader.
func NewRemoteLoader(g RemoteGit, opts RemoteOptions) *RemoteLoader {
	if opts.ActiveDays <= 0 {
		opts.ActiveDays = 30
	}
	if opts.TasksDir == "" {
		opts.TasksDir = store.DefaultDir + "/" + store.TasksDir
	}
	return &RemoteLoader{git: g, opts: opts, now: time.Now}
}

// Branches returns the raw branch names to index.
func (l *RemoteLoader) Branches(ctx context.Context) []string {
	var (
		branches []string
		err      error
	)
	if l.opts.ActiveOnly {
		since := l.now().AddDate(0, 0, -l.opts.ActiveDays)
		branches, err = l.git.RecentRemoteBranches(ctx, remote.DefaultRemote, since)
	} else {
		branches, err = l.git.RemoteBranches(ctx, remote.DefaultRemote)
	}
	if err != nil {
		slog.Warn("listing remote branches failed", "error", err)
		branches = nil
	}
	return append(branches, l.opts.Branches...)
}

// Load returns local merged with newer or missing copies found on remote
// branches, ordered by id. Remote failures only reduce what is merged.
func (l *RemoteLoader) Load(ctx context.Context, local []models.Task) []models.Task {
	if l == nil || !l.opts.Enabled {
		return local
	}

	if err := l.git.Fetch(ctx, remote.DefaultRemote); err != nil {
		slog.Warn("fetch failed, using existing remote refs", "error", err)
	}

	idx := remote.BuildTaskIndex(ctx, l.git, l.Branches(ctx), l.opts.TasksDir)
	if len(idx) == 0 {
		return local
	}

	byID := make(map[string]int, len(local))
	merged := make([]models.Task, len(local))
	copy(merged, local)
	for i, t := range merged {
		byID[t.ID] = i
	}

	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return util.CompareTaskIDs(ids[i], ids[j]) < 0 })

	for _, id := range ids {
		entry := idx[id]
		pos, exists := byID[id]
		if !exists {
			pos, exists = findTask(merged, id)
		}
		if exists && !entry.LastModified.After(merged[pos].LastModified) {
			continue
		}

		incoming, err := l.hydrate(ctx, entry)
		if err != nil {
			slog.Warn("skipping remote task", "id", id, "ref", entry.Ref, "error", err)
			continue
		}

		if !exists {
			byID[id] = len(merged)
			merged = append(merged, incoming)
			continue
		}
		merged[pos] = ResolveConflict(merged[pos], incoming, l.opts.Statuses, l.opts.Strategy)
	}

	sort.SliceStable(merged, func(i, j int) bool { return util.CompareTaskIDs(merged[i].ID, merged[j].ID) < 0 })
	return merged
}

// findTask locates id in tasks ignoring zero padding.
func findTask(tasks []models.Task, id string) (int, bool) {
	for i, t := range tasks {
		if util.SameTaskID(t.ID, id) {
			return i, true
		}
	}
	return 0, false
}

// hydrate reads and parses the indexed copy of a task.
func (l *RemoteLoader) hydrate(ctx context.Context, e remote.Entry) (models.Task, error) {
	content, err := l.git.ShowFile(ctx, e.Ref, e.Path)
	if err != nil {
		return models.Task{}, err
	}
	t, err := store.ParseTask([]byte(content))
	if err != nil {
		return models.Task{}, fmt.Errorf("parse %s: %w", e.Path, err)
	}
	if t.ID == "" {
		t.ID = e.ID
	}
	t.Source = models.SourceRemote
	t.Branch = e.Ref
	t.FilePath = e.Path
	t.LastModified = e.LastModified
	return t, nil
}
