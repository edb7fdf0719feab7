package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/backlog/models"
	"github.com/josephgoksu/backlog/store"
)

const testTasksDir = "backlog/tasks"

type remoteFile struct {
	path    string
	content string
	mod     time.Time
}

type fakeRemoteGit struct {
	mu       sync.Mutex
	branches []string
	recent   []string
	fetchErr error
	files    map[string][]remoteFile

	fetched bool
	since   time.Time
	shown   []string
}

func (f *fakeRemoteGit) Fetch(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = true
	return f.fetchErr
}

func (f *fakeRemoteGit) RemoteBranches(_ context.Context, _ string) ([]string, error) {
	return f.branches, nil
}

func (f *fakeRemoteGit) RecentRemoteBranches(_ context.Context, _ string, since time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	return f.recent, nil
}

func (f *fakeRemoteGit) ListFiles(_ context.Context, ref, _ string) ([]string, error) {
	var out []string
	for _, rf := range f.files[ref] {
		out = append(out, rf.path)
	}
	return out, nil
}

func (f *fakeRemoteGit) LastModifiedByPath(_ context.Context, ref, _ string) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	for _, rf := range f.files[ref] {
		out[rf.path] = rf.mod
	}
	return out, nil
}

func (f *fakeRemoteGit) ShowFile(_ context.Context, ref, path string) (string, error) {
	f.mu.Lock()
	f.shown = append(f.shown, ref+":"+path)
	f.mu.Unlock()
	for _, rf := range f.files[ref] {
		if rf.path == path {
			return rf.content, nil
		}
	}
	return "", errors.New("not found")
}

func serialized(t *testing.T, task models.Task) string {
	t.Helper()
	data, err := store.SerializeTask(task)
	require.NoError(t, err)
	return string(data)
}

func localTask(id, status string, updated, modified time.Time) models.Task {
	return models.Task{
		ID:           id,
		Title:        "Local " + id,
		Status:       status,
		CreatedDate:  updated.Add(-time.Hour),
		UpdatedDate:  updated,
		Source:       models.SourceLocal,
		LastModified: modified,
	}
}

func TestRemoteLoader_Disabled(t *testing.T) {
	g := &fakeRemoteGit{}
	local := []models.Task{{ID: "task-1"}}

	got := NewRemoteLoader(g, RemoteOptions{Enabled: false}).Load(context.Background(), local)

	assert.Equal(t, local, got)
	assert.False(t, g.fetched)
}

func TestRemoteLoader_AddsRemoteOnlyTask(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	remoteCopy := models.Task{ID: "task-2", Title: "From branch", Status: models.StatusInProgress, CreatedDate: base}
	g := &fakeRemoteGit{
		branches: []string{"origin/feature"},
		files: map[string][]remoteFile{
			"origin/feature": {{path: testTasksDir + "/task-2 - From-branch.md", content: serialized(t, remoteCopy), mod: base}},
		},
	}
	local := []models.Task{localTask("task-1", models.StatusToDo, base, base)}

	got := NewRemoteLoader(g, RemoteOptions{Enabled: true, TasksDir: testTasksDir}).Load(context.Background(), local)

	require.Len(t, got, 2)
	assert.Equal(t, "task-1", got[0].ID)
	assert.Equal(t, "task-2", got[1].ID)
	assert.Equal(t, models.SourceRemote, got[1].Source)
	assert.Equal(t, "origin/feature", got[1].Branch)
	assert.Equal(t, "From branch", got[1].Title)
	assert.True(t, base.Equal(got[1].LastModified))
	assert.True(t, g.fetched)
}

func TestRemoteLoader_LocalNewerIsNotHydrated(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	g := &fakeRemoteGit{
		branches: []string{"main"},
		files: map[string][]remoteFile{
			"origin/main": {{path: testTasksDir + "/task-1 - X.md", content: "irrelevant", mod: base}},
		},
	}
	local := []models.Task{localTask("task-1", models.StatusToDo, base, base.Add(time.Minute))}

	got := NewRemoteLoader(g, RemoteOptions{Enabled: true, TasksDir: testTasksDir}).Load(context.Background(), local)

	assert.Equal(t, local, got)
	assert.Empty(t, g.shown)
}

func TestRemoteLoader_NewerRemoteResolvedByStrategy(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	// remote copy has a later file timestamp but an older update date and
	// a more advanced status
	remoteCopy := models.Task{
		ID: "task-1", Title: "Remote", Status: models.StatusDone,
		CreatedDate: base.Add(-48 * time.Hour), UpdatedDate: base.Add(-24 * time.Hour),
	}
	newGit := func() *fakeRemoteGit {
		return &fakeRemoteGit{
			branches: []string{"origin/feature"},
			files: map[string][]remoteFile{
				"origin/feature": {{path: testTasksDir + "/task-1 - Remote.md", content: serialized(t, remoteCopy), mod: base.Add(time.Hour)}},
			},
		}
	}
	local := []models.Task{localTask("task-1", models.StatusInProgress, base, base)}

	recent := NewRemoteLoader(newGit(), RemoteOptions{
		Enabled: true, TasksDir: testTasksDir, Strategy: MostRecent, Statuses: models.DefaultStatuses,
	}).Load(context.Background(), local)
	require.Len(t, recent, 1)
	assert.Equal(t, "Local task-1", recent[0].Title)

	progressed := NewRemoteLoader(newGit(), RemoteOptions{
		Enabled: true, TasksDir: testTasksDir, Strategy: MostProgressed, Statuses: models.DefaultStatuses,
	}).Load(context.Background(), local)
	require.Len(t, progressed, 1)
	assert.Equal(t, "Remote", progressed[0].Title)
	assert.Equal(t, models.SourceRemote, progressed[0].Source)
}

func TestRemoteLoader_ZeroPaddedLocalID(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	remoteCopy := models.Task{ID: "task-7", Title: "Remote", Status: models.StatusToDo, CreatedDate: base, UpdatedDate: base.Add(time.Hour)}
	g := &fakeRemoteGit{
		branches: []string{"origin/main"},
		files: map[string][]remoteFile{
			"origin/main": {{path: testTasksDir + "/task-7 - Remote.md", content: serialized(t, remoteCopy), mod: base.Add(time.Hour)}},
		},
	}
	local := []models.Task{localTask("task-007", models.StatusToDo, base, base)}

	got := NewRemoteLoader(g, RemoteOptions{Enabled: true, TasksDir: testTasksDir}).Load(context.Background(), local)

	require.Len(t, got, 1)
	assert.Equal(t, "Remote", got[0].Title)
}

func TestRemoteLoader_FetchFailureStillLoads(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	remoteCopy := models.Task{ID: "task-3", Title: "Cached ref", Status: models.StatusToDo, CreatedDate: base}
	g := &fakeRemoteGit{
		fetchErr: errors.New("network unreachable"),
		branches: []string{"origin/main"},
		files: map[string][]remoteFile{
			"origin/main": {{path: testTasksDir + "/task-3 - Cached-ref.md", content: serialized(t, remoteCopy), mod: base}},
		},
	}

	got := NewRemoteLoader(g, RemoteOptions{Enabled: true, TasksDir: testTasksDir}).Load(context.Background(), nil)

	require.Len(t, got, 1)
	assert.Equal(t, "task-3", got[0].ID)
}

func TestRemoteLoader_UnparseableRemoteSkipped(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	g := &fakeRemoteGit{
		branches: []string{"origin/main"},
		files: map[string][]remoteFile{
			"origin/main": {{path: testTasksDir + "/task-4 - Broken.md", content: "no frontmatter here", mod: base}},
		},
	}
	local := []models.Task{localTask("task-1", models.StatusToDo, base, base)}

	got := NewRemoteLoader(g, RemoteOptions{Enabled: true, TasksDir: testTasksDir}).Load(context.Background(), local)

	assert.Equal(t, local, got)
}

func TestRemoteLoader_ActiveBranchesAndConfiguredExtras(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	g := &fakeRemoteGit{
		branches: []string{"origin/stale"},
		recent:   []string{"origin/fresh"},
	}
	l := NewRemoteLoader(g, RemoteOptions{
		Enabled: true, ActiveOnly: true, ActiveDays: 7, Branches: []string{"release"},
	})
	l.now = func() time.Time { return now }

	branches := l.Branches(context.Background())

	assert.Equal(t, []string{"origin/fresh", "release"}, branches)
	assert.True(t, now.AddDate(0, 0, -7).Equal(g.since))
}

func TestResolveConflict(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	older := models.Task{ID: "task-1", Title: "older", Status: models.StatusDone, CreatedDate: base}
	newer := models.Task{ID: "task-1", Title: "newer", Status: models.StatusToDo, CreatedDate: base, UpdatedDate: base.Add(time.Hour)}

	tests := []struct {
		name     string
		existing models.Task
		incoming models.Task
		strategy ResolutionStrategy
		want     string
	}{
		{"most recent picks later update", older, newer, MostRecent, "newer"},
		{"most recent keeps existing when newer", newer, older, MostRecent, "newer"},
		{"most progressed picks later status", newer, older, MostProgressed, "older"},
		{"most progressed tie falls back to recency", older, older, MostProgressed, "older"},
		{"ties keep existing", newer, newer, MostRecent, "newer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveConflict(tt.existing, tt.incoming, models.DefaultStatuses, tt.strategy)
			assert.Equal(t, tt.want, got.Title)
		})
	}
}

func TestResolveConflict_UnknownStatusRanksLowest(t *testing.T) {
	a := models.Task{Title: "custom", Status: "Blocked"}
	b := models.Task{Title: "todo", Status: models.StatusToDo}
	assert.Equal(t, "todo", ResolveConflict(a, b, models.DefaultStatuses, MostProgressed).Title)
}

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, MostProgressed, ParseStrategy(" Most_Progressed "))
	assert.Equal(t, MostRecent, ParseStrategy("most_recent"))
	assert.Equal(t, MostRecent, ParseStrategy(""))
	assert.Equal(t, MostRecent, ParseStrategy("bogus"))
}
