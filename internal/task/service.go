package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/josephgoksu/backlog/internal/git"
	"github.com/josephgoksu/backlog/internal/section"
	"github.com/josephgoksu/backlog/internal/taskutil"
	"github.com/josephgoksu/backlog/internal/util"
	"github.com/josephgoksu/backlog/models"
	"github.com/josephgoksu/backlog/store"
)

// Committer records changed files in version control.
type Committer interface {
	CommitChange(ctx context.Context, message string, paths ...string) error
}

// Options configures a Service.
type Options struct {
	Statuses      []string
	DefaultStatus string
	AutoCommit    bool
}

// Service encapsulates the task operations. Every mutation is a single
// read-modify-write of one task file; concurrent writers are not
// coordinated and the last write wins.
type Service struct {
	store     store.TaskStore
	remote    *RemoteLoader
	committer Committer
	opts      Options
	now       func() time.Time
}

// NewService creates a task service over st.
func NewService(st store.TaskStore, opts Options) *Service {
	if len(opts.Statuses) == 0 {
		opts.Statuses = models.DefaultStatuses
	}
	if opts.DefaultStatus == "" {
		opts.DefaultStatus = opts.Statuses[0]
	}
	return &Service{
		store: st,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetRemoteLoader enables merging of remote branch copies into reads.
// A nil loader restricts reads to the working copy.
func (s *Service) SetRemoteLoader(l *RemoteLoader) { s.remote = l }

// SetCommitter sets the committer used when auto-commit is on.
func (s *Service) SetCommitter(c Committer) { s.committer = c }

// Statuses returns the configured status list.
func (s *Service) Statuses() []string { return s.opts.Statuses }

// DoneStatus is the last configured status.
func (s *Service) DoneStatus() string { return s.opts.Statuses[len(s.opts.Statuses)-1] }

// Filter narrows ListTasks. Empty fields match everything.
type Filter struct {
	Status   string
	Assignee string
	Label    string
	Priority string
	Parent   string
}

func (f Filter) match(t models.Task) bool {
	if f.Status != "" && !strings.EqualFold(t.Status, f.Status) {
		return false
	}
	if f.Priority != "" && !strings.EqualFold(string(t.Priority), f.Priority) {
		return false
	}
	if f.Label != "" && !t.HasLabel(f.Label) {
		return false
	}
	if f.Parent != "" && !util.SameTaskID(t.ParentTaskID, util.NormalizeTaskID(f.Parent)) {
		return false
	}
	if f.Assignee != "" {
		found := false
		for _, a := range t.Assignees {
			if strings.EqualFold(strings.TrimPrefix(a, "@"), strings.TrimPrefix(f.Assignee, "@")) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ListTasks returns local tasks merged with remote copies (when a remote
// loader is set) that match f, ordered by id.
func (s *Service) ListTasks(ctx context.Context, f Filter) ([]models.Task, error) {
	tasks, err := s.allTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) allTasks(ctx context.Context) ([]models.Task, error) {
	local, err := s.store.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if s.remote == nil {
		return local, nil
	}
	return s.remote.Load(ctx, local), nil
}

// resolveLocal maps an id or unique id prefix to a local task id.
func (s *Service) resolveLocal(idOrPrefix string) (string, []models.Task, error) {
	local, err := s.store.ListTasks()
	if err != nil {
		return "", nil, fmt.Errorf("list tasks: %w", err)
	}
	resolved, err := util.ResolveTaskID(taskIDs(local), idOrPrefix)
	if errors.Is(err, util.ErrNotFound) {
		return "", local, fmt.Errorf("%s: %w", idOrPrefix, store.ErrTaskNotFound)
	}
	return resolved, local, err
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

// GetTask returns the task with the given id or unique prefix. Tasks that
// only exist on remote branches are found when a remote loader is set.
func (s *Service) GetTask(ctx context.Context, id string) (models.Task, error) {
	resolved, local, err := s.resolveLocal(id)
	if err == nil {
		return s.store.GetTask(resolved)
	}
	if !errors.Is(err, store.ErrTaskNotFound) || s.remote == nil {
		return models.Task{}, err
	}

	merged := s.remote.Load(ctx, local)
	resolved, rerr := util.ResolveTaskID(taskIDs(merged), id)
	if rerr != nil {
		if errors.Is(rerr, util.ErrNotFound) {
			return models.Task{}, err
		}
		return models.Task{}, rerr
	}
	pos, _ := findTask(merged, resolved)
	return merged[pos], nil
}

// CreateInput holds the fields of a new task.
type CreateInput struct {
	Title        string
	Description  string
	Status       string
	Priority     string
	Assignees    []string
	Reporter     string
	Labels       []string
	Milestone    string
	Dependencies []string
	Parent       string
	Criteria     []string
	Plan         string
	Notes        string
}

// CreateTask writes a new task. With a parent the id is the next free
// sub-id of the parent (task-4.1, task-4.2, ...).
func (s *Service) CreateTask(ctx context.Context, in CreateInput) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", models.ErrValidation)
	}

	status := s.opts.DefaultStatus
	if in.Status != "" {
		canonical, ok := models.CanonicalStatus(in.Status, s.opts.Statuses)
		if !ok {
			return models.Task{}, fmt.Errorf("%w: %q", models.ErrInvalidStatus, in.Status)
		}
		status = canonical
	}
	priority, err := taskutil.NormalizePriority(in.Priority)
	if err != nil {
		return models.Task{}, err
	}

	local, err := s.store.ListTasks()
	if err != nil {
		return models.Task{}, fmt.Errorf("list tasks: %w", err)
	}

	var id, parent string
	if in.Parent != "" {
		parent, err = util.ResolveTaskID(taskIDs(local), in.Parent)
		if err != nil {
			return models.Task{}, fmt.Errorf("parent %s: %w", in.Parent, err)
		}
		id = nextSubtaskID(parent, taskIDs(local))
	} else {
		id, err = s.store.NextTaskID()
		if err != nil {
			return models.Task{}, fmt.Errorf("allocate id: %w", err)
		}
	}

	t := models.NewTask(id, title)
	t.Status = status
	t.CreatedDate = s.now()
	t.Priority = priority
	t.Assignees = in.Assignees
	t.Reporter = in.Reporter
	t.Labels = in.Labels
	t.Milestone = in.Milestone
	t.ParentTaskID = parent
	for _, d := range in.Dependencies {
		t.Dependencies = appendUnique(t.Dependencies, util.MatchTaskID(taskIDs(local), d))
	}

	if in.Description != "" {
		t.Body = section.Set(t.Body, section.Description, in.Description)
	}
	if len(in.Criteria) > 0 {
		t.Body = section.AddCriteria(t.Body, in.Criteria...)
	}
	if in.Plan != "" {
		t.Body = section.Set(t.Body, section.ImplementationPlan, in.Plan)
	}
	if in.Notes != "" {
		t.Body = section.Set(t.Body, section.ImplementationNotes, in.Notes)
	}
	t.RefreshDerived()

	if err := t.Validate(s.opts.Statuses); err != nil {
		return models.Task{}, err
	}
	for _, d := range t.Dependencies {
		warnCycle(append(local, *t), t.ID, d)
	}

	path, err := s.store.SaveTask(t)
	if err != nil {
		return models.Task{}, err
	}
	slog.Debug("task created", "id", t.ID, "path", path)
	s.commit(ctx, git.ActionCreate, *t, path)
	return *t, nil
}

// nextSubtaskID returns parent.<n+1> where n is the highest existing
// direct child number.
func nextSubtaskID(parent string, ids []string) string {
	highest := 0
	prefix := strings.ToLower(parent) + "."
	for _, id := range ids {
		rest, ok := strings.CutPrefix(strings.ToLower(id), prefix)
		if !ok || strings.Contains(rest, ".") {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(rest, "%d", &n); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s.%d", parent, highest+1)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if util.SameTaskID(x, v) {
			return list
		}
	}
	return append(list, v)
}

// UpdateTask loads the local task, applies fn, stamps the update date and
// writes it back. fn errors abort without writing.
func (s *Service) UpdateTask(ctx context.Context, id string, fn func(*models.Task) error) (models.Task, error) {
	resolved, _, err := s.resolveLocal(id)
	if err != nil {
		return models.Task{}, err
	}
	t, err := s.store.GetTask(resolved)
	if err != nil {
		return models.Task{}, err
	}
	oldPath := t.FilePath

	if err := fn(&t); err != nil {
		return models.Task{}, err
	}
	t.UpdatedDate = s.now()
	t.RefreshDerived()
	if err := t.Validate(s.opts.Statuses); err != nil {
		return models.Task{}, err
	}

	path, err := s.store.SaveTask(&t)
	if err != nil {
		return models.Task{}, err
	}
	paths := []string{path}
	if oldPath != "" && oldPath != path {
		paths = append(paths, oldPath)
	}
	s.commit(ctx, git.ActionUpdate, t, paths...)
	return t, nil
}

// AddCriteria appends unchecked acceptance criteria.
func (s *Service) AddCriteria(ctx context.Context, id string, texts ...string) (models.Task, error) {
	return s.UpdateTask(ctx, id, func(t *models.Task) error {
		t.Body = section.AddCriteria(t.Body, texts...)
		return nil
	})
}

// RemoveCriteria removes criteria by their 1-based indices. Indices refer
// to the numbering before the call; removal runs from the highest index
// down so earlier removals do not shift later ones.
func (s *Service) RemoveCriteria(ctx context.Context, id string, indices ...int) (models.Task, error) {
	ordered := uniqueDescending(indices)
	return s.UpdateTask(ctx, id, func(t *models.Task) error {
		for _, idx := range ordered {
			body, err := section.RemoveCriterion(t.Body, idx)
			if err != nil {
				return err
			}
			t.Body = body
		}
		return nil
	})
}

// CheckCriteria sets the checked state of the criteria at indices.
func (s *Service) CheckCriteria(ctx context.Context, id string, checked bool, indices ...int) (models.Task, error) {
	return s.UpdateTask(ctx, id, func(t *models.Task) error {
		for _, idx := range indices {
			body, err := section.CheckCriterion(t.Body, idx, checked)
			if err != nil {
				return err
			}
			t.Body = body
		}
		return nil
	})
}

func uniqueDescending(indices []int) []int {
	seen := make(map[int]bool, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// SetSection replaces the content of a body section, creating it if absent.
func (s *Service) SetSection(ctx context.Context, id string, title section.Title, content string) (models.Task, error) {
	return s.UpdateTask(ctx, id, func(t *models.Task) error {
		t.Body = section.Set(t.Body, title, content)
		return nil
	})
}

// AppendNotes adds text to the Implementation Notes section.
func (s *Service) AppendNotes(ctx context.Context, id, text string) (models.Task, error) {
	return s.UpdateTask(ctx, id, func(t *models.Task) error {
		t.Body = section.Append(t.Body, section.ImplementationNotes, text)
		return nil
	})
}

// SetStatus moves the task to one of the configured statuses.
func (s *Service) SetStatus(ctx context.Context, id, status string) (models.Task, error) {
	canonical, ok := models.CanonicalStatus(status, s.opts.Statuses)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %q (allowed: %s)", models.ErrInvalidStatus, status, strings.Join(s.opts.Statuses, ", "))
	}
	return s.UpdateTask(ctx, id, func(t *models.Task) error {
		t.Status = canonical
		return nil
	})
}

// AddDependency records that id depends on dep. An edge that closes a
// cycle is still recorded and logged as a warning.
func (s *Service) AddDependency(ctx context.Context, id, dep string) (models.Task, error) {
	resolved, local, err := s.resolveLocal(id)
	if err != nil {
		return models.Task{}, err
	}
	dep = util.MatchTaskID(taskIDs(local), dep)
	warnCycle(local, resolved, dep)
	return s.UpdateTask(ctx, resolved, func(t *models.Task) error {
		t.Dependencies = appendUnique(t.Dependencies, dep)
		return nil
	})
}

// RemoveDependency drops dep from the dependencies of id.
func (s *Service) RemoveDependency(ctx context.Context, id, dep string) (models.Task, error) {
	dep = util.NormalizeTaskID(dep)
	return s.UpdateTask(ctx, id, func(t *models.Task) error {
		kept := t.Dependencies[:0]
		for _, d := range t.Dependencies {
			if !util.SameTaskID(d, dep) {
				kept = append(kept, d)
			}
		}
		t.Dependencies = kept
		return nil
	})
}

func warnCycle(tasks []models.Task, id, dep string) {
	if err := WouldCycle(tasks, id, dep); err != nil {
		slog.Warn("dependency closes a cycle", "task", id, "dependency", dep, "error", err)
	}
}

// ArchiveTask moves the task out of the active set.
func (s *Service) ArchiveTask(ctx context.Context, id string) (models.Task, error) {
	return s.move(ctx, id, git.ActionArchive, s.store.ArchiveTask)
}

// CompleteTask moves a finished task into the completed directory.
func (s *Service) CompleteTask(ctx context.Context, id string) (models.Task, error) {
	return s.move(ctx, id, git.ActionComplete, s.store.CompleteTask)
}

func (s *Service) move(ctx context.Context, id, action string, fn func(string) (models.Task, error)) (models.Task, error) {
	resolved, local, err := s.resolveLocal(id)
	if err != nil {
		return models.Task{}, err
	}
	pos, _ := findTask(local, resolved)
	oldPath := local[pos].FilePath

	t, err := fn(resolved)
	if err != nil {
		return models.Task{}, err
	}
	s.commit(ctx, action, t, oldPath, t.FilePath)
	return t, nil
}

// Sequences levels the task set by dependencies. Unless all is set, tasks
// in the done status are left out.
func (s *Service) Sequences(ctx context.Context, all bool) ([]Sequence, error) {
	tasks, err := s.allTasks(ctx)
	if err != nil {
		return nil, err
	}
	if !all {
		tasks = FilterActive(tasks, s.DoneStatus())
	}
	return BuildSequences(tasks), nil
}

func (s *Service) commit(ctx context.Context, action string, t models.Task, paths ...string) {
	if !s.opts.AutoCommit || s.committer == nil {
		return
	}
	if err := s.committer.CommitChange(ctx, git.CommitMessage(action, t.ID, t.Title), paths...); err != nil {
		slog.Warn("auto-commit failed", "id", t.ID, "error", err)
	}
}
