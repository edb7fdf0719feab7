package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/josephgoksu/backlog/internal/section"
	"github.com/josephgoksu/backlog/internal/taskutil"
	"github.com/josephgoksu/backlog/internal/util"
	"github.com/josephgoksu/backlog/models"
)

// Edit is a batch of changes applied to one task in a single write. Nil
// pointers and empty slices leave the field untouched.
//
// Criteria indices all refer to the numbering before the edit: checks run
// first, then removals (highest index first), then additions.
type Edit struct {
	Title        *string
	Status       *string
	Priority     *string
	Assignees    []string
	Labels       []string
	AddLabels    []string
	RemoveLabels []string
	Milestone    *string
	Ordinal      *int

	AddDependencies    []string
	RemoveDependencies []string

	Description *string
	Plan        *string
	Notes       *string
	AppendNotes []string

	AddCriteria     []string
	RemoveCriteria  []int
	CheckCriteria   []int
	UncheckCriteria []int
}

// Empty reports whether the edit changes nothing.
func (e Edit) Empty() bool {
	return e.Title == nil && e.Status == nil && e.Priority == nil &&
		e.Assignees == nil && e.Labels == nil && len(e.AddLabels) == 0 && len(e.RemoveLabels) == 0 &&
		e.Milestone == nil && e.Ordinal == nil &&
		len(e.AddDependencies) == 0 && len(e.RemoveDependencies) == 0 &&
		e.Description == nil && e.Plan == nil && e.Notes == nil && len(e.AppendNotes) == 0 &&
		len(e.AddCriteria) == 0 && len(e.RemoveCriteria) == 0 &&
		len(e.CheckCriteria) == 0 && len(e.UncheckCriteria) == 0
}

// EditTask applies e to the local task id. A failing step (unknown
// status, missing criterion) aborts the whole edit without writing.
func (s *Service) EditTask(ctx context.Context, id string, e Edit) (models.Task, error) {
	var status string
	if e.Status != nil {
		canonical, ok := models.CanonicalStatus(*e.Status, s.opts.Statuses)
		if !ok {
			return models.Task{}, fmt.Errorf("%w: %q (allowed: %s)", models.ErrInvalidStatus, *e.Status, strings.Join(s.opts.Statuses, ", "))
		}
		status = canonical
	}
	var priority models.TaskPriority
	if e.Priority != nil {
		var err error
		if priority, err = taskutil.NormalizePriority(*e.Priority); err != nil {
			return models.Task{}, err
		}
	}

	resolved, local, err := s.resolveLocal(id)
	if err != nil {
		return models.Task{}, err
	}
	ids := taskIDs(local)
	addDeps := make([]string, len(e.AddDependencies))
	for i, dep := range e.AddDependencies {
		addDeps[i] = util.MatchTaskID(ids, dep)
		warnCycle(local, resolved, addDeps[i])
	}

	return s.UpdateTask(ctx, resolved, func(t *models.Task) error {
		if e.Title != nil {
			title := strings.TrimSpace(*e.Title)
			if title == "" {
				return fmt.Errorf("%w: title is required", models.ErrValidation)
			}
			t.Title = title
		}
		if e.Status != nil {
			t.Status = status
		}
		if e.Priority != nil {
			t.Priority = priority
		}
		if e.Assignees != nil {
			t.Assignees = cleanList(e.Assignees)
		}
		if e.Labels != nil {
			t.Labels = cleanList(e.Labels)
		}
		for _, l := range e.AddLabels {
			if !t.HasLabel(l) {
				t.Labels = append(t.Labels, strings.TrimSpace(l))
			}
		}
		if len(e.RemoveLabels) > 0 {
			t.Labels = removeFold(t.Labels, e.RemoveLabels)
		}
		if e.Milestone != nil {
			t.Milestone = strings.TrimSpace(*e.Milestone)
		}
		if e.Ordinal != nil {
			ord := *e.Ordinal
			t.Ordinal = &ord
		}

		for _, dep := range addDeps {
			t.Dependencies = appendUnique(t.Dependencies, dep)
		}
		for _, dep := range e.RemoveDependencies {
			dep = util.NormalizeTaskID(dep)
			kept := t.Dependencies[:0]
			for _, d := range t.Dependencies {
				if !util.SameTaskID(d, dep) {
					kept = append(kept, d)
				}
			}
			t.Dependencies = kept
		}

		if e.Description != nil {
			t.Body = section.Set(t.Body, section.Description, *e.Description)
		}
		if e.Plan != nil {
			t.Body = section.Set(t.Body, section.ImplementationPlan, *e.Plan)
		}
		if e.Notes != nil {
			t.Body = section.Set(t.Body, section.ImplementationNotes, *e.Notes)
		}
		for _, n := range e.AppendNotes {
			t.Body = section.Append(t.Body, section.ImplementationNotes, n)
		}

		return applyCriteria(t, e)
	})
}

func applyCriteria(t *models.Task, e Edit) error {
	for _, idx := range e.CheckCriteria {
		body, err := section.CheckCriterion(t.Body, idx, true)
		if err != nil {
			return err
		}
		t.Body = body
	}
	for _, idx := range e.UncheckCriteria {
		body, err := section.CheckCriterion(t.Body, idx, false)
		if err != nil {
			return err
		}
		t.Body = body
	}
	for _, idx := range uniqueDescending(e.RemoveCriteria) {
		body, err := section.RemoveCriterion(t.Body, idx)
		if err != nil {
			return err
		}
		t.Body = body
	}
	if len(e.AddCriteria) > 0 {
		t.Body = section.AddCriteria(t.Body, e.AddCriteria...)
	}
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = appendUnique(out, it)
		}
	}
	return out
}

func removeFold(list, drop []string) []string {
	out := list[:0]
	for _, item := range list {
		keep := true
		for _, d := range drop {
			if strings.EqualFold(item, strings.TrimSpace(d)) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}
