package server

import (
	"github.com/josephgoksu/backlog/internal/task"
)

// Info is returned by /api/info.
type Info struct {
	ProjectName string   `json:"projectName"`
	Statuses    []string `json:"statuses"`
	DoneStatus  string   `json:"doneStatus"`
	Version     string   `json:"version"`
}

// CreateTaskRequest is the payload for POST /api/tasks
type CreateTaskRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Assignees    []string `json:"assignees,omitempty"`
	Reporter     string   `json:"reporter,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	Milestone    string   `json:"milestone,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Parent       string   `json:"parent,omitempty"`
	Criteria     []string `json:"criteria,omitempty"`
	Plan         string   `json:"plan,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

func (r CreateTaskRequest) input() task.CreateInput {
	return task.CreateInput{
		Title:        r.Title,
		Description:  r.Description,
		Status:       r.Status,
		Priority:     r.Priority,
		Assignees:    r.Assignees,
		Reporter:     r.Reporter,
		Labels:       r.Labels,
		Milestone:    r.Milestone,
		Dependencies: r.Dependencies,
		Parent:       r.Parent,
		Criteria:     r.Criteria,
		Plan:         r.Plan,
		Notes:        r.Notes,
	}
}

// EditTaskRequest is the payload for PATCH /api/tasks/{id}. Absent fields
// are left unchanged; criteria indices use the numbering before the edit.
type EditTaskRequest struct {
	Title        *string  `json:"title,omitempty"`
	Status       *string  `json:"status,omitempty"`
	Priority     *string  `json:"priority,omitempty"`
	Assignees    []string `json:"assignees,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	AddLabels    []string `json:"addLabels,omitempty"`
	RemoveLabels []string `json:"removeLabels,omitempty"`
	Milestone    *string  `json:"milestone,omitempty"`
	Ordinal      *int     `json:"ordinal,omitempty"`

	AddDependencies    []string `json:"addDependencies,omitempty"`
	RemoveDependencies []string `json:"removeDependencies,omitempty"`

	Description *string  `json:"description,omitempty"`
	Plan        *string  `json:"plan,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	AppendNotes []string `json:"appendNotes,omitempty"`

	AddCriteria     []string `json:"addCriteria,omitempty"`
	CheckCriteria   []int    `json:"checkCriteria,omitempty"`
	UncheckCriteria []int    `json:"uncheckCriteria,omitempty"`
	RemoveCriteria  []int    `json:"removeCriteria,omitempty"`
}

func (r EditTaskRequest) edit() task.Edit {
	return task.Edit{
		Title:              r.Title,
		Status:             r.Status,
		Priority:           r.Priority,
		Assignees:          r.Assignees,
		Labels:             r.Labels,
		AddLabels:          r.AddLabels,
		RemoveLabels:       r.RemoveLabels,
		Milestone:          r.Milestone,
		Ordinal:            r.Ordinal,
		AddDependencies:    r.AddDependencies,
		RemoveDependencies: r.RemoveDependencies,
		Description:        r.Description,
		Plan:               r.Plan,
		Notes:              r.Notes,
		AppendNotes:        r.AppendNotes,
		AddCriteria:        r.AddCriteria,
		CheckCriteria:      r.CheckCriteria,
		UncheckCriteria:    r.UncheckCriteria,
		RemoveCriteria:     r.RemoveCriteria,
	}
}

// SequencesResponse is the response for /api/sequences
type SequencesResponse struct {
	Sequences []task.Sequence `json:"sequences"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
