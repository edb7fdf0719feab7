// Package mcp provides types and handlers for the MCP server.
package mcp

// TaskAction defines the valid actions for the unified task tool.
type TaskAction string

const (
	TaskActionList     TaskAction = "list"
	TaskActionView     TaskAction = "view"
	TaskActionCreate   TaskAction = "create"
	TaskActionEdit     TaskAction = "edit"
	TaskActionArchive  TaskAction = "archive"
	TaskActionComplete TaskAction = "complete"
)

// ValidTaskActions returns all valid task actions.
func ValidTaskActions() []TaskAction {
	return []TaskAction{TaskActionList, TaskActionView, TaskActionCreate, TaskActionEdit, TaskActionArchive, TaskActionComplete}
}

// IsValid checks if the action is a valid task action.
func (a TaskAction) IsValid() bool {
	switch a {
	case TaskActionList, TaskActionView, TaskActionCreate, TaskActionEdit, TaskActionArchive, TaskActionComplete:
		return true
	}
	return false
}

// TaskToolParams defines the parameters for the unified task tool.
type TaskToolParams struct {
	// Action specifies which operation to perform.
	// Required. One of: list, view, create, edit, archive, complete
	Action TaskAction `json:"action"`

	// TaskID is the task identifier ("task-7", "7" or a unique prefix).
	// Required for: view, edit, archive, complete
	TaskID string `json:"task_id,omitempty"`

	// Status filters list, sets the status on create and edit.
	Status string `json:"status,omitempty"`

	// Assignee filters list.
	Assignee string `json:"assignee,omitempty"`

	// Label filters list.
	Label string `json:"label,omitempty"`

	// Priority filters list, sets the priority on create and edit.
	// One of: high, medium, low
	Priority string `json:"priority,omitempty"`

	// Parent filters list, makes the created task a subtask.
	Parent string `json:"parent,omitempty"`

	// Title is required for create, renames on edit.
	Title string `json:"title,omitempty"`

	// Description replaces the Description section.
	Description string `json:"description,omitempty"`

	Assignees    []string `json:"assignees,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`

	// Criteria are appended as unchecked acceptance criteria.
	Criteria []string `json:"criteria,omitempty"`

	// CheckCriteria, UncheckCriteria and RemoveCriteria take 1-based
	// indices as shown by view. Optional for: edit
	CheckCriteria   []int `json:"check_criteria,omitempty"`
	UncheckCriteria []int `json:"uncheck_criteria,omitempty"`
	RemoveCriteria  []int `json:"remove_criteria,omitempty"`

	// Plan replaces the Implementation Plan section.
	Plan string `json:"plan,omitempty"`

	// Notes is appended to the Implementation Notes section.
	Notes string `json:"notes,omitempty"`
}

// SequenceToolParams defines the parameters for the sequence tool.
type SequenceToolParams struct {
	// All includes tasks in the done status.
	All bool `json:"all,omitempty"`
}
