package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/models"
)

// ToolResult is the response of a tool handler. Error is set for failures
// the caller should see and correct.
type ToolResult struct {
	Action  string `json:"action"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// HandleTaskTool is the unified handler for task operations. It routes on
// the action parameter.
func HandleTaskTool(ctx context.Context, svc *task.Service, params TaskToolParams) (*ToolResult, error) {
	if !params.Action.IsValid() {
		return &ToolResult{
			Action: string(params.Action),
			Error:  fmt.Sprintf("invalid action %q, must be one of: list, view, create, edit, archive, complete", params.Action),
		}, nil
	}

	switch params.Action {
	case TaskActionList:
		return handleTaskList(ctx, svc, params)
	case TaskActionCreate:
		return handleTaskCreate(ctx, svc, params)
	}

	action := string(params.Action)
	taskID := strings.TrimSpace(params.TaskID)
	if taskID == "" {
		return &ToolResult{
			Action:  action,
			Error:   fmt.Sprintf("task_id is required for %s action", action),
			Content: FormatValidationError("task_id", "task_id is required"),
		}, nil
	}

	var (
		t   models.Task
		err error
	)
	switch params.Action {
	case TaskActionView:
		t, err = svc.GetTask(ctx, taskID)
	case TaskActionEdit:
		e := editFromParams(params)
		if e.Empty() {
			return &ToolResult{Action: action, Error: "edit requires at least one field to change"}, nil
		}
		t, err = svc.EditTask(ctx, taskID, e)
	case TaskActionArchive:
		t, err = svc.ArchiveTask(ctx, taskID)
	case TaskActionComplete:
		t, err = svc.CompleteTask(ctx, taskID)
	}
	if err != nil {
		return &ToolResult{Action: action, Error: err.Error()}, nil
	}
	return &ToolResult{Action: action, Content: FormatTask(t, svc.Statuses())}, nil
}

func handleTaskList(ctx context.Context, svc *task.Service, params TaskToolParams) (*ToolResult, error) {
	tasks, err := svc.ListTasks(ctx, task.Filter{
		Status:   params.Status,
		Assignee: params.Assignee,
		Label:    params.Label,
		Priority: params.Priority,
		Parent:   params.Parent,
	})
	if err != nil {
		return nil, err
	}
	return &ToolResult{Action: "list", Content: FormatTaskList(tasks, svc.Statuses())}, nil
}

func handleTaskCreate(ctx context.Context, svc *task.Service, params TaskToolParams) (*ToolResult, error) {
	if strings.TrimSpace(params.Title) == "" {
		return &ToolResult{
			Action:  "create",
			Error:   "title is required for create action",
			Content: FormatValidationError("title", "title is required"),
		}, nil
	}
	t, err := svc.CreateTask(ctx, task.CreateInput{
		Title:        params.Title,
		Description:  params.Description,
		Status:       params.Status,
		Priority:     params.Priority,
		Assignees:    params.Assignees,
		Labels:       params.Labels,
		Dependencies: params.Dependencies,
		Parent:       params.Parent,
		Criteria:     params.Criteria,
		Plan:         params.Plan,
		Notes:        params.Notes,
	})
	if err != nil {
		return &ToolResult{Action: "create", Error: err.Error()}, nil
	}
	return &ToolResult{Action: "create", Content: FormatTask(t, svc.Statuses())}, nil
}

func editFromParams(p TaskToolParams) task.Edit {
	e := task.Edit{
		Assignees:       p.Assignees,
		AddLabels:       p.Labels,
		AddDependencies: p.Dependencies,
		AddCriteria:     p.Criteria,
		CheckCriteria:   p.CheckCriteria,
		UncheckCriteria: p.UncheckCriteria,
		RemoveCriteria:  p.RemoveCriteria,
	}
	setIf := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	setIf(&e.Title, p.Title)
	setIf(&e.Status, p.Status)
	setIf(&e.Priority, p.Priority)
	setIf(&e.Description, p.Description)
	setIf(&e.Plan, p.Plan)
	if p.Notes != "" {
		e.AppendNotes = []string{p.Notes}
	}
	return e
}

// HandleSequenceTool returns the dependency levels of the task set.
func HandleSequenceTool(ctx context.Context, svc *task.Service, params SequenceToolParams) (*ToolResult, error) {
	seqs, err := svc.Sequences(ctx, params.All)
	if err != nil {
		return nil, err
	}
	tasks, err := svc.ListTasks(ctx, task.Filter{})
	if err != nil {
		return nil, err
	}
	return &ToolResult{Action: "sequence", Content: FormatSequences(seqs, tasks)}, nil
}
