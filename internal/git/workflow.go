package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Change actions recorded in auto-commit messages.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionArchive  = "archive"
	ActionComplete = "complete"
)

// CommitMessage builds the message used when auto_commit is enabled.
//
//	CommitMessage("create", "task-3", "Fix login") → "backlog: create task-3 Fix login"
func CommitMessage(action, id, title string) string {
	msg := fmt.Sprintf("backlog: %s %s", action, id)
	if title = strings.TrimSpace(title); title != "" {
		msg += " " + title
	}
	return msg
}

// IsDirty checks if the working directory has uncommitted changes.
func (c *Client) IsDirty(ctx context.Context) (bool, error) {
	output, err := c.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("check dirty state: %w", err)
	}
	return output != "", nil
}

// CommitChange stages paths and commits them. Having nothing to commit is
// not an error.
func (c *Client) CommitChange(ctx context.Context, message string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := c.Add(ctx, paths...); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}

	dirty, err := c.IsDirty(ctx)
	if err != nil {
		return fmt.Errorf("check staged changes: %w", err)
	}
	if !dirty {
		return nil
	}

	if err := c.Commit(ctx, message); err != nil {
		if errors.Is(err, ErrNothingToCommit) {
			return nil
		}
		return err
	}
	return nil
}
