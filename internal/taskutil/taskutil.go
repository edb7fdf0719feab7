package taskutil

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/backlog/models"
)

// NormalizePriority maps common inputs and typos to canonical priorities.
// Returns one of: high, medium, low. Empty input stays empty.
func NormalizePriority(input string) (models.TaskPriority, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "":
		return "", nil
	case "high", "hi", "h", "p1", "p0", "urgent", "critical", "important":
		return models.PriorityHigh, nil
	case "medium", "med", "m", "p2", "normal", "regular":
		return models.PriorityMedium, nil
	case "low", "lo", "l", "p3", "p4", "minor":
		return models.PriorityLow, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q (allowed: high, medium, low)", models.ErrValidation, input)
}

// PriorityRank orders priorities for sorting (higher = more urgent).
func PriorityRank(p models.TaskPriority) int {
	switch p {
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 1
	default:
		return 0
	}
}
