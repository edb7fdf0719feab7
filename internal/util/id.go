// Package util provides shared identifier helpers.
package util

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Identifier prefixes for backlog records.
const (
	TaskPrefix     = "task-"
	DocPrefix      = "doc-"
	DecisionPrefix = "decision-"

	// MaxAmbiguousCandidates is the max number of candidates to show in ambiguous error.
	MaxAmbiguousCandidates = 5
)

// Errors returned by ID resolution functions.
var (
	ErrAmbiguousID = errors.New("ambiguous ID prefix")
	ErrNotFound    = errors.New("not found")
)

var leadingTaskID = regexp.MustCompile(`(?i)^task-(\d+(?:\.\d+)*)`)

// TaskIDFromFilename extracts the leading task-<n> token of a file name.
// Directory components are ignored and the result is lower-cased.
//
//	TaskIDFromFilename("backlog/tasks/task-12 - Fix login.md") → "task-12", true
//	TaskIDFromFilename("README.md") → "", false
func TaskIDFromFilename(name string) (string, bool) {
	m := leadingTaskID.FindStringSubmatch(path.Base(name))
	if m == nil {
		return "", false
	}
	return TaskPrefix + m[1], true
}

// NormalizeTaskID accepts "7", "task-7" or "TASK-7" and returns "task-7".
func NormalizeTaskID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}
	if len(id) >= len(TaskPrefix) && strings.EqualFold(id[:len(TaskPrefix)], TaskPrefix) {
		return TaskPrefix + id[len(TaskPrefix):]
	}
	return TaskPrefix + id
}

// numericParts splits "task-1.10" into [1 10]. ok is false when any segment
// is not a number.
func numericParts(id, prefix string) ([]int, bool) {
	rest := strings.TrimPrefix(strings.ToLower(id), prefix)
	if rest == "" {
		return nil, false
	}
	segs := strings.Split(rest, ".")
	parts := make([]int, 0, len(segs))
	for _, s := range segs {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		parts = append(parts, n)
	}
	return parts, true
}

// CompareTaskIDs orders ids naturally: task-2 < task-10 < task-10.1.
// Ids that do not parse are ordered lexically after the ones that do.
func CompareTaskIDs(a, b string) int {
	pa, okA := numericParts(a, TaskPrefix)
	pb, okB := numericParts(b, TaskPrefix)
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case !okA && !okB:
		return strings.Compare(a, b)
	}
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return strings.Compare(a, b)
}

// SameTaskID reports whether two ids name the same task, ignoring case and
// zero padding (task-007 == task-7).
func SameTaskID(a, b string) bool {
	pa, okA := numericParts(a, TaskPrefix)
	pb, okB := numericParts(b, TaskPrefix)
	if !okA || !okB {
		return strings.EqualFold(a, b)
	}
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}

// CanonicalTaskID returns the identity SameTaskID compares by: lower case
// without zero padding ("TASK-007.02" -> "task-7.2"). Ids that do not parse
// are only lower-cased.
func CanonicalTaskID(id string) string {
	parts, ok := numericParts(strings.TrimSpace(id), TaskPrefix)
	if !ok {
		return strings.ToLower(strings.TrimSpace(id))
	}
	segs := make([]string, len(parts))
	for i, n := range parts {
		segs[i] = strconv.Itoa(n)
	}
	return TaskPrefix + strings.Join(segs, ".")
}

// MatchTaskID returns the candidate naming the same task as raw ("1",
// "TASK-1" and "task-001" all match task-001). Without a match the
// normalized raw id is returned. Prefixes are not expanded.
func MatchTaskID(candidates []string, raw string) string {
	id := NormalizeTaskID(raw)
	for _, c := range candidates {
		if SameTaskID(c, id) {
			return c
		}
	}
	return id
}

// NextID returns the next sequential identifier for prefix given the
// existing ids. Only top-level numbers are considered. pad > 0 zero-pads
// the number to that width.
func NextID(prefix string, existing []string, pad int) string {
	highest := 0
	for _, id := range existing {
		parts, ok := numericParts(id, prefix)
		if !ok {
			continue
		}
		if parts[0] > highest {
			highest = parts[0]
		}
	}
	if pad > 0 {
		return fmt.Sprintf("%s%0*d", prefix, pad, highest+1)
	}
	return fmt.Sprintf("%s%d", prefix, highest+1)
}

// ResolveTaskID resolves a task ID or prefix against the known ids.
//
// Resolution rules:
//  1. An id equal to a candidate (ignoring case and zero padding) wins.
//  2. If idOrPrefix is a prefix of exactly one candidate, return that ID.
//  3. If multiple matches, return ErrAmbiguousID with candidates.
//  4. If no matches, return ErrNotFound.
func ResolveTaskID(candidates []string, idOrPrefix string) (string, error) {
	if strings.TrimSpace(idOrPrefix) == "" {
		return "", fmt.Errorf("task ID: %w", ErrNotFound)
	}
	normalized := NormalizeTaskID(idOrPrefix)

	for _, c := range candidates {
		if SameTaskID(c, normalized) {
			return c, nil
		}
	}

	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(normalized)) {
			matches = append(matches, c)
		}
	}
	return resolveFromCandidates(normalized, matches, "task")
}

// resolveFromCandidates handles the common resolution logic.
func resolveFromCandidates(prefix string, candidates []string, entityType string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%s with prefix %q: %w", entityType, prefix, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		shown := candidates
		if len(shown) > MaxAmbiguousCandidates {
			shown = shown[:MaxAmbiguousCandidates]
		}
		return "", fmt.Errorf("%w: prefix %q matches %d %ss: %v",
			ErrAmbiguousID, prefix, len(candidates), entityType, shown)
	}
}
