package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephgoksu/backlog/internal/util"
	"github.com/josephgoksu/backlog/models"
)

// ErrCycle is returned when dependencies form a cycle.
var ErrCycle = errors.New("dependency cycle")

// edgeMap maps each task id to the task ids it depends on. Dependency
// spellings are resolved to task ids ("1" and "TASK-001" both name
// task-001). Ids outside the task set have no outgoing edges, so dangling
// references never close a cycle.
type edgeMap struct {
	deps    map[string][]string
	byCanon map[string]string
}

func newEdgeMap(tasks []models.Task) (edgeMap, error) {
	g := edgeMap{deps: make(map[string][]string, len(tasks)), byCanon: make(map[string]string, len(tasks))}
	for _, t := range tasks {
		if t.ID == "" {
			return edgeMap{}, errors.New("task ID cannot be empty")
		}
		if _, dup := g.byCanon[util.CanonicalTaskID(t.ID)]; !dup {
			g.byCanon[util.CanonicalTaskID(t.ID)] = t.ID
		}
	}
	for _, t := range tasks {
		id := g.resolve(t.ID)
		for _, d := range t.Dependencies {
			g.deps[id] = append(g.deps[id], g.resolve(d))
		}
	}
	return g, nil
}

// resolve maps any spelling of a known task id to that id. Unknown ids are
// returned unchanged.
func (g edgeMap) resolve(raw string) string {
	if id, ok := g.byCanon[util.CanonicalTaskID(util.NormalizeTaskID(raw))]; ok {
		return id
	}
	return raw
}

// chain returns the shortest dependency chain from -> ... -> to, or nil.
func (g edgeMap) chain(from, to string) []string {
	parent := map[string]string{from: from}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dep := range g.deps[id] {
			if dep == to {
				out := []string{to}
				for cur := id; ; cur = parent[cur] {
					out = append([]string{cur}, out...)
					if cur == from {
						return out
					}
				}
			}
			if _, seen := parent[dep]; !seen {
				parent[dep] = id
				queue = append(queue, dep)
			}
		}
	}
	return nil
}

func cycleError(id string, rest []string) error {
	return fmt.Errorf("%w: %s -> %s", ErrCycle, id, strings.Join(rest, " -> "))
}

// VerifyDAG reports the first dependency cycle among tasks, checked in
// input order, e.g. "task-1 -> task-3 -> task-2 -> task-1".
func VerifyDAG(tasks []models.Task) error {
	g, err := newEdgeMap(tasks)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		id := g.resolve(t.ID)
		for _, raw := range t.Dependencies {
			dep := g.resolve(raw)
			if dep == id {
				return cycleError(id, []string{dep})
			}
			if c := g.chain(dep, id); c != nil {
				return cycleError(id, c)
			}
		}
	}
	return nil
}

// WouldCycle reports whether adding the edge id -> dep closes a cycle.
// tasks is not modified.
func WouldCycle(tasks []models.Task, id, dep string) error {
	g, err := newEdgeMap(tasks)
	if err != nil {
		return err
	}
	id, dep = g.resolve(id), g.resolve(dep)
	if util.SameTaskID(id, dep) {
		return cycleError(id, []string{id})
	}
	if c := g.chain(dep, id); c != nil {
		return cycleError(id, c)
	}
	return nil
}
