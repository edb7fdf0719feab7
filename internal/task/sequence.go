package task

import (
	"sort"
	"strings"

	"github.com/josephgoksu/backlog/internal/util"
	"github.com/josephgoksu/backlog/models"
)

// Sequence is one level of the dependency ordering. Tasks in a level only
// depend on tasks in earlier levels (cycles excepted).
type Sequence struct {
	Index   int      `json:"index"`
	TaskIDs []string `json:"tasks"`
}

// depGraph holds the in-set dependency edges of a task collection.
type depGraph struct {
	ids  []string            // natural id order
	deps map[string][]string // id -> in-set dependencies, deduplicated and sorted
}

func newDepGraph(tasks []models.Task) depGraph {
	g := depGraph{deps: make(map[string][]string)}
	byCanon := make(map[string]string) // canonical id -> task id
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		key := util.CanonicalTaskID(t.ID)
		if _, dup := byCanon[key]; dup {
			continue
		}
		byCanon[key] = t.ID
		g.deps[t.ID] = nil
		g.ids = append(g.ids, t.ID)
	}
	sort.SliceStable(g.ids, func(i, j int) bool { return util.CompareTaskIDs(g.ids[i], g.ids[j]) < 0 })

	seen := make(map[string]bool)
	for _, t := range tasks {
		if byCanon[util.CanonicalTaskID(t.ID)] != t.ID || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		unique := make(map[string]bool)
		var deps []string
		for _, raw := range t.Dependencies {
			// Dangling references are ignored. "1", "TASK-1" and "task-001"
			// name the same task.
			d, ok := byCanon[util.CanonicalTaskID(util.NormalizeTaskID(raw))]
			if !ok || unique[d] {
				continue
			}
			unique[d] = true
			deps = append(deps, d)
		}
		sort.Slice(deps, func(i, j int) bool { return util.CompareTaskIDs(deps[i], deps[j]) < 0 })
		g.deps[t.ID] = deps
	}
	return g
}

// BuildSequences partitions tasks into dependency levels. A task with no
// dependencies inside the set is in level 1; otherwise its level is one
// more than the highest level among its dependencies.
//
// When the remaining tasks all wait on a cycle, every dependency cycle
// that is not itself blocked by another remaining task is placed on the
// level after the highest level assigned so far, and leveling continues
// from there. Within a level ids are in natural order. The result is
// deterministic for a given input.
func BuildSequences(tasks []models.Task) []Sequence {
	g := newDepGraph(tasks)
	if len(g.ids) == 0 {
		return nil
	}

	level := make(map[string]int, len(g.ids))
	maxLevel := 0

	for len(level) < len(g.ids) {
		ready := readyTasks(g, level)
		if len(ready) == 0 {
			for _, id := range blockingCycles(g, level) {
				level[id] = maxLevel + 1
			}
			maxLevel++
			continue
		}

		for _, id := range ready {
			lvl := 1
			for _, d := range g.deps[id] {
				if level[d]+1 > lvl {
					lvl = level[d] + 1
				}
			}
			level[id] = lvl
			if lvl > maxLevel {
				maxLevel = lvl
			}
		}
	}

	seqs := make([]Sequence, maxLevel)
	for i := range seqs {
		seqs[i].Index = i + 1
	}
	for _, id := range g.ids {
		seqs[level[id]-1].TaskIDs = append(seqs[level[id]-1].TaskIDs, id)
	}
	return seqs
}

// readyTasks returns the unplaced tasks whose dependencies are all placed.
func readyTasks(g depGraph, level map[string]int) []string {
	var ready []string
	for _, id := range g.ids {
		if _, placed := level[id]; placed {
			continue
		}
		ok := true
		for _, d := range g.deps[id] {
			if _, placed := level[d]; !placed {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, id)
		}
	}
	return ready
}

// blockingCycles finds the strongly connected components of the unplaced
// tasks (Tarjan) and returns the members of those that depend on no other
// unplaced component. When no task is ready these components are always
// cycles.
func blockingCycles(g depGraph, level map[string]int) []string {
	index := make(map[string]int)
	low := make(map[string]int)
	onStack := make(map[string]bool)
	comp := make(map[string]int)
	var stack []string
	var comps [][]string
	next := 0

	unplaced := func(id string) bool {
		_, placed := level[id]
		return !placed
	}

	var strongConnect func(id string)
	strongConnect = func(id string) {
		index[id] = next
		low[id] = next
		next++
		stack = append(stack, id)
		onStack[id] = true

		for _, d := range g.deps[id] {
			if !unplaced(d) {
				continue
			}
			if _, visited := index[d]; !visited {
				strongConnect(d)
				low[id] = min(low[id], low[d])
			} else if onStack[d] {
				low[id] = min(low[id], index[d])
			}
		}

		if low[id] == index[id] {
			var members []string
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				comp[top] = len(comps)
				members = append(members, top)
				if top == id {
					break
				}
			}
			comps = append(comps, members)
		}
	}

	for _, id := range g.ids {
		if _, visited := index[id]; !visited && unplaced(id) {
			strongConnect(id)
		}
	}

	var out []string
	for c, members := range comps {
		blocked := false
		for _, m := range members {
			for _, d := range g.deps[m] {
				if unplaced(d) && comp[d] != c {
					blocked = true
				}
			}
		}
		if !blocked {
			out = append(out, members...)
		}
	}
	return out
}

// FilterActive drops tasks whose status is doneStatus (case-insensitive).
func FilterActive(tasks []models.Task, doneStatus string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.EqualFold(t.Status, doneStatus) {
			continue
		}
		out = append(out, t)
	}
	return out
}
