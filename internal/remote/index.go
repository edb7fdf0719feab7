package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/josephgoksu/backlog/internal/util"
)

// DefaultQueryLimit bounds the number of refs queried at once.
const DefaultQueryLimit = 4

// GitQuerier is the version-control capability the index is built from.
// Both calls may fail per ref; a failure only removes that ref's
// contribution.
type GitQuerier interface {
	ListFiles(ctx context.Context, ref, pathPrefix string) ([]string, error)
	LastModifiedByPath(ctx context.Context, ref, pathPrefix string) (map[string]time.Time, error)
}

// Entry is the most recently modified known copy of a task file.
type Entry struct {
	ID           string    `json:"id"`
	Ref          string    `json:"ref"`
	Path         string    `json:"path"`
	LastModified time.Time `json:"lastModified"`
}

// Index maps task id to its newest copy across refs.
type Index map[string]Entry

// Timestamps flattens the index to task id → last-modified time.
func (idx Index) Timestamps() map[string]time.Time {
	out := make(map[string]time.Time, len(idx))
	for id, e := range idx {
		out[id] = e.LastModified
	}
	return out
}

// IndexBuilder queries each ref and folds the results.
type IndexBuilder struct {
	Querier  GitQuerier
	TasksDir string
	// Limit caps concurrent ref queries. Zero means DefaultQueryLimit.
	Limit int
}

// NewIndexBuilder creates a builder listing task files under tasksDir.
func NewIndexBuilder(q GitQuerier, tasksDir string) *IndexBuilder {
	return &IndexBuilder{Querier: q, TasksDir: tasksDir, Limit: DefaultQueryLimit}
}

// BuildTaskIndex is a convenience wrapper around IndexBuilder.Build.
func BuildTaskIndex(ctx context.Context, q GitQuerier, branches []string, tasksDir string) Index {
	return NewIndexBuilder(q, tasksDir).Build(ctx, branches)
}

// refResult is one ref's contribution. Each query goroutine owns exactly
// one slot.
type refResult struct {
	ref      string
	entries  []Entry
	err      error
	queryDur time.Duration
}

// Build normalizes branches, queries every canonical ref (once per
// occurrence) and keeps, per task id, the latest timestamp observed.
// Exact ties keep the first observed entry in branch order. Refs whose
// queries fail are skipped. If ctx is done before the fold, Build returns
// an empty index.
func (b *IndexBuilder) Build(ctx context.Context, branches []string) Index {
	refs := NormalizeBranches(branches)
	if len(refs) == 0 || b.Querier == nil {
		return Index{}
	}

	limit := b.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	results := make([]refResult, len(refs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, ref := range refs {
		g.Go(func() error {
			start := time.Now()
			entries, err := b.queryRef(ctx, ref)
			results[i] = refResult{ref: ref, entries: entries, err: err, queryDur: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		slog.Debug("remote index build abandoned", "error", ctx.Err())
		return Index{}
	}

	idx := make(Index)
	for _, r := range results {
		if r.err != nil {
			slog.Warn("skipping remote ref", "ref", r.ref, "error", r.err)
			continue
		}
		for _, e := range r.entries {
			idx.observe(e)
		}
		slog.Debug("remote ref indexed", "ref", r.ref, "files", len(r.entries), "duration", r.queryDur)
	}
	return idx
}

// observe folds one entry. Only a strictly newer timestamp replaces the
// current entry.
func (idx Index) observe(e Entry) {
	cur, ok := idx[e.ID]
	if !ok || e.LastModified.After(cur.LastModified) {
		idx[e.ID] = e
	}
}

func (b *IndexBuilder) queryRef(ctx context.Context, ref string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := b.Querier.ListFiles(ctx, ref, b.TasksDir)
	if err != nil {
		return nil, fmt.Errorf("list files at %s: %w", ref, err)
	}
	modified, err := b.Querier.LastModifiedByPath(ctx, ref, b.TasksDir)
	if err != nil {
		return nil, fmt.Errorf("last modified at %s: %w", ref, err)
	}

	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		id, ok := util.TaskIDFromFilename(file)
		if !ok {
			continue
		}
		ts, ok := modified[file]
		if !ok {
			continue
		}
		entries = append(entries, Entry{ID: id, Ref: ref, Path: file, LastModified: ts})
	}
	return entries, nil
}
