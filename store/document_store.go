package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/josephgoksu/backlog/internal/util"
	"github.com/josephgoksu/backlog/models"
)

// recordFiles maps id → path for files named "<prefix><n> - ...md" in dir.
func (s *FileStore) recordFiles(dir, prefix string) (map[string]string, error) {
	files, err := s.markdownFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(files))
	for _, path := range files {
		base := strings.ToLower(filepath.Base(path))
		if !strings.HasPrefix(base, prefix) {
			continue
		}
		id := strings.TrimSuffix(base, ".md")
		if i := strings.Index(id, " "); i >= 0 {
			id = id[:i]
		}
		out[id] = path
	}
	return out, nil
}

func sortedIDs(files map[string]string, prefix string) []string {
	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := recordNumber(ids[i], prefix)
		b, _ := recordNumber(ids[j], prefix)
		if a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

func recordNumber(id, prefix string) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(strings.TrimPrefix(id, prefix), "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

// ListDocuments loads every document, ordered by id.
func (s *FileStore) ListDocuments() ([]models.Document, error) {
	files, err := s.recordFiles(s.dir(DocsDir), util.DocPrefix)
	if err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0, len(files))
	for _, id := range sortedIDs(files, util.DocPrefix) {
		doc, err := s.readDocument(files[id])
		if err != nil {
			slog.Warn("skipping malformed document", "path", files[id], "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// GetDocument loads one document.
func (s *FileStore) GetDocument(id string) (models.Document, error) {
	files, err := s.recordFiles(s.dir(DocsDir), util.DocPrefix)
	if err != nil {
		return models.Document{}, err
	}
	path, ok := files[normalizeRecordID(id, util.DocPrefix)]
	if !ok {
		return models.Document{}, fmt.Errorf("%s: %w", id, ErrDocumentNotFound)
	}
	return s.readDocument(path)
}

func (s *FileStore) readDocument(path string) (models.Document, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return models.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := ParseDocument(content)
	if err != nil {
		return models.Document{}, fmt.Errorf("parse %s: %w", path, err)
	}
	doc.FilePath = path
	return doc, nil
}

// NextDocumentID returns the next free doc-<n> id.
func (s *FileStore) NextDocumentID() (string, error) {
	files, err := s.recordFiles(s.dir(DocsDir), util.DocPrefix)
	if err != nil {
		return "", err
	}
	return util.NextID(util.DocPrefix, sortedIDs(files, util.DocPrefix), s.pad), nil
}

// SaveDocument writes doc, renaming its file when the title changed.
func (s *FileStore) SaveDocument(doc *models.Document) (string, error) {
	content, err := SerializeDocument(*doc)
	if err != nil {
		return "", err
	}
	path, err := s.writeRecord(s.dir(DocsDir), util.DocPrefix, doc.ID, doc.Title, content)
	if err != nil {
		return "", err
	}
	doc.FilePath = path
	return path, nil
}

// ListDecisions loads every decision record, ordered by id.
func (s *FileStore) ListDecisions() ([]models.Decision, error) {
	files, err := s.recordFiles(s.dir(DecisionsDir), util.DecisionPrefix)
	if err != nil {
		return nil, err
	}
	decisions := make([]models.Decision, 0, len(files))
	for _, id := range sortedIDs(files, util.DecisionPrefix) {
		dec, err := s.readDecision(files[id])
		if err != nil {
			slog.Warn("skipping malformed decision", "path", files[id], "error", err)
			continue
		}
		decisions = append(decisions, dec)
	}
	return decisions, nil
}

// GetDecision loads one decision record.
func (s *FileStore) GetDecision(id string) (models.Decision, error) {
	files, err := s.recordFiles(s.dir(DecisionsDir), util.DecisionPrefix)
	if err != nil {
		return models.Decision{}, err
	}
	path, ok := files[normalizeRecordID(id, util.DecisionPrefix)]
	if !ok {
		return models.Decision{}, fmt.Errorf("%s: %w", id, ErrDecisionNotFound)
	}
	return s.readDecision(path)
}

func (s *FileStore) readDecision(path string) (models.Decision, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return models.Decision{}, fmt.Errorf("read %s: %w", path, err)
	}
	dec, err := ParseDecision(content)
	if err != nil {
		return models.Decision{}, fmt.Errorf("parse %s: %w", path, err)
	}
	dec.FilePath = path
	return dec, nil
}

// NextDecisionID returns the next free decision-<n> id.
func (s *FileStore) NextDecisionID() (string, error) {
	files, err := s.recordFiles(s.dir(DecisionsDir), util.DecisionPrefix)
	if err != nil {
		return "", err
	}
	return util.NextID(util.DecisionPrefix, sortedIDs(files, util.DecisionPrefix), s.pad), nil
}

// SaveDecision writes dec, renaming its file when the title changed.
func (s *FileStore) SaveDecision(dec *models.Decision) (string, error) {
	content, err := SerializeDecision(*dec)
	if err != nil {
		return "", err
	}
	path, err := s.writeRecord(s.dir(DecisionsDir), util.DecisionPrefix, dec.ID, dec.Title, content)
	if err != nil {
		return "", err
	}
	dec.FilePath = path
	return path, nil
}

func (s *FileStore) writeRecord(dir, prefix, id, title string, content []byte) (string, error) {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	files, err := s.recordFiles(dir, prefix)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, FileName(id, title))
	if err := afero.WriteFile(s.fs, target, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	if old, ok := files[strings.ToLower(id)]; ok && old != target {
		if err := s.fs.Remove(old); err != nil {
			return "", fmt.Errorf("remove previous file %s: %w", old, err)
		}
	}
	return target, nil
}

// normalizeRecordID accepts "3" or "doc-3".
func normalizeRecordID(id, prefix string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if !strings.HasPrefix(id, prefix) {
		id = prefix + id
	}
	return id
}
