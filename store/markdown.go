package store

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/josephgoksu/backlog/models"
)

// DateLayout is the layout dates are written with.
const DateLayout = "2006-01-02 15:04"

// dateLayouts are tried in order when reading dates.
var dateLayouts = []string{DateLayout, "2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

const fence = "---"

// ErrNoFrontmatter is returned for markdown files without a leading --- block.
var ErrNoFrontmatter = errors.New("missing frontmatter")

// stringList accepts either a scalar or a sequence.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if v := strings.TrimSpace(value.Value); v != "" {
			*l = stringList{v}
		} else {
			*l = nil
		}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		out := make(stringList, 0, len(items))
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				out = append(out, it)
			}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list", value.Line)
	}
}

type taskFrontmatter struct {
	ID           string     `yaml:"id"`
	Title        string     `yaml:"title"`
	Status       string     `yaml:"status"`
	Assignee     stringList `yaml:"assignee"`
	Reporter     string     `yaml:"reporter,omitempty"`
	CreatedDate  string     `yaml:"created_date"`
	UpdatedDate  string     `yaml:"updated_date,omitempty"`
	Labels       stringList `yaml:"labels"`
	Milestone    string     `yaml:"milestone,omitempty"`
	Dependencies stringList `yaml:"dependencies"`
	ParentTaskID string     `yaml:"parent_task_id,omitempty"`
	Priority     string     `yaml:"priority,omitempty"`
	Ordinal      *int       `yaml:"ordinal,omitempty"`
}

type documentFrontmatter struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Type        string     `yaml:"type"`
	Tags        stringList `yaml:"tags,omitempty"`
	CreatedDate string     `yaml:"created_date"`
	UpdatedDate string     `yaml:"updated_date,omitempty"`
}

type decisionFrontmatter struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Date   string `yaml:"date"`
	Status string `yaml:"status"`
}

// splitFrontmatter separates the YAML block from the markdown body.
func splitFrontmatter(content string) (string, string, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r ") != fence {
		return "", "", ErrNoFrontmatter
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r ") == fence {
			meta := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return meta, strings.TrimRight(strings.TrimLeft(body, "\r\n"), "\r\n"), nil
		}
	}
	return "", "", fmt.Errorf("%w: unterminated block", ErrNoFrontmatter)
}

func joinFrontmatter(meta any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fence + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	buf.WriteString(fence + "\n")
	if body = strings.Trim(body, "\r\n"); body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func parseDate(raw string) time.Time {
	raw = strings.Trim(strings.TrimSpace(raw), `'"`)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseTask decodes a task file. The acceptance criteria are derived from
// the body.
func ParseTask(content []byte) (models.Task, error) {
	meta, body, err := splitFrontmatter(string(content))
	if err != nil {
		return models.Task{}, err
	}
	var fm taskFrontmatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return models.Task{}, fmt.Errorf("decode frontmatter: %w", err)
	}

	task := models.Task{
		ID:           strings.ToLower(strings.TrimSpace(fm.ID)),
		Title:        fm.Title,
		Status:       fm.Status,
		Assignees:    []string(fm.Assignee),
		Reporter:     fm.Reporter,
		CreatedDate:  parseDate(fm.CreatedDate),
		UpdatedDate:  parseDate(fm.UpdatedDate),
		Labels:       []string(fm.Labels),
		Milestone:    fm.Milestone,
		ParentTaskID: strings.ToLower(fm.ParentTaskID),
		Priority:     models.TaskPriority(strings.ToLower(fm.Priority)),
		Ordinal:      fm.Ordinal,
		Body:         body,
	}
	for _, dep := range fm.Dependencies {
		task.Dependencies = append(task.Dependencies, strings.ToLower(dep))
	}
	task.RefreshDerived()
	return task, nil
}

// SerializeTask encodes a task as frontmatter plus body.
func SerializeTask(task models.Task) ([]byte, error) {
	fm := taskFrontmatter{
		ID:           task.ID,
		Title:        task.Title,
		Status:       task.Status,
		Assignee:     nonNil(task.Assignees),
		Reporter:     task.Reporter,
		CreatedDate:  formatDate(task.CreatedDate),
		UpdatedDate:  formatDate(task.UpdatedDate),
		Labels:       nonNil(task.Labels),
		Milestone:    task.Milestone,
		Dependencies: nonNil(task.Dependencies),
		ParentTaskID: task.ParentTaskID,
		Priority:     string(task.Priority),
		Ordinal:      task.Ordinal,
	}
	return joinFrontmatter(fm, task.Body)
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil(items []string) stringList {
	if items == nil {
		return stringList{}
	}
	return stringList(items)
}

// ParseDocument decodes a document file.
func ParseDocument(content []byte) (models.Document, error) {
	meta, body, err := splitFrontmatter(string(content))
	if err != nil {
		return models.Document{}, err
	}
	var fm documentFrontmatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return models.Document{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	docType := models.DocumentType(strings.ToLower(fm.Type))
	if docType == "" {
		docType = models.DocTypeOther
	}
	return models.Document{
		ID:          strings.ToLower(fm.ID),
		Title:       fm.Title,
		Type:        docType,
		Tags:        []string(fm.Tags),
		CreatedDate: parseDate(fm.CreatedDate),
		UpdatedDate: parseDate(fm.UpdatedDate),
		Body:        body,
	}, nil
}

// SerializeDocument encodes a document.
func SerializeDocument(doc models.Document) ([]byte, error) {
	fm := documentFrontmatter{
		ID:          doc.ID,
		Title:       doc.Title,
		Type:        string(doc.Type),
		Tags:        stringList(doc.Tags),
		CreatedDate: formatDate(doc.CreatedDate),
		UpdatedDate: formatDate(doc.UpdatedDate),
	}
	return joinFrontmatter(fm, doc.Body)
}

// ParseDecision decodes a decision record.
func ParseDecision(content []byte) (models.Decision, error) {
	meta, body, err := splitFrontmatter(string(content))
	if err != nil {
		return models.Decision{}, err
	}
	var fm decisionFrontmatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return models.Decision{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	return models.Decision{
		ID:     strings.ToLower(fm.ID),
		Title:  fm.Title,
		Date:   parseDate(fm.Date),
		Status: models.DecisionStatus(strings.ToLower(fm.Status)),
		Body:   body,
	}, nil
}

// SerializeDecision encodes a decision record.
func SerializeDecision(dec models.Decision) ([]byte, error) {
	fm := decisionFrontmatter{
		ID:     dec.ID,
		Title:  dec.Title,
		Date:   formatDate(dec.Date),
		Status: string(dec.Status),
	}
	return joinFrontmatter(fm, dec.Body)
}
