package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/josephgoksu/backlog/internal/section"
)

// Default workflow statuses. Projects may configure their own open set.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// DefaultStatuses is the status list used when a project configures none.
var DefaultStatuses = []string{StatusToDo, StatusInProgress, StatusDone}

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskSource tells where a loaded copy of a task came from.
type TaskSource string

const (
	SourceLocal  TaskSource = "local"
	SourceRemote TaskSource = "remote"
)

// Task is one markdown task file. The frontmatter fields are persisted; the
// provenance fields describe the copy that was loaded.
type Task struct {
	ID           string       `json:"id" validate:"required,taskid"`
	Title        string       `json:"title" validate:"required,max=255"`
	Status       string       `json:"status" validate:"required"`
	Assignees    []string     `json:"assignees,omitempty"`
	Reporter     string       `json:"reporter,omitempty"`
	CreatedDate  time.Time    `json:"createdDate" validate:"required"`
	UpdatedDate  time.Time    `json:"updatedDate,omitempty"`
	Labels       []string     `json:"labels,omitempty"`
	Milestone    string       `json:"milestone,omitempty"`
	Dependencies []string     `json:"dependencies,omitempty" validate:"dive,taskid"`
	ParentTaskID string       `json:"parentTaskId,omitempty" validate:"omitempty,taskid"`
	Priority     TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=high medium low"`
	Ordinal      *int         `json:"ordinal,omitempty"`

	Body                    string              `json:"body,omitempty"`
	AcceptanceCriteriaItems []section.Criterion `json:"acceptanceCriteriaItems,omitempty"`

	Source       TaskSource `json:"source,omitempty"`
	Branch       string     `json:"branch,omitempty"`
	FilePath     string     `json:"filePath,omitempty"`
	LastModified time.Time  `json:"lastModified,omitempty"`
}

// NewTask creates a task with default status and creation date.
func NewTask(id, title string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:          id,
		Title:       title,
		Status:      StatusToDo,
		CreatedDate: now,
		Source:      SourceLocal,
	}
}

// RefreshDerived recomputes the fields derived from Body.
func (t *Task) RefreshDerived() {
	t.AcceptanceCriteriaItems = section.ParseCriteria(t.Body)
}

// Description returns the Description section of the body.
func (t *Task) Description() string {
	desc, _ := section.Extract(t.Body, section.Description)
	return desc
}

// LastActivity is the update date, falling back to the creation date.
func (t *Task) LastActivity() time.Time {
	if !t.UpdatedDate.IsZero() {
		return t.UpdatedDate
	}
	return t.CreatedDate
}

// HasLabel reports whether the task carries label, ignoring case.
func (t *Task) HasLabel(label string) bool {
	for _, l := range t.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Validate checks the struct tags and, when statuses is non-empty, that the
// status belongs to the configured set.
func (t *Task) Validate(statuses []string) error {
	if err := ValidateStruct(t); err != nil {
		return err
	}
	if len(statuses) > 0 && !ValidStatus(t.Status, statuses) {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrInvalidStatus, t.Status, strings.Join(statuses, ", "))
	}
	return nil
}

// Validation errors.
var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidStatus = errors.New("invalid status")
)

// ValidStatus reports whether status is one of statuses, ignoring case.
func ValidStatus(status string, statuses []string) bool {
	for _, s := range statuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

// CanonicalStatus returns the configured spelling of status.
func CanonicalStatus(status string, statuses []string) (string, bool) {
	for _, s := range statuses {
		if strings.EqualFold(s, strings.TrimSpace(status)) {
			return s, true
		}
	}
	return "", false
}

// global validator instance
var validate *validator.Validate

var (
	taskIDPattern     = regexp.MustCompile(`^task-\d+(\.\d+)*$`)
	docIDPattern      = regexp.MustCompile(`^doc-\d+$`)
	decisionIDPattern = regexp.MustCompile(`^decision-\d+$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("taskid", patternValidator(taskIDPattern))
	_ = validate.RegisterValidation("docid", patternValidator(docIDPattern))
	_ = validate.RegisterValidation("decisionid", patternValidator(decisionIDPattern))
}

func patternValidator(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	var errorMessages []string
	for _, e := range validationErrors {
		errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errorMessages, "; "))
}
