package models

import "time"

// DocumentType classifies a project document.
type DocumentType string

const (
	DocTypeReadme        DocumentType = "readme"
	DocTypeGuide         DocumentType = "guide"
	DocTypeSpecification DocumentType = "specification"
	DocTypeOther         DocumentType = "other"
)

// Document is a free-form markdown page stored under backlog/docs.
type Document struct {
	ID          string       `json:"id" validate:"required,docid"`
	Title       string       `json:"title" validate:"required,max=255"`
	Type        DocumentType `json:"type" validate:"required,oneof=readme guide specification other"`
	Tags        []string     `json:"tags,omitempty"`
	CreatedDate time.Time    `json:"createdDate"`
	UpdatedDate time.Time    `json:"updatedDate,omitempty"`
	Body        string       `json:"body,omitempty"`
	FilePath    string       `json:"filePath,omitempty"`
}

// DecisionStatus is the lifecycle state of an architecture decision.
type DecisionStatus string

const (
	DecisionProposed   DecisionStatus = "proposed"
	DecisionAccepted   DecisionStatus = "accepted"
	DecisionRejected   DecisionStatus = "rejected"
	DecisionSuperseded DecisionStatus = "superseded"
)

// Decision is an architecture decision record stored under backlog/decisions.
// The body holds Context, Decision, Consequences and Alternatives sections.
type Decision struct {
	ID       string         `json:"id" validate:"required,decisionid"`
	Title    string         `json:"title" validate:"required,max=255"`
	Date     time.Time      `json:"date"`
	Status   DecisionStatus `json:"status" validate:"required,oneof=proposed accepted rejected superseded"`
	Body     string         `json:"body,omitempty"`
	FilePath string         `json:"filePath,omitempty"`
}

// DecisionTemplate is the body written for a new decision.
const DecisionTemplate = `## Context

## Decision

## Consequences
`
