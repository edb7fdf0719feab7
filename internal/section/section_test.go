package section

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		heading string
		want    Title
		ok      bool
	}{
		{"Description", Description, true},
		{"acceptance criteria", AcceptanceCriteria, true},
		{"Acceptance Criteria (Optional)", AcceptanceCriteria, true},
		{"Notes", ImplementationNotes, true},
		{"Notes & Comments (Optional)", ImplementationNotes, true},
		{"  Implementation Plan  ", ImplementationPlan, true},
		{"Plan", ImplementationPlan, true},
		{"Random Heading", "", false},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.heading)
		assert.Equal(t, tt.ok, ok, tt.heading)
		assert.Equal(t, tt.want, got, tt.heading)
	}
}

func TestTitlesAndVariants(t *testing.T) {
	assert.Equal(t, []Title{Description, AcceptanceCriteria, ImplementationPlan, ImplementationNotes}, Titles())
	assert.Equal(t, "Implementation Notes", Variants(ImplementationNotes)[0])
	assert.Contains(t, Variants(ImplementationNotes), "Notes")

	// mutating the returned slice must not leak into the table
	titles := Titles()
	titles[0] = "Changed"
	assert.Equal(t, Description, Titles()[0])
}

func TestExtract(t *testing.T) {
	desc, ok := Extract(threeItemBody, Description)
	assert.True(t, ok)
	assert.Equal(t, "Ship the thing.", desc)

	notes, ok := Extract(threeItemBody, ImplementationNotes)
	assert.True(t, ok)
	assert.Equal(t, "Extra", notes)

	_, ok = Extract(threeItemBody, ImplementationPlan)
	assert.False(t, ok)
}

func TestExtract_UnrecognizedHeadingStaysInSection(t *testing.T) {
	body := "## Description\n\nIntro\n\n## Background\n\nMore\n\n## Implementation Plan\n\nSteps"
	desc, ok := Extract(body, Description)
	assert.True(t, ok)
	assert.Equal(t, "Intro\n\n## Background\n\nMore", desc)
}

func TestSet_ReplacesInPlace(t *testing.T) {
	got := Set(threeItemBody, Description, "Ship it today.")
	want := strings.Replace(threeItemBody, "Ship the thing.", "Ship it today.", 1)
	assert.Equal(t, want, got)
}

func TestSet_KeepsExistingVariantHeading(t *testing.T) {
	got := Set(threeItemBody, ImplementationNotes, "Rewritten")
	assert.True(t, strings.HasSuffix(got, "## Notes\n\n<!-- SECTION:NOTES:BEGIN -->\nRewritten\n<!-- SECTION:NOTES:END -->"))
}

func TestSet_InsertsInCanonicalOrder(t *testing.T) {
	body := "## Implementation Notes\n\nDone quickly"
	got := Set(body, Description, "What and why")
	assert.Equal(t, "## Description\n\n<!-- SECTION:DESCRIPTION:BEGIN -->\nWhat and why\n<!-- SECTION:DESCRIPTION:END -->\n\n## Implementation Notes\n\nDone quickly", got)

	got = Set(got, ImplementationPlan, "1. Do it")
	plan := strings.Index(got, "## Implementation Plan")
	notes := strings.Index(got, "## Implementation Notes")
	desc := strings.Index(got, "## Description")
	assert.True(t, desc < plan && plan < notes, got)
}

func TestSet_AppendsToEmptyBody(t *testing.T) {
	got := Set("", ImplementationPlan, "step")
	assert.Equal(t, "## Implementation Plan\n\n<!-- SECTION:PLAN:BEGIN -->\nstep\n<!-- SECTION:PLAN:END -->", got)
}

func TestSet_EmptyContentRemoves(t *testing.T) {
	got := Set(threeItemBody, ImplementationNotes, "   ")
	assert.NotContains(t, got, "## Notes")
	assert.True(t, strings.HasSuffix(got, "<!-- AC:END -->"))
}

func TestAppend(t *testing.T) {
	got := Append(threeItemBody, ImplementationNotes, "Second thought")
	notes, ok := Extract(got, ImplementationNotes)
	assert.True(t, ok)
	assert.Equal(t, "Extra\n\nSecond thought", notes)

	fresh := Append("", ImplementationNotes, "first")
	notes, _ = Extract(fresh, ImplementationNotes)
	assert.Equal(t, "first", notes)

	assert.Equal(t, threeItemBody, Append(threeItemBody, ImplementationNotes, " "))
}

func TestRemove(t *testing.T) {
	got := Remove(threeItemBody, AcceptanceCriteria)
	assert.NotContains(t, got, "AC:BEGIN")
	assert.Contains(t, got, "## Description")
	assert.True(t, strings.HasSuffix(got, "## Notes\nExtra"))

	assert.Equal(t, threeItemBody, Remove(threeItemBody, ImplementationPlan))
}
