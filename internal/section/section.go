// Package section treats the named "## " sections of a task body as
// addressable regions. A section runs from its heading line to the next
// recognized heading or the end of the text. Unrecognized headings are part
// of the surrounding section's content.
package section

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Title is the canonical name of a structured section.
type Title string

const (
	Description         Title = "Description"
	AcceptanceCriteria  Title = "Acceptance Criteria"
	ImplementationPlan  Title = "Implementation Plan"
	ImplementationNotes Title = "Implementation Notes"
)

// titleOrder is the order new sections are inserted in.
var titleOrder = []Title{Description, AcceptanceCriteria, ImplementationPlan, ImplementationNotes}

// titleVariants lists the alternative spellings accepted when scanning
// existing text. New sections are always written with the canonical title.
var titleVariants = map[Title][]string{
	Description:         {"Description (Optional)"},
	AcceptanceCriteria:  {"Acceptance Criteria (Optional)"},
	ImplementationPlan:  {"Implementation Plan (Optional)", "Plan"},
	ImplementationNotes: {"Implementation Notes (Optional)", "Notes", "Notes & Comments (Optional)"},
}

// markerKeys name the invisible sentinel comments wrapping section content.
var markerKeys = map[Title]string{
	Description:         "SECTION:DESCRIPTION",
	AcceptanceCriteria:  "AC",
	ImplementationPlan:  "SECTION:PLAN",
	ImplementationNotes: "SECTION:NOTES",
}

var headingLine = regexp.MustCompile(`^##\s+(.+?)\s*$`)

// Titles returns the recognized section titles in canonical order.
func Titles() []Title {
	out := make([]Title, len(titleOrder))
	copy(out, titleOrder)
	return out
}

// Variants returns every accepted spelling of t, canonical first.
func Variants(t Title) []string {
	out := []string{string(t)}
	return append(out, titleVariants[t]...)
}

// Lookup maps a heading text (without the leading "## ") to its section.
// Matching is case-insensitive.
func Lookup(heading string) (Title, bool) {
	folder := cases.Fold()
	want := folder.String(strings.TrimSpace(heading))
	for _, t := range titleOrder {
		for _, v := range Variants(t) {
			if folder.String(v) == want {
				return t, true
			}
		}
	}
	return "", false
}

// Markers returns the begin and end sentinel lines for t.
func Markers(t Title) (begin, end string) {
	key := markerKeys[t]
	return "<!-- " + key + ":BEGIN -->", "<!-- " + key + ":END -->"
}

// headingTitle reports the section a line opens, if any.
func headingTitle(line string) (Title, bool) {
	m := headingLine.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return Lookup(m[1])
}

// span locates a section: heading is the heading line, content is
// lines[start:end].
type span struct {
	heading, start, end int
}

func findSection(lines []string, t Title) (span, bool) {
	for i, line := range lines {
		title, ok := headingTitle(line)
		if !ok || title != t {
			continue
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if _, ok := headingTitle(lines[j]); ok {
				end = j
				break
			}
		}
		return span{heading: i, start: i + 1, end: end}, true
	}
	return span{}, false
}

func splitLines(body string) []string {
	return strings.Split(body, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// markerRange finds the begin/end sentinel lines for t inside lines[from:to].
func markerRange(lines []string, t Title, from, to int) (begin, end int, ok bool) {
	beginMarker, endMarker := Markers(t)
	begin = -1
	for i := from; i < to; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if begin < 0 && trimmed == beginMarker {
			begin = i
			continue
		}
		if begin >= 0 && trimmed == endMarker {
			return begin, i, true
		}
	}
	return 0, 0, false
}

// Extract returns the content of section t with sentinel markers and
// surrounding blank lines removed.
func Extract(body string, t Title) (string, bool) {
	lines := splitLines(body)
	sp, ok := findSection(lines, t)
	if !ok {
		return "", false
	}
	content := lines[sp.start:sp.end]
	if b, e, ok := markerRange(lines, t, sp.start, sp.end); ok {
		content = lines[b+1 : e]
	}
	return strings.TrimSpace(joinLines(content)), true
}

// wrap surrounds content with the sentinel markers of t.
func wrap(t Title, content string) string {
	begin, end := Markers(t)
	content = strings.Trim(content, "\n")
	if content == "" {
		return begin + "\n" + end
	}
	return begin + "\n" + content + "\n" + end
}

// Set replaces the content of section t, or inserts the section with its
// canonical title when absent. An empty content removes the section.
// Text outside the section is left untouched.
func Set(body string, t Title, content string) string {
	if strings.TrimSpace(content) == "" {
		return Remove(body, t)
	}
	return setRaw(body, t, wrap(t, content))
}

// setRaw writes rendered (already wrapped) content into section t.
func setRaw(body string, t Title, rendered string) string {
	lines := splitLines(body)
	renderedLines := splitLines(rendered)

	if sp, ok := findSection(lines, t); ok {
		replacement := append([]string{""}, renderedLines...)
		if sp.end < len(lines) {
			replacement = append(replacement, "")
		}
		out := make([]string, 0, len(lines)+len(replacement))
		out = append(out, lines[:sp.start]...)
		out = append(out, replacement...)
		out = append(out, lines[sp.end:]...)
		return joinLines(out)
	}

	block := append([]string{"## " + string(t), ""}, renderedLines...)

	if at, ok := insertionPoint(lines, t); ok {
		out := make([]string, 0, len(lines)+len(block)+1)
		out = append(out, lines[:at]...)
		out = append(out, block...)
		out = append(out, "")
		out = append(out, lines[at:]...)
		return joinLines(out)
	}

	trimmed := strings.TrimRight(body, "\n")
	if trimmed == "" {
		return joinLines(block)
	}
	return trimmed + "\n\n" + joinLines(block)
}

// insertionPoint returns the heading line of the first existing section
// that sorts after t.
func insertionPoint(lines []string, t Title) (int, bool) {
	rank := titleRank(t)
	for i, line := range lines {
		if title, ok := headingTitle(line); ok && titleRank(title) > rank {
			return i, true
		}
	}
	return 0, false
}

func titleRank(t Title) int {
	for i, candidate := range titleOrder {
		if candidate == t {
			return i
		}
	}
	return len(titleOrder)
}

// Append adds a paragraph to the end of section t, creating it if needed.
func Append(body string, t Title, content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return body
	}
	existing, ok := Extract(body, t)
	if ok && existing != "" {
		return Set(body, t, existing+"\n\n"+content)
	}
	return Set(body, t, content)
}

// Remove deletes section t (heading and content).
func Remove(body string, t Title) string {
	lines := splitLines(body)
	sp, ok := findSection(lines, t)
	if !ok {
		return body
	}
	out := make([]string, 0, len(lines))
	out = append(out, lines[:sp.heading]...)
	out = append(out, lines[sp.end:]...)
	if sp.end == len(lines) {
		for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
			out = out[:len(out)-1]
		}
	}
	return joinLines(out)
}
