package section

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrCriterionNotFound is returned when no checklist item carries the
// requested index. The body is returned unchanged alongside it.
var ErrCriterionNotFound = errors.New("acceptance criterion not found")

// Criterion is one checklist item of the Acceptance Criteria section.
// Index is 1-based and only meaningful at the moment it is observed.
type Criterion struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// itemLine matches "- [ ] #3 text". The #n tag is optional so that legacy
// checklists without numbering still parse.
var itemLine = regexp.MustCompile(`^(\s*)- \[([ xX])\] (?:#(\d+)\s+)?(.*?)\s*$`)

type item struct {
	line    int
	indent  string
	index   int
	text    string
	checked bool
	crlf    bool
}

func parseItem(line string, n int) (item, bool) {
	crlf := strings.HasSuffix(line, "\r")
	m := itemLine.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
	if m == nil {
		return item{}, false
	}
	it := item{
		line:    n,
		indent:  m[1],
		text:    m[4],
		checked: m[2] != " ",
		crlf:    crlf,
	}
	if m[3] != "" {
		it.index, _ = strconv.Atoi(m[3])
	}
	return it, true
}

func (it item) render() string {
	line := it.indent + formatItem(Criterion{Index: it.index, Text: it.text, Checked: it.checked})
	if it.crlf {
		line += "\r"
	}
	return line
}

func formatItem(c Criterion) string {
	mark := " "
	if c.Checked {
		mark = "x"
	}
	return fmt.Sprintf("- [%s] #%d %s", mark, c.Index, c.Text)
}

// FormatCriteria renders items as a delimited checklist block. Indices are
// written exactly as given; callers supply a contiguous 1-based sequence.
func FormatCriteria(items []Criterion) string {
	begin, end := Markers(AcceptanceCriteria)
	var sb strings.Builder
	sb.WriteString(begin)
	sb.WriteString("\n")
	for _, c := range items {
		sb.WriteString(formatItem(c))
		sb.WriteString("\n")
	}
	sb.WriteString(end)
	return sb.String()
}

// block is the line slice holding checklist items. For marked blocks
// begin/end are the marker lines; legacy blocks have no markers.
type block struct {
	start, end int
	begin, fin int
	legacy     bool
}

// locateBlock finds the checklist slice by marker-line scanning, falling
// back to the raw Acceptance Criteria section for legacy bodies.
func locateBlock(lines []string) (block, bool) {
	if b, e, ok := markerRange(lines, AcceptanceCriteria, 0, len(lines)); ok {
		return block{start: b + 1, end: e, begin: b, fin: e}, true
	}
	if sp, ok := findSection(lines, AcceptanceCriteria); ok {
		return block{start: sp.start, end: sp.end, begin: -1, fin: -1, legacy: true}, true
	}
	return block{}, false
}

// items collects the checklist lines of b. Untagged items get their
// position as index.
func (b block) items(lines []string) []item {
	var out []item
	for i := b.start; i < b.end; i++ {
		it, ok := parseItem(lines[i], i)
		if !ok {
			continue
		}
		if it.index == 0 {
			it.index = len(out) + 1
		}
		out = append(out, it)
	}
	return out
}

// ParseCriteria returns the checklist items of body in document order, or
// nil when the body has no Acceptance Criteria block.
func ParseCriteria(body string) []Criterion {
	lines := splitLines(body)
	b, ok := locateBlock(lines)
	if !ok {
		return nil
	}
	var out []Criterion
	for _, it := range b.items(lines) {
		out = append(out, Criterion{Index: it.index, Text: it.text, Checked: it.checked})
	}
	return out
}

// RemoveCriterion drops the item tagged index and renumbers the remaining
// items 1..N-1 in their original order. Lines outside the checklist slice
// are preserved byte for byte.
func RemoveCriterion(body string, index int) (string, error) {
	lines := splitLines(body)
	b, ok := locateBlock(lines)
	if !ok {
		return body, fmt.Errorf("remove #%d: %w", index, ErrCriterionNotFound)
	}

	items := b.items(lines)
	target := -1
	for _, it := range items {
		if it.index == index {
			target = it.line
			break
		}
	}
	if target < 0 {
		return body, fmt.Errorf("remove #%d: %w", index, ErrCriterionNotFound)
	}

	renumbered := make(map[int]string, len(items))
	n := 0
	for _, it := range items {
		if it.line == target {
			continue
		}
		n++
		it.index = n
		renumbered[it.line] = it.render()
	}

	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:b.start]...)
	for i := b.start; i < b.end; i++ {
		if i == target {
			continue
		}
		if line, ok := renumbered[i]; ok {
			out = append(out, line)
			continue
		}
		out = append(out, lines[i])
	}
	out = append(out, lines[b.end:]...)
	return joinLines(out), nil
}

// CheckCriterion sets the checked marker of the item tagged index. Only the
// marker character changes, so applying it twice is a no-op.
func CheckCriterion(body string, index int, checked bool) (string, error) {
	lines := splitLines(body)
	b, ok := locateBlock(lines)
	if !ok {
		return body, fmt.Errorf("check #%d: %w", index, ErrCriterionNotFound)
	}
	for _, it := range b.items(lines) {
		if it.index != index {
			continue
		}
		if it.checked == checked {
			return body, nil
		}
		loc := itemLine.FindStringSubmatchIndex(lines[it.line])
		mark := " "
		if checked {
			mark = "x"
		}
		line := lines[it.line]
		lines[it.line] = line[:loc[4]] + mark + line[loc[5]:]
		return joinLines(lines), nil
	}
	return body, fmt.Errorf("check #%d: %w", index, ErrCriterionNotFound)
}

// AddCriteria appends unchecked items after the existing ones, continuing
// the numbering. The section and block are created when missing.
func AddCriteria(body string, texts ...string) string {
	var clean []string
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return body
	}

	existing := ParseCriteria(body)
	next := 1
	for _, c := range existing {
		if c.Index >= next {
			next = c.Index + 1
		}
	}

	lines := splitLines(body)
	if b, ok := locateBlock(lines); ok && !b.legacy {
		added := make([]string, 0, len(clean))
		for i, text := range clean {
			added = append(added, formatItem(Criterion{Index: next + i, Text: text}))
		}
		out := make([]string, 0, len(lines)+len(added))
		out = append(out, lines[:b.fin]...)
		out = append(out, added...)
		out = append(out, lines[b.fin:]...)
		return joinLines(out)
	}

	all := append([]Criterion{}, existing...)
	for i, text := range clean {
		all = append(all, Criterion{Index: next + i, Text: text})
	}
	return SetCriteria(body, all)
}

// SetCriteria replaces the whole checklist with items, renumbered 1..N.
// An empty list removes the section.
func SetCriteria(body string, items []Criterion) string {
	numbered := make([]Criterion, len(items))
	for i, c := range items {
		numbered[i] = Criterion{Index: i + 1, Text: strings.TrimSpace(c.Text), Checked: c.Checked}
	}

	lines := splitLines(body)
	b, found := locateBlock(lines)

	if len(numbered) == 0 {
		if found && !b.legacy {
			if _, inSection := findSection(lines, AcceptanceCriteria); !inSection {
				out := append(append([]string{}, lines[:b.begin]...), lines[b.fin+1:]...)
				return joinLines(out)
			}
		}
		return Remove(body, AcceptanceCriteria)
	}

	rendered := FormatCriteria(numbered)
	if found && !b.legacy {
		out := make([]string, 0, len(lines)+len(numbered))
		out = append(out, lines[:b.begin]...)
		out = append(out, splitLines(rendered)...)
		out = append(out, lines[b.fin+1:]...)
		return joinLines(out)
	}
	return setRaw(body, AcceptanceCriteria, rendered)
}
