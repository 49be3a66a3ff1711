package patch

import (
	"errors"
	"fmt"
	"strings"

	"rpy-translator/internal/parser"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	// ErrLineOutOfRange is returned when an item points past the line slice.
	ErrLineOutOfRange = errors.New("item line out of range")
	// ErrStaleItem is returned when the line no longer holds what the item
	// was parsed from.
	ErrStaleItem = errors.New("line changed since it was parsed")
)

// Change records one replaced line.
type Change struct {
	LineIndex int
	Before    string
	After     string
}

// SetTexts applies edits (line index -> new text) to the items on those
// lines and returns how many edits found an item.
func SetTexts(items []*parser.Item, edits map[int]string) int {
	matched := 0
	for _, it := range items {
		text, ok := edits[it.LineIndex]
		if !ok {
			continue
		}
		it.SetText(text)
		matched++
	}
	return matched
}

// Apply replaces the line of every modified item with its rebuilt form.
// lines is patched in place and never grows or shrinks. Nothing is written
// unless every modified item still matches its line.
func Apply(lines []string, items []*parser.Item) ([]Change, error) {
	var pending []*parser.Item
	for _, it := range items {
		if !it.Modified() {
			continue
		}
		if it.LineIndex < 0 || it.LineIndex >= len(lines) {
			return nil, fmt.Errorf("%w: line %d of %d", ErrLineOutOfRange, it.LineIndex+1, len(lines))
		}
		if lines[it.LineIndex] != parser.FormatLine(it, it.InitialText) {
			return nil, fmt.Errorf("%w: line %d", ErrStaleItem, it.LineIndex+1)
		}
		pending = append(pending, it)
	}

	changes := make([]Change, 0, len(pending))
	for _, it := range pending {
		after := it.Line()
		changes = append(changes, Change{
			LineIndex: it.LineIndex,
			Before:    lines[it.LineIndex],
			After:     after,
		})
		lines[it.LineIndex] = after
	}
	return changes, nil
}

// Diff renders a line diff between two versions of a script, showing only
// removed ("-") and added ("+") lines.
func Diff(name string, before, after []string) string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(strings.Join(before, ""), strings.Join(after, ""))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var sb strings.Builder
	for _, d := range diffs {
		var mark string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			mark = "-"
		case diffmatchpatch.DiffInsert:
			mark = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(mark)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}

	if sb.Len() == 0 {
		return ""
	}
	return "--- " + name + "\n+++ " + name + "\n" + sb.String()
}
