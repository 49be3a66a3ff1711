package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rpy-translator/internal/parser"
	"rpy-translator/internal/textutil"
)

// Format is an export file format.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// ErrBadHeader is returned by ReadTSV when required columns are missing.
var ErrBadHeader = errors.New("tsv header missing required columns")

// Unit is the exported form of one parser.Item.
type Unit struct {
	File        string `json:"file"`
	Line        int    `json:"line"` // 1-based
	Type        string `json:"type"`
	Context     string `json:"context"`
	Language    string `json:"language,omitempty"`
	Character   string `json:"character,omitempty"`
	FromComment bool   `json:"from_comment,omitempty"`
	Original    string `json:"original"`
	Current     string `json:"current"`
	Hash        string `json:"hash"`
}

// Edits maps a file to its line index (0-based) -> replacement text.
type Edits map[string]map[int]string

// FromResult converts parse output for one file into units.
func FromResult(file string, res *parser.Result) []Unit {
	units := make([]Unit, 0, len(res.Items))
	for _, it := range res.Items {
		u := Unit{
			File:        file,
			Line:        it.LineIndex + 1,
			Type:        string(it.Type),
			Context:     string(it.Context),
			Language:    it.BlockLanguage,
			FromComment: it.FromComment,
			Original:    it.OriginalText,
			Current:     it.CurrentText,
			Hash:        textutil.Hash(it.OriginalText),
		}
		if meta, ok := it.Parts.Meta.(parser.DialogueMeta); ok {
			u.Character = meta.Character
		}
		units = append(units, u)
	}
	return units
}

var tsvColumns = []string{"file", "line", "type", "context", "language", "character", "original", "current"}

var (
	tsvEscaper   = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)
	tsvUnescapes = map[byte]byte{'\\': '\\', 't': '\t', 'n': '\n', 'r': '\r'}
)

// WriteTSV writes units as tab-separated values with a header row.
func WriteTSV(w io.Writer, units []Unit) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(tsvColumns, "\t"))

	for _, u := range units {
		fmt.Fprintf(bw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			escapeTSV(u.File),
			u.Line,
			u.Type,
			u.Context,
			u.Language,
			u.Character,
			escapeTSV(u.Original),
			escapeTSV(u.Current),
		)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write TSV: %w", err)
	}
	return nil
}

// WriteJSON writes units as an indented JSON array.
func WriteJSON(w io.Writer, units []Unit) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if units == nil {
		units = []Unit{}
	}
	if err := encoder.Encode(units); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// Write dispatches on format.
func Write(w io.Writer, format Format, units []Unit) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, units)
	case FormatTSV, "":
		return WriteTSV(w, units)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// ReadTSV reads an edited TSV export back into per-file edits. Columns are
// located by header name, so extra or reordered columns are fine.
func ReadTSV(r io.Reader) (Edits, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan TSV: %w", err)
		}
		return nil, ErrBadHeader
	}

	col := make(map[string]int)
	for i, name := range strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t") {
		col[strings.TrimSpace(name)] = i
	}
	fileCol, ok1 := col["file"]
	lineCol, ok2 := col["line"]
	currentCol, ok3 := col["current"]
	if !ok1 || !ok2 || !ok3 {
		return nil, ErrBadHeader
	}
	width := max(fileCol, lineCol, currentCol) + 1

	edits := make(Edits)
	row := 1
	for scanner.Scan() {
		row++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < width {
			return nil, fmt.Errorf("tsv row %d: expected at least %d columns, got %d", row, width, len(fields))
		}
		line, err := strconv.Atoi(fields[lineCol])
		if err != nil || line < 1 {
			return nil, fmt.Errorf("tsv row %d: bad line number %q", row, fields[lineCol])
		}

		file := unescapeTSV(fields[fileCol])
		if edits[file] == nil {
			edits[file] = make(map[int]string)
		}
		edits[file][line-1] = unescapeTSV(fields[currentCol])
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan TSV: %w", err)
	}
	return edits, nil
}

func escapeTSV(s string) string {
	return tsvEscaper.Replace(s)
}

func unescapeTSV(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if c, ok := tsvUnescapes[s[i+1]]; ok {
				b.WriteByte(c)
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
