package parser

import (
	"regexp"
	"strings"
)

// quoted matches a double-quoted Ren'Py string and captures its body with
// backslash escapes left as written.
const quoted = `"((?:[^"\\]|\\.)*)"`

// modifiers matches the attribute tokens that may follow a speaker tag
// (`mc happy "..."`, `e @ sad "..."`), including any extra spacing before
// the single space or tab that precedes the quote.
const modifiers = `((?:[ \t]+[A-Za-z0-9_@.\-]+)*[ \t]*)`

// Block headers. These only need to match a prefix of the line.
var (
	labelHeaderRe     = regexp.MustCompile(`^([ \t]*)label[ \t]+[A-Za-z_.][\w.]*(?:\([^)]*\))?(?:[ \t]+hide)?[ \t]*:`)
	screenHeaderRe    = regexp.MustCompile(`^([ \t]*)screen[ \t]+[A-Za-z_]\w*(?:\([^)]*\))?[ \t]*:`)
	menuHeaderRe      = regexp.MustCompile(`^([ \t]*)menu(?:[ \t]+[A-Za-z_]\w*)?(?:[ \t]*\([^)]*\))?[ \t]*:`)
	pythonHeaderRe    = regexp.MustCompile(`^([ \t]*)(?:init(?:[ \t]+-?\d+)?[ \t]+)?python\b[^:]*:`)
	translateHeaderRe = regexp.MustCompile(`^([ \t]*)translate[ \t]+([A-Za-z_]\w*)[ \t]+([A-Za-z_.][\w.]*)[ \t]*:`)
)

// Text-bearing statements. (?s) lets the trailing suffix group swallow a
// line terminator so it is carried through untouched.
var (
	choiceRe    = regexp.MustCompile(`(?s)^([ \t]*)` + quoted + `((?:[ \t]+if[ \t][^:]*)?[ \t]*:\s*(?:#.*)?)$`)
	dialogueRe  = regexp.MustCompile(`(?s)^([ \t]*)([A-Za-z_][\w.]*)` + modifiers + `([ \t])` + quoted + `(.*)$`)
	narrationRe = regexp.MustCompile(`(?s)^([ \t]*)` + quoted + `(.*)$`)
	variableRe  = regexp.MustCompile(`(?s)^([ \t]*)((?:define|default)[ \t]+[A-Za-z_][\w.]*[ \t]*=[ \t]*_\()` + quoted + `(\).*)$`)

	screenTextRe     = regexp.MustCompile(`(?s)^([ \t]*)(text) ` + quoted + `(.*)$`)
	screenButtonRe   = regexp.MustCompile(`(?s)^([ \t]*)(textbutton) ` + quoted + `(.*)$`)
	screenLabelRe    = regexp.MustCompile(`(?s)^([ \t]*)(label) ` + quoted + `(.*)$`)
	screenPropertyRe = regexp.MustCompile(`(?s)^([ \t]*)(tooltip) ` + quoted + `(.*)$`)
)

// Translate files.
var (
	oldRe              = regexp.MustCompile(`(?s)^([ \t]*)old ` + quoted + `(.*)$`)
	newRe              = regexp.MustCompile(`(?s)^([ \t]*)new ` + quoted + `(.*)$`)
	commentDialogueRe  = regexp.MustCompile(`(?s)^([ \t]*#[ \t]*)([A-Za-z_][\w.]*)` + modifiers + `([ \t])` + quoted + `(.*)$`)
	commentNarrationRe = regexp.MustCompile(`(?s)^([ \t]*#[ \t]*)` + quoted + `(.*)$`)
)

// screenKeywords can never be a speaker tag.
var screenKeywords = map[string]bool{
	"text":       true,
	"textbutton": true,
	"label":      true,
	"tooltip":    true,
}

// deniedStatements start lines that never carry player-visible text.
var deniedStatements = map[string]bool{
	"play": true, "queue": true, "stop": true, "show": true, "scene": true,
	"hide": true, "with": true, "window": true, "image": true, "movie": true,
	"voice": true, "sound": true, "music": true, "style": true, "transform": true,
	"animation": true, "call": true, "jump": true, "return": true, "$": true,
	"init": true, "python": true, "label": true, "screen": true, "menu": true,
	"if": true, "while": true, "for": true, "pass": true, "add": true,
}

// indentWidth counts leading spaces and tabs.
func indentWidth(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

// firstToken returns the leading statement keyword of a line: "$" for
// python one-liners, otherwise the first identifier ("" if the line starts
// with anything else, such as a quote).
func firstToken(line string) string {
	s := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(s, "$") {
		return "$"
	}
	end := 0
	for end < len(s) {
		c := s[end]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			end++
			continue
		}
		break
	}
	return s[:end]
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
}
