package parser

import "regexp"

// match is the outcome of one successful pattern attempt.
type match struct {
	text  string
	typ   ItemType
	parts Components
}

// attempt is one entry of an ordered matcher list. gate, when set, limits
// the attempt to certain contexts.
type attempt struct {
	name  string
	gate  func(Context) bool
	match func(line string) (match, bool)
}

func inContext(want Context) func(Context) bool {
	return func(ctx Context) bool { return ctx == want }
}

func matchChoice(line string) (match, bool) {
	m := choiceRe.FindStringSubmatch(line)
	if m == nil {
		return match{}, false
	}
	return match{
		text:  m[2],
		typ:   TypeChoice,
		parts: Components{Indent: m[1], Suffix: m[3], Meta: DefaultMeta{}},
	}, true
}

func matchDialogue(line string) (match, bool) {
	return dialogueFrom(dialogueRe.FindStringSubmatch(line))
}

func matchCommentDialogue(line string) (match, bool) {
	return dialogueFrom(commentDialogueRe.FindStringSubmatch(line))
}

func dialogueFrom(m []string) (match, bool) {
	if m == nil || screenKeywords[m[2]] {
		return match{}, false
	}
	return match{
		text: m[5],
		typ:  TypeDialogue,
		parts: Components{
			Indent: m[1],
			Prefix: m[2] + m[3] + m[4],
			Suffix: m[6],
			Meta:   DialogueMeta{Character: m[2], Modifiers: m[3], Separator: m[4]},
		},
	}, true
}

// matchNarration refuses colon-terminated lines, which are menu choices
// whether or not a menu is open.
func matchNarration(line string) (match, bool) {
	if choiceRe.MatchString(line) {
		return match{}, false
	}
	return narrationFrom(narrationRe.FindStringSubmatch(line))
}

func matchCommentNarration(line string) (match, bool) {
	return narrationFrom(commentNarrationRe.FindStringSubmatch(line))
}

func narrationFrom(m []string) (match, bool) {
	if m == nil {
		return match{}, false
	}
	return match{
		text:  m[2],
		typ:   TypeNarration,
		parts: Components{Indent: m[1], Suffix: m[3], Meta: DefaultMeta{}},
	}, true
}

func screenMatcher(re *regexp.Regexp, typ ItemType) func(string) (match, bool) {
	return func(line string) (match, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return match{}, false
		}
		return match{
			text: m[3],
			typ:  typ,
			parts: Components{
				Indent: m[1],
				Prefix: m[2] + " ",
				Suffix: m[4],
				Meta:   ScreenMeta{Keyword: m[2]},
			},
		}, true
	}
}

func matchVariable(line string) (match, bool) {
	m := variableRe.FindStringSubmatch(line)
	if m == nil {
		return match{}, false
	}
	return match{
		text:  m[3],
		typ:   TypeVariable,
		parts: Components{Indent: m[1], Prefix: m[2], Suffix: m[4], Meta: DefaultMeta{}},
	}, true
}

var (
	matchScreenText     = screenMatcher(screenTextRe, TypeScreenText)
	matchScreenButton   = screenMatcher(screenButtonRe, TypeScreenButton)
	matchScreenLabel    = screenMatcher(screenLabelRe, TypeScreenLabel)
	matchScreenProperty = screenMatcher(screenPropertyRe, TypeScreenProperty)
)

// screenAttempts are tried in this order inside screens.
var screenAttempts = []attempt{
	{name: "screen_text", gate: inContext(ContextScreen), match: matchScreenText},
	{name: "screen_button", gate: inContext(ContextScreen), match: matchScreenButton},
	{name: "screen_label", gate: inContext(ContextScreen), match: matchScreenLabel},
	{name: "screen_property", gate: inContext(ContextScreen), match: matchScreenProperty},
}

// directAttempts is the order lines are classified in. It resolves
// ambiguous lines, so it must not be reordered: dialogue goes before
// narration, and choices are only recognised inside menus.
var directAttempts = append(append([]attempt{
	{name: "choice", gate: inContext(ContextMenu), match: matchChoice},
	{name: "dialogue", match: matchDialogue},
	{name: "narration", match: matchNarration},
}, screenAttempts...),
	attempt{name: "variable", match: matchVariable},
)
