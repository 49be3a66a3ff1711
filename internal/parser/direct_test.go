package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `define e = Character("Eileen")
define gui.about = _("A short story about \"friends\".")

label start:
    scene bg room
    play music "theme.ogg"
    mc "Hello, world!"
    mc happy "I'm glad you came." with vpunch
    e @ sad "Oh no..."  # sigh
    "Just some narration."
    "Another one" id start_3f2a
    call chapter_two
    jump ending
    $ points = 0

    menu:
        "Where should we go?"
        "The park" if not rainy:
            mc "Let's go to the park."
        "Home":
            "We went home."
    "After the menu":
    "The day ended."

screen main_menu():
    tag menu
    text "Welcome back" size 30
    textbutton "Start" action Start()
    label "Options"
    tooltip "Hover for help"
    add "logo.png"

init python:
    x = "not text"
`

func parseDirect(t *testing.T, src string) ([]string, []*Item) {
	t.Helper()
	lines := strings.Split(src, "\n")
	items, lang := NewDirectParser().Parse(lines)
	assert.Empty(t, lang)
	return lines, items
}

func TestDirectParser_ScenarioA(t *testing.T) {
	_, items := parseDirect(t, "label start:\n    mc \"Hello, world!\"\n    \"Just some narration.\"")

	require.Len(t, items, 2)

	assert.Equal(t, TypeDialogue, items[0].Type)
	assert.Equal(t, ContextLabel, items[0].Context)
	assert.Equal(t, 1, items[0].LineIndex)
	assert.Equal(t, "Hello, world!", items[0].OriginalText)
	assert.Equal(t, DialogueMeta{Character: "mc", Separator: " "}, items[0].Parts.Meta)

	assert.Equal(t, TypeNarration, items[1].Type)
	assert.Equal(t, 2, items[1].LineIndex)
	assert.Equal(t, "Just some narration.", items[1].OriginalText)
}

func TestDirectParser_Classification(t *testing.T) {
	lines, items := parseDirect(t, sampleScript)

	type want struct {
		line string
		typ  ItemType
		ctx  Context
		text string
	}
	expected := []want{
		{`define gui.about = _("A short story about \"friends\".")`, TypeVariable, ContextGlobal, `A short story about \"friends\".`},
		{`    mc "Hello, world!"`, TypeDialogue, ContextLabel, "Hello, world!"},
		{`    mc happy "I'm glad you came." with vpunch`, TypeDialogue, ContextLabel, "I'm glad you came."},
		{`    e @ sad "Oh no..."  # sigh`, TypeDialogue, ContextLabel, "Oh no..."},
		{`    "Just some narration."`, TypeNarration, ContextLabel, "Just some narration."},
		{`    "Another one" id start_3f2a`, TypeNarration, ContextLabel, "Another one"},
		{`        "Where should we go?"`, TypeNarration, ContextMenu, "Where should we go?"},
		{`        "The park" if not rainy:`, TypeChoice, ContextMenu, "The park"},
		{`            mc "Let's go to the park."`, TypeDialogue, ContextMenu, "Let's go to the park."},
		{`        "Home":`, TypeChoice, ContextMenu, "Home"},
		{`            "We went home."`, TypeNarration, ContextMenu, "We went home."},
		{`    "The day ended."`, TypeNarration, ContextLabel, "The day ended."},
		{`    text "Welcome back" size 30`, TypeScreenText, ContextScreen, "Welcome back"},
		{`    textbutton "Start" action Start()`, TypeScreenButton, ContextScreen, "Start"},
		{`    label "Options"`, TypeScreenLabel, ContextScreen, "Options"},
		{`    tooltip "Hover for help"`, TypeScreenProperty, ContextScreen, "Hover for help"},
	}

	require.Len(t, items, len(expected))
	for i, w := range expected {
		it := items[i]
		assert.Equal(t, w.line, lines[it.LineIndex], "item %d line", i)
		assert.Equal(t, w.typ, it.Type, "item %d type", i)
		assert.Equal(t, w.ctx, it.Context, "item %d context", i)
		assert.Equal(t, w.text, it.OriginalText, "item %d text", i)
		assert.Equal(t, it.OriginalText, it.CurrentText)
		assert.Equal(t, it.OriginalText, it.InitialText)
		assert.Equal(t, -1, it.OriginalLineIndex)
	}
}

func TestDirectParser_Metadata(t *testing.T) {
	_, items := parseDirect(t, sampleScript)

	byText := make(map[string]*Item)
	for _, it := range items {
		byText[it.OriginalText] = it
	}

	happy := byText["I'm glad you came."]
	require.NotNil(t, happy)
	assert.Equal(t, "    ", happy.Parts.Indent)
	assert.Equal(t, "mc happy ", happy.Parts.Prefix)
	assert.Equal(t, " with vpunch", happy.Parts.Suffix)
	assert.Equal(t, DialogueMeta{Character: "mc", Modifiers: " happy", Separator: " "}, happy.Parts.Meta)

	sad := byText["Oh no..."]
	require.NotNil(t, sad)
	assert.Equal(t, DialogueMeta{Character: "e", Modifiers: " @ sad", Separator: " "}, sad.Parts.Meta)
	assert.Equal(t, "  # sigh", sad.Parts.Suffix)

	button := byText["Start"]
	require.NotNil(t, button)
	assert.Equal(t, ScreenMeta{Keyword: "textbutton"}, button.Parts.Meta)
	assert.Equal(t, " action Start()", button.Parts.Suffix)

	choice := byText["The park"]
	require.NotNil(t, choice)
	assert.Equal(t, " if not rainy:", choice.Parts.Suffix)
	assert.Equal(t, DefaultMeta{}, choice.Parts.Meta)

	variable := byText[`A short story about \"friends\".`]
	require.NotNil(t, variable)
	assert.Equal(t, "define gui.about = _(", variable.Parts.Prefix)
	assert.Equal(t, ")", variable.Parts.Suffix)
}

func TestDirectParser_RoundTrip(t *testing.T) {
	lines, items := parseDirect(t, sampleScript)
	require.NotEmpty(t, items)

	for _, it := range items {
		assert.Equal(t, lines[it.LineIndex], FormatLine(it, it.OriginalText))
		assert.Equal(t, lines[it.LineIndex], it.Line())
	}
}

func TestDirectParser_RoundTripKeepsLineTerminators(t *testing.T) {
	lines := []string{
		"label start:\r\n",
		"    mc \"Hi there\" # greet\r\n",
		"    \"Narration\"\n",
		"    menu:\r\n",
		"        \"Pick me\":\r\n",
		"            pass\r\n",
	}

	items, _ := NewDirectParser().Parse(lines)
	require.Len(t, items, 3)

	assert.Equal(t, " # greet\r\n", items[0].Parts.Suffix)
	assert.Equal(t, "\n", items[1].Parts.Suffix)
	assert.Equal(t, TypeChoice, items[2].Type)
	assert.Equal(t, ":\r\n", items[2].Parts.Suffix)

	for _, it := range items {
		assert.Equal(t, lines[it.LineIndex], it.Line())
	}
}

func TestDirectParser_Idempotent(t *testing.T) {
	lines, items := parseDirect(t, sampleScript)

	rebuilt := make([]string, len(lines))
	copy(rebuilt, lines)
	for _, it := range items {
		rebuilt[it.LineIndex] = FormatLine(it, it.OriginalText)
	}

	again, _ := NewDirectParser().Parse(rebuilt)
	require.Len(t, again, len(items))
	for i := range items {
		assert.Equal(t, items[i].Type, again[i].Type)
		assert.Equal(t, items[i].Parts, again[i].Parts)
		assert.Equal(t, items[i].OriginalText, again[i].OriginalText)
	}
}

func TestDirectParser_ChoiceNeedsMenu(t *testing.T) {
	_, items := parseDirect(t, "label start:\n    \"Choice text\":\n        pass")
	assert.Empty(t, items)

	_, items = parseDirect(t, "label start:\n    menu:\n        \"Choice text\":\n            pass")
	require.Len(t, items, 1)
	assert.Equal(t, TypeChoice, items[0].Type)
	assert.Equal(t, ContextMenu, items[0].Context)
	assert.Equal(t, "Choice text", items[0].OriginalText)
}

func TestDirectParser_MenuEndsOnDedent(t *testing.T) {
	src := "label start:\n" +
		"    menu:\n" +
		"        \"Stay\":\n" +
		"            pass\n" +
		"    \"Leave\":\n" +
		"    mc \"Back in the label.\""
	_, items := parseDirect(t, src)

	require.Len(t, items, 2)
	assert.Equal(t, "Stay", items[0].OriginalText)
	assert.Equal(t, ContextLabel, items[1].Context)
}

func TestDirectParser_DeniedStatements(t *testing.T) {
	for _, line := range []string{
		`    call some_label("Not text")`,
		`    call some_label`,
		`    play music "track.ogg"`,
		`    show text "Banner" at truecenter`,
		`    voice "v001.ogg"`,
		`    $ renpy.notify("Saved")`,
		`    window hide`,
		`    if flag:`,
	} {
		_, items := parseDirect(t, "label start:\n"+line)
		assert.Empty(t, items, line)
	}
}

func TestDirectParser_ScreenStatementsOnlyInScreens(t *testing.T) {
	_, items := parseDirect(t, "label start:\n    text \"Not a screen\"\n    textbutton \"Nope\" action Return()")
	assert.Empty(t, items)
}

func TestDirectParser_SkipsMalformedStrings(t *testing.T) {
	_, items := parseDirect(t, "label start:\n    mc \"unterminated\n    \"also broken\n    # mc \"commented\"")
	assert.Empty(t, items)
}

func TestDirectParser_ResetsBetweenCalls(t *testing.T) {
	p := NewDirectParser()
	p.Parse([]string{"screen s():", "    text \"x\""})

	items, _ := p.Parse([]string{`text "not in a screen"`})
	assert.Empty(t, items)
}

func TestDirectParser_DialogueSpacingRoundTrips(t *testing.T) {
	lines := []string{
		"label start:\n",
		"    mc\t\"Tab before the string.\"\n",
		"    new  \"Speaker named new.\"\n",
		"    e happy  \"Two spaces.\"\n",
	}
	items, _ := NewDirectParser().Parse(lines)
	require.Len(t, items, 3)

	assert.Equal(t, DialogueMeta{Character: "mc", Separator: "\t"}, items[0].Parts.Meta)
	assert.Equal(t, "Tab before the string.", items[0].OriginalText)
	assert.Equal(t, DialogueMeta{Character: "new", Modifiers: " ", Separator: " "}, items[1].Parts.Meta)
	assert.Equal(t, DialogueMeta{Character: "e", Modifiers: " happy ", Separator: " "}, items[2].Parts.Meta)

	for _, it := range items {
		assert.Equal(t, lines[it.LineIndex], it.Line())
	}

	items[0].SetText("Edited")
	assert.Equal(t, "    mc\t\"Edited\"\n", items[0].Line())
}
