package parser

import "errors"

// ErrUnknownMode is returned by ParseFile for a mode it has no strategy for.
var ErrUnknownMode = errors.New("unknown parse mode")

// ItemType classifies the statement a translatable string was found in.
type ItemType string

const (
	TypeDialogue        ItemType = "dialogue"
	TypeNarration       ItemType = "narration"
	TypeChoice          ItemType = "choice"
	TypeScreenText      ItemType = "screen_text"
	TypeScreenButton    ItemType = "screen_button"
	TypeScreenLabel     ItemType = "screen_label"
	TypeScreenProperty  ItemType = "screen_property"
	TypeVariable        ItemType = "variable"
	TypeTranslateString ItemType = "translate_string"
)

// Context is the lexical block a line belongs to.
type Context string

const (
	ContextGlobal    Context = "global"
	ContextLabel     Context = "label"
	ContextScreen    Context = "screen"
	ContextMenu      Context = "menu"
	ContextPython    Context = "python"
	ContextTranslate Context = "translate"
)

// Meta is the type-specific part of an item's reconstruction data.
// Implementations: DialogueMeta, ScreenMeta, TranslateMeta, DefaultMeta.
type Meta interface {
	meta()
}

// DialogueMeta holds the speaker tag and any attribute tokens between the
// tag and the string, e.g. Character "mc", Modifiers " happy". Separator is
// the blank right before the quote; empty means a single space.
type DialogueMeta struct {
	Character string
	Modifiers string
	Separator string
}

// ScreenMeta holds the screen statement keyword (text, textbutton, ...).
type ScreenMeta struct {
	Keyword string
}

// TranslateMeta links a `new` line back to its `old` line.
type TranslateMeta struct {
	OldLineIndex int
}

// DefaultMeta marks items rebuilt purely from indent, prefix and suffix.
type DefaultMeta struct{}

func (DialogueMeta) meta()  {}
func (ScreenMeta) meta()    {}
func (TranslateMeta) meta() {}
func (DefaultMeta) meta()   {}

// Components is everything around the quoted string on a source line.
type Components struct {
	// Indent is the leading whitespace (for comment-embedded items it also
	// includes the "# " marker).
	Indent string
	// Prefix is the token run between Indent and the opening quote.
	Prefix string
	// Suffix is everything after the closing quote, line terminator included.
	Suffix string
	Meta   Meta
}

// Item is one translatable string found in a script.
type Item struct {
	// LineIndex is the 0-based position of the line in the parsed slice.
	LineIndex int
	// OriginalText is the source string, escapes kept verbatim.
	OriginalText string
	// CurrentText is the editable value.
	CurrentText string
	// InitialText is CurrentText as it was when the item was parsed.
	InitialText string

	Type    ItemType
	Context Context
	Parts   Components

	IsModifiedSession bool
	HasBreakpoint     bool

	// OriginalLineIndex points at the old/comment line holding the source
	// text in translate files, or -1.
	OriginalLineIndex int
	// CharacterTrans is the speaker tag used on a translated dialogue line.
	CharacterTrans string
	// BlockLanguage is the language of the enclosing translate block.
	BlockLanguage string
	// FromComment is set on items found inside a "#" comment.
	FromComment bool
}

func newItem(lineIndex int, text string, typ ItemType, ctx Context, parts Components) *Item {
	return &Item{
		LineIndex:         lineIndex,
		OriginalText:      text,
		CurrentText:       text,
		InitialText:       text,
		Type:              typ,
		Context:           ctx,
		Parts:             parts,
		OriginalLineIndex: -1,
	}
}

// SetText replaces the editable text and refreshes the modification flag.
func (it *Item) SetText(text string) {
	it.CurrentText = text
	it.IsModifiedSession = it.CurrentText != it.InitialText
}

// Modified reports whether the text differs from its session snapshot.
func (it *Item) Modified() bool {
	return it.CurrentText != it.InitialText
}

// Line renders the item's source line with its current text.
func (it *Item) Line() string {
	return FormatLine(it, it.CurrentText)
}

// Parser is implemented by both parsing strategies.
type Parser interface {
	// Parse scans lines once and returns the items found plus the detected
	// translation language ("" when none).
	Parse(lines []string) ([]*Item, string)
}
