package parser

import "strings"

// detectWindow is how many leading lines CanParse looks at.
const detectWindow = 100

// source is a buffered original string waiting for its translation.
type source struct {
	text  string
	index int
	set   bool
}

// TranslateParser extracts pairs from Ren'Py translation files
// (tl/<language>/*.rpy): `old`/`new` string pairs and commented
// source dialogue followed by its translated line.
type TranslateParser struct {
	tracker *ContextTracker
	old     source
	comment source
}

func NewTranslateParser() *TranslateParser {
	return &TranslateParser{tracker: NewContextTracker()}
}

// CanParse reports whether a translate block opens within the first
// detectWindow lines.
func (p *TranslateParser) CanParse(lines []string) bool {
	for i, line := range lines {
		if i >= detectWindow {
			break
		}
		if translateHeaderRe.MatchString(line) {
			return true
		}
	}
	return false
}

// Parse returns the translation items and the language of the first
// translate block.
func (p *TranslateParser) Parse(lines []string) ([]*Item, string) {
	p.tracker.Reset()
	p.old = source{}
	p.comment = source{}

	var (
		items     []*Item
		language  string
		blockLang string
	)

	for idx, line := range lines {
		if isBlank(line) {
			continue
		}
		ctx := p.tracker.Current()

		if isComment(line) {
			if it := p.commentItem(idx, line, ctx); it != nil {
				it.BlockLanguage = blockLang
				items = append(items, it)
			}
			continue
		}

		if opened, ok := p.tracker.Update(line); ok {
			if opened == ContextTranslate {
				blockLang = p.tracker.Language()
				if language == "" {
					language = blockLang
				}
				p.old = source{}
				p.comment = source{}
			}
			continue
		}
		ctx = p.tracker.Current()

		if m := oldRe.FindStringSubmatch(line); m != nil {
			p.old = source{text: m[2], index: idx, set: true}
			continue
		}

		if m := newRe.FindStringSubmatch(line); m != nil {
			it := p.newItem(idx, m, ctx)
			it.BlockLanguage = blockLang
			items = append(items, it)
			p.old = source{}
			continue
		}

		if p.comment.set && ctx == ContextTranslate {
			if it := p.translatedItem(idx, line, ctx); it != nil {
				it.BlockLanguage = blockLang
				items = append(items, it)
				p.comment = source{}
			}
		}
	}

	return items, language
}

// newItem pairs a `new` line with the buffered `old` text. A `new` without
// an `old` gets an empty original.
func (p *TranslateParser) newItem(idx int, m []string, ctx Context) *Item {
	oldIndex := -1
	if p.old.set {
		oldIndex = p.old.index
	}
	it := newItem(idx, p.old.text, TypeTranslateString, ctx, Components{
		Indent: m[1],
		Prefix: "new ",
		Suffix: m[3],
		Meta:   TranslateMeta{OldLineIndex: oldIndex},
	})
	it.CurrentText = m[2]
	it.InitialText = m[2]
	it.OriginalLineIndex = oldIndex
	return it
}

// commentItem checks a comment for embedded dialogue or narration. A hit
// becomes its own item and the pending source for the next translated line.
func (p *TranslateParser) commentItem(idx int, line string, ctx Context) *Item {
	body := strings.TrimLeft(line, " \t#")
	if deniedStatements[firstToken(body)] {
		return nil
	}
	m, ok := matchCommentDialogue(line)
	if !ok {
		m, ok = matchCommentNarration(line)
	}
	if !ok {
		return nil
	}
	p.comment = source{text: m.text, index: idx, set: true}

	it := newItem(idx, m.text, m.typ, ctx, m.parts)
	it.FromComment = true
	return it
}

// translatedItem matches the line that follows a commented source line.
func (p *TranslateParser) translatedItem(idx int, line string, ctx Context) *Item {
	if deniedStatements[firstToken(line)] {
		return nil
	}
	m, ok := matchDialogue(line)
	if !ok {
		m, ok = matchNarration(line)
	}
	if !ok {
		return nil
	}

	it := newItem(idx, p.comment.text, m.typ, ctx, m.parts)
	it.CurrentText = m.text
	it.InitialText = m.text
	it.OriginalLineIndex = p.comment.index
	if meta, ok := m.parts.Meta.(DialogueMeta); ok {
		it.CharacterTrans = meta.Character
	}
	return it
}
