package parser

// DirectParser extracts text from ordinary Ren'Py scripts: dialogue,
// narration, menu choices, screen text and translatable defines.
type DirectParser struct {
	tracker  *ContextTracker
	attempts []attempt
}

func NewDirectParser() *DirectParser {
	return &DirectParser{
		tracker:  NewContextTracker(),
		attempts: directAttempts,
	}
}

// Parse yields at most one item per line. The detected language is always
// empty for direct scripts.
func (p *DirectParser) Parse(lines []string) ([]*Item, string) {
	p.tracker.Reset()

	var items []*Item
	for idx, line := range lines {
		// Skip empty lines and comments.
		if isBlank(line) || isComment(line) {
			continue
		}

		p.tracker.Update(line)
		ctx := p.tracker.Current()

		if p.denied(line, ctx) {
			continue
		}

		for _, a := range p.attempts {
			if a.gate != nil && !a.gate(ctx) {
				continue
			}
			m, ok := a.match(line)
			if !ok {
				continue
			}
			items = append(items, newItem(idx, m.text, m.typ, ctx, m.parts))
			break
		}
	}

	return items, ""
}

// denied reports whether the line starts with a statement that never holds
// visible text. Inside a screen, a line that is a screen text statement is
// let through even when its keyword (label) is on the list.
func (p *DirectParser) denied(line string, ctx Context) bool {
	if !deniedStatements[firstToken(line)] {
		return false
	}
	if ctx == ContextScreen {
		for _, a := range screenAttempts {
			if _, ok := a.match(line); ok {
				return false
			}
		}
	}
	return true
}
