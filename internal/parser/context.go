package parser

// ContextTracker follows which block the current line belongs to.
//
// A block header switches the context and records its indentation. Only a
// menu is ever left by dedenting: the first later line indented no deeper
// than the `menu:` header ends it and restores the context that was active
// before the menu opened. Labels, screens, python and translate blocks last
// until the next header of any kind.
type ContextTracker struct {
	current      Context
	headerIndent int

	menuActive bool
	menuIndent int
	beforeMenu Context

	language string
}

// NewContextTracker returns a tracker positioned at global scope.
func NewContextTracker() *ContextTracker {
	t := &ContextTracker{}
	t.Reset()
	return t
}

// Reset drops all state so the tracker can be reused for another pass.
func (t *ContextTracker) Reset() {
	*t = ContextTracker{current: ContextGlobal}
}

// Current returns the active context.
func (t *ContextTracker) Current() Context { return t.current }

// Language returns the language of the most recent translate header.
func (t *ContextTracker) Language() string { return t.language }

// Update feeds one non-blank, non-comment line to the tracker. When the line
// is a block header it returns the context it opened and true.
func (t *ContextTracker) Update(line string) (Context, bool) {
	indent := indentWidth(line)

	if t.menuActive && indent <= t.menuIndent {
		t.menuActive = false
		t.current = t.beforeMenu
	}

	switch {
	case menuHeaderRe.MatchString(line):
		if !t.menuActive {
			t.beforeMenu = t.current
		}
		t.menuActive = true
		t.menuIndent = indent
		t.enter(ContextMenu, indent)
		return ContextMenu, true
	case labelHeaderRe.MatchString(line):
		t.enter(ContextLabel, indent)
		return ContextLabel, true
	case screenHeaderRe.MatchString(line):
		t.enter(ContextScreen, indent)
		return ContextScreen, true
	case pythonHeaderRe.MatchString(line):
		t.enter(ContextPython, indent)
		return ContextPython, true
	}

	if m := translateHeaderRe.FindStringSubmatch(line); m != nil {
		t.language = m[2]
		t.enter(ContextTranslate, indent)
		return ContextTranslate, true
	}

	return t.current, false
}

func (t *ContextTracker) enter(ctx Context, indent int) {
	t.current = ctx
	t.headerIndent = indent
}
