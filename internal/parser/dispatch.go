package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Mode selects a parsing strategy.
type Mode string

const (
	ModeAuto      Mode = ""
	ModeDirect    Mode = "direct"
	ModeTranslate Mode = "translate"
)

// ParseMode converts user input ("auto", "direct", "translate") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case string(ModeDirect):
		return ModeDirect, nil
	case string(ModeTranslate):
		return ModeTranslate, nil
	}
	return ModeAuto, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Result is the outcome of parsing one script.
type Result struct {
	Items []*Item
	// Language is the translate-block language, "" for direct scripts.
	Language string
	// Mode is the strategy that produced Items.
	Mode Mode
}

// ParseFile parses lines with the strategy named by mode, or picks one when
// mode is ModeAuto: translation files go to the TranslateParser, anything
// else to the DirectParser. lines is never modified.
func ParseFile(lines []string, mode Mode) (*Result, error) {
	var p Parser
	switch mode {
	case ModeDirect:
		p = NewDirectParser()
	case ModeTranslate:
		p = NewTranslateParser()
	case ModeAuto:
		tp := NewTranslateParser()
		if tp.CanParse(lines) {
			p, mode = tp, ModeTranslate
		} else {
			p, mode = NewDirectParser(), ModeDirect
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	items, lang := p.Parse(lines)

	log.Debug().
		Str("mode", string(mode)).
		Str("language", lang).
		Int("lines", len(lines)).
		Int("items", len(items)).
		Msg("Parsed script")

	return &Result{Items: items, Language: lang, Mode: mode}, nil
}
