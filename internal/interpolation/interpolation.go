package interpolation

import (
	"regexp"
	"slices"
)

// Kind classifies a token found in a script string.
type Kind string

const (
	KindSubstitution Kind = "substitution" // [player_name], [points!i]
	KindTextTag      Kind = "text_tag"     // {b}, {/b}, {color=#f00}, {w=0.5}
	KindFormat       Kind = "format"       // %s, %(name)s, %2d
	kindEscape       Kind = "escape"       // [[, {{, %%
)

// Token is one interpolation or markup sequence.
type Token struct {
	Kind  Kind
	Value string
	Start int
}

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// Escapes come first so a literal "[[" never starts a substitution.
var patterns = []pattern{
	{kindEscape, regexp.MustCompile(`\[\[|\{\{|%%`)},
	{KindSubstitution, regexp.MustCompile(`\[[^\[\]]+\]`)},
	{KindTextTag, regexp.MustCompile(`\{/?[A-Za-z_][A-Za-z0-9_]*(?:=[^{}]*)?\}`)},
	{KindFormat, regexp.MustCompile(`%\([A-Za-z_][A-Za-z0-9_]*\)[-+#0-9]*\.?[0-9]*[diouxXeEfFgGcrs]`)},
	{KindFormat, regexp.MustCompile(`%[-+#0-9]*\.?[0-9]*[diouxXeEfFgGcrs]`)},
}

// Extract returns the substitutions, text tags and format directives in
// text, in order of appearance. Escaped brackets are not reported.
func Extract(text string) []Token {
	var all []Token
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			all = append(all, Token{Kind: p.kind, Value: text[loc[0]:loc[1]], Start: loc[0]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	// By position, longest first on ties.
	slices.SortStableFunc(all, func(a, b Token) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return len(b.Value) - len(a.Value)
	})

	var tokens []Token
	lastEnd := -1
	for _, t := range all {
		if t.Start < lastEnd {
			continue
		}
		lastEnd = t.Start + len(t.Value)
		if t.Kind != kindEscape {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Missing lists the tokens of original that edited no longer carries.
// Repeated tokens are counted, so dropping one of two "{w}" is reported.
func Missing(original, edited string) []string {
	want := Extract(original)
	if len(want) == 0 {
		return nil
	}

	have := make(map[string]int)
	for _, t := range Extract(edited) {
		have[t.Value]++
	}

	var missing []string
	for _, t := range want {
		if have[t.Value] > 0 {
			have[t.Value]--
			continue
		}
		missing = append(missing, t.Value)
	}
	return missing
}
