package parser

import "strings"

// FormatLine rebuilds the source line of item with newText in place of the
// quoted string. The first applicable rule wins:
//
//  1. a translate "new" line:  {indent}new "{text}"{suffix}
//  2. a dialogue speaker tag:  {indent}{character}{modifiers}{sep}"{text}"{suffix}
//  3. a screen keyword:        {indent}{keyword} "{text}"{suffix}
//  4. anything else:           {indent}{prefix}"{text}"{suffix}
//
// newText is inserted as is; quotes and backslashes must already be escaped.
// Items with missing metadata fall through to rule 4.
func FormatLine(item *Item, newText string) string {
	if item == nil {
		return ""
	}
	p := item.Parts

	var b strings.Builder
	b.Grow(len(p.Indent) + len(p.Prefix) + len(newText) + len(p.Suffix) + 16)
	b.WriteString(p.Indent)
	b.WriteString(leadFor(p))
	b.WriteByte('"')
	b.WriteString(newText)
	b.WriteByte('"')
	b.WriteString(p.Suffix)
	return b.String()
}

// leadFor returns what goes between the indentation and the opening quote.
func leadFor(p Components) string {
	switch meta := p.Meta.(type) {
	case TranslateMeta:
		return "new "
	case DialogueMeta:
		if meta.Character != "" {
			sep := meta.Separator
			if sep == "" {
				sep = " "
			}
			return meta.Character + meta.Modifiers + sep
		}
	case ScreenMeta:
		if meta.Keyword != "" {
			return meta.Keyword + " "
		}
	}
	return p.Prefix
}
