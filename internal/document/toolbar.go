package document

import (
	"strings"
	"unicode/utf16"
)

// Placeholder is the token in a toolbar template that receives the selection.
const Placeholder = "text"

type Action struct {
	Name     string
	Label    string
	Template string
	// Offset moves the caret past the inserted markup when nothing was selected.
	Offset int
}

var Toolbar = []Action{
	{Name: "bold", Label: "Bold", Template: "**text**", Offset: 2},
	{Name: "italic", Label: "Italic", Template: "*text*", Offset: 1},
	{Name: "heading1", Label: "Heading 1", Template: "# text", Offset: 2},
	{Name: "heading2", Label: "Heading 2", Template: "## text", Offset: 3},
	{Name: "heading3", Label: "Heading 3", Template: "### text", Offset: 4},
	{Name: "bullet", Label: "Bullet List", Template: "- text", Offset: 2},
	{Name: "ordered", Label: "Numbered List", Template: "1. text", Offset: 3},
	{Name: "quote", Label: "Quote", Template: "> text", Offset: 2},
}

func LookupAction(name string) (Action, bool) {
	for _, a := range Toolbar {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Apply runs the action against the editor text and selection.
func (a Action) Apply(current string, selStart, selEnd int) (string, int) {
	return InsertMarkup(current, selStart, selEnd, a.Template, a.Offset)
}

// InsertMarkup wraps the selected text (or nothing, at the caret) in template
// and returns the new text with the caret position to restore. Positions are
// UTF-16 code units, matching textarea selectionStart/selectionEnd.
func InsertMarkup(current string, selStart, selEnd int, template string, fallback int) (string, int) {
	units := utf16.Encode([]rune(current))

	selStart = clamp(selStart, 0, len(units))
	selEnd = clamp(selEnd, 0, len(units))
	if selStart > selEnd {
		selStart, selEnd = selEnd, selStart
	}

	selected := string(utf16.Decode(units[selStart:selEnd]))
	before := string(utf16.Decode(units[:selStart]))
	after := string(utf16.Decode(units[selEnd:]))

	inserted := strings.Replace(template, Placeholder, selected, 1)

	tokenAt := strings.Index(template, Placeholder)
	if tokenAt < 0 {
		tokenAt = 0
	}
	advance := selEnd - selStart
	if advance == 0 {
		advance = fallback
	}
	cursor := selStart + len(utf16.Encode([]rune(template[:tokenAt]))) + advance

	return before + inserted + after, cursor
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
