// Package render turns editor markdown into HTML: the quick line-based
// preview shown while typing, the highlighted source view and the full
// rendering used for published posts.
package render

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// Order matters: later rules run on the output of earlier ones.
var previewRules = []substitution{
	{regexp.MustCompile(`(?m)^# (.*)$`), "<h1>$1</h1>"},
	{regexp.MustCompile(`(?m)^## (.*)$`), "<h2>$1</h2>"},
	{regexp.MustCompile(`(?m)^### (.*)$`), "<h3>$1</h3>"},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "<strong>$1</strong>"},
	{regexp.MustCompile(`\*(.*?)\*`), "<em>$1</em>"},
	{regexp.MustCompile(`(?m)^> (.*)$`), "<blockquote>$1</blockquote>"},
	{regexp.MustCompile(`(?m)^- (.*)$`), "<ul><li>$1</li></ul>"},
	{regexp.MustCompile(`(?m)^[0-9]+\. (.*)$`), "<ol><li>$1</li></ol>"},
}

var previewPolicy = bluemonday.UGCPolicy()

// RenderPreview converts markdown to the preview fragment with the ordered
// line rules above. The output is not escaped; pass it through
// SanitizePreview before serving untrusted input.
func RenderPreview(text string) string {
	out := text
	for _, rule := range previewRules {
		out = rule.pattern.ReplaceAllString(out, rule.replacement)
	}
	return strings.ReplaceAll(out, "\n", "<br>")
}

// SanitizePreview strips scripts, event handlers and other unsafe markup.
func SanitizePreview(html string) string {
	return previewPolicy.Sanitize(html)
}

// Previewer renders previews with the configured sanitizing behaviour.
type Previewer struct {
	Sanitize bool
}

func NewPreviewer(sanitize bool) *Previewer {
	if !sanitize {
		renderLogger.Warn().Msg("Preview sanitizing is disabled, author markup is served as-is")
	}
	return &Previewer{Sanitize: sanitize}
}

func (p *Previewer) Render(text string) string {
	out := RenderPreview(text)
	if p == nil || p.Sanitize {
		out = SanitizePreview(out)
	}
	return out
}
