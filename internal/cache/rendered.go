package cache

import "html/template"

// RenderedContent is a post body rendered to sanitized HTML.
type RenderedContent struct {
	HTML template.HTML
}

var renderedMarkdownCache = NewCache[string, *RenderedContent]()

func renderedKey(contentHash, syntaxTheme string) string {
	return contentHash + ":" + syntaxTheme
}

func GetRenderedMarkdown(contentHash, syntaxTheme string) (*RenderedContent, bool) {
	return renderedMarkdownCache.Get(renderedKey(contentHash, syntaxTheme))
}

func SetRenderedMarkdown(contentHash, syntaxTheme string, html template.HTML) {
	renderedMarkdownCache.Set(renderedKey(contentHash, syntaxTheme), &RenderedContent{HTML: html})
}

func ClearRenderedMarkdownCache() {
	renderedMarkdownCache.Clear()
}
