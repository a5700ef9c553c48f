package model

import (
	"html/template"
	"net/http"

	"github.com/debemdeboas/blog-studio/internal/config"
	"github.com/debemdeboas/blog-studio/internal/theme"
)

type PageData struct {
	SiteName string
	Tagline  string

	PageURL string

	Theme string

	SyntaxCSS    template.CSS
	SyntaxTheme  string
	SyntaxThemes []string

	LiveReload bool
}

func NewPageData(r *http.Request) *PageData {
	syntaxTheme := theme.GetSyntaxThemeFromRequest(r)
	pd := &PageData{
		PageURL:      r.URL.Path,
		Theme:        theme.GetThemeFromRequest(r),
		SyntaxTheme:  syntaxTheme,
		SyntaxThemes: theme.GetSyntaxThemes(),
		SyntaxCSS:    theme.GenerateSyntaxCSS(syntaxTheme),
	}

	if cfg := config.AppConfig; cfg != nil {
		pd.SiteName = cfg.Site.Name
		pd.Tagline = cfg.Site.Tagline
		pd.LiveReload = cfg.Features.LiveReload.Enabled
	}
	return pd
}

// IsEditor reports whether the page is the post editor.
func (pd *PageData) IsEditor() bool {
	return pd.PageURL == "/create-blog" || pd.PageURL == "/create-blog/new"
}
