// Package theme handles the colour theme cookies and syntax highlighting CSS.
package theme

import (
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/blog-studio/internal/cache"
	"github.com/debemdeboas/blog-studio/internal/config"
)

func themeConfig() config.ThemeConfig {
	if config.AppConfig != nil {
		return config.AppConfig.Theme
	}
	return config.ThemeConfig{
		Default: config.DefaultTheme,
		SyntaxHighlighting: config.SyntaxConfig{
			DefaultDark:  config.DefaultDarkSyntaxTheme,
			DefaultLight: config.DefaultLightSyntaxTheme,
		},
	}
}

func GetThemeFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(config.CookieTheme); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return themeConfig().Default
}

func GetDefaultSyntaxTheme(theme string) string {
	syntax := themeConfig().SyntaxHighlighting
	switch theme {
	case config.LightTheme:
		return syntax.DefaultLight
	case config.DarkTheme:
		return syntax.DefaultDark
	}
	return ""
}

func GetSyntaxThemeFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return GetDefaultSyntaxTheme(GetThemeFromRequest(r))
}

func GetSyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

func GetFormatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

// GenerateSyntaxCSS returns the chroma stylesheet for theme, cached per theme.
// Unknown themes fall back to chroma's default style.
func GenerateSyntaxCSS(theme string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(theme); ok {
		return css
	}

	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}

	var buf strings.Builder
	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Pick a readable text colour when the style has no default
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := GetFormatter().WriteCSS(&buf, style); err != nil {
		return ""
	}
	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(theme, css)
	return css
}

// Opposite returns the theme a toggle switches to.
func Opposite(theme string) string {
	if theme == config.DarkTheme {
		return config.LightTheme
	}
	return config.DarkTheme
}

func ServeToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	newTheme := Opposite(GetThemeFromRequest(r))
	http.SetCookie(w, &http.Cookie{
		Name:  config.CookieTheme,
		Value: newTheme,
		Path:  "/",
	})

	syntaxTheme := GetDefaultSyntaxTheme(newTheme)
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil && cookie.Value != "" {
		syntaxTheme = cookie.Value
	}

	w.Header().Set("HX-Trigger", fmt.Sprintf(`{"themeChanged":{"value":%q,"syntaxTheme":%q}}`, newTheme, syntaxTheme))
	w.WriteHeader(http.StatusOK)
}

func ServeSyntaxThemeSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	selected := r.FormValue("syntax-theme-select")
	if selected == "" {
		http.Error(w, "theme required", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSyntaxTheme,
		Value:    selected,
		Path:     "/",
		HttpOnly: true,
	})

	writeCSS(w, GenerateSyntaxCSS(selected))
}

func ServeSyntaxThemeGet(w http.ResponseWriter, r *http.Request) {
	writeCSS(w, GenerateSyntaxCSS(r.PathValue("theme")))
}

func writeCSS(w http.ResponseWriter, css template.CSS) {
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(css))
}
