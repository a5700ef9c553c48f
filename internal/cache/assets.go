package cache

import "html/template"

var (
	staticHashes = NewCache[string, string]()
	syntaxStyles = NewCache[string, template.CSS]()
)

// GetStaticHash returns the content hash of a bundled asset, used to bust
// browser caches.
func GetStaticHash(path string) (string, bool) {
	return staticHashes.Get(path)
}

func SetStaticHash(path, hash string) {
	staticHashes.Set(path, hash)
}

func GetSyntaxCSS(theme string) (template.CSS, bool) {
	return syntaxStyles.Get(theme)
}

func SetSyntaxCSS(theme string, css template.CSS) {
	syntaxStyles.Set(theme, css)
}

func ClearSyntaxCSS() {
	syntaxStyles.Clear()
}
