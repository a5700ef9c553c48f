// Package routes defines HTTP route constants for the application.
package routes

const (
	// Static and assets
	RobotsPath     = "/robots.txt"
	ThemeToggle    = "/theme/toggle"
	SyntaxThemeSet = "/syntax-theme/set"
	SyntaxThemeGet = "/syntax-theme/{theme}"

	// SSE
	SSEPath = "/sse"

	// Root
	RootPath = "/"

	// Editor routes
	Editor               = "/create-blog"
	EditorNewDraft       = "/create-blog/new"
	PartialsDraftPreview = "/partials/draft/preview"
	PartialsDraftSource  = "/partials/draft/source"
	PartialsDraftInsert  = "/partials/draft/insert"
	PartialsDraftImage   = "/partials/draft/image"

	// Blog
	BlogList = "/blog"
	BlogPost = "/blog/{id}"

	// API
	APIUploadImage = "/api/upload-image"
)
