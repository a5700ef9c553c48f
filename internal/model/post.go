// Package model defines the records exchanged between the editor, the
// submission pipeline and the content store.
package model

import (
	"html/template"
	"strconv"
	"time"

	"github.com/debemdeboas/blog-studio/internal/document"
	"github.com/debemdeboas/blog-studio/internal/placeholder"
)

// DocumentType is the store type of every post this service writes.
const DocumentType = "blogPost"

// BlogPostRecord is the payload assembled for one submission attempt. It is
// never modified once built.
type BlogPostRecord struct {
	ID          int               `json:"id"`
	Title       string            `json:"title"`
	Subtitle    string            `json:"subtitle"`
	Date        string            `json:"date"`
	Author      string            `json:"author"`
	Category    string            `json:"category"`
	Image       string            `json:"image,omitempty"`
	Description document.Document `json:"description"`
}

// Post is a blogPost document as read back from the store.
type Post struct {
	DocumentID string `json:"_id"`
	ID         int    `json:"id"`

	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
	Author   string `json:"author"`
	Category string `json:"category"`

	PlaceholderImage       string `json:"placeholderImage,omitempty"`
	PlaceholderDescription string `json:"placeholderDescription,omitempty"`
	// ImageURL is projected from the referenced asset, when there is one.
	ImageURL string `json:"imageUrl,omitempty"`

	Description document.Document `json:"description"`
	CreatedAt   time.Time         `json:"_createdAt"`

	// Filled in by the page handlers.
	Content       template.HTML `json:"-"`
	MDContentHash string        `json:"-"`
}

// Markdown is the editable text of the post body.
func (p *Post) Markdown() string {
	return document.ToMarkdown(p.Description)
}

// URL is the public path of the post page.
func (p *Post) URL() string {
	return "/blog/" + strconv.Itoa(p.ID)
}

// ImagePath resolves the post's hero image: an uploaded asset wins, then a
// placeholder from the catalog.
func (p *Post) ImagePath(c *placeholder.Catalog) string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if p.PlaceholderImage != "" && c != nil {
		return c.AssetPath(p.PlaceholderImage)
	}
	return ""
}

func (p *Post) ImageAlt() string {
	if p.PlaceholderDescription != "" {
		return p.PlaceholderDescription
	}
	return p.Title
}
