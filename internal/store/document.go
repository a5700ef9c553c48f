package store

import (
	"github.com/debemdeboas/blog-studio/internal/document"
	"github.com/debemdeboas/blog-studio/internal/model"
	"github.com/debemdeboas/blog-studio/internal/placeholder"
)

type Reference struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
}

type ImageField struct {
	Type  string    `json:"_type"`
	Asset Reference `json:"asset"`
}

// BlogPostDocument is the create payload of a blogPost.
type BlogPostDocument struct {
	Type        string            `json:"_type"`
	ID          int               `json:"id"`
	Title       string            `json:"title"`
	Subtitle    string            `json:"subtitle"`
	Date        string            `json:"date"`
	Author      string            `json:"author"`
	Category    string            `json:"category"`
	Description document.Document `json:"description"`

	PlaceholderImage       string      `json:"placeholderImage,omitempty"`
	PlaceholderDescription string      `json:"placeholderDescription,omitempty"`
	Image                  *ImageField `json:"image,omitempty"`
	// ImageURL holds images kept outside the store, such as S3 uploads.
	ImageURL string `json:"imageUrl,omitempty"`
}

// NewBlogPostDocument maps a record onto the store schema. Placeholder
// references are stored with their catalog description instead of an asset.
// While uploads are enabled a URL is stored as imageUrl and any other
// reference becomes an asset reference.
func NewBlogPostDocument(rec *model.BlogPostRecord, catalog *placeholder.Catalog, uploadsEnabled bool) BlogPostDocument {
	doc := BlogPostDocument{
		Type:        model.DocumentType,
		ID:          rec.ID,
		Title:       rec.Title,
		Subtitle:    rec.Subtitle,
		Date:        rec.Date,
		Author:      rec.Author,
		Category:    rec.Category,
		Description: rec.Description,
	}
	if doc.Description == nil {
		doc.Description = document.Document{}
	}

	switch {
	case rec.Image == "":
	case placeholder.IsPlaceholderRef(rec.Image):
		if catalog == nil {
			catalog = placeholder.Default()
		}
		doc.PlaceholderImage = rec.Image
		doc.PlaceholderDescription = catalog.Description(rec.Image)
	case !uploadsEnabled:
		storeLogger.Warn().
			Str("image", rec.Image).
			Msg("Dropping asset reference while uploads are disabled")
	case IsURLRef(rec.Image):
		doc.ImageURL = rec.Image
	default:
		doc.Image = &ImageField{
			Type:  "image",
			Asset: Reference{Type: "reference", Ref: rec.Image},
		}
	}

	return doc
}
