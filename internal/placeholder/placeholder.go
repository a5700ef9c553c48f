// Package placeholder holds the fixed catalog of stand-in images offered while
// direct uploads are unavailable.
package placeholder

import (
	"errors"
	"strings"
)

// RefPrefix marks an image reference as a placeholder id.
const RefPrefix = "placeholder"

const fallbackDescription = "Placeholder image"

var ErrUnknownPlaceholder = errors.New("unknown placeholder image")

type Image struct {
	ID        string
	AssetPath string
	Label     string
}

// Description is the human readable text stored alongside a placeholder reference.
func (i Image) Description() string {
	return i.Label + " placeholder image"
}

type Catalog struct {
	images []Image
}

var defaultCatalog = &Catalog{images: []Image{
	{ID: "placeholder1", AssetPath: "/static/images/career.svg", Label: "Abstract"},
	{ID: "placeholder2", AssetPath: "/static/images/ai.svg", Label: "AI"},
	{ID: "placeholder3", AssetPath: "/static/images/about.svg", Label: "Technology"},
	{ID: "placeholder4", AssetPath: "/static/images/strategy.svg", Label: "Business"},
}}

// Default returns the process-wide catalog.
func Default() *Catalog {
	return defaultCatalog
}

func (c *Catalog) All() []Image {
	out := make([]Image, len(c.images))
	copy(out, c.images)
	return out
}

func (c *Catalog) Lookup(id string) (Image, bool) {
	for _, img := range c.images {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}

// Description returns the catalog description for id, or a generic one for
// placeholder ids the catalog does not know.
func (c *Catalog) Description(id string) string {
	if img, ok := c.Lookup(id); ok {
		return img.Description()
	}
	return fallbackDescription
}

// AssetPath resolves a placeholder id to its bundled asset, or "".
func (c *Catalog) AssetPath(id string) string {
	if img, ok := c.Lookup(id); ok {
		return img.AssetPath
	}
	return ""
}

func IsPlaceholderRef(ref string) bool {
	return strings.HasPrefix(ref, RefPrefix)
}

// Selection is the image picker state of one form.
type Selection struct {
	PreviewPath string
	Ref         string
}

func (s *Selection) Select(c *Catalog, id string) error {
	img, ok := c.Lookup(id)
	if !ok {
		return ErrUnknownPlaceholder
	}
	s.PreviewPath = img.AssetPath
	s.Ref = img.ID
	return nil
}

func (s *Selection) Clear() {
	s.PreviewPath = ""
	s.Ref = ""
}

func (s Selection) IsEmpty() bool {
	return s.Ref == "" && s.PreviewPath == ""
}
