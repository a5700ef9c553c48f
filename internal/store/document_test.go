package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/debemdeboas/blog-studio/internal/config"
	"github.com/debemdeboas/blog-studio/internal/document"
	"github.com/debemdeboas/blog-studio/internal/model"
	"github.com/debemdeboas/blog-studio/internal/placeholder"
)

func TestNewBlogPostDocument(t *testing.T) {
	base := model.BlogPostRecord{
		ID:       1234,
		Title:    "Hello world",
		Subtitle: "A long enough subtitle",
		Date:     "2024-06-01",
		Author:   "Ada",
		Category: "AI Trends",
	}

	testCases := []struct {
		name           string
		image          string
		uploadsEnabled bool
		placeholder    string
		description    string
		assetRef       string
		imageURL       string
	}{
		{"No image", "", false, "", "", "", ""},
		{"Known placeholder", "placeholder2", false, "placeholder2", "AI placeholder image", "", ""},
		{"Unknown placeholder", "placeholder9", false, "placeholder9", "Placeholder image", "", ""},
		{"Asset with uploads enabled", "image-abc-100x100-png", true, "", "", "image-abc-100x100-png", ""},
		{"Asset with uploads disabled is dropped", "image-abc-100x100-png", false, "", "", "", ""},
		{"Placeholder wins over uploads", "placeholder1", true, "placeholder1", "Abstract placeholder image", "", ""},
		{"External URL with uploads enabled", "https://images.example.com/images/1-a.png", true, "", "", "", "https://images.example.com/images/1-a.png"},
		{"External URL with uploads disabled is dropped", "https://images.example.com/images/1-a.png", false, "", "", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := base
			rec.Image = tc.image

			doc := NewBlogPostDocument(&rec, placeholder.Default(), tc.uploadsEnabled)

			if doc.Type != "blogPost" {
				t.Errorf("Expected _type blogPost, got %q", doc.Type)
			}
			if doc.PlaceholderImage != tc.placeholder {
				t.Errorf("Expected placeholderImage %q, got %q", tc.placeholder, doc.PlaceholderImage)
			}
			if doc.PlaceholderDescription != tc.description {
				t.Errorf("Expected placeholderDescription %q, got %q", tc.description, doc.PlaceholderDescription)
			}

			gotRef := ""
			if doc.Image != nil {
				gotRef = doc.Image.Asset.Ref
			}
			if gotRef != tc.assetRef {
				t.Errorf("Expected asset ref %q, got %q", tc.assetRef, gotRef)
			}
			if doc.ImageURL != tc.imageURL {
				t.Errorf("Expected imageUrl %q, got %q", tc.imageURL, doc.ImageURL)
			}
		})
	}
}

func TestBlogPostDocumentEncoding(t *testing.T) {
	rec := model.BlogPostRecord{ID: 7, Title: "Hello", Date: "2024-06-01", Image: "placeholder3"}
	data, err := json.Marshal(NewBlogPostDocument(&rec, nil, false))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)

	for _, want := range []string{
		`"_type":"blogPost"`,
		`"id":7`,
		`"description":[]`,
		`"placeholderImage":"placeholder3"`,
		`"placeholderDescription":"Technology placeholder image"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, `"image"`) {
		t.Errorf("Expected no image field, got %s", s)
	}

	rec.Description = document.FromMarkdownWithKeys("First", document.NewPrefixedKeySource("k"))
	data, _ = json.Marshal(NewBlogPostDocument(&rec, nil, false))
	if !strings.Contains(string(data), `"marks":[]`) {
		t.Errorf("Expected spans to carry empty marks, got %s", data)
	}
}

func TestS3UploadBecomesImageURL(t *testing.T) {
	u := newS3Uploader(&fakePutObject{}, config.S3Config{Bucket: "b", PublicURL: "https://images.example.com"})
	u.now = func() time.Time { return time.UnixMilli(1792263840105) }

	asset, err := u.UploadImage(context.Background(), "My Photo.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}

	rec := model.BlogPostRecord{ID: 1, Title: "Hello", Date: "2024-06-01", Image: asset.Ref()}
	data, err := json.Marshal(NewBlogPostDocument(&rec, nil, true))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)

	if strings.Contains(s, `"_ref"`) {
		t.Errorf("Expected no asset reference for an s3 object, got %s", s)
	}
	if !strings.Contains(s, `"imageUrl":"https://images.example.com/images/1792263840105-my-photo.png"`) {
		t.Errorf("Expected the public URL as imageUrl, got %s", s)
	}
}
