package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/debemdeboas/blog-studio/internal/config"
	"github.com/gosimple/slug"
)

var ErrUploadsDisabled = errors.New("image uploads are disabled")

// Asset is an uploaded image.
type Asset struct {
	ID  string `json:"assetId"`
	URL string `json:"url"`
	// External assets live outside the content store, so posts can only
	// point at them by URL.
	External bool `json:"-"`
}

// Ref is the image reference a draft keeps for the asset: the store asset id,
// or the public URL for external assets.
func (a *Asset) Ref() string {
	if a.External {
		return a.URL
	}
	return a.ID
}

// IsURLRef reports whether an image reference is a plain URL rather than a
// store asset id.
func IsURLRef(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}

// AssetUploader stores an image and returns the reference to put on a post.
type AssetUploader interface {
	UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (*Asset, error)
}

// DisabledUploader refuses every upload. It is what the editor gets while
// the uploads capability is switched off.
type DisabledUploader struct{}

func (DisabledUploader) UploadImage(context.Context, string, string, io.Reader) (*Asset, error) {
	return nil, ErrUploadsDisabled
}

// AssetFilename builds a unique, URL-safe object name from an uploaded
// file name.
func AssetFilename(original string, now time.Time) string {
	ext := strings.ToLower(path.Ext(original))
	base := slug.Make(strings.TrimSuffix(path.Base(original), path.Ext(original)))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), base, ext)
}

type assetResponse struct {
	ID       string `json:"_id"`
	URL      string `json:"url"`
	Document *struct {
		ID  string `json:"_id"`
		URL string `json:"url"`
	} `json:"document"`
}

// UploadImage sends the image to the store's asset endpoint.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (*Asset, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	name := AssetFilename(filename, time.Now())
	u := c.endpoint(false, "assets", "images", c.Dataset()) + "?" + url.Values{"filename": {name}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	req.Header.Set(config.HCType, contentType)

	storeLogger.Info().
		Str("filename", name).
		Str("content_type", contentType).
		Int("size", len(data)).
		Msg("Uploading image asset")

	var res assetResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}

	asset := &Asset{ID: res.ID, URL: res.URL}
	if res.Document != nil && res.Document.ID != "" {
		asset = &Asset{ID: res.Document.ID, URL: res.Document.URL}
	}
	if asset.ID == "" {
		raw, _ := json.Marshal(res)
		storeLogger.Error().Str("response", string(raw)).Msg("Asset upload response has no id")
		return nil, ErrUnexpectedResponse
	}
	return asset, nil
}
