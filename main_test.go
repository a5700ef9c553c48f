package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/debemdeboas/blog-studio/internal/cache"
	"github.com/debemdeboas/blog-studio/internal/config"
	"github.com/debemdeboas/blog-studio/internal/document"
	"github.com/debemdeboas/blog-studio/internal/model"
	"github.com/debemdeboas/blog-studio/internal/render"
	"github.com/debemdeboas/blog-studio/internal/repository"
	"github.com/debemdeboas/blog-studio/internal/repository/editor"
	"github.com/debemdeboas/blog-studio/internal/sse"
	"github.com/debemdeboas/blog-studio/internal/store"
	"github.com/debemdeboas/blog-studio/internal/submit"
)

type fakePosts struct {
	posts []model.Post
	err   error
}

func (f *fakePosts) GetPostList(ctx context.Context) ([]model.Post, error) {
	return f.posts, f.err
}

func (f *fakePosts) ReadPost(ctx context.Context, id int) (*model.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.posts {
		if p.ID == id {
			post := p
			return &post, nil
		}
	}
	return nil, repository.ErrPostNotFound
}

func (f *fakePosts) Invalidate(path string) {}

func (f *fakePosts) SetReloadNotifier(func(path string)) {}

type nopCreator struct{}

func (nopCreator) CreateDocument(ctx context.Context, doc any) (*store.CreatedDocument, error) {
	return &store.CreatedDocument{ID: "doc"}, nil
}

func newTestApp(t *testing.T, posts *fakePosts) *app {
	t.Helper()

	pipeline := submit.New(nopCreator{}, posts, submit.Options{})
	editorHandler, err := editor.NewHandler(editor.NewMemoryRepository(), pipeline, content, editor.Options{
		Previewer: render.NewPreviewer(true),
		Uploader:  store.DisabledUploader{},
	})
	if err != nil {
		t.Fatalf("Failed to create editor handler: %v", err)
	}

	a, err := newApp(content, posts, sse.NewClients(), editorHandler)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	return a
}

func samplePosts() []model.Post {
	return []model.Post{
		{
			ID:               42,
			Title:            "First Post",
			Subtitle:         "A subtitle",
			Date:             "2024-06-15",
			Author:           "Ana",
			Category:         "Technology",
			PlaceholderImage: "placeholder2",
			Description:      document.FromMarkdown("Hello **world**\n\n```go\nfmt.Println(1)\n```"),
		},
	}
}

func TestRoutes(t *testing.T) {
	handler := newTestApp(t, &fakePosts{posts: samplePosts()}).routes()

	testCases := []struct {
		name         string
		path         string
		expectStatus int
		expectBody   string
	}{
		{"Robots", "/robots.txt", http.StatusOK, "User-agent: *"},
		{"Blog listing", "/blog", http.StatusOK, "First Post"},
		{"Listing shows placeholder image", "/blog", http.StatusOK, "/static/images/ai.svg"},
		{"Post page", "/blog/42", http.StatusOK, "<strong>world</strong>"},
		{"Unknown post", "/blog/7", http.StatusNotFound, ""},
		{"Non-numeric post id", "/blog/abc", http.StatusNotFound, ""},
		{"Editor", "/create-blog", http.StatusOK, "editor-form"},
		{"Static file", "/static/editor.js", http.StatusOK, ""},
		{"Unknown path", "/nope", http.StatusNotFound, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rr.Code != tc.expectStatus {
				t.Fatalf("Expected status %d, got %d", tc.expectStatus, rr.Code)
			}
			if tc.expectBody != "" && !strings.Contains(rr.Body.String(), tc.expectBody) {
				t.Errorf("Expected body to contain %q, got %s", tc.expectBody, rr.Body.String())
			}
		})
	}
}

func TestRootRedirectsToEditor(t *testing.T) {
	handler := newTestApp(t, &fakePosts{}).routes()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/create-blog" {
		t.Errorf("Expected redirect to /create-blog, got %q", loc)
	}
}

func TestEmptyListing(t *testing.T) {
	handler := newTestApp(t, &fakePosts{}).routes()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/blog", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No posts yet") {
		t.Errorf("Expected empty listing message, got %s", rr.Body.String())
	}
}

func TestStoreFailures(t *testing.T) {
	handler := newTestApp(t, &fakePosts{err: errors.New("store down")}).routes()

	for _, path := range []string{"/blog", "/blog/42"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

			if rr.Code != http.StatusBadGateway {
				t.Errorf("Expected 502, got %d", rr.Code)
			}
		})
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := newTestApp(t, &fakePosts{}).routes()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/blog", nil))
	if rr.Header().Get("X-Frame-Options") != "deny" {
		t.Error("Expected X-Frame-Options on pages")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected X-Content-Type-Options on pages")
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	if rr.Header().Get("X-Frame-Options") != "" {
		t.Error("Expected robots.txt to skip secure headers")
	}
}

func TestCacheIt(t *testing.T) {
	hashStaticFiles(content)

	hash, ok := cache.GetStaticHash("/static/editor.js")
	if !ok || hash == "" {
		t.Fatal("Expected editor.js to be hashed")
	}

	h := cacheIt(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/static/editor.js", nil))
	if rr.Header().Get(config.HETag) != hash {
		t.Errorf("Expected etag %q, got %q", hash, rr.Header().Get(config.HETag))
	}
	if rr.Header().Get(config.HCacheControl) != "public, max-age=3600" {
		t.Errorf("Expected public caching for static files, got %q", rr.Header().Get(config.HCacheControl))
	}

	rr = httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/blog", nil))
	if rr.Header().Get(config.HETag) != "" {
		t.Error("Expected no etag for dynamic pages")
	}
	if rr.Header().Get(config.HCacheControl) != "no-cache" {
		t.Errorf("Expected no-cache, got %q", rr.Header().Get(config.HCacheControl))
	}
}

func TestNewDraftRepository(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	repo, closeFn, err := newDraftRepository(cfg, nil)
	if err != nil {
		t.Fatalf("Expected memory repository, got %v", err)
	}
	defer closeFn()
	if _, ok := repo.(*editor.MemoryRepository); !ok {
		t.Errorf("Expected *editor.MemoryRepository, got %T", repo)
	}

	cfg.Storage.Drafts = config.DraftStorageSQLite
	cfg.Storage.Path = t.TempDir() + "/drafts.db"
	repo, closeFn, err = newDraftRepository(cfg, nil)
	if err != nil {
		t.Fatalf("Expected sqlite repository, got %v", err)
	}
	defer closeFn()
	if _, ok := repo.(*editor.DBRepository); !ok {
		t.Errorf("Expected *editor.DBRepository, got %T", repo)
	}

	cfg.Storage.Path = t.TempDir() + "/missing/dir/drafts.db"
	if _, _, err := newDraftRepository(cfg, nil); err == nil || !strings.Contains(err.Error(), "Failed to initialize database") {
		t.Errorf("Expected an initialization error, got %v", err)
	}
}

func TestNewUploader(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	up, err := newUploader(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := up.(store.DisabledUploader); !ok {
		t.Errorf("Expected disabled uploader, got %T", up)
	}

	client := &store.Client{}
	cfg.Features.Uploads.Enabled = true
	up, err = newUploader(context.Background(), cfg, client)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if up != store.AssetUploader(client) {
		t.Errorf("Expected the store client as uploader, got %T", up)
	}
}
