package cache

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
	"testing"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, string]()

	t.Run("Set and Get", func(t *testing.T) {
		cache.Set("test-key", "test-value")

		got, exists := cache.Get("test-key")
		if !exists {
			t.Error("Expected key to exist")
		}
		if got != "test-value" {
			t.Errorf("Expected %q, got %q", "test-value", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if _, exists := cache.Get("non-existent"); exists {
			t.Error("Expected key to not exist")
		}
	})

	t.Run("Overwrite existing key", func(t *testing.T) {
		cache.Set("overwrite-key", "value1")
		cache.Set("overwrite-key", "value2")

		got, _ := cache.Get("overwrite-key")
		if got != "value2" {
			t.Errorf("Expected %q, got %q", "value2", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		cache.Set("delete-key", "v")
		cache.Delete("delete-key")
		cache.Delete("never-set")

		if _, exists := cache.Get("delete-key"); exists {
			t.Error("Expected key to be deleted")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		cache.Set("key1", "value1")
		cache.Set("key2", "value2")
		cache.Clear()

		if cache.Len() != 0 {
			t.Errorf("Expected empty cache, got %d items", cache.Len())
		}
	})
}

func TestCache_DeleteFunc(t *testing.T) {
	cache := NewCache[int, string]()
	for i := 0; i < 10; i++ {
		cache.Set(i, fmt.Sprintf("value-%d", i))
	}

	removed := cache.DeleteFunc(func(k int) bool { return k%2 == 0 })
	if removed != 5 {
		t.Errorf("Expected 5 removed entries, got %d", removed)
	}
	if cache.Len() != 5 {
		t.Errorf("Expected 5 remaining entries, got %d", cache.Len())
	}
	if _, exists := cache.Get(3); !exists {
		t.Error("Expected odd keys to survive")
	}
}

func TestPathCache_Invalidate(t *testing.T) {
	testCases := []struct {
		name      string
		path      string
		removed   int
		surviving []string
	}{
		{"Listing and its posts", "/blog", 3, []string{"/blogroll", "/create-blog"}},
		{"Trailing slash", "/blog/", 3, []string{"/blogroll", "/create-blog"}},
		{"Single post", "/blog/42", 1, []string{"/blog", "/blog/7", "/blogroll", "/create-blog"}},
		{"Unknown path", "/nope", 0, []string{"/blog", "/blog/42", "/blog/7", "/blogroll", "/create-blog"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pages := NewPathCache[string]()
			for _, p := range []string{"/blog", "/blog/42", "/blog/7", "/blogroll", "/create-blog"} {
				pages.Set(p, "page "+p)
			}

			if got := pages.Invalidate(tc.path); got != tc.removed {
				t.Errorf("Expected %d removed, got %d", tc.removed, got)
			}
			if pages.Len() != len(tc.surviving) {
				t.Errorf("Expected %d surviving entries, got %d", len(tc.surviving), pages.Len())
			}
			for _, p := range tc.surviving {
				if _, ok := pages.Get(p); !ok {
					t.Errorf("Expected %s to survive", p)
				}
			}
		})
	}
}

func TestPathCache_SetIfCurrent(t *testing.T) {
	pages := NewPathCache[string]()

	gen := pages.Generation()
	if !pages.SetIfCurrent("/blog", "fresh", gen) {
		t.Fatal("Expected store with the current generation to succeed")
	}

	stale := pages.Generation()
	pages.Invalidate("/blog")
	if pages.SetIfCurrent("/blog", "stale", stale) {
		t.Error("Expected store with a generation from before the invalidation to be refused")
	}
	if _, ok := pages.Get("/blog"); ok {
		t.Error("Expected /blog to stay uncached")
	}

	if !pages.SetIfCurrent("/blog", "after", pages.Generation()) {
		t.Error("Expected store with the new generation to succeed")
	}
}

func TestCache_Concurrency(t *testing.T) {
	cache := NewCache[int, string]()
	const numGoroutines = 50
	const numOperations = 200

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cache.Set(id*numOperations+j, fmt.Sprintf("value-%d-%d", id, j))
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cache.Get(id*numOperations + j)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != numGoroutines*numOperations {
		t.Errorf("Expected %d entries, got %d", numGoroutines*numOperations, cache.Len())
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		cache.DeleteFunc(func(k int) bool { return k%3 == 0 })
	}()
	go func() {
		defer wg.Done()
		cache.Clear()
	}()
	wg.Wait()
}

func TestRenderedMarkdownCache(t *testing.T) {
	ClearRenderedMarkdownCache()

	t.Run("Set and get rendered markdown", func(t *testing.T) {
		html := template.HTML("<h1>Test</h1>")
		SetRenderedMarkdown("test-hash", "github", html)

		cached, found := GetRenderedMarkdown("test-hash", "github")
		if !found {
			t.Fatal("Expected cached content to be found")
		}
		if cached.HTML != html {
			t.Errorf("Expected HTML %q, got %q", html, cached.HTML)
		}
	})

	t.Run("Syntax theme is part of the key", func(t *testing.T) {
		SetRenderedMarkdown("same-hash", "github", "<p>light</p>")
		SetRenderedMarkdown("same-hash", "monokai", "<p>dark</p>")

		light, _ := GetRenderedMarkdown("same-hash", "github")
		dark, _ := GetRenderedMarkdown("same-hash", "monokai")
		if light.HTML == dark.HTML {
			t.Error("Expected separate entries per syntax theme")
		}
	})

	t.Run("Clear rendered markdown cache", func(t *testing.T) {
		ClearRenderedMarkdownCache()
		if _, found := GetRenderedMarkdown("test-hash", "github"); found {
			t.Error("Expected all cached content to be cleared")
		}
	})
}

func TestAssetCaches(t *testing.T) {
	SetStaticHash("/static/style.css", "abc123")
	if hash, ok := GetStaticHash("/static/style.css"); !ok || hash != "abc123" {
		t.Errorf("Expected static hash abc123, got %q (%v)", hash, ok)
	}

	ClearSyntaxCSS()
	SetSyntaxCSS("gruvbox", ".chroma { color: red }")
	css, ok := GetSyntaxCSS("gruvbox")
	if !ok || !strings.Contains(string(css), ".chroma") {
		t.Errorf("Expected cached syntax css, got %q (%v)", css, ok)
	}
}

func BenchmarkCache_Get(b *testing.B) {
	cache := NewCache[int, string]()
	for i := 0; i < 10000; i++ {
		cache.Set(i, fmt.Sprintf("value-%d", i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(i % 10000)
	}
}
