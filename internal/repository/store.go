package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/debemdeboas/blog-studio/internal/cache"
	"github.com/debemdeboas/blog-studio/internal/model"
)

const postProjection = `{
  _id, _createdAt, id, title, subtitle, date, author, category,
  placeholderImage, placeholderDescription, description,
  "imageUrl": coalesce(image.asset->url, imageUrl)
}`

var (
	listQuery   = `*[_type == "` + model.DocumentType + `"] | order(_createdAt desc) ` + postProjection
	postQuery   = `*[_type == "` + model.DocumentType + `" && id == $id] | order(_createdAt desc)[0] ` + postProjection
	latestQuery = `*[_type == "` + model.DocumentType + `"] | order(_updatedAt desc)[0]._updatedAt`
)

// Querier runs read queries against the content store. *store.Client
// satisfies it.
type Querier interface {
	Query(ctx context.Context, query string, params map[string]any, out any) error
}

// StorePostRepository caches query results per page path until the path is
// invalidated.
type StorePostRepository struct { // implements PostRepository
	querier     Querier
	listingPath string

	cache *cache.PathCache[[]model.Post]

	mu             sync.RWMutex
	reloadNotifier func(path string)
	lastUpdated    string
	checked        bool
}

func NewStorePostRepository(q Querier, listingPath string) *StorePostRepository {
	if listingPath == "" {
		listingPath = "/blog"
	}
	return &StorePostRepository{
		querier:     q,
		listingPath: listingPath,
		cache:       cache.NewPathCache[[]model.Post](),
	}
}

func (r *StorePostRepository) postPath(id int) string {
	return r.listingPath + "/" + strconv.Itoa(id)
}

func (r *StorePostRepository) GetPostList(ctx context.Context) ([]model.Post, error) {
	if posts, ok := r.cache.Get(r.listingPath); ok {
		return posts, nil
	}

	gen := r.cache.Generation()
	var posts []model.Post
	if err := r.querier.Query(ctx, listQuery, nil, &posts); err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}

	repoLogger.Debug().Int("count", len(posts)).Msg("Post list loaded")
	if !r.cache.SetIfCurrent(r.listingPath, posts, gen) {
		repoLogger.Debug().Msg("Post list invalidated while loading, not cached")
	}
	return posts, nil
}

func (r *StorePostRepository) ReadPost(ctx context.Context, id int) (*model.Post, error) {
	path := r.postPath(id)
	if cached, ok := r.cache.Get(path); ok && len(cached) == 1 {
		post := cached[0]
		return &post, nil
	}

	gen := r.cache.Generation()
	var post *model.Post
	if err := r.querier.Query(ctx, postQuery, map[string]any{"id": id}, &post); err != nil {
		return nil, fmt.Errorf("error querying post %d: %w", id, err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	r.cache.SetIfCurrent(path, []model.Post{*post}, gen)
	return post, nil
}

func (r *StorePostRepository) Invalidate(path string) {
	n := r.cache.Invalidate(path)
	repoLogger.Info().Str("path", path).Int("entries", n).Msg("Cache invalidated")

	r.mu.RLock()
	notifier := r.reloadNotifier
	r.mu.RUnlock()

	if notifier != nil {
		notifier(path)
	}
}

func (r *StorePostRepository) SetReloadNotifier(notifier func(path string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloadNotifier = notifier
}

// CheckForChanges asks the store for the latest update time of any post and
// invalidates the listing when it moved. It reports whether it did.
func (r *StorePostRepository) CheckForChanges(ctx context.Context) (bool, error) {
	var latest string
	if err := r.querier.Query(ctx, latestQuery, nil, &latest); err != nil {
		return false, fmt.Errorf("error checking latest modification time: %w", err)
	}

	r.mu.Lock()
	previous, checked := r.lastUpdated, r.checked
	r.lastUpdated, r.checked = latest, true
	r.mu.Unlock()

	if !checked || latest == previous {
		return false, nil
	}

	repoLogger.Info().Str("updated_at", latest).Msg("Posts changed in the store")
	r.Invalidate(r.listingPath)
	return true, nil
}

// Watch polls CheckForChanges every interval until ctx is done. Posts
// published from elsewhere then reach open listing pages.
func (r *StorePostRepository) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.CheckForChanges(ctx); err != nil {
			repoLogger.Error().Err(err).Msg("Error checking for post changes")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
