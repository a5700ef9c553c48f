// Package repository reads published posts back from the content store for
// the listing and post pages.
package repository

import (
	"context"
	"errors"

	"github.com/debemdeboas/blog-studio/internal/model"
	"github.com/rs/zerolog"
)

var ErrPostNotFound = errors.New("post not found")

var repoLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

type PostRepository interface {
	GetPostList(ctx context.Context) ([]model.Post, error)
	ReadPost(ctx context.Context, id int) (*model.Post, error)

	// Invalidate drops cached views under path and notifies viewers of it.
	Invalidate(path string)

	// SetReloadNotifier sets a function that will be called with every
	// invalidated path.
	SetReloadNotifier(notifier func(path string))
}
