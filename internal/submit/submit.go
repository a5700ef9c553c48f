// Package submit turns a validated draft into a blogPost document in the
// content store.
package submit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/debemdeboas/blog-studio/internal/form"
	"github.com/debemdeboas/blog-studio/internal/model"
	"github.com/debemdeboas/blog-studio/internal/placeholder"
	"github.com/debemdeboas/blog-studio/internal/store"
)

// MaxPostID bounds the generated numeric post ids: [0, MaxPostID).
const MaxPostID = 10000

// Creator persists a document. *store.Client satisfies it.
type Creator interface {
	CreateDocument(ctx context.Context, doc any) (*store.CreatedDocument, error)
}

// Invalidator drops cached views of a path once new content exists.
type Invalidator interface {
	Invalidate(path string)
}

type Options struct {
	Catalog        *placeholder.Catalog
	UploadsEnabled bool
	ListingPath    string
	Location       *time.Location

	NewID func() int
	Now   func() time.Time
}

type Pipeline struct {
	creator     Creator
	invalidator Invalidator
	opts        Options
}

func New(creator Creator, invalidator Invalidator, opts Options) *Pipeline {
	if opts.Catalog == nil {
		opts.Catalog = placeholder.Default()
	}
	if opts.ListingPath == "" {
		opts.ListingPath = "/blog"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.NewID == nil {
		opts.NewID = func() int { return rand.IntN(MaxPostID) }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{creator: creator, invalidator: invalidator, opts: opts}
}

// ListingPath is where the editor is sent after a successful submission.
func (p *Pipeline) ListingPath() string {
	return p.opts.ListingPath
}

// Validate checks the draft against the form schema without submitting.
func (p *Pipeline) Validate(draft form.BlogPostDraft) error {
	return draft.Validate(p.opts.Now(), p.opts.Location)
}

// Submit validates the draft, builds the record, creates it in the store and
// invalidates the listing. Validation failures are returned unwrapped so
// callers can render per-field messages; no request is made in that case.
func (p *Pipeline) Submit(ctx context.Context, draft form.BlogPostDraft) (*model.BlogPostRecord, error) {
	if err := p.Validate(draft); err != nil {
		return nil, err
	}

	rec := p.NewRecord(draft)
	logRecord(rec)

	doc := store.NewBlogPostDocument(rec, p.opts.Catalog, p.opts.UploadsEnabled)
	created, err := p.creator.CreateDocument(ctx, doc)
	if err != nil {
		submitLogger.Error().Err(err).Int("id", rec.ID).Msg("Error creating blog post")
		return nil, fmt.Errorf("failed to create blog post: %w", err)
	}

	submitLogger.Info().
		Int("id", rec.ID).
		Str("document_id", created.ID).
		Msg("Blog post created")

	if p.invalidator != nil {
		p.invalidator.Invalidate(p.opts.ListingPath)
	}
	return rec, nil
}

// NewRecord assembles the immutable record of one submission attempt.
func (p *Pipeline) NewRecord(draft form.BlogPostDraft) *model.BlogPostRecord {
	return &model.BlogPostRecord{
		ID:          p.opts.NewID(),
		Title:       draft.Title,
		Subtitle:    draft.Subtitle,
		Date:        draft.Date.In(p.opts.Location).Format(form.DateLayout),
		Author:      draft.Author,
		Category:    draft.Category,
		Image:       draft.Image,
		Description: draft.Description,
	}
}

func logRecord(rec *model.BlogPostRecord) {
	description := "No description content"
	if !rec.Description.IsEmpty() {
		description = "Description content exists"
	}

	submitLogger.Info().
		Int("id", rec.ID).
		Str("title", rec.Title).
		Str("subtitle", rec.Subtitle).
		Str("date", rec.Date).
		Str("author", rec.Author).
		Str("category", rec.Category).
		Str("image", rec.Image).
		Str("description", description).
		Bool("has_image", rec.Image != "").
		Msg("Creating blog post")
}
