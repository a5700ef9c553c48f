// Package editor keeps the server-side state of open post editors and serves
// the editor page and its partials.
package editor

import (
	"errors"
	"time"

	"github.com/debemdeboas/blog-studio/internal/form"
	"github.com/debemdeboas/blog-studio/internal/placeholder"
)

type DraftID string

// SubmissionState guards a draft against concurrent submissions.
type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateSubmitting SubmissionState = "submitting"
)

var (
	ErrDraftNotFound      = errors.New("draft not found")
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

// Draft is one editor form instance.
type Draft struct {
	ID   DraftID
	Post form.BlogPostDraft
	// Preview is the asset path of the selected image, shown in the picker.
	Preview string
	State   SubmissionState

	CreatedAt  time.Time
	ModifiedAt time.Time
}

func (d *Draft) Selection() placeholder.Selection {
	return placeholder.Selection{PreviewPath: d.Preview, Ref: d.Post.Image}
}

func (d *Draft) SetSelection(s placeholder.Selection) {
	d.Preview = s.PreviewPath
	d.Post.Image = s.Ref
}

func (d *Draft) IsSubmitting() bool {
	return d.State == StateSubmitting
}

type Repository interface {
	Create() (*Draft, error)
	// Get returns a copy of the draft.
	Get(id DraftID) (*Draft, error)
	// Update applies fn to the stored draft atomically and returns the result.
	// An error from fn leaves the draft untouched.
	Update(id DraftID, fn func(*Draft) error) (*Draft, error)
	Delete(id DraftID) error

	// BeginSubmission moves the draft from idle to submitting, or fails with
	// ErrSubmissionInFlight.
	BeginSubmission(id DraftID) error
	// EndSubmission returns the draft to idle.
	EndSubmission(id DraftID) error
}
