// Package form holds the working value of the post editor and the schema it
// must satisfy before it can be submitted.
package form

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/debemdeboas/blog-studio/internal/document"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the wire format of post dates, both in the form and in the store.
const DateLayout = "2006-01-02"

const (
	FieldTitle       = "title"
	FieldSubtitle    = "subtitle"
	FieldDate        = "date"
	FieldAuthor      = "author"
	FieldCategory    = "category"
	FieldImage       = "image"
	FieldDescription = "description"
)

const (
	MsgTitle        = "Title must be at least 5 characters."
	MsgSubtitle     = "Subtitle must be at least 10 characters."
	MsgDateRequired = "Please select a date."
	MsgDateFuture   = "Date cannot be in the future."
	MsgDateTooEarly = "Date cannot be before 1900-01-01."
	MsgAuthor       = "Author name must be at least 2 characters."
	MsgCategory     = "Please select a category."
)

const (
	minTitleLength    = 5
	minSubtitleLength = 10
	minAuthorLength   = 2
	earliestDate      = "1900-01-01"
)

// Categories is the fixed set of labels a post can be filed under.
var Categories = []string{
	"AI Trends",
	"Case Studies",
	"AI Ethics",
	"Business Strategy",
	"Healthcare",
	"Financial Services",
	"Retail",
	"Manufacturing",
}

// BlogPostDraft is the form's working value.
type BlogPostDraft struct {
	Title       string            `json:"title"`
	Subtitle    string            `json:"subtitle"`
	Date        time.Time         `json:"date"`
	Author      string            `json:"author"`
	Category    string            `json:"category"`
	Image       string            `json:"image,omitempty"`
	Description document.Document `json:"description"`
}

// ParseValues reads the scalar fields of a submitted form. The description
// and image are owned by the draft and are not part of the form post. Text
// fields are kept as typed, so the length rules count surrounding spaces.
func ParseValues(values url.Values, loc *time.Location) BlogPostDraft {
	if loc == nil {
		loc = time.UTC
	}

	d := BlogPostDraft{
		Title:    values.Get(FieldTitle),
		Subtitle: values.Get(FieldSubtitle),
		Author:   values.Get(FieldAuthor),
		Category: strings.TrimSpace(values.Get(FieldCategory)),
	}

	if raw := strings.TrimSpace(values.Get(FieldDate)); raw != "" {
		if date, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
			d.Date = date
		}
	}

	return d
}

// Merge copies the scalar fields of other into d, keeping d's image and
// description.
func (d *BlogPostDraft) Merge(other BlogPostDraft) {
	d.Title = other.Title
	d.Subtitle = other.Subtitle
	d.Date = other.Date
	d.Author = other.Author
	d.Category = other.Category
}

// DateString is the date in DateLayout, or "" when unset.
func (d BlogPostDraft) DateString() string {
	if d.Date.IsZero() {
		return ""
	}
	return d.Date.Format(DateLayout)
}

// Validate checks every field. now decides what "today" is in loc; dates are
// compared as calendar days, never as instants.
func (d BlogPostDraft) Validate(now time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	return validation.ValidateStruct(&d,
		validation.Field(&d.Title,
			validation.Required.Error(MsgTitle),
			validation.RuneLength(minTitleLength, 0).Error(MsgTitle),
		),
		validation.Field(&d.Subtitle,
			validation.Required.Error(MsgSubtitle),
			validation.RuneLength(minSubtitleLength, 0).Error(MsgSubtitle),
		),
		validation.Field(&d.Date,
			validation.Required.Error(MsgDateRequired),
			validation.By(dateRule(now, loc)),
		),
		validation.Field(&d.Author,
			validation.Required.Error(MsgAuthor),
			validation.RuneLength(minAuthorLength, 0).Error(MsgAuthor),
		),
		validation.Field(&d.Category,
			validation.Required.Error(MsgCategory),
			validation.In(categoryValues()...).Error(MsgCategory),
		),
	)
}

func dateRule(now time.Time, loc *time.Location) validation.RuleFunc {
	today := calendarDay(now.In(loc))
	earliest, _ := time.Parse(DateLayout, earliestDate)

	return func(value any) error {
		date, ok := value.(time.Time)
		if !ok || date.IsZero() {
			return nil
		}

		day := calendarDay(date.In(loc))
		if day.After(today) {
			return errors.New(MsgDateFuture)
		}
		if day.Before(earliest) {
			return errors.New(MsgDateTooEarly)
		}
		return nil
	}
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func categoryValues() []any {
	out := make([]any, len(Categories))
	for i, c := range Categories {
		out[i] = c
	}
	return out
}

// FieldErrors flattens a validation error into one message per field for
// templates. Errors that are not field errors are returned under "".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return map[string]string{"": err.Error()}
	}

	out := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		if fieldErr != nil {
			out[field] = fieldErr.Error()
		}
	}
	return out
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var errs validation.Errors
	return errors.As(err, &errs)
}
