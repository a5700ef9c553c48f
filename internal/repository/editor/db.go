package editor

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/blog-studio/internal/db"
	"github.com/debemdeboas/blog-studio/internal/document"
	"github.com/debemdeboas/blog-studio/internal/form"
	"github.com/debemdeboas/blog-studio/internal/util/compression"
	"github.com/google/uuid"
)

const selectDraft = `SELECT id, title, subtitle, date, author, category, image, preview, state, description, created_at, modified_at
FROM drafts WHERE id = ?`

// DBRepository keeps drafts in the sqlite drafts table. Descriptions are
// stored as compressed JSON.
type DBRepository struct {
	db         db.DB
	compressor compression.Compressor
	loc        *time.Location
	now        func() time.Time

	// Serialises read-modify-write cycles of Update.
	mu sync.Mutex
}

func NewDBRepository(database db.DB, compressor compression.Compressor, loc *time.Location) *DBRepository {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DBRepository{
		db:         database,
		compressor: compressor,
		loc:        loc,
		now:        time.Now,
	}
}

func (r *DBRepository) Create() (*Draft, error) {
	now := r.now().UTC()
	draft := &Draft{
		ID:         DraftID(uuid.New().String()),
		State:      StateIdle,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	description, err := r.encodeDescription(draft.Post.Description)
	if err != nil {
		return nil, err
	}

	_, err = r.db.Exec(`INSERT INTO drafts (id, state, description, created_at, modified_at) VALUES (?, ?, ?, ?, ?)`,
		string(draft.ID), string(draft.State), description, now, now)
	if err != nil {
		return nil, fmt.Errorf("error creating draft: %w", err)
	}

	editorLogger.Debug().Str("draft_id", string(draft.ID)).Msg("Draft created")
	return draft, nil
}

func (r *DBRepository) Get(id DraftID) (*Draft, error) {
	var (
		draft               Draft
		rawID, date, state  string
		compressed          []byte
		createdAt, modified time.Time
	)

	err := r.db.QueryRow(selectDraft, string(id)).Scan(
		&rawID,
		&draft.Post.Title,
		&draft.Post.Subtitle,
		&date,
		&draft.Post.Author,
		&draft.Post.Category,
		&draft.Post.Image,
		&draft.Preview,
		&state,
		&compressed,
		&createdAt,
		&modified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading draft: %w", err)
	}

	draft.ID = DraftID(rawID)
	draft.State = SubmissionState(state)
	draft.CreatedAt = createdAt
	draft.ModifiedAt = modified

	if date != "" {
		if parsed, err := time.ParseInLocation(form.DateLayout, date, r.loc); err == nil {
			draft.Post.Date = parsed
		}
	}

	draft.Post.Description, err = r.decodeDescription(compressed)
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *DBRepository) Update(id DraftID, fn func(*Draft) error) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	draft.ID = id
	draft.ModifiedAt = r.now().UTC()

	description, err := r.encodeDescription(draft.Post.Description)
	if err != nil {
		return nil, err
	}

	// state is owned by Begin/EndSubmission and never written here
	_, err = r.db.Exec(`UPDATE drafts SET title = ?, subtitle = ?, date = ?, author = ?, category = ?, image = ?,
preview = ?, description = ?, modified_at = ? WHERE id = ?`,
		draft.Post.Title,
		draft.Post.Subtitle,
		draft.Post.DateString(),
		draft.Post.Author,
		draft.Post.Category,
		draft.Post.Image,
		draft.Preview,
		description,
		draft.ModifiedAt,
		string(id),
	)
	if err != nil {
		return nil, fmt.Errorf("error updating draft: %w", err)
	}
	return draft, nil
}

func (r *DBRepository) Delete(id DraftID) error {
	if _, err := r.db.Exec(`DELETE FROM drafts WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("error deleting draft: %w", err)
	}
	return nil
}

func (r *DBRepository) BeginSubmission(id DraftID) error {
	res, err := r.db.Exec(`UPDATE drafts SET state = ? WHERE id = ? AND state = ?`,
		string(StateSubmitting), string(id), string(StateIdle))
	if err != nil {
		return fmt.Errorf("error starting submission: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error starting submission: %w", err)
	}
	if n == 1 {
		return nil
	}

	if _, err := r.Get(id); err != nil {
		return err
	}
	return ErrSubmissionInFlight
}

func (r *DBRepository) EndSubmission(id DraftID) error {
	res, err := r.db.Exec(`UPDATE drafts SET state = ? WHERE id = ?`, string(StateIdle), string(id))
	if err != nil {
		return fmt.Errorf("error ending submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func (r *DBRepository) encodeDescription(doc document.Document) ([]byte, error) {
	if doc == nil {
		doc = document.Document{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error encoding description: %w", err)
	}
	compressed, err := r.compressor.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("error compressing description: %w", err)
	}
	return compressed, nil
}

func (r *DBRepository) decodeDescription(compressed []byte) (document.Document, error) {
	if len(compressed) == 0 {
		return document.Document{}, nil
	}
	data, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing description: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding description: %w", err)
	}
	return doc, nil
}
