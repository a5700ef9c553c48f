package editor

import (
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/debemdeboas/blog-studio/internal/config"
	"github.com/debemdeboas/blog-studio/internal/document"
	"github.com/debemdeboas/blog-studio/internal/form"
	"github.com/debemdeboas/blog-studio/internal/model"
	"github.com/debemdeboas/blog-studio/internal/placeholder"
	"github.com/debemdeboas/blog-studio/internal/render"
	"github.com/debemdeboas/blog-studio/internal/routes"
	"github.com/debemdeboas/blog-studio/internal/store"
	"github.com/debemdeboas/blog-studio/internal/submit"
	"github.com/debemdeboas/blog-studio/internal/theme"
	"github.com/debemdeboas/blog-studio/internal/util"
	"github.com/gomarkdown/markdown"
	"github.com/rs/zerolog"
)

const (
	fieldContent        = "content"
	fieldAction         = "action"
	fieldSelectionStart = "selectionStart"
	fieldSelectionEnd   = "selectionEnd"
	fieldUploadFile     = "file"

	templateEditorForm  = "editor-form"
	templateImagePicker = "image-picker"
)

type Options struct {
	Catalog   *placeholder.Catalog
	Previewer *render.Previewer
	Uploader  store.AssetUploader
	Location  *time.Location

	UploadsEnabled bool
	MaxUploadBytes int64
	// Notifications shows store failures to the editor. When off the form is
	// re-rendered silently.
	Notifications bool
}

type Handler struct {
	repo     Repository
	pipeline *submit.Pipeline
	opts     Options

	tmpl *template.Template
}

// NewHandler parses the layout and editor templates from fsys once.
func NewHandler(repo Repository, pipeline *submit.Pipeline, fsys fs.FS, opts Options) (*Handler, error) {
	if opts.Catalog == nil {
		opts.Catalog = placeholder.Default()
	}
	if opts.Previewer == nil {
		opts.Previewer = render.NewPreviewer(true)
	}
	if opts.Uploader == nil || !opts.UploadsEnabled {
		opts.Uploader = store.DisabledUploader{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	tmpl, err := template.ParseFS(fsys,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplateEditor,
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		repo:     repo,
		pipeline: pipeline,
		opts:     opts,
		tmpl:     tmpl,
	}, nil
}

type editorPage struct {
	*model.PageData

	Draft    *Draft
	Markdown string
	Preview  template.HTML

	Categories   []string
	Placeholders []placeholder.Image
	Toolbar      []document.Action

	Errors    map[string]string
	FormError string

	UploadsEnabled bool
	UploadsMessage string
}

func (h *Handler) newPage(r *http.Request, draft *Draft) *editorPage {
	md := document.ToMarkdown(draft.Post.Description)
	return &editorPage{
		PageData:       model.NewPageData(r),
		Draft:          draft,
		Markdown:       md,
		Preview:        template.HTML(h.opts.Previewer.Render(md)),
		Categories:     form.Categories,
		Placeholders:   h.opts.Catalog.All(),
		Toolbar:        document.Toolbar,
		UploadsEnabled: h.opts.UploadsEnabled,
		UploadsMessage: config.ErrUploadsUnavailable,
	}
}

// currentDraft loads the draft named by the request cookie.
func (h *Handler) currentDraft(r *http.Request) (*Draft, error) {
	cookie, err := r.Cookie(config.CookieDraftID)
	if err != nil || cookie.Value == "" {
		return nil, ErrDraftNotFound
	}
	return h.repo.Get(DraftID(cookie.Value))
}

// ensureDraft returns the request's draft, creating one and setting the
// cookie when there is none.
func (h *Handler) ensureDraft(w http.ResponseWriter, r *http.Request) (*Draft, error) {
	draft, err := h.currentDraft(r)
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, ErrDraftNotFound) {
		return nil, err
	}

	draft, err = h.repo.Create()
	if err != nil {
		return nil, err
	}
	setDraftCookie(w, draft.ID)
	return draft, nil
}

func setDraftCookie(w http.ResponseWriter, id DraftID) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieDraftID,
		Value:    string(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) render(w http.ResponseWriter, name string, status int, data any) {
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		editorLogger.Error().Err(err).Str("template", name).Msg("Error executing template")
	}
}

// renderForm re-renders the form alone for htmx requests and the full page
// otherwise.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, page *editorPage) {
	name := config.TemplateLayout
	if r.Header.Get(config.HHxRequest) != "" {
		name = templateEditorForm
	}
	h.render(w, name, status, page)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get(config.HHxRequest) != "" {
		w.Header().Set(config.HHxRedirect, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func normalizeContent(s string) string {
	return string(markdown.NormalizeNewlines([]byte(s)))
}

// ServeEditor renders the editor for the request's draft.
func (h *Handler) ServeEditor(w http.ResponseWriter, r *http.Request) {
	draft, err := h.ensureDraft(w, r)
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error loading draft")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	page := h.newPage(r, draft)
	w.Header().Set(config.HETag, util.ContentHash([]byte(page.Theme+page.SyntaxTheme+string(draft.ID)+draft.ModifiedAt.String())))
	h.render(w, config.TemplateLayout, http.StatusOK, page)
}

// ServeNewDraft discards the current draft and starts an empty one.
func (h *Handler) ServeNewDraft(w http.ResponseWriter, r *http.Request) {
	if old, err := h.currentDraft(r); err == nil && !old.IsSubmitting() {
		if err := h.repo.Delete(old.ID); err != nil {
			editorLogger.Warn().Err(err).Str("draft_id", string(old.ID)).Msg("Error deleting draft")
		}
	}

	draft, err := h.repo.Create()
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error creating draft")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	setDraftCookie(w, draft.ID)
	redirect(w, r, routes.Editor)
}

// ServePreview stores the posted markdown on the draft as a document and
// answers with the preview fragment.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	content := normalizeContent(r.FormValue(fieldContent))

	if draft, err := h.currentDraft(r); err == nil {
		_, err := h.repo.Update(draft.ID, func(d *Draft) error {
			d.Post.Description = document.FromMarkdown(content)
			return nil
		})
		if err != nil {
			editorLogger.Error().Err(err).Str("draft_id", string(draft.ID)).Msg("Error saving draft body")
		}
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.opts.Previewer.Render(content)))
}

// ServeSource answers with the highlighted markdown source.
func (h *Handler) ServeSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	content := normalizeContent(r.FormValue(fieldContent))
	out, err := render.HighlightMarkdown(content, theme.GetSyntaxThemeFromRequest(r))
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error highlighting source")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

type insertResponse struct {
	Content string `json:"content"`
	Cursor  int    `json:"cursor"`
}

// ServeInsert applies a toolbar action to the posted text and selection.
func (h *Handler) ServeInsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	action, ok := document.LookupAction(r.FormValue(fieldAction))
	if !ok {
		http.Error(w, "unknown toolbar action", http.StatusBadRequest)
		return
	}

	start, err := formInt(r, fieldSelectionStart)
	if err != nil {
		http.Error(w, "invalid selection", http.StatusBadRequest)
		return
	}
	end, err := formInt(r, fieldSelectionEnd)
	if err != nil {
		http.Error(w, "invalid selection", http.StatusBadRequest)
		return
	}

	text, cursor := action.Apply(normalizeContent(r.FormValue(fieldContent)), start, end)
	writeJSON(w, http.StatusOK, insertResponse{Content: text, Cursor: cursor})
}

func formInt(r *http.Request, key string) (int, error) {
	raw := r.FormValue(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// ServeImage selects (POST) or clears (DELETE) the draft's placeholder image
// and answers with the picker. GET only renders it.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	draft, err := h.ensureDraft(w, r)
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error loading draft")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	if r.Method == http.MethodGet {
		h.render(w, templateImagePicker, http.StatusOK, h.newPage(r, draft))
		return
	}

	imageID := r.FormValue(form.FieldImage)
	draft, err = h.repo.Update(draft.ID, func(d *Draft) error {
		sel := d.Selection()
		if r.Method == http.MethodDelete {
			sel.Clear()
		} else if err := sel.Select(h.opts.Catalog, imageID); err != nil {
			return err
		}
		d.SetSelection(sel)
		return nil
	})
	if errors.Is(err, placeholder.ErrUnknownPlaceholder) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error updating image selection")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	h.render(w, templateImagePicker, http.StatusOK, h.newPage(r, draft))
}

// ServeSubmit merges the posted fields into the draft and runs the
// submission pipeline.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	draft, err := h.ensureDraft(w, r)
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error loading draft")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	values := form.ParseValues(r.PostForm, h.opts.Location)
	_, hasContent := r.PostForm[fieldContent]
	content := normalizeContent(r.PostForm.Get(fieldContent))

	draft, err = h.repo.Update(draft.ID, func(d *Draft) error {
		d.Post.Merge(values)
		if hasContent {
			d.Post.Description = document.FromMarkdown(content)
		}
		return nil
	})
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error saving draft")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	if err := h.repo.BeginSubmission(draft.ID); err != nil {
		if errors.Is(err, ErrSubmissionInFlight) {
			http.Error(w, config.ErrSubmissionInFlight, http.StatusConflict)
			return
		}
		editorLogger.Error().Err(err).Msg("Error starting submission")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := h.repo.EndSubmission(draft.ID); err != nil && !errors.Is(err, ErrDraftNotFound) {
			editorLogger.Error().Err(err).Str("draft_id", string(draft.ID)).Msg("Error ending submission")
		}
	}()

	_, err = h.pipeline.Submit(r.Context(), draft.Post)
	if err != nil {
		page := h.newPage(r, draft)
		if form.IsValidationError(err) {
			page.Errors = form.FieldErrors(err)
			h.renderForm(w, r, http.StatusBadRequest, page)
			return
		}

		zerolog.Ctx(r.Context()).Warn().Err(err).Str("draft_id", string(draft.ID)).Msg("Submission failed, form kept")
		if h.opts.Notifications {
			page.FormError = config.ErrCreatePost
		}
		h.renderForm(w, r, http.StatusBadGateway, page)
		return
	}

	if err := h.repo.Delete(draft.ID); err != nil {
		editorLogger.Warn().Err(err).Str("draft_id", string(draft.ID)).Msg("Error deleting submitted draft")
	}
	http.SetCookie(w, &http.Cookie{
		Name:   config.CookieDraftID,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	redirect(w, r, h.pipeline.ListingPath())
}

type uploadError struct {
	Error string `json:"error"`
}

// ServeUpload forwards an image to the configured asset backend and selects
// it on the request's draft.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}
	if !h.opts.UploadsEnabled {
		writeJSON(w, http.StatusServiceUnavailable, uploadError{Error: config.ErrUploadsUnavailable})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, uploadError{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, uploadError{Error: config.ErrNoFileProvided})
		return
	}

	file, header, err := r.FormFile(fieldUploadFile)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, uploadError{Error: config.ErrNoFileProvided})
		return
	}
	defer file.Close()

	asset, err := h.opts.Uploader.UploadImage(r.Context(), header.Filename, header.Header.Get(config.HCType), file)
	if err != nil {
		status, msg := uploadFailure(err)
		editorLogger.Error().Err(err).Int("status", status).Msg("Error uploading image")
		writeJSON(w, status, uploadError{Error: msg})
		return
	}

	editorLogger.Info().Str("asset_id", asset.ID).Msg("Image uploaded")

	if draft, err := h.currentDraft(r); err == nil {
		_, err := h.repo.Update(draft.ID, func(d *Draft) error {
			d.SetSelection(placeholder.Selection{PreviewPath: asset.URL, Ref: asset.Ref()})
			return nil
		})
		if err != nil {
			editorLogger.Warn().Err(err).Str("draft_id", string(draft.ID)).Msg("Error attaching uploaded image")
		}
	}
	writeJSON(w, http.StatusOK, asset)
}

func uploadFailure(err error) (int, string) {
	var apiErr *store.APIError
	switch {
	case errors.Is(err, store.ErrUploadsDisabled):
		return http.StatusServiceUnavailable, config.ErrUploadsUnavailable
	case errors.As(err, &apiErr):
		return apiErr.StatusCode, "Sanity API error: " + apiErr.Status
	case errors.Is(err, store.ErrUnexpectedResponse):
		return http.StatusInternalServerError, config.ErrUnexpectedUpload
	}
	return http.StatusInternalServerError, err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		editorLogger.Error().Err(err).Msg("Error encoding response")
	}
}
