package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/blog-studio/internal/cache"
	"github.com/debemdeboas/blog-studio/internal/config"
	"github.com/debemdeboas/blog-studio/internal/db"
	"github.com/debemdeboas/blog-studio/internal/logger"
	"github.com/debemdeboas/blog-studio/internal/model"
	"github.com/debemdeboas/blog-studio/internal/placeholder"
	"github.com/debemdeboas/blog-studio/internal/render"
	"github.com/debemdeboas/blog-studio/internal/repository"
	"github.com/debemdeboas/blog-studio/internal/repository/editor"
	"github.com/debemdeboas/blog-studio/internal/routes"
	"github.com/debemdeboas/blog-studio/internal/sse"
	"github.com/debemdeboas/blog-studio/internal/store"
	"github.com/debemdeboas/blog-studio/internal/submit"
	"github.com/debemdeboas/blog-studio/internal/theme"
	"github.com/debemdeboas/blog-studio/internal/util"
	"github.com/debemdeboas/blog-studio/internal/util/compression"

	_ "time/tzdata"
)

//go:embed static/* templates/*
var content embed.FS

// watchInterval is how often the store is polled for posts published
// elsewhere while live reload is on.
const watchInterval = 30 * time.Second

var mainLogger = zerolog.Nop()

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		mainLogger.Debug().Msg("No .env file loaded")
	}

	if err := config.LoadConfig(*configPath); err != nil {
		bootLogger := logger.New("info")
		bootLogger.Fatal().Err(err).Msg("Error loading config")
	}
	cfg := config.AppConfig

	log := logger.New(cfg.Logging.Level)
	mainLogger = logger.Component(log, "main")
	setLoggers(log)

	if err := cfg.Validate(); err != nil {
		mainLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, _ := cfg.Editor.Location()

	storeClient, err := store.NewClient(cfg.Store)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg(config.ErrStoreConfig)
	}

	uploader, err := newUploader(ctx, cfg, storeClient)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Error configuring uploads")
	}

	drafts, closeDrafts, err := newDraftRepository(cfg, loc)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Error configuring draft storage")
	}
	defer closeDrafts()

	clients := sse.NewClients()

	posts := repository.NewStorePostRepository(storeClient, cfg.Editor.ListingPath)
	posts.SetReloadNotifier(clients.Reload)
	if cfg.Features.LiveReload.Enabled {
		go posts.Watch(ctx, watchInterval)
	}

	pipeline := submit.New(storeClient, posts, submit.Options{
		UploadsEnabled: cfg.Features.Uploads.Enabled,
		ListingPath:    cfg.Editor.ListingPath,
		Location:       loc,
	})

	editorHandler, err := editor.NewHandler(drafts, pipeline, content, editor.Options{
		Previewer:      render.NewPreviewer(cfg.Editor.SanitizePreview),
		Uploader:       uploader,
		Location:       loc,
		UploadsEnabled: cfg.Features.Uploads.Enabled,
		MaxUploadBytes: int64(cfg.Features.Uploads.MaxBytes),
		Notifications:  cfg.Features.Notifications.Enabled,
	})
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Error parsing editor templates")
	}

	app, err := newApp(content, posts, clients, editorHandler)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Error parsing templates")
	}

	hashStaticFiles(content)

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	mainLogger.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mainLogger.Fatal().Err(err).Msg("Server failed")
	}
	mainLogger.Info().Msg("Server stopped")
}

func setLoggers(log zerolog.Logger) {
	config.SetLogger(logger.Component(log, "config"))
	db.SetLogger(logger.Component(log, "db"))
	editor.SetLogger(logger.Component(log, "editor"))
	render.SetLogger(logger.Component(log, "render"))
	repository.SetLogger(logger.Component(log, "repository"))
	sse.SetLogger(logger.Component(log, "sse"))
	store.SetLogger(logger.Component(log, "store"))
	submit.SetLogger(logger.Component(log, "submit"))
}

func newUploader(ctx context.Context, cfg *config.Config, client *store.Client) (store.AssetUploader, error) {
	uploads := cfg.Features.Uploads
	if !uploads.Enabled {
		return store.DisabledUploader{}, nil
	}

	switch uploads.Backend {
	case config.UploadBackendS3:
		return store.NewS3Uploader(ctx, uploads.S3)
	default:
		return client, nil
	}
}

func newDraftRepository(cfg *config.Config, loc *time.Location) (editor.Repository, func(), error) {
	if cfg.Storage.Drafts != config.DraftStorageSQLite {
		return editor.NewMemoryRepository(), func() {}, nil
	}

	compressor, err := compression.New(cfg.Storage.Compression)
	if err != nil {
		return nil, nil, err
	}

	database := db.NewSQLite(cfg.Storage.Path)
	if err := database.InitDB(); err != nil {
		return nil, nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
	}
	return editor.NewDBRepository(database, compressor, loc), func() { database.Close() }, nil
}

// hashStaticFiles records an ETag for every embedded static file.
func hashStaticFiles(fsys fs.FS) {
	static, err := fs.Sub(fsys, config.StaticLocalDir)
	if err != nil {
		return
	}
	fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return nil
		}
		cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash(data))
		return nil
	})
}

type app struct {
	static  fs.FS
	posts   repository.PostRepository
	clients *sse.Clients
	editor  *editor.Handler
	catalog *placeholder.Catalog

	blogTmpl *template.Template
	postTmpl *template.Template
}

func newApp(fsys fs.FS, posts repository.PostRepository, clients *sse.Clients, editorHandler *editor.Handler) (*app, error) {
	layout := config.TemplatesLocalDir + "/" + config.TemplateLayout

	blogTmpl, err := template.ParseFS(fsys, layout, config.TemplatesLocalDir+"/"+config.TemplateBlog)
	if err != nil {
		return nil, err
	}
	postTmpl, err := template.ParseFS(fsys, layout, config.TemplatesLocalDir+"/"+config.TemplatePost)
	if err != nil {
		return nil, err
	}

	static, err := fs.Sub(fsys, config.StaticLocalDir)
	if err != nil {
		return nil, err
	}

	return &app{
		static:   static,
		posts:    posts,
		clients:  clients,
		editor:   editorHandler,
		catalog:  placeholder.Default(),
		blogTmpl: blogTmpl,
		postTmpl: postTmpl,
	}, nil
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, serveRobots)
	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(a.static))))

	mux.HandleFunc(routes.ThemeToggle, theme.ServeToggle)
	mux.HandleFunc(routes.SyntaxThemeSet, theme.ServeSyntaxThemeSet)
	mux.HandleFunc(routes.SyntaxThemeGet, theme.ServeSyntaxThemeGet)
	mux.Handle(routes.SSEPath, a.clients)

	mux.HandleFunc("GET "+routes.Editor, a.editor.ServeEditor)
	mux.HandleFunc("POST "+routes.Editor, a.editor.ServeSubmit)
	mux.HandleFunc(routes.EditorNewDraft, a.editor.ServeNewDraft)
	mux.HandleFunc(routes.PartialsDraftPreview, a.editor.ServePreview)
	mux.HandleFunc(routes.PartialsDraftSource, a.editor.ServeSource)
	mux.HandleFunc(routes.PartialsDraftInsert, a.editor.ServeInsert)
	mux.HandleFunc(routes.PartialsDraftImage, a.editor.ServeImage)
	mux.HandleFunc(routes.APIUploadImage, a.editor.ServeUpload)

	mux.HandleFunc("GET "+routes.BlogList, a.serveBlog)
	mux.HandleFunc("GET "+routes.BlogPost, a.servePost)

	mux.HandleFunc(routes.RootPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != routes.RootPath {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, routes.Editor, http.StatusFound)
	})

	securedMux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routes.RobotsPath { // Ignore robots.txt
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(mux.ServeHTTP)(w, r)
		}
	})

	return cacheIt(requestLogger(securedMux))
}

func serveRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow:"))
}

func (a *app) serveBlog(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.GetPostList(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error loading posts")
		http.Error(w, config.ErrInternalServerError, http.StatusBadGateway)
		return
	}

	data := struct {
		*model.PageData
		Posts   []model.Post
		Catalog *placeholder.Catalog
	}{
		PageData: model.NewPageData(r),
		Posts:    posts,
		Catalog:  a.catalog,
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	if err := a.blogTmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (a *app) servePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := a.posts.ReadPost(r.Context(), id)
	if errors.Is(err, repository.ErrPostNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("id", id).Msg("Error loading post")
		http.Error(w, config.ErrInternalServerError, http.StatusBadGateway)
		return
	}

	md := post.Markdown()
	post.MDContentHash = util.ContentHashString(md)
	post.Content = render.RenderMarkdownCached([]byte(md), post.MDContentHash, theme.GetSyntaxThemeFromRequest(r))

	data := struct {
		*model.PageData
		Post    *model.Post
		Catalog *placeholder.Catalog
	}{
		PageData: model.NewPageData(r),
		Post:     post,
		Catalog:  a.catalog,
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Header().Set(config.HETag, util.ContentHash([]byte(post.MDContentHash+data.Theme+data.SyntaxTheme)))
	if err := a.postTmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

// requestLogger attaches a logger carrying the request line to the context.
func requestLogger(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := mainLogger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		h(w, r.WithContext(l.WithContext(r.Context())))
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}
