// Command publish creates blog posts in the content store from markdown files
// with a %%% TOML front matter header.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/debemdeboas/blog-studio/internal/config"
	"github.com/debemdeboas/blog-studio/internal/document"
	"github.com/debemdeboas/blog-studio/internal/form"
	"github.com/debemdeboas/blog-studio/internal/logger"
	"github.com/debemdeboas/blog-studio/internal/store"
	"github.com/debemdeboas/blog-studio/internal/submit"
	"github.com/debemdeboas/blog-studio/internal/util"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	fieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	dir := flag.String("path", "", "Directory of .md files to publish")
	dryRun := flag.Bool("dry-run", false, "Validate the files without creating posts")
	flag.Parse()

	_ = godotenv.Load()

	if err := config.LoadConfig(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("Error loading config: "+err.Error()))
		os.Exit(1)
	}
	cfg := config.AppConfig

	log := logger.New(cfg.Logging.Level)
	store.SetLogger(logger.Component(log, "store"))
	submit.SetLogger(logger.Component(log, "submit"))

	files, err := collectFiles(*dir, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: publish [-config config.yaml] [-dry-run] (-path dir | file.md ...)")
		os.Exit(2)
	}

	loc, err := cfg.Editor.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("Invalid editor timezone: "+err.Error()))
		os.Exit(1)
	}

	var creator submit.Creator = dryRunCreator{}
	if !*dryRun {
		client, err := store.NewClient(cfg.Store)
		if err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
			os.Exit(1)
		}
		creator = client
	}

	pipeline := submit.New(creator, nil, submit.Options{
		UploadsEnabled: cfg.Features.Uploads.Enabled,
		ListingPath:    cfg.Editor.ListingPath,
		Location:       loc,
	})

	failed := 0
	for _, file := range files {
		fmt.Println(titleStyle.Render(file))
		if err := publishFile(context.Background(), pipeline, file, loc); err != nil {
			failed++
			printError(err)
			continue
		}
		fmt.Println(okStyle.Render("  published"))
	}

	if failed > 0 {
		fmt.Println(errStyle.Render(fmt.Sprintf("%d of %d files failed", failed, len(files))))
		os.Exit(1)
	}
}

// collectFiles returns the .md files of dir followed by args, sorted per source.
func collectFiles(dir string, args []string) ([]string, error) {
	var files []string
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
		sort.Strings(files)
	}
	return append(files, args...), nil
}

func publishFile(ctx context.Context, pipeline *submit.Pipeline, path string, loc *time.Location) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	draft, err := draftFromMarkdown(content, loc)
	if err != nil {
		return err
	}

	_, err = pipeline.Submit(ctx, draft)
	return err
}

// draftFromMarkdown builds the form value of a file: metadata from the front
// matter and the body as the description.
func draftFromMarkdown(content []byte, loc *time.Location) (form.BlogPostDraft, error) {
	fm, body, err := util.GetFrontMatter(content)
	if err != nil {
		return form.BlogPostDraft{}, err
	}

	draft := form.BlogPostDraft{
		Title:       strings.TrimSpace(fm.Title),
		Subtitle:    strings.TrimSpace(fm.Subtitle),
		Author:      strings.TrimSpace(fm.Author),
		Category:    strings.TrimSpace(fm.Category),
		Image:       strings.TrimSpace(fm.Image),
		Description: document.FromMarkdown(string(body)),
	}
	if !fm.Date.IsZero() {
		y, m, d := fm.Date.Date()
		draft.Date = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return draft, nil
}

func printError(err error) {
	if !form.IsValidationError(err) {
		fmt.Println(errStyle.Render("  " + err.Error()))
		return
	}

	fields := form.FieldErrors(err)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println("  " + fieldStyle.Render(name+":") + " " + errStyle.Render(fields[name]))
	}
}

// dryRunCreator accepts every document without sending it.
type dryRunCreator struct{}

func (dryRunCreator) CreateDocument(ctx context.Context, doc any) (*store.CreatedDocument, error) {
	if doc == nil {
		return nil, errors.New("nothing to create")
	}
	return &store.CreatedDocument{ID: "dry-run"}, nil
}
