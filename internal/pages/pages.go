// Package pages generates the static HTML page for each session and the
// index page listing all sessions.
//
// Templates are plain html/template files supplied by the site, loaded from
// the configured templates directory. The session description is markdown in
// the upstream export and is rendered to HTML before templating. Output files
// are named <id>.html and written atomically; re-running on unchanged input
// produces byte-identical pages.
package pages

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/confgen/confgen/internal/cards"
	"github.com/confgen/confgen/internal/config"
	confErrors "github.com/confgen/confgen/internal/errors"
	"github.com/confgen/confgen/internal/logging"
	"github.com/confgen/confgen/internal/model"
	"github.com/confgen/confgen/internal/registry"
)

// IndexName is the file name of the generated session index.
const IndexName = "index.html"

// Generator renders session pages and the index page.
type Generator struct {
	cfg         *config.Config
	speakers    *registry.SpeakerRegistry
	sessionTmpl *template.Template
	indexTmpl   *template.Template
	markdown    goldmark.Markdown
	logger      logging.Logger
	collector   *confErrors.Collector
}

// Result summarizes one page generation run.
type Result struct {
	Generated int
	Skipped   int
}

// PageData is the template context for a single session page.
type PageData struct {
	Session         *model.Session
	Speakers        []*model.Speaker
	DescriptionHTML template.HTML
	BaseURL         string
	EventName       string
	SocialImageURL  string
}

// IndexData is the template context for the index page.
type IndexData struct {
	Sessions  []*model.Session
	Tracks    []string
	BaseURL   string
	EventName string
}

// New creates a page generator, loading the templates from disk.
// A missing or unparsable template is fatal.
func New(cfg *config.Config, speakers *registry.SpeakerRegistry, logger logging.Logger, collector *confErrors.Collector) (*Generator, error) {
	sessionPath := filepath.Join(cfg.Templates.Dir, cfg.Templates.Session)
	sessionTmpl, err := template.ParseFiles(sessionPath)
	if err != nil {
		return nil, fmt.Errorf("loading session template %s: %w", sessionPath, err)
	}

	indexPath := filepath.Join(cfg.Templates.Dir, cfg.Templates.Index)
	indexTmpl, err := template.ParseFiles(indexPath)
	if err != nil {
		return nil, fmt.Errorf("loading index template %s: %w", indexPath, err)
	}

	// GFM tables and strikethrough plus hard line breaks, matching how the
	// upstream descriptions are written. Raw HTML in descriptions is kept.
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			htmlrenderer.WithHardWraps(),
			htmlrenderer.WithUnsafe(),
		),
	)

	return &Generator{
		cfg:         cfg,
		speakers:    speakers,
		sessionTmpl: sessionTmpl,
		indexTmpl:   indexTmpl,
		markdown:    md,
		logger:      logger.WithComponent("pages"),
		collector:   collector,
	}, nil
}

// GenerateAll renders one page per session plus the index page.
func (g *Generator) GenerateAll(ctx context.Context, sessions []*model.Session) (*Result, error) {
	if err := os.MkdirAll(g.cfg.Output.Pages, 0755); err != nil {
		return nil, fmt.Errorf("creating pages output directory %s: %w", g.cfg.Output.Pages, err)
	}

	result := &Result{}
	generated := make([]*model.Session, 0, len(sessions))
	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := g.Generate(ctx, session); err != nil {
			g.collector.Add(confErrors.RecordError{
				RecordID: session.ID,
				Message:  err.Error(),
				Severity: confErrors.ErrorSeverityError,
			})
			g.logger.Warn(ctx, err, "skipping page", "session", session.ID)
			result.Skipped++
			continue
		}
		g.logger.Debug(ctx, "page generated", "session", session.ID)
		generated = append(generated, session)
		result.Generated++
	}

	if err := g.GenerateIndex(ctx, generated); err != nil {
		return result, fmt.Errorf("generating index page: %w", err)
	}

	g.logger.Info(ctx, "pages generated",
		"generated", result.Generated,
		"skipped", result.Skipped,
		"output", g.cfg.Output.Pages,
	)
	return result, nil
}

// Generate renders and writes the page for one session.
func (g *Generator) Generate(ctx context.Context, session *model.Session) error {
	speakers, missing := g.speakers.Resolve(session.SpeakerIDs)
	for _, id := range missing {
		g.logger.Warn(ctx, nil, "speaker not found", "session", session.ID, "speaker", id)
	}

	data := PageData{
		Session:         session,
		Speakers:        speakers,
		DescriptionHTML: g.renderMarkdown(session.Description),
		BaseURL:         g.cfg.Site.BaseURL,
		EventName:       g.cfg.Site.EventName,
		SocialImageURL:  g.socialImageURL(session),
	}

	var buf bytes.Buffer
	if err := g.sessionTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering page for %s: %w", session.ID, err)
	}

	path := filepath.Join(g.cfg.Output.Pages, session.PageName())
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// GenerateIndex renders the index page over the given sessions.
func (g *Generator) GenerateIndex(ctx context.Context, sessions []*model.Session) error {
	sorted := make([]*model.Session, len(sessions))
	copy(sorted, sessions)
	// Untracked sessions sort last; within a track, order by title.
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sortTrack(sorted[i]), sortTrack(sorted[j])
		if ti != tj {
			return ti < tj
		}
		return sorted[i].Title < sorted[j].Title
	})

	tracks := make(map[string]struct{})
	for _, s := range sorted {
		if t := s.TrackName(); t != "" {
			tracks[t] = struct{}{}
		}
	}
	trackList := make([]string, 0, len(tracks))
	for t := range tracks {
		trackList = append(trackList, t)
	}
	sort.Strings(trackList)

	data := IndexData{
		Sessions:  sorted,
		Tracks:    trackList,
		BaseURL:   g.cfg.Site.BaseURL,
		EventName: g.cfg.Site.EventName,
	}

	var buf bytes.Buffer
	if err := g.indexTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering index: %w", err)
	}

	path := filepath.Join(g.cfg.Output.Pages, IndexName)
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	g.logger.Debug(ctx, "index generated", "sessions", len(sorted))
	return nil
}

func sortTrack(s *model.Session) string {
	if t := s.TrackName(); t != "" {
		return t
	}
	return "zzz"
}

// renderMarkdown converts the markdown description to HTML.
func (g *Generator) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := g.markdown.Convert([]byte(text), &buf); err != nil {
		// Degrade to escaped plain text rather than dropping the description.
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

// socialImageURL points at the session's own card when it exists, otherwise
// at the default card. Card generation may run after page generation, so the
// check looks at the cards output directory, not the published site.
func (g *Generator) socialImageURL(session *model.Session) string {
	base := strings.TrimRight(g.cfg.Site.BaseURL, "/") + g.cfg.Site.SocialImagePath

	cardPath := filepath.Join(g.cfg.Output.Cards, session.CardName())
	if _, err := os.Stat(cardPath); err == nil {
		return base + "/" + session.CardName()
	}
	return base + "/" + cards.DefaultCardName
}
