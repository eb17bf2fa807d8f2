// Package cards generates the fixed-size social sharing image for each
// session by compositing a background template, circular speaker photos, the
// wrapped session title, and the speaker names.
//
// Every valid session yields a card: missing or undecodable speaker photos
// degrade to a generated placeholder instead of failing the record. Output is
// written atomically and the encoding is deterministic, so re-running on
// unchanged input produces byte-identical files.
package cards

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/confgen/confgen/internal/assets"
	"github.com/confgen/confgen/internal/config"
	confErrors "github.com/confgen/confgen/internal/errors"
	"github.com/confgen/confgen/internal/logging"
	"github.com/confgen/confgen/internal/model"
	"github.com/confgen/confgen/internal/registry"
)

// Layout constants for the 1200x630 card. The title block is bottom-aligned
// so short and long titles end at the same height above the names row.
const (
	photoMarginX     = 40
	photoMarginY     = 50
	photoSpacing     = 20
	textMarginX      = 40
	titleLineH       = 60
	titleMaxLines    = 5
	titleBottomY     = 540
	namesBottomPad   = 80
	maxPhotoSpeakers = 2
	maxNamedSpeakers = 3
)

// DefaultCardName is the file name of the fallback card referenced by pages
// of sessions that have no per-session card.
const DefaultCardName = "social_card_default.png"

// Generator renders social cards for sessions.
type Generator struct {
	cfg       *config.Config
	speakers  *registry.SpeakerRegistry
	photos    *assets.PhotoStore
	faces     *faceSet
	textColor image.Image
	logger    logging.Logger
	collector *confErrors.Collector
}

// Result summarizes one card generation run.
type Result struct {
	Generated int
	Skipped   int
}

// New creates a card generator.
func New(cfg *config.Config, speakers *registry.SpeakerRegistry, photos *assets.PhotoStore, logger logging.Logger, collector *confErrors.Collector) (*Generator, error) {
	faces, err := loadFaces(cfg.Cards.FontPaths)
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}

	textColor, err := parseHexColor(cfg.Cards.TextColor)
	if err != nil {
		return nil, fmt.Errorf("text color: %w", err)
	}

	return &Generator{
		cfg:       cfg,
		speakers:  speakers,
		photos:    photos,
		faces:     faces,
		textColor: image.NewUniform(textColor),
		logger:    logger.WithComponent("cards"),
		collector: collector,
	}, nil
}

// GenerateAll renders one card per session plus the default card.
func (g *Generator) GenerateAll(ctx context.Context, sessions []*model.Session) (*Result, error) {
	if err := os.MkdirAll(g.cfg.Output.Cards, 0755); err != nil {
		return nil, fmt.Errorf("creating cards output directory %s: %w", g.cfg.Output.Cards, err)
	}

	result := &Result{}
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
			g.logger.Warn(ctx, err, "skipping card", "session", session.ID)
			result.Skipped++
			continue
		}
		g.logger.Debug(ctx, "card generated", "session", session.ID)
		result.Generated++
	}

	if err := g.generateDefault(ctx); err != nil {
		return result, fmt.Errorf("generating default card: %w", err)
	}

	g.logger.Info(ctx, "cards generated",
		"generated", result.Generated,
		"skipped", result.Skipped,
		"output", g.cfg.Output.Cards,
	)
	return result, nil
}

// Generate renders and writes the card for one session.
func (g *Generator) Generate(ctx context.Context, session *model.Session) error {
	img, err := g.compose(ctx, session)
	if err != nil {
		return err
	}
	return g.write(filepath.Join(g.cfg.Output.Cards, session.CardName()), img)
}

// compose builds the card image for a session in memory.
func (g *Generator) compose(ctx context.Context, session *model.Session) (image.Image, error) {
	canvas, err := g.background()
	if err != nil {
		return nil, err
	}
	height := canvas.Bounds().Dy()
	width := canvas.Bounds().Dx()

	photos := g.speakerPhotos(ctx, session)

	// Two speakers share the row, so each photo shrinks by a third.
	photoSize := int(float64(height) * 0.495)
	if len(photos) == maxPhotoSpeakers {
		photoSize = int(float64(height) * 0.495 * 0.67)
	}

	x := photoMarginX
	for _, photo := range photos {
		disc := circlePhoto(photo, photoSize)
		rect := image.Rect(x, photoMarginY, x+photoSize, photoMarginY+photoSize)
		draw.Draw(canvas, rect, disc, image.Point{}, draw.Over)
		x += photoSize + photoSpacing
	}

	title := CleanText(session.Title)
	lines := WrapText(g.faces.title, title, width-2*textMarginX)
	if len(lines) > titleMaxLines {
		lines = lines[:titleMaxLines]
	}

	y := titleBottomY - len(lines)*titleLineH
	for _, line := range lines {
		g.drawText(canvas, line, textMarginX, y, g.faces.title)
		y += titleLineH
	}

	if names := g.speakerNames(session); names != "" {
		g.drawText(canvas, names, textMarginX, height-namesBottomPad, g.faces.subtitle)
	}

	return canvas, nil
}

// background returns a fresh canvas with the template image or a solid fill.
func (g *Generator) background() (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, g.cfg.Cards.Width, g.cfg.Cards.Height))

	if path := g.cfg.Cards.TemplateImage; path != "" {
		if tmpl, err := decodeImage(path); err == nil {
			xdraw.CatmullRom.Scale(canvas, canvas.Bounds(), tmpl, tmpl.Bounds(), xdraw.Src, nil)
			return canvas, nil
		} else if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("template image %s: %w", path, err)
		}
		// Template configured but absent: fall through to the solid fill.
	}

	bg, err := parseHexColor(g.cfg.Cards.Background)
	if err != nil {
		return nil, fmt.Errorf("background color: %w", err)
	}
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return canvas, nil
}

// speakerPhotos returns up to two photos for the session, substituting the
// placeholder for speakers whose picture is missing or undecodable.
func (g *Generator) speakerPhotos(ctx context.Context, session *model.Session) []image.Image {
	resolved, missing := g.speakers.Resolve(session.SpeakerIDs)
	for _, id := range missing {
		g.logger.Warn(ctx, nil, "speaker not found", "session", session.ID, "speaker", id)
	}

	var photos []image.Image
	for _, speaker := range resolved {
		if len(photos) == maxPhotoSpeakers {
			break
		}
		photos = append(photos, g.photoFor(ctx, session, speaker))
	}

	// No resolvable speakers at all: fall back to placeholders built from the
	// names embedded in the session record so the card still gets a face row.
	if len(photos) == 0 {
		for _, name := range session.SpeakerNames {
			if len(photos) == maxPhotoSpeakers {
				break
			}
			if name == "" {
				continue
			}
			photos = append(photos, assets.Placeholder(name, 512))
		}
	}

	return photos
}

func (g *Generator) photoFor(ctx context.Context, session *model.Session, speaker *model.Speaker) image.Image {
	if speaker.Picture == "" {
		return assets.Placeholder(speaker.Name, 512)
	}
	photo, err := g.photos.Resolve(ctx, speaker.Picture)
	if err != nil {
		g.logger.Warn(ctx, err, "using placeholder photo",
			"session", session.ID, "speaker", speaker.ID)
		return assets.Placeholder(speaker.Name, 512)
	}
	return photo
}

// speakerNames joins up to three speaker names for the bottom row.
func (g *Generator) speakerNames(session *model.Session) string {
	resolved, _ := g.speakers.Resolve(session.SpeakerIDs)

	names := make([]string, 0, maxNamedSpeakers)
	for _, speaker := range resolved {
		if len(names) == maxNamedSpeakers {
			break
		}
		names = append(names, CleanText(speaker.Name))
	}
	if len(names) == 0 {
		for _, name := range session.SpeakerNames {
			if len(names) == maxNamedSpeakers {
				break
			}
			if name != "" {
				names = append(names, CleanText(name))
			}
		}
	}

	return strings.Join(names, " • ")
}

// generateDefault writes the fallback card used by sessions without one.
func (g *Generator) generateDefault(ctx context.Context) error {
	canvas, err := g.background()
	if err != nil {
		return err
	}

	if g.cfg.Cards.TemplateImage == "" || !fileExists(g.cfg.Cards.TemplateImage) {
		// Solid card: put the event name in the middle so the fallback is not
		// just a colored rectangle.
		if name := CleanText(g.cfg.Site.EventName); name != "" {
			w := font.MeasureString(g.faces.title, name).Ceil()
			x := (canvas.Bounds().Dx() - w) / 2
			y := canvas.Bounds().Dy() / 2
			g.drawText(canvas, name, x, y, g.faces.title)
		}
	}

	g.logger.Debug(ctx, "default card generated")
	return g.write(filepath.Join(g.cfg.Output.Cards, DefaultCardName), canvas)
}

func (g *Generator) drawText(dst draw.Image, text string, x, y int, face font.Face) {
	metrics := face.Metrics()
	drawer := font.Drawer{
		Dst:  dst,
		Src:  g.textColor,
		Face: face,
		Dot:  fixed.P(x, y+metrics.Ascent.Ceil()),
	}
	drawer.DrawString(text)
}

// write encodes the card and replaces the output file atomically.
func (g *Generator) write(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
