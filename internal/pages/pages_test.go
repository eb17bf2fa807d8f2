package pages

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/confgen/confgen/internal/config"
	confErrors "github.com/confgen/confgen/internal/errors"
	"github.com/confgen/confgen/internal/logging"
	"github.com/confgen/confgen/internal/model"
	"github.com/confgen/confgen/internal/registry"
)

const sessionTmpl = `<!DOCTYPE html>
<html>
<head>
<meta property="og:image" content="{{ .SocialImageURL }}">
<title>{{ .Session.Title }}</title>
</head>
<body>
<h1>{{ .Session.Title }}</h1>
<div class="description">{{ .DescriptionHTML }}</div>
{{ range .Speakers }}<p class="speaker">{{ .Name }}</p>{{ end }}
{{ if not .Speakers }}{{ range .Session.SpeakerNames }}<p class="speaker">{{ . }}</p>{{ end }}{{ end }}
</body>
</html>
`

const indexTmpl = `<!DOCTYPE html>
<html>
<body>
<ul>
{{ range .Sessions }}<li data-track="{{ .TrackName }}">{{ .Title }}</li>
{{ end }}</ul>
<nav>{{ range .Tracks }}<span>{{ . }}</span>{{ end }}</nav>
</body>
</html>
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmplDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "session.html.tmpl"), []byte(sessionTmpl), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index.html.tmpl"), []byte(indexTmpl), 0644))

	return &config.Config{
		Templates: config.TemplatesConfig{
			Dir:     tmplDir,
			Session: "session.html.tmpl",
			Index:   "index.html.tmpl",
		},
		Output: config.OutputConfig{
			Pages: filepath.Join(t.TempDir(), "sessions"),
			Cards: filepath.Join(t.TempDir(), "social"),
		},
		Site: config.SiteConfig{
			BaseURL:         "https://conf.example.org",
			EventName:       "ExampleConf 2026",
			SocialImagePath: "/images/social",
		},
	}
}

func testGenerator(t *testing.T, cfg *config.Config, speakers *registry.SpeakerRegistry) (*Generator, *confErrors.Collector) {
	t.Helper()
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelError})
	collector := confErrors.NewCollector()

	gen, err := New(cfg, speakers, logger, collector)
	require.NoError(t, err)
	return gen, collector
}

func sessionWith(id, title, track string, speakerIDs, speakerNames []string) *model.Session {
	s := &model.Session{
		ID:           id,
		Title:        title,
		Description:  "Some **bold** text",
		SpeakerIDs:   speakerIDs,
		SpeakerNames: speakerNames,
	}
	s.Track.Value = track
	return s
}

func TestGenerate_PageContainsTitleAndSpeaker(t *testing.T) {
	cfg := testConfig(t)
	speakers := registry.NewSpeakerRegistry()
	speakers.Register(&model.Speaker{ID: "SP1", Name: "Ada"})
	gen, _ := testGenerator(t, cfg, speakers)

	require.NoError(t, os.MkdirAll(cfg.Output.Pages, 0755))
	session := sessionWith("s1", "Intro to X", "", []string{"SP1"}, []string{"Ada"})
	require.NoError(t, gen.Generate(context.Background(), session))

	content, err := os.ReadFile(filepath.Join(cfg.Output.Pages, "s1.html"))
	require.NoError(t, err)

	page := string(content)
	assert.Contains(t, page, "Intro to X")
	assert.Contains(t, page, "Ada")
	assert.Contains(t, page, "<strong>bold</strong>")
}

func TestGenerate_SocialImageFallsBackToDefault(t *testing.T) {
	cfg := testConfig(t)
	gen, _ := testGenerator(t, cfg, registry.NewSpeakerRegistry())

	require.NoError(t, os.MkdirAll(cfg.Output.Pages, 0755))
	session := sessionWith("s1", "Intro to X", "", nil, []string{"Ada"})
	require.NoError(t, gen.Generate(context.Background(), session))

	assert.Equal(t,
		"https://conf.example.org/images/social/social_card_default.png",
		ogImage(t, filepath.Join(cfg.Output.Pages, "s1.html")))
}

func TestGenerate_SocialImageUsesOwnCard(t *testing.T) {
	cfg := testConfig(t)
	gen, _ := testGenerator(t, cfg, registry.NewSpeakerRegistry())

	require.NoError(t, os.MkdirAll(cfg.Output.Pages, 0755))
	require.NoError(t, os.MkdirAll(cfg.Output.Cards, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Cards, "s1.png"), []byte("png"), 0644))

	session := sessionWith("s1", "Intro to X", "", nil, []string{"Ada"})
	require.NoError(t, gen.Generate(context.Background(), session))

	assert.Equal(t,
		"https://conf.example.org/images/social/s1.png",
		ogImage(t, filepath.Join(cfg.Output.Pages, "s1.html")))
}

// ogImage parses a generated page and returns its og:image meta content.
func ogImage(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc, err := html.Parse(f)
	require.NoError(t, err)

	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var prop, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property":
					prop = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if prop == "og:image" {
				found = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	require.NotEmpty(t, found, "page has no og:image meta tag")
	return found
}

func TestGenerate_PageSnapshot(t *testing.T) {
	cfg := testConfig(t)
	speakers := registry.NewSpeakerRegistry()
	speakers.Register(&model.Speaker{ID: "SP1", Name: "Ada"})
	gen, _ := testGenerator(t, cfg, speakers)

	require.NoError(t, os.MkdirAll(cfg.Output.Pages, 0755))
	session := sessionWith("s1", "Intro to X", "ML", []string{"SP1"}, []string{"Ada"})
	require.NoError(t, gen.Generate(context.Background(), session))

	content, err := os.ReadFile(filepath.Join(cfg.Output.Pages, "s1.html"))
	require.NoError(t, err)
	snaps.MatchSnapshot(t, string(content))
}

func TestGenerate_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	gen, _ := testGenerator(t, cfg, registry.NewSpeakerRegistry())

	require.NoError(t, os.MkdirAll(cfg.Output.Pages, 0755))
	session := sessionWith("s1", "Intro to X", "", nil, []string{"Ada"})

	require.NoError(t, gen.Generate(context.Background(), session))
	first, err := os.ReadFile(filepath.Join(cfg.Output.Pages, "s1.html"))
	require.NoError(t, err)

	require.NoError(t, gen.Generate(context.Background(), session))
	second, err := os.ReadFile(filepath.Join(cfg.Output.Pages, "s1.html"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateAll_WritesIndexAndPages(t *testing.T) {
	cfg := testConfig(t)
	gen, collector := testGenerator(t, cfg, registry.NewSpeakerRegistry())

	sessions := []*model.Session{
		sessionWith("s1", "Zebra Talk", "ML", nil, []string{"Ada"}),
		sessionWith("s2", "Alpha Talk", "ML", nil, []string{"Grace"}),
		sessionWith("s3", "Untracked Talk", "", nil, []string{"Joan"}),
		sessionWith("s4", "Data Talk", "Analytics", nil, []string{"Mary"}),
	}

	result, err := gen.GenerateAll(context.Background(), sessions)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Generated)
	assert.False(t, collector.HasErrors())

	for _, name := range []string{"s1.html", "s2.html", "s3.html", "s4.html", IndexName} {
		_, err := os.Stat(filepath.Join(cfg.Output.Pages, name))
		assert.NoError(t, err, name)
	}

	content, err := os.ReadFile(filepath.Join(cfg.Output.Pages, IndexName))
	require.NoError(t, err)
	page := string(content)

	// Sorted by track then title; untracked sessions last.
	posData := strings.Index(page, "Data Talk")
	posAlpha := strings.Index(page, "Alpha Talk")
	posZebra := strings.Index(page, "Zebra Talk")
	posUntracked := strings.Index(page, "Untracked Talk")
	assert.Less(t, posData, posAlpha)
	assert.Less(t, posAlpha, posZebra)
	assert.Less(t, posZebra, posUntracked)

	// Track list is deduped and sorted.
	assert.Less(t, strings.Index(page, "<span>Analytics</span>"), strings.Index(page, "<span>ML</span>"))
	assert.Equal(t, 1, strings.Count(page, "<span>ML</span>"))
}

func TestGenerateAll_TemplateErrorSkipsRecord(t *testing.T) {
	cfg := testConfig(t)
	// A template that calls a missing method fails at execute time.
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.Templates.Dir, "session.html.tmpl"),
		[]byte(`{{ .Session.NoSuchMethod }}`), 0644))

	gen, collector := testGenerator(t, cfg, registry.NewSpeakerRegistry())

	sessions := []*model.Session{
		sessionWith("s1", "Intro to X", "", nil, []string{"Ada"}),
	}
	result, err := gen.GenerateAll(context.Background(), sessions)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Generated)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, collector.HasErrors())
	assert.Len(t, collector.ByRecord("s1"), 1)
}

func TestNew_MissingTemplateIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Templates.Session = "does-not-exist.tmpl"

	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelError})
	_, err := New(cfg, registry.NewSpeakerRegistry(), logger, confErrors.NewCollector())
	assert.Error(t, err)
}
