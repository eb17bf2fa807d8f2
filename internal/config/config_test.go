package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/sessions.json", cfg.Data.Sessions)
	assert.Equal(t, "data/speakers.json", cfg.Data.Speakers)
	assert.Equal(t, "templates", cfg.Templates.Dir)
	assert.Equal(t, "session.html.tmpl", cfg.Templates.Session)
	assert.Equal(t, "index.html.tmpl", cfg.Templates.Index)
	assert.Equal(t, "public/sessions", cfg.Output.Pages)
	assert.Equal(t, "public/images/social", cfg.Output.Cards)
	assert.Equal(t, 1200, cfg.Cards.Width)
	assert.Equal(t, 630, cfg.Cards.Height)
	assert.Equal(t, "#7B3F99", cfg.Cards.Background)
	assert.Equal(t, "#ffffff", cfg.Cards.TextColor)
	assert.Equal(t, "/images/social", cfg.Site.SocialImagePath)
	assert.Equal(t, 10, cfg.Cards.DownloadTimeout)
	assert.NotEmpty(t, cfg.Cards.FontPaths)
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("data.sessions", "exports/sessions.json")
	viper.Set("site.base_url", "https://conf.example.org")
	viper.Set("cards.width", 600)
	viper.Set("cards.height", 315)
	viper.Set("data.skip_schema", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "exports/sessions.json", cfg.Data.Sessions)
	assert.Equal(t, "https://conf.example.org", cfg.Site.BaseURL)
	assert.Equal(t, 600, cfg.Cards.Width)
	assert.Equal(t, 315, cfg.Cards.Height)
	assert.True(t, cfg.Data.SkipSchema)
}

func TestLoad_RejectsTraversal(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("data.sessions", "../../etc/passwd")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadBaseURL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("site.base_url", "ftp://example.org")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateCardsConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CardsConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  CardsConfig{Width: 1200, Height: 630, Background: "#7B3F99", TextColor: "#fff"},
		},
		{
			name:    "zero width",
			cfg:     CardsConfig{Width: 0, Height: 630, Background: "#7B3F99", TextColor: "#fff"},
			wantErr: true,
		},
		{
			name:    "negative height",
			cfg:     CardsConfig{Width: 1200, Height: -1, Background: "#7B3F99", TextColor: "#fff"},
			wantErr: true,
		},
		{
			name:    "bad color",
			cfg:     CardsConfig{Width: 1200, Height: 630, Background: "purple", TextColor: "#fff"},
			wantErr: true,
		},
		{
			name:    "cache traversal",
			cfg:     CardsConfig{Width: 1200, Height: 630, Background: "#7B3F99", TextColor: "#fff", CacheDir: "../cache"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCardsConfig(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, validatePath("data/sessions.json"))
	assert.Error(t, validatePath(""))
	assert.Error(t, validatePath("../outside"))
	assert.Error(t, validatePath("data;rm -rf /"))
}

func TestValidateHexColor(t *testing.T) {
	assert.NoError(t, validateHexColor("#ffffff"))
	assert.NoError(t, validateHexColor("#fff"))
	assert.NoError(t, validateHexColor("#7B3F99"))
	assert.Error(t, validateHexColor("ffffff"))
	assert.Error(t, validateHexColor("#gggggg"))
	assert.Error(t, validateHexColor("#ffff"))
}
