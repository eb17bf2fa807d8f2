// Package config provides configuration management for confgen using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with CONFGEN_ prefix, validation, and path security checks. It
// manages the data file locations, template directory, output directories,
// site metadata for social tags, and social card rendering options.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Templates TemplatesConfig `yaml:"templates" mapstructure:"templates"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Site      SiteConfig      `yaml:"site" mapstructure:"site"`
	Cards     CardsConfig     `yaml:"cards" mapstructure:"cards"`
}

// DataConfig locates the input JSON exports.
type DataConfig struct {
	Sessions   string `yaml:"sessions" mapstructure:"sessions"`
	Speakers   string `yaml:"speakers" mapstructure:"speakers"`
	SkipSchema bool   `yaml:"skip_schema" mapstructure:"skip_schema"`
}

// TemplatesConfig locates the HTML templates used by the page generator.
type TemplatesConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Session string `yaml:"session" mapstructure:"session"`
	Index   string `yaml:"index" mapstructure:"index"`
}

// OutputConfig names the directories the generators write into.
type OutputConfig struct {
	Pages string `yaml:"pages" mapstructure:"pages"`
	Cards string `yaml:"cards" mapstructure:"cards"`
}

// SiteConfig carries site metadata rendered into pages and cards.
type SiteConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	EventName       string `yaml:"event_name" mapstructure:"event_name"`
	SocialImagePath string `yaml:"social_image_path" mapstructure:"social_image_path"`
}

// CardsConfig controls social card rendering.
type CardsConfig struct {
	Width           int      `yaml:"width" mapstructure:"width"`
	Height          int      `yaml:"height" mapstructure:"height"`
	TemplateImage   string   `yaml:"template_image" mapstructure:"template_image"`
	Background      string   `yaml:"background" mapstructure:"background"`
	TextColor       string   `yaml:"text_color" mapstructure:"text_color"`
	FontPaths       []string `yaml:"font_paths" mapstructure:"font_paths"`
	PhotoDir        string   `yaml:"photo_dir" mapstructure:"photo_dir"`
	PhotoBaseURL    string   `yaml:"photo_base_url" mapstructure:"photo_base_url"`
	CacheDir        string   `yaml:"cache_dir" mapstructure:"cache_dir"`
	DownloadTimeout int      `yaml:"download_timeout" mapstructure:"download_timeout"` // seconds
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	// Handle slice values set via viper (workaround for viper slice handling)
	if viper.IsSet("cards.font_paths") && len(config.Cards.FontPaths) == 0 {
		if paths := viper.GetStringSlice("cards.font_paths"); len(paths) > 0 {
			config.Cards.FontPaths = paths
		}
	}
	if viper.IsSet("data.skip_schema") {
		config.Data.SkipSchema = viper.GetBool("data.skip_schema")
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Data.Sessions == "" {
		config.Data.Sessions = "data/sessions.json"
	}
	if config.Data.Speakers == "" {
		config.Data.Speakers = "data/speakers.json"
	}
	if config.Templates.Dir == "" {
		config.Templates.Dir = "templates"
	}
	if config.Templates.Session == "" {
		config.Templates.Session = "session.html.tmpl"
	}
	if config.Templates.Index == "" {
		config.Templates.Index = "index.html.tmpl"
	}
	if config.Output.Pages == "" {
		config.Output.Pages = "public/sessions"
	}
	if config.Output.Cards == "" {
		config.Output.Cards = "public/images/social"
	}
	if config.Site.SocialImagePath == "" {
		config.Site.SocialImagePath = "/images/social"
	}
	if config.Cards.Width == 0 {
		config.Cards.Width = 1200
	}
	if config.Cards.Height == 0 {
		config.Cards.Height = 630
	}
	if config.Cards.Background == "" {
		config.Cards.Background = "#7B3F99"
	}
	if config.Cards.TextColor == "" {
		config.Cards.TextColor = "#ffffff"
	}
	if len(config.Cards.FontPaths) == 0 {
		config.Cards.FontPaths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		}
	}
	if config.Cards.CacheDir == "" {
		config.Cards.CacheDir = ".confgen/photo-cache"
	}
	if config.Cards.DownloadTimeout == 0 {
		config.Cards.DownloadTimeout = 10
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateDataConfig(&config.Data); err != nil {
		return fmt.Errorf("data config: %w", err)
	}
	if err := validateOutputConfig(&config.Output); err != nil {
		return fmt.Errorf("output config: %w", err)
	}
	if err := validateCardsConfig(&config.Cards); err != nil {
		return fmt.Errorf("cards config: %w", err)
	}
	if err := validateSiteConfig(&config.Site); err != nil {
		return fmt.Errorf("site config: %w", err)
	}
	return nil
}

func validateDataConfig(config *DataConfig) error {
	if err := validatePath(config.Sessions); err != nil {
		return fmt.Errorf("invalid sessions path '%s': %w", config.Sessions, err)
	}
	if err := validatePath(config.Speakers); err != nil {
		return fmt.Errorf("invalid speakers path '%s': %w", config.Speakers, err)
	}
	return nil
}

func validateOutputConfig(config *OutputConfig) error {
	if err := validatePath(config.Pages); err != nil {
		return fmt.Errorf("invalid pages dir '%s': %w", config.Pages, err)
	}
	if err := validatePath(config.Cards); err != nil {
		return fmt.Errorf("invalid cards dir '%s': %w", config.Cards, err)
	}
	return nil
}

func validateCardsConfig(config *CardsConfig) error {
	if config.Width <= 0 || config.Height <= 0 {
		return fmt.Errorf("card dimensions %dx%d are not positive", config.Width, config.Height)
	}
	if config.CacheDir != "" {
		cleanPath := filepath.Clean(config.CacheDir)
		if strings.Contains(cleanPath, "..") {
			return fmt.Errorf("cache_dir contains path traversal: %s", config.CacheDir)
		}
	}
	if err := validateHexColor(config.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if err := validateHexColor(config.TextColor); err != nil {
		return fmt.Errorf("text_color: %w", err)
	}
	return nil
}

func validateSiteConfig(config *SiteConfig) error {
	if config.BaseURL != "" && !strings.HasPrefix(config.BaseURL, "http://") &&
		!strings.HasPrefix(config.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL: %s", config.BaseURL)
	}
	return nil
}

func validateHexColor(s string) error {
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 4) {
		return fmt.Errorf("%q is not a #rgb or #rrggbb color", s)
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return fmt.Errorf("%q is not a #rgb or #rrggbb color", s)
		}
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
