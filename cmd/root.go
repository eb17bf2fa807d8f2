// Package cmd provides the command-line interface for confgen with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --log-level, etc.) - highest priority
//	2. CONFGEN_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (CONFGEN_DATA_SESSIONS, etc.)
//	4. Configuration files (.confgen.yml) - lowest priority
//
// Environment Variables:
//
//	CONFGEN_CONFIG_FILE: Path to custom configuration file
//	CONFGEN_DATA_SESSIONS: Override sessions data file
//	CONFGEN_SITE_BASE_URL: Override site base URL
//	And more following the CONFGEN_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "confgen",
	Short: "Static content generator for conference session data",
	Long: `Confgen turns a structured export of conference sessions and speakers
into static artifacts for the community website: one HTML page per session,
an index page, and one social sharing card image per session.

Key Features:
  • Session page generation from html/template files
  • Social card image compositing (1200x630 PNG)
  • Data file validation against JSON Schemas
  • Watch mode that regenerates on data or template changes

Quick Start:
  confgen validate                Validate the data files
  confgen generate                Generate pages and cards
  confgen pages                   Generate session pages only
  confgen cards                   Generate social cards only
  confgen watch                   Regenerate on changes

Command Aliases (for faster typing):
  generate (g), pages (p), cards (c), list (l), watch (w)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .confgen.yml, can also use CONFGEN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().VarP(newEnumValue(&logLevel, "info", "debug", "info", "warn", "error"),
		"log-level", "l", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Var(newEnumValue(&logFormat, "text", "text", "json"),
		"log-format", "log format (text, json)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system with support for multiple
// config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. CONFGEN_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .confgen.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CONFGEN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".confgen")
	}

	viper.SetEnvPrefix("CONFGEN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults cover everything.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
