package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/confgen/confgen/internal/config"
	confErrors "github.com/confgen/confgen/internal/errors"
	"github.com/confgen/confgen/internal/loader"
	"github.com/confgen/confgen/internal/logging"
	"github.com/confgen/confgen/internal/registry"
)

// pipeline bundles the pieces every generation command needs: loaded config,
// logger, the shared error collector, and the filled registries.
type pipeline struct {
	cfg       *config.Config
	logger    logging.Logger
	collector *confErrors.Collector
	sessions  *registry.SessionRegistry
	speakers  *registry.SpeakerRegistry
	loaded    *loader.Result
}

// newLogger builds the root logger from the persistent flags.
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: viper.GetString("log-format"),
		Output: os.Stderr,
	})
}

// setupRuntime loads configuration and the data files. File-level problems
// are fatal here; record-level problems land in the collector.
func setupRuntime(ctx context.Context) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	collector := confErrors.NewCollector()

	sessions, speakers, loaded, err := loader.New(cfg, logger, collector).Load(ctx)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		sessions:  sessions,
		speakers:  speakers,
		loaded:    loaded,
	}, nil
}

// printSkipped reports collected record problems at the end of a run.
func (rt *pipeline) printSkipped() {
	recordErrors := rt.collector.RecordErrors()
	if len(recordErrors) == 0 {
		return
	}
	fmt.Printf("⚠️  %d record problem(s):\n", len(recordErrors))
	for _, re := range recordErrors {
		fmt.Printf("   - %s\n", re.Error())
	}
}
