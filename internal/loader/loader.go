// Package loader reads the session and speaker JSON exports, validates them,
// and fills the registries the generators work from.
//
// File-level problems (unreadable file, malformed JSON, schema violation) are
// fatal. Record-level problems (missing required field, duplicate id) are
// reported through the error collector and the record is skipped, so one bad
// record never aborts the batch.
package loader

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/confgen/confgen/internal/config"
	confErrors "github.com/confgen/confgen/internal/errors"
	"github.com/confgen/confgen/internal/logging"
	"github.com/confgen/confgen/internal/model"
	"github.com/confgen/confgen/internal/registry"
)

//go:embed schemas/sessions.schema.json
var sessionsSchema []byte

//go:embed schemas/speakers.schema.json
var speakersSchema []byte

// Loader reads and validates the data files.
type Loader struct {
	cfg       *config.Config
	logger    logging.Logger
	collector *confErrors.Collector
}

// Result summarizes one load.
type Result struct {
	SessionsLoaded  int
	SessionsSkipped int
	SpeakersLoaded  int
	SpeakersSkipped int
}

// New creates a loader.
func New(cfg *config.Config, logger logging.Logger, collector *confErrors.Collector) *Loader {
	return &Loader{
		cfg:       cfg,
		logger:    logger.WithComponent("loader"),
		collector: collector,
	}
}

// Load reads both data files into fresh registries.
func (l *Loader) Load(ctx context.Context) (*registry.SessionRegistry, *registry.SpeakerRegistry, *Result, error) {
	sessions := registry.NewSessionRegistry()
	speakers := registry.NewSpeakerRegistry()
	result := &Result{}

	validSpeakers, err := l.parseSpeakers(ctx, result)
	if err != nil {
		return nil, nil, nil, err
	}
	validSessions, err := l.parseSessions(ctx, result)
	if err != nil {
		return nil, nil, nil, err
	}

	for _, speaker := range validSpeakers {
		speakers.Register(speaker)
	}
	for _, session := range validSessions {
		sessions.Register(session)
	}

	l.logger.Info(ctx, "data loaded",
		"sessions", result.SessionsLoaded,
		"sessions_skipped", result.SessionsSkipped,
		"speakers", result.SpeakersLoaded,
		"speakers_skipped", result.SpeakersSkipped,
	)
	return sessions, speakers, result, nil
}

// Reload re-reads both data files into existing registries, used by watch
// mode. Sessions that changed on disk surface as targeted events on the
// session registry's watcher channels; unchanged records emit nothing.
func (l *Loader) Reload(ctx context.Context, sessions *registry.SessionRegistry, speakers *registry.SpeakerRegistry) (*Result, error) {
	result := &Result{}

	validSpeakers, err := l.parseSpeakers(ctx, result)
	if err != nil {
		return nil, err
	}
	validSessions, err := l.parseSessions(ctx, result)
	if err != nil {
		return nil, err
	}

	speakers.Replace(validSpeakers)
	sessions.Replace(validSessions)

	l.logger.Info(ctx, "data reloaded",
		"sessions", result.SessionsLoaded,
		"sessions_skipped", result.SessionsSkipped,
		"speakers", result.SpeakersLoaded,
		"speakers_skipped", result.SpeakersSkipped,
	)
	return result, nil
}

// parseSessions reads, schema-checks, and validates the sessions file,
// returning the renderable records. Duplicate ids keep the first record.
func (l *Loader) parseSessions(ctx context.Context, result *Result) ([]*model.Session, error) {
	data, err := os.ReadFile(l.cfg.Data.Sessions)
	if err != nil {
		return nil, fmt.Errorf("reading sessions file %s: %w", l.cfg.Data.Sessions, err)
	}

	if !l.cfg.Data.SkipSchema {
		if err := validateAgainstSchema(sessionsSchema, data); err != nil {
			return nil, fmt.Errorf("sessions file %s: %w", l.cfg.Data.Sessions, err)
		}
	}

	var records []*model.Session
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding sessions file %s: %w", l.cfg.Data.Sessions, err)
	}

	seen := make(map[string]bool, len(records))
	valid := make([]*model.Session, 0, len(records))
	for _, session := range records {
		if err := session.Validate(); err != nil {
			l.skipSession(ctx, session, err)
			result.SessionsSkipped++
			continue
		}
		if seen[session.ID] {
			dup := confErrors.DuplicateID(session.ID)
			l.collector.Add(*dup)
			l.logger.Warn(ctx, dup, "skipping session", "session", session.ID)
			result.SessionsSkipped++
			continue
		}
		seen[session.ID] = true
		valid = append(valid, session)
		result.SessionsLoaded++
	}
	return valid, nil
}

// parseSpeakers is the speakers-file counterpart of parseSessions.
func (l *Loader) parseSpeakers(ctx context.Context, result *Result) ([]*model.Speaker, error) {
	data, err := os.ReadFile(l.cfg.Data.Speakers)
	if err != nil {
		return nil, fmt.Errorf("reading speakers file %s: %w", l.cfg.Data.Speakers, err)
	}

	if !l.cfg.Data.SkipSchema {
		if err := validateAgainstSchema(speakersSchema, data); err != nil {
			return nil, fmt.Errorf("speakers file %s: %w", l.cfg.Data.Speakers, err)
		}
	}

	var records []*model.Speaker
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding speakers file %s: %w", l.cfg.Data.Speakers, err)
	}

	seen := make(map[string]bool, len(records))
	valid := make([]*model.Speaker, 0, len(records))
	for _, speaker := range records {
		if err := speaker.Validate(); err != nil {
			l.skipSpeaker(ctx, speaker, err)
			result.SpeakersSkipped++
			continue
		}
		if seen[speaker.ID] {
			dup := confErrors.DuplicateID(speaker.ID)
			l.collector.Add(*dup)
			l.logger.Warn(ctx, dup, "skipping speaker", "speaker", speaker.ID)
			result.SpeakersSkipped++
			continue
		}
		seen[speaker.ID] = true
		valid = append(valid, speaker)
		result.SpeakersLoaded++
	}
	return valid, nil
}

func (l *Loader) skipSession(ctx context.Context, session *model.Session, err error) {
	if recErr, ok := err.(*confErrors.RecordError); ok {
		l.collector.Add(*recErr)
	} else {
		l.collector.AddError(err)
	}
	l.logger.Warn(ctx, err, "skipping session", "session", session.ID, "title", session.Title)
}

func (l *Loader) skipSpeaker(ctx context.Context, speaker *model.Speaker, err error) {
	if recErr, ok := err.(*confErrors.RecordError); ok {
		l.collector.Add(*recErr)
	} else {
		l.collector.AddError(err)
	}
	l.logger.Warn(ctx, err, "skipping speaker", "speaker", speaker.ID, "name", speaker.Name)
}

// validateAgainstSchema checks a data file against its embedded JSON Schema.
func validateAgainstSchema(schema, document []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	validation, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !validation.Valid() {
		msgs := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("schema validation failed: %v", msgs)
	}
	return nil
}
