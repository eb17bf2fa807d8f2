// Package model defines the session and speaker record types and their JSON
// decoding for the upstream CfP export format.
//
// The export uses human-readable column names ("Proposal title", "Speaker
// IDs") and emits some fields either as a plain string or as a localized
// object ({"en": "..."}). LocalizedString absorbs both shapes so the rest of
// the pipeline only ever sees strings.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/confgen/confgen/internal/errors"
)

// LocalizedString decodes a JSON value that is either a plain string or an
// object with language keys, of which only "en" is used.
type LocalizedString struct {
	Value string
}

// UnmarshalJSON implements json.Unmarshaler
func (ls *LocalizedString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		ls.Value = s
		return nil
	}

	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("localized string: expected string or object: %w", err)
	}
	ls.Value = obj["en"]
	return nil
}

// MarshalJSON implements json.Marshaler
func (ls LocalizedString) MarshalJSON() ([]byte, error) {
	return json.Marshal(ls.Value)
}

// String returns the english value
func (ls LocalizedString) String() string {
	return ls.Value
}

// IsZero reports whether the value is empty
func (ls LocalizedString) IsZero() bool {
	return ls.Value == ""
}

// Session is one conference talk record from the sessions export.
type Session struct {
	ID            string          `json:"ID"`
	Title         string          `json:"Proposal title"`
	SessionType   LocalizedString `json:"Session type"`
	Track         LocalizedString `json:"Track"`
	Abstract      string          `json:"Abstract"`
	Description   string          `json:"Description"`
	SpeakerIDs    []string        `json:"Speaker IDs"`
	SpeakerNames  []string        `json:"Speaker names"`
	Room          LocalizedString `json:"Room"`
	Start         string          `json:"Start"`
	AudienceLevel string          `json:"Expected audience expertise: Domain"`
	Company       string          `json:"Company / Institute"`
	Prerequisites string          `json:"Prerequisites"`
}

// TrackName returns the track as a string, empty when the session has none.
func (s *Session) TrackName() string {
	return s.Track.Value
}

// PageName returns the deterministic output file name for the session page.
func (s *Session) PageName() string {
	return s.ID + ".html"
}

// CardName returns the deterministic output file name for the social card.
// It mirrors PageName so pages can cross-link their card by id.
func (s *Session) CardName() string {
	return s.ID + ".png"
}

// Validate checks the required fields for a record to be renderable.
// A nil return means the session produces a page and a card.
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.MissingField("", "ID")
	}
	if s.Title == "" {
		return errors.MissingField(s.ID, "Proposal title")
	}
	if len(nonEmpty(s.SpeakerNames)) == 0 {
		return errors.MissingField(s.ID, "Speaker names")
	}
	return nil
}

func nonEmpty(ss []string) []string {
	out := ss[:0:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Speaker is one speaker record from the speakers export. Speakers are
// referenced by sessions through SpeakerIDs and are not rendered on their own.
type Speaker struct {
	ID          string   `json:"ID"`
	Name        string   `json:"Name"`
	Biography   string   `json:"Biography"`
	Picture     string   `json:"Picture"`
	ProposalIDs []string `json:"Proposal IDs"`
	Position    string   `json:"Position / Job"`
	Homepage    string   `json:"Homepage"`
	LinkedIn    string   `json:"LinkedIn"`
	Github      string   `json:"Github"`
	Mastodon    string   `json:"Mastodon"`
	Bluesky     string   `json:"Bluesky"`
	Twitter     string   `json:"X / Twitter"`
}

// Validate checks the required fields of a speaker record.
func (sp *Speaker) Validate() error {
	if sp.ID == "" {
		return errors.MissingField("", "ID")
	}
	if sp.Name == "" {
		return errors.MissingField(sp.ID, "Name")
	}
	return nil
}

// HasSocialLinks reports whether the speaker has any social media links.
func (sp *Speaker) HasSocialLinks() bool {
	return sp.Homepage != "" || sp.LinkedIn != "" || sp.Github != "" ||
		sp.Mastodon != "" || sp.Bluesky != "" || sp.Twitter != ""
}
