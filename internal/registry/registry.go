// Package registry holds the loaded session and speaker records, keyed by
// their unique identifiers, and notifies watchers when records change during
// watch-mode reloads.
package registry

import (
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/confgen/confgen/internal/model"
)

// EventType represents the type of registry event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// SessionEvent represents a change in the session registry
type SessionEvent struct {
	Type      EventType
	Session   *model.Session
	Timestamp time.Time
}

// SessionRegistry manages all loaded session records.
// Identifier uniqueness is enforced at registration: the first record with a
// given id wins and later duplicates are rejected.
type SessionRegistry struct {
	sessions map[string]*model.Session
	order    []string
	mutex    sync.RWMutex
	watchers []chan SessionEvent
}

// NewSessionRegistry creates a new session registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*model.Session),
		watchers: make([]chan SessionEvent, 0),
	}
}

// Register adds a session to the registry. It reports false when a session
// with the same id is already registered.
func (r *SessionRegistry) Register(session *model.Session) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return false
	}

	r.sessions[session.ID] = session
	r.order = append(r.order, session.ID)
	r.notify(SessionEvent{Type: EventTypeAdded, Session: session, Timestamp: time.Now()})
	return true
}

// Replace swaps in a new set of sessions, used by watch-mode reloads.
// Watchers receive one event per changed record: added for new ids, updated
// for records that differ from the current one, removed for ids no longer
// present. Unchanged records produce no event.
func (r *SessionRegistry) Replace(sessions []*model.Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	next := make(map[string]*model.Session, len(sessions))
	order := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if _, exists := next[s.ID]; exists {
			continue
		}
		next[s.ID] = s
		order = append(order, s.ID)
	}

	now := time.Now()
	for _, id := range r.order {
		if _, kept := next[id]; !kept {
			r.notify(SessionEvent{Type: EventTypeRemoved, Session: r.sessions[id], Timestamp: now})
		}
	}
	for _, id := range order {
		old, existed := r.sessions[id]
		switch {
		case !existed:
			r.notify(SessionEvent{Type: EventTypeAdded, Session: next[id], Timestamp: now})
		case !reflect.DeepEqual(old, next[id]):
			r.notify(SessionEvent{Type: EventTypeUpdated, Session: next[id], Timestamp: now})
		}
	}

	r.sessions = next
	r.order = order
}

// Get retrieves a session by id
func (r *SessionRegistry) Get(id string) (*model.Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, exists := r.sessions[id]
	return session, exists
}

// All returns the registered sessions in registration order.
func (r *SessionRegistry) All() []*model.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]*model.Session, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sessions[id])
	}
	return out
}

// Tracks returns the distinct non-empty track names, sorted.
func (r *SessionRegistry) Tracks() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	seen := make(map[string]struct{})
	for _, s := range r.sessions {
		if t := s.TrackName(); t != "" {
			seen[t] = struct{}{}
		}
	}
	tracks := make([]string, 0, len(seen))
	for t := range seen {
		tracks = append(tracks, t)
	}
	sort.Strings(tracks)
	return tracks
}

// Count returns the number of registered sessions
func (r *SessionRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}

// Watch returns a channel that receives session events
func (r *SessionRegistry) Watch() <-chan SessionEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan SessionEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *SessionRegistry) UnWatch(ch <-chan SessionEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

func (r *SessionRegistry) notify(event SessionEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// SpeakerRegistry manages loaded speaker records keyed by id.
type SpeakerRegistry struct {
	speakers map[string]*model.Speaker
	mutex    sync.RWMutex
}

// NewSpeakerRegistry creates a new speaker registry
func NewSpeakerRegistry() *SpeakerRegistry {
	return &SpeakerRegistry{
		speakers: make(map[string]*model.Speaker),
	}
}

// Register adds a speaker to the registry. It reports false for duplicate ids.
func (r *SpeakerRegistry) Register(speaker *model.Speaker) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.speakers[speaker.ID]; exists {
		return false
	}
	r.speakers[speaker.ID] = speaker
	return true
}

// Replace swaps in a new set of speakers.
func (r *SpeakerRegistry) Replace(speakers []*model.Speaker) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.speakers = make(map[string]*model.Speaker, len(speakers))
	for _, sp := range speakers {
		if _, exists := r.speakers[sp.ID]; exists {
			continue
		}
		r.speakers[sp.ID] = sp
	}
}

// Get retrieves a speaker by id
func (r *SpeakerRegistry) Get(id string) (*model.Speaker, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	speaker, exists := r.speakers[id]
	return speaker, exists
}

// Resolve maps session speaker ids to speaker records, skipping unknown ids.
// The second return value lists the ids that could not be resolved.
func (r *SpeakerRegistry) Resolve(ids []string) ([]*model.Speaker, []string) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	resolved := make([]*model.Speaker, 0, len(ids))
	var missing []string
	for _, id := range ids {
		if sp, ok := r.speakers[id]; ok {
			resolved = append(resolved, sp)
		} else {
			missing = append(missing, id)
		}
	}
	return resolved, missing
}

// Count returns the number of registered speakers
func (r *SpeakerRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.speakers)
}
