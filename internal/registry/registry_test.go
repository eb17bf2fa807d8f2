package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confgen/confgen/internal/model"
)

func session(id, title, track string) *model.Session {
	s := &model.Session{ID: id, Title: title, SpeakerNames: []string{"A"}}
	s.Track.Value = track
	return s
}

func TestSessionRegistry_Register(t *testing.T) {
	reg := NewSessionRegistry()

	assert.True(t, reg.Register(session("s1", "First", "")))
	assert.Equal(t, 1, reg.Count())

	got, ok := reg.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "First", got.Title)
}

func TestSessionRegistry_DuplicateID(t *testing.T) {
	reg := NewSessionRegistry()

	require.True(t, reg.Register(session("s1", "First", "")))
	assert.False(t, reg.Register(session("s1", "Second", "")))

	// First registration wins.
	got, ok := reg.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, 1, reg.Count())
}

func TestSessionRegistry_AllPreservesOrder(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Register(session("s2", "B", ""))
	reg.Register(session("s1", "A", ""))
	reg.Register(session("s3", "C", ""))

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "s2", all[0].ID)
	assert.Equal(t, "s1", all[1].ID)
	assert.Equal(t, "s3", all[2].ID)
}

func TestSessionRegistry_Tracks(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Register(session("s1", "A", "ML"))
	reg.Register(session("s2", "B", "Data Engineering"))
	reg.Register(session("s3", "C", "ML"))
	reg.Register(session("s4", "D", ""))

	assert.Equal(t, []string{"Data Engineering", "ML"}, reg.Tracks())
}

func TestSessionRegistry_Watch(t *testing.T) {
	reg := NewSessionRegistry()
	ch := reg.Watch()

	reg.Register(session("s1", "A", ""))

	event := <-ch
	assert.Equal(t, EventTypeAdded, event.Type)
	assert.Equal(t, "s1", event.Session.ID)

	reg.UnWatch(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestSessionRegistry_Replace(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Register(session("s1", "A", ""))

	reg.Replace([]*model.Session{session("s2", "B", ""), session("s3", "C", "")})

	assert.Equal(t, 2, reg.Count())
	_, ok := reg.Get("s1")
	assert.False(t, ok)
	_, ok = reg.Get("s2")
	assert.True(t, ok)
}

func TestSessionRegistry_ReplaceEmitsDiffEvents(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Register(session("s1", "A", ""))
	reg.Register(session("s2", "B", ""))

	ch := reg.Watch()
	defer reg.UnWatch(ch)

	// s1 unchanged, s2 retitled, s3 new.
	reg.Replace([]*model.Session{
		session("s1", "A", ""),
		session("s2", "B renamed", ""),
		session("s3", "C", ""),
	})

	events := map[string]EventType{}
	for len(ch) > 0 {
		ev := <-ch
		events[ev.Session.ID] = ev.Type
	}

	assert.NotContains(t, events, "s1")
	assert.Equal(t, EventTypeUpdated, events["s2"])
	assert.Equal(t, EventTypeAdded, events["s3"])

	// Dropping s3 emits a removal.
	reg.Replace([]*model.Session{
		session("s1", "A", ""),
		session("s2", "B renamed", ""),
	})

	ev := <-ch
	assert.Equal(t, EventTypeRemoved, ev.Type)
	assert.Equal(t, "s3", ev.Session.ID)
	assert.Len(t, ch, 0)
	assert.Equal(t, 2, reg.Count())
}

func TestSpeakerRegistry_Resolve(t *testing.T) {
	reg := NewSpeakerRegistry()
	require.True(t, reg.Register(&model.Speaker{ID: "SP1", Name: "Ada"}))
	require.True(t, reg.Register(&model.Speaker{ID: "SP2", Name: "Grace"}))
	assert.False(t, reg.Register(&model.Speaker{ID: "SP1", Name: "Imposter"}))

	resolved, missing := reg.Resolve([]string{"SP1", "SPX", "SP2"})
	require.Len(t, resolved, 2)
	assert.Equal(t, "Ada", resolved[0].Name)
	assert.Equal(t, "Grace", resolved[1].Name)
	assert.Equal(t, []string{"SPX"}, missing)
}
