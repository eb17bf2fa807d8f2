package cmd

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWithin(t *testing.T) {
	tests := []struct {
		name string
		path string
		dir  string
		want bool
	}{
		{"inside", "/site/public/sessions/s1.html", "/site/public/sessions", true},
		{"the directory itself", "/site/public/sessions", "/site/public/sessions", true},
		{"nested", "/site/public/sessions/a/b.html", "/site/public/sessions", true},
		{"sibling with shared prefix", "/site/public/sessions-archive/s1.html", "/site/public/sessions", false},
		{"parent", "/site/public", "/site/public/sessions", false},
		{"unrelated", "/tmp/x", "/site/public/sessions", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isWithin(tt.path, tt.dir))
		})
	}
}

func TestAbsPathAnchorsRelative(t *testing.T) {
	abs := absPath("public/sessions")
	assert.True(t, filepath.IsAbs(abs))

	// Relative and absolute spellings of the same directory compare equal, so
	// the output filter holds regardless of how the watcher reports paths.
	assert.Equal(t, abs, absPath(abs))
	assert.True(t, isWithin(absPath("public/sessions/s1.html"), abs))
}

func TestSerialRunner_NoOverlap(t *testing.T) {
	var run serialRunner
	var active, overlaps int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run.Do(func() {
				if atomic.AddInt32(&active, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				atomic.AddInt32(&active, -1)
			})
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlaps))
}
