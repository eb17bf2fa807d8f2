package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/confgen/confgen/internal/assets"
	"github.com/confgen/confgen/internal/cards"
	"github.com/confgen/confgen/internal/loader"
	"github.com/confgen/confgen/internal/pages"
	"github.com/confgen/confgen/internal/registry"
	"github.com/confgen/confgen/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Regenerate output when inputs change",
	Long: `Watch the data files, templates directory, and photo assets and
regenerate whenever one of them changes. Data file edits reload the records
in place and regenerate only the sessions that changed; template and photo
changes trigger a full regeneration. Changes are debounced so a burst of
writes triggers a single pass.

Press Ctrl+C to stop.

Examples:
  confgen watch                   # Watch with the default debounce
  confgen watch --debounce 2s     # Wait longer before regenerating`,
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Debounce delay before regenerating")
}

// serialRunner serializes regeneration work: a debounce flush that fires
// while a previous run is still writing output waits instead of racing it.
type serialRunner struct {
	mu sync.Mutex
}

func (s *serialRunner) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := setupRuntime(ctx)
	if err != nil {
		return err
	}

	photos, err := assets.NewPhotoStore(&rt.cfg.Cards, rt.logger)
	if err != nil {
		return err
	}
	cardGen, err := cards.New(rt.cfg, rt.speakers, photos, rt.logger, rt.collector)
	if err != nil {
		return err
	}
	pageGen, err := pages.New(rt.cfg, rt.speakers, rt.logger, rt.collector)
	if err != nil {
		return err
	}

	var run serialRunner

	// generateAll runs a full pass; callers hold the runner.
	generateAll := func() {
		sessions := rt.sessions.All()
		fmt.Printf("🔨 Generating artifacts for %d sessions...\n", len(sessions))
		if _, err := cardGen.GenerateAll(ctx, sessions); err != nil {
			fmt.Printf("❌ Card generation failed: %v\n", err)
			return
		}
		if _, err := pageGen.GenerateAll(ctx, sessions); err != nil {
			fmt.Printf("❌ Page generation failed: %v\n", err)
			return
		}
		rt.printSkipped()
		fmt.Println("✅ Generation completed")
	}

	run.Do(generateAll)

	// Data reloads replace records in the live registries; the resulting
	// events regenerate only the sessions that actually changed.
	events := rt.sessions.Watch()
	defer rt.sessions.UnWatch(events)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				run.Do(func() {
					handleSessionEvent(ctx, ev, cardGen, pageGen)
					if len(events) == 0 {
						if err := pageGen.GenerateIndex(ctx, rt.sessions.All()); err != nil {
							fmt.Printf("❌ Index regeneration failed: %v\n", err)
						}
					}
				})
			}
		}
	}()

	fw, err := watcher.NewFileWatcher(watchDebounce)
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Stop()

	watchPaths := []string{
		filepath.Dir(rt.cfg.Data.Sessions),
		filepath.Dir(rt.cfg.Data.Speakers),
		rt.cfg.Templates.Dir,
	}
	if rt.cfg.Cards.PhotoDir != "" {
		watchPaths = append(watchPaths, rt.cfg.Cards.PhotoDir)
	}

	seen := make(map[string]bool)
	for _, path := range watchPaths {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		if err := fw.AddRecursive(path); err != nil {
			rt.logger.Warn(ctx, err, "cannot watch path", "path", path)
			continue
		}
		fmt.Printf("👀 Watching %s\n", path)
	}

	// Output directories may live under a watched parent; ignore our own
	// writes so regeneration does not retrigger itself.
	outPages := absPath(rt.cfg.Output.Pages)
	outCards := absPath(rt.cfg.Output.Cards)
	fw.AddFilter(func(path string) bool {
		p := absPath(path)
		return !isWithin(p, outPages) && !isWithin(p, outCards)
	})

	l := loader.New(rt.cfg, rt.logger, rt.collector)
	sessionsFile := absPath(rt.cfg.Data.Sessions)
	speakersFile := absPath(rt.cfg.Data.Speakers)

	fw.AddHandler(func(changes []watcher.ChangeEvent) error {
		dataOnly := true
		for _, change := range changes {
			p := absPath(change.Path)
			if p != sessionsFile && p != speakersFile {
				dataOnly = false
				break
			}
		}

		if dataOnly {
			fmt.Println("🔄 Data changed, reloading records...")
			rt.collector.Clear()
			if _, err := l.Reload(ctx, rt.sessions, rt.speakers); err != nil {
				fmt.Printf("❌ Reload failed: %v\n", err)
			}
			return nil
		}

		fmt.Printf("🔄 %d change(s) detected, regenerating...\n", len(changes))
		run.Do(func() {
			// Templates may have changed; reparse before the full pass.
			fresh, err := pages.New(rt.cfg, rt.speakers, rt.logger, rt.collector)
			if err != nil {
				fmt.Printf("❌ Reloading templates failed: %v\n", err)
				return
			}
			pageGen = fresh
		})
		run.Do(generateAll)
		return nil
	})

	fw.Start(ctx)
	fmt.Println("Stopped watching.")
	return nil
}

// handleSessionEvent regenerates the artifacts for one changed session.
func handleSessionEvent(ctx context.Context, ev registry.SessionEvent, cardGen *cards.Generator, pageGen *pages.Generator) {
	if ev.Type == registry.EventTypeRemoved {
		fmt.Printf("➖ Session %s removed\n", ev.Session.ID)
		return
	}

	if err := cardGen.Generate(ctx, ev.Session); err != nil {
		fmt.Printf("❌ Card for %s failed: %v\n", ev.Session.ID, err)
	}
	if err := pageGen.Generate(ctx, ev.Session); err != nil {
		fmt.Printf("❌ Page for %s failed: %v\n", ev.Session.ID, err)
	}
	fmt.Printf("🔄 Regenerated %s\n", ev.Session.ID)
}

// absPath resolves a path for comparison; relative paths are anchored at the
// working directory, matching how the watcher reports them.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// isWithin reports whether path equals dir or lies inside it. Plain prefix
// matching would also catch sibling directories like "sessions-archive".
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
