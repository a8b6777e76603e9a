package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/core/config"
	"github.com/abdul-hamid-achik/suiterun/packages/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

// watchedFiles returns the config file, the env file and every file-based
// data source
func watchedFiles(cfg *config.Config) map[string]bool {
	files := make(map[string]bool)
	add := func(p string) {
		if p == "" {
			return
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		files[filepath.Clean(p)] = true
	}

	add(cfg.Path)
	add(cfg.Resolve(cfg.EnvFile))
	for _, ds := range cfg.DataSources {
		if ds.Kind.FileBased() {
			add(cfg.Resolve(ds.Path))
		}
	}
	return files
}

func relevant(event fsnotify.Event, files map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := event.Name
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	return files[filepath.Clean(name)]
}

// watch runs once, then re-runs whenever a watched file changes until ctx
// is canceled. Runs never overlap. The exit code is that of the last run.
func watch(ctx context.Context, cmd *cobra.Command, sel selection, log logger.Logger) error {
	s := &session{}
	last := runOutcome(runOnce(ctx, cmd, sel, log, s))
	if exitCode(last) == ExitUsageError {
		return last
	}

	cfg, err := loadConfig()
	if err != nil {
		return fatal(log, err)
	}
	files := watchedFiles(cfg)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched so editors that replace files are seen
	watchedDirs := make(map[string]bool)
	for file := range files {
		dir := filepath.Dir(file)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			log.Log(fmt.Sprintf("Failed to watch %s: %v", dir, err), logger.LevelWarn)
		}
		watchedDirs[dir] = true
	}

	log.Log("Watching for changes... (press Ctrl+C to stop)", logger.LevelInfo)

	rerun := make(chan string, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return last

		case event, ok := <-watcher.Events:
			if !ok {
				return last
			}
			if !relevant(event, files) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- name:
				default:
				}
			})

		case name := <-rerun:
			log.Log(fmt.Sprintf("File changed: %s, re-running tests", name), logger.LevelInfo)
			// Fatal errors were already logged; keep watching for a fix
			last = runOutcome(runOnce(ctx, cmd, sel, log, s))

		case err, ok := <-watcher.Errors:
			if !ok {
				return last
			}
			log.Log(fmt.Sprintf("Watcher error: %v", err), logger.LevelWarn)
		}
	}
}
