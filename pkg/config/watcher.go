package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/juju/errors"
)

// debounce collapses the burst of events editors produce for one save.
var debounce = 300 * time.Millisecond

// WatchConfig watches the config file and calls onChange with the freshly
// loaded config after every external modification. Writes made through
// UpdateConfigFile are skipped while their lock is active. It blocks until
// ctx is done.
func WatchConfig(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Trace(err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Annotate(err, "creating config watcher")
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file by renaming.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Annotatef(err, "watching %s", filepath.Dir(abs))
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warningf("watching config: %v", err)
		case <-pending:
			pending = nil
			reload(abs, onChange)
		}
	}
}

func reload(path string, onChange func(*Config)) {
	if IsConfigLocked(path) {
		logger.Infof("config change ignored, written by tgbot itself")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Errorf("reloading config: %v", err)
		return
	}
	cfg, err := Parse(path, data)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger.Errorf("reloading config: %v", err)
		return
	}
	logger.Infof("config change detected, reloaded %s", path)
	onChange(cfg)
}
