package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnoverse/ccheck/internal/types"
)

// debounce lets editors finish writing before the listing is re-read.
const debounce = 100 * time.Millisecond

// Watch re-verifies listings under dirs whenever they are written and
// passes the reports to report.
func (e *Engine) Watch(dirs []string, report func(filename string, reports []tt.MethodReport)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isWatching {
		return errors.New("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return err
		}
	}

	e.watcher = watcher
	e.watchDirs = dirs
	e.onReport = report
	e.isWatching = true
	go e.watchLoop(watcher)
	return nil
}

// StopWatching ends watch mode.
func (e *Engine) StopWatching() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isWatching {
		e.logger.Warn("not watching")
		return nil
	}
	e.isWatching = false
	return e.watcher.Close()
}

func (e *Engine) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !IsListing(event.Name) {
		return
	}

	time.Sleep(debounce)
	reports, err := e.Run(event.Name)
	if err != nil {
		e.logger.Error("verification failed", zap.String("file", event.Name), zap.Error(err))
		return
	}
	e.logger.Info("verified", zap.String("file", event.Name), zap.Int("methods", len(reports)))

	e.mu.Lock()
	report := e.onReport
	e.mu.Unlock()
	if report != nil {
		report(event.Name, reports)
	}
}

// IsListing reports whether filename names an assembly listing.
func IsListing(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return !strings.HasPrefix(filepath.Base(filename), ".")
	default:
		return false
	}
}
