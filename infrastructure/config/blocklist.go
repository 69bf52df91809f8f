package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// blocklistFile is the on-disk shape of the blocklist
type blocklistFile struct {
	Words []string `yaml:"words"`
}

// BlocklistWatcher serves the echo blocklist from a YAML file and reloads it
// when the file changes. A reload that fails to parse keeps the previous
// list.
type BlocklistWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu    sync.RWMutex
	words []string

	stopOnce sync.Once
	stopCh   chan struct{}
	reloaded chan struct{} // signalled after each successful reload
}

// NewBlocklistWatcher loads path and prepares to watch it. Call Start to
// begin watching.
func NewBlocklistWatcher(path string, logger *zap.Logger) (*BlocklistWatcher, error) {
	words, err := loadBlocklist(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocklist: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// watch the directory so editors that save by rename are still seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch blocklist directory: %w", err)
	}

	return &BlocklistWatcher{
		path:     path,
		watcher:  watcher,
		logger:   logger,
		words:    words,
		stopCh:   make(chan struct{}),
		reloaded: make(chan struct{}, 1),
	}, nil
}

// Words implements services.Blocklist
func (w *BlocklistWatcher) Words() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.words
}

// Start begins watching for changes
func (w *BlocklistWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Blocklist watcher started",
		zap.String("path", w.path),
		zap.Int("words", len(w.Words())),
	)
}

// Stop stops watching for changes
func (w *BlocklistWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Blocklist watcher stopped")
	})
}

func (w *BlocklistWatcher) watchLoop() {
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Blocklist watcher error", zap.Error(err))
		}
	}
}

func (w *BlocklistWatcher) reload() {
	words, err := loadBlocklist(w.path)
	if err != nil {
		w.logger.Error("Failed to reload blocklist, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.words = words
	w.mu.Unlock()

	w.logger.Info("Blocklist reloaded", zap.Int("words", len(words)))

	select {
	case w.reloaded <- struct{}{}:
	default:
	}
}


func loadBlocklist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file blocklistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	words := make([]string, 0, len(file.Words))
	for _, word := range file.Words {
		if word = strings.ToLower(strings.TrimSpace(word)); word != "" {
			words = append(words, word)
		}
	}
	return words, nil
}
