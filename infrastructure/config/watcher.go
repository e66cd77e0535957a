package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Limits holds runtime-changeable request limits. They cap what
// callers may ask for, not what the engine can do.
type Limits struct {
	MaxNodesPerGraph int `yaml:"maxNodesPerGraph"`
	MaxSubgraphDepth int `yaml:"maxSubgraphDepth"`
	MaxSearchResults int `yaml:"maxSearchResults"`
	MaxNeighbors     int `yaml:"maxNeighbors"`
}

// DefaultLimits returns the limits used when no limits file is
// configured.
func DefaultLimits() Limits {
	return Limits{
		MaxNodesPerGraph: 1000,
		MaxSubgraphDepth: 10,
		MaxSearchResults: 100,
		MaxNeighbors:     50,
	}
}

// LimitsWatcher watches a YAML limits file and hot reloads it on
// change. Invalid updates are rejected and the previous limits stay
// in effect.
type LimitsWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  Limits
	mu       sync.RWMutex
	onChange []func(Limits)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewLimitsWatcher creates a watcher with the file's current content
// loaded as the initial limits.
func NewLimitsWatcher(path string, logger *zap.Logger) (*LimitsWatcher, error) {
	limits, err := loadLimitsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial limits: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch limits file: %w", err)
	}

	// Watch the directory too so atomic saves (write-then-rename)
	// are picked up.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("failed to watch limits directory", zap.Error(err))
	}

	return &LimitsWatcher{
		path:    path,
		watcher: watcher,
		current: limits,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for limits changes
func (w *LimitsWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("limits watcher started", zap.String("path", w.path))
}

// Stop stops watching for limits changes
func (w *LimitsWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *LimitsWatcher) watchLoop() {
	// Debounce to collapse the event bursts editors and atomic saves
	// produce.
	var debounce *time.Timer
	const debounceDuration = 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("limits watcher error", zap.Error(err))
		}
	}
}

func (w *LimitsWatcher) reload() {
	limits, err := loadLimitsFromFile(w.path)
	if err != nil {
		w.logger.Error("failed to reload limits, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = limits
	handlers := w.onChange
	w.mu.Unlock()

	w.logger.Info("limits reloaded",
		zap.Int("max_nodes_old", old.MaxNodesPerGraph),
		zap.Int("max_nodes_new", limits.MaxNodesPerGraph))

	for _, handler := range handlers {
		go handler(limits)
	}
}

// OnChange registers a callback invoked after each successful reload
func (w *LimitsWatcher) OnChange(handler func(Limits)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns the limits in effect
func (w *LimitsWatcher) Current() Limits {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func loadLimitsFromFile(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("failed to read limits file: %w", err)
	}

	limits := DefaultLimits()
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return Limits{}, fmt.Errorf("failed to parse limits YAML: %w", err)
	}
	if err := validateLimits(limits); err != nil {
		return Limits{}, err
	}
	return limits, nil
}

func validateLimits(l Limits) error {
	if l.MaxNodesPerGraph <= 0 {
		return fmt.Errorf("maxNodesPerGraph must be positive")
	}
	if l.MaxSubgraphDepth <= 0 {
		return fmt.Errorf("maxSubgraphDepth must be positive")
	}
	if l.MaxSearchResults <= 0 {
		return fmt.Errorf("maxSearchResults must be positive")
	}
	if l.MaxNeighbors <= 0 {
		return fmt.Errorf("maxNeighbors must be positive")
	}
	return nil
}
