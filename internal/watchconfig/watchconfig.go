// Package watchconfig hot-reloads the server's tuning knobs from a JSON
// file, the same fsnotify-driven pattern the runtime's VFS watcher uses for
// source tree changes, adapted here to a single config file instead of a
// whole filesystem.
package watchconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Config holds the server tuning knobs read from the JSON file. A reload
// replaces every field, but Backlog only takes effect when a listener is
// opened: a changed Backlog does not alter a listener that is already
// running.
type Config struct {
	Backlog        int    `json:"backlog"`
	BannerVersion  string `json:"banner_version"`
	MinPeerVersion string `json:"min_peer_version"`
}

// Watcher reloads Config from a path whenever the file is written.
type Watcher struct {
	path string
	fw   *fsnotify.Watcher

	mu  sync.RWMutex
	cur Config
}

// New loads path once, starts watching it for further writes, and returns
// the live Watcher. The initial load must succeed.
func New(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watchconfig: %w", err)
	}
	w := &Watcher{path: path, fw: fw}
	if err := w.reload(); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watchconfig: watch %s: %w", path, err)
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("watchconfig: read %s: %w", w.path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("watchconfig: parse %s: %w", w.path, err)
	}
	w.mu.Lock()
	w.cur = cfg
	w.mu.Unlock()
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				_ = w.reload() // a malformed write keeps the last good config
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

func (w *Watcher) Close() error { return w.fw.Close() }
