// Package watcher rescans library folders when their contents change
// on disk.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mediadb/mediadb/internal/models"
	"github.com/mediadb/mediadb/internal/repository"
)

// Watcher maps filesystem events under the registered library roots to
// debounced scan triggers. Bursts of changes (a copy of a whole season,
// say) collapse into one rescan per folder.
type Watcher struct {
	folders  *repository.FolderRepository
	trigger  func(*models.Folder)
	debounce time.Duration

	fsw *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	roots  map[string]string // absolute root -> folder name
}

func New(folders *repository.FolderRepository, trigger func(*models.Folder), debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	return &Watcher{
		folders:  folders,
		trigger:  trigger,
		debounce: debounce,
		fsw:      fsw,
		timers:   make(map[string]*time.Timer),
		roots:    make(map[string]string),
	}, nil
}

// Start registers watches for every known folder and processes events
// until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	if err := w.Refresh(); err != nil {
		log.Printf("Watcher: initial refresh failed: %v", err)
	}

	go func() {
		defer w.fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				log.Printf("Watcher: %v", err)
			}
		}
	}()
}

// Refresh re-reads the folder list and watches each root and its
// subdirectories. Called at startup and whenever folders are added or
// repointed. fsnotify watches are not recursive, so every directory is
// registered individually.
func (w *Watcher) Refresh() error {
	folders, err := w.folders.List()
	if err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}

	w.mu.Lock()
	w.roots = make(map[string]string, len(folders))
	for _, f := range folders {
		w.roots[filepath.Clean(f.Path)] = f.Name
	}
	w.mu.Unlock()

	for _, f := range folders {
		root := filepath.Clean(f.Path)
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			if err := w.fsw.Add(path); err != nil {
				log.Printf("Watcher: cannot watch %s: %v", path, err)
			}
			return nil
		})
		if walkErr != nil {
			log.Printf("Watcher: cannot walk %s: %v", root, walkErr)
		}
	}
	return nil
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories need their own watch before their contents
	// produce events. Plain files ride on their parent's watch and
	// must not consume watch descriptors.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err == nil {
				log.Printf("Watcher: watching new directory %s", event.Name)
			}
		}
	}

	name := w.folderFor(event.Name)
	if name == "" {
		return
	}
	w.schedule(name)
}

// folderFor resolves an event path to the owning folder by longest
// matching root.
func (w *Watcher) folderFor(path string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	path = filepath.Clean(path)
	best, bestRoot := "", ""
	for root, name := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			if len(root) > len(bestRoot) {
				best, bestRoot = name, root
			}
		}
	}
	return best
}

func (w *Watcher) schedule(folderName string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[folderName]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[folderName] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, folderName)
		w.mu.Unlock()
		w.fire(folderName)
	})
}

func (w *Watcher) fire(folderName string) {
	folder, err := w.folders.GetByName(folderName)
	if err != nil {
		log.Printf("Watcher: %v", err)
		return
	}
	log.Printf("Watcher: changes settled in %s, triggering rescan", folderName)
	w.trigger(folder)
}
