// Package api serves the HTTP and WebSocket interface consumed by the
// desktop UI.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/mediadb/mediadb/internal/config"
	"github.com/mediadb/mediadb/internal/httputil"
	"github.com/mediadb/mediadb/internal/models"
	"github.com/mediadb/mediadb/internal/repository"
	"github.com/mediadb/mediadb/internal/scanner"
	"github.com/mediadb/mediadb/internal/version"
)

// Server wires the repositories, the scanner, and the WebSocket hub
// behind the HTTP API.
type Server struct {
	cfg      *config.Config
	folders  *repository.FolderRepository
	media    *repository.MediaRepository
	settings *repository.SettingsRepository
	scanner  *scanner.Scanner
	hub      *WSHub

	httpServer *http.Server

	// scanning tracks folders with a scan in flight so duplicate
	// triggers are rejected instead of queued.
	scanMu   sync.Mutex
	scanning map[string]bool

	// onFoldersChanged, when set, runs after the folder list or a
	// folder path changes. The watcher hooks in here to refresh its
	// watches.
	onFoldersChanged func()
}

// OnFoldersChanged registers the folder-change hook. Must be called
// before Start.
func (s *Server) OnFoldersChanged(fn func()) {
	s.onFoldersChanged = fn
}

func (s *Server) foldersChanged() {
	if s.onFoldersChanged != nil {
		s.onFoldersChanged()
	}
}

func NewServer(
	cfg *config.Config,
	folders *repository.FolderRepository,
	media *repository.MediaRepository,
	settings *repository.SettingsRepository,
	sc *scanner.Scanner,
	hub *WSHub,
) *Server {
	return &Server{
		cfg:      cfg,
		folders:  folders,
		media:    media,
		settings: settings,
		scanner:  sc,
		hub:      hub,
		scanning: make(map[string]bool),
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"version": version.Version})
	})

	mux.HandleFunc("GET /api/folders", s.handleListFolders)
	mux.HandleFunc("POST /api/folders", s.handleCreateFolder)
	mux.HandleFunc("POST /api/folders/reorder", s.handleReorderFolders)
	mux.HandleFunc("DELETE /api/folders/{name}", s.handleDeleteFolder)
	mux.HandleFunc("PUT /api/folders/{name}/path", s.handleUpdateFolderPath)
	mux.HandleFunc("PUT /api/folders/{name}/sort", s.handleUpdateFolderSort)
	mux.HandleFunc("PUT /api/folders/{name}/filter-type", s.handleUpdateFolderFilterType)
	mux.HandleFunc("POST /api/folders/{name}/scan", s.handleScanFolder)

	mux.HandleFunc("GET /api/folders/{name}/media", s.handleListMedia)
	mux.HandleFunc("POST /api/folders/{name}/media/filter", s.handleFilterMedia)
	mux.HandleFunc("GET /api/folders/{name}/tags", s.handleListTagOptions)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings/skip-folders", s.handleUpdateSkipFolders)
	mux.HandleFunc("PUT /api/settings/hide-panel", s.handleUpdateHidePanel)
	mux.HandleFunc("PUT /api/settings/card-size", s.handleUpdateCardSize)

	mux.HandleFunc("GET /ws", s.hub.Handle)

	coverRoot := filepath.Join(s.cfg.DataDir, "covers")
	mux.Handle("GET /covers/", http.StripPrefix("/covers/", http.FileServer(http.Dir(coverRoot))))

	return mux
}

// Start begins serving and blocks until the listener fails or is shut
// down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		// Local backend for the desktop shell; never exposed beyond
		// loopback.
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
	}

	log.Printf("API server listening on port %d", s.cfg.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ScanFolder triggers a scan unless one is already running for the
// folder. Used by the API handler, the watcher, and the scheduler.
func (s *Server) ScanFolder(folder *models.Folder) bool {
	s.scanMu.Lock()
	if s.scanning[folder.Name] {
		s.scanMu.Unlock()
		return false
	}
	s.scanning[folder.Name] = true
	s.scanMu.Unlock()

	go func() {
		defer func() {
			s.scanMu.Lock()
			delete(s.scanning, folder.Name)
			s.scanMu.Unlock()
		}()
		if _, err := s.scanner.Scan(folder); err != nil {
			log.Printf("Scan of %s failed: %v", folder.Name, err)
		}
	}()
	return true
}
