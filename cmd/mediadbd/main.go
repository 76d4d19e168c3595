package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediadb/mediadb/internal/api"
	"github.com/mediadb/mediadb/internal/config"
	"github.com/mediadb/mediadb/internal/db"
	"github.com/mediadb/mediadb/internal/images"
	"github.com/mediadb/mediadb/internal/models"
	"github.com/mediadb/mediadb/internal/repository"
	"github.com/mediadb/mediadb/internal/scanner"
	"github.com/mediadb/mediadb/internal/scheduler"
	"github.com/mediadb/mediadb/internal/version"
	"github.com/mediadb/mediadb/internal/watcher"
)

func main() {
	log.Printf("MediaDB backend v%s starting", version.Version)

	cfg := config.Load()

	conn, err := db.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	folderRepo := repository.NewFolderRepository(conn)
	mediaRepo := repository.NewMediaRepository(conn)
	settingsRepo := repository.NewSettingsRepository(conn)

	// Folders left in the loading state were interrupted mid-scan by a
	// crash or shutdown.
	if n, err := folderRepo.Recover(); err != nil {
		log.Printf("Failed to recover folder statuses: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d interrupted scans as errored", n)
	}

	if !images.Check(cfg.FFmpegPath) {
		log.Printf("WARNING: %s not found, cover images will not be converted", cfg.FFmpegPath)
	}

	hub := api.NewWSHub()
	sc := scanner.New(folderRepo, settingsRepo, mediaRepo,
		images.NewFFmpeg(cfg.FFmpegPath), hub, hub, cfg.DataDir)
	server := api.NewServer(cfg, folderRepo, mediaRepo, settingsRepo, sc, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trigger := func(f *models.Folder) { server.ScanFolder(f) }

	w, err := watcher.New(folderRepo, trigger, time.Duration(cfg.WatchDebounce)*time.Second)
	if err != nil {
		log.Printf("Filesystem watching disabled: %v", err)
	} else {
		w.Start(ctx)
		server.OnFoldersChanged(func() {
			if err := w.Refresh(); err != nil {
				log.Printf("Watcher refresh failed: %v", err)
			}
		})
	}

	if cfg.RescanCron != "" {
		sched := scheduler.New(folderRepo, trigger)
		if err := sched.Start(cfg.RescanCron); err != nil {
			log.Printf("Scheduled rescans disabled: %v", err)
		} else {
			defer sched.Stop()
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Shutdown complete")
}
