package scanner

import (
	"fmt"
	"log"

	"github.com/mediadb/mediadb/internal/images"
	"github.com/mediadb/mediadb/internal/models"
	"github.com/mediadb/mediadb/internal/notifications"
	"github.com/mediadb/mediadb/internal/repository"
)

// === SCAN ORCHESTRATION ===

// Scanner runs full library scans: walk the folder tree, parse
// metadata, materialize cover images, and atomically replace the
// folder's stored contents.
type Scanner struct {
	folders  *repository.FolderRepository
	settings *repository.SettingsRepository
	media    *repository.MediaRepository
	conv     images.Converter
	notifier notifications.Notifier
	events   notifications.Events
	dataDir  string
}

func New(
	folders *repository.FolderRepository,
	settings *repository.SettingsRepository,
	media *repository.MediaRepository,
	conv images.Converter,
	notifier notifications.Notifier,
	events notifications.Events,
	dataDir string,
) *Scanner {
	return &Scanner{
		folders:  folders,
		settings: settings,
		media:    media,
		conv:     conv,
		notifier: notifier,
		events:   events,
		dataDir:  dataDir,
	}
}

// Scan rebuilds one folder's library contents from disk. The folder is
// marked loading for the duration and ends idle, or errored when the
// scan cannot produce a consistent result. Per-item parse failures are
// reported and skipped; they do not fail the scan.
func (s *Scanner) Scan(folder *models.Folder) (*models.ScanResult, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", folder.Name, err)
	}
	skip := make(map[string]bool, len(settings.SkipFolders))
	for _, name := range settings.SkipFolders {
		skip[name] = true
	}

	if err := s.setStatus(folder.Name, models.FolderLoading); err != nil {
		return nil, err
	}

	result, err := s.scan(folder, skip)
	if err != nil {
		if stErr := s.setStatus(folder.Name, models.FolderError); stErr != nil {
			log.Printf("Scanner: %v", stErr)
		}
		s.notifier.Notify(notifications.LevelError, fmt.Sprintf("Scan of %s failed: %v", folder.Name, err))
		return nil, err
	}

	if err := s.setStatus(folder.Name, models.FolderIdle); err != nil {
		return nil, err
	}

	log.Printf("Scanner: %s done, %d dirs, %d items, %d covers, %d item errors",
		folder.Name, result.DirsWalked, result.ItemsEmitted, result.CoversSaved, len(result.Errors))
	return result, nil
}

func (s *Scanner) scan(folder *models.Folder, skip map[string]bool) (*models.ScanResult, error) {
	result := &models.ScanResult{}
	coverDir := images.CoverDir(s.dataDir, folder.Name)

	walker := &Walker{
		Root:   folder.Path,
		Skip:   skip,
		Comics: &ComicParser{CoverDir: coverDir, Converter: s.conv},
		OnItemError: func(source, msg string) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", source, msg))
			s.notifier.Notify(notifications.LevelWarning, fmt.Sprintf("%s: %s", source, msg))
		},
	}

	major, secondary, dirs := walker.Walk()
	result.DirsWalked = dirs

	items, posters := Aggregate(major, secondary)
	result.ItemsEmitted = len(items)

	mat := &images.Materializer{Converter: s.conv}
	matErrs := mat.MaterializeAll(folder.Path, coverDir, posters)
	for _, err := range matErrs {
		result.Errors = append(result.Errors, err.Error())
		s.notifier.Notify(notifications.LevelWarning, err.Error())
	}
	result.CoversSaved = len(posters) - len(matErrs)

	tags := collectTags(items)
	if err := s.media.ReplaceFolderContents(folder.Name, items, tags); err != nil {
		return nil, fmt.Errorf("scan %q: %w", folder.Name, err)
	}

	return result, nil
}

func (s *Scanner) setStatus(folderName string, status models.FolderStatus) error {
	if err := s.folders.UpdateStatus(folderName, status); err != nil {
		return fmt.Errorf("scan %q: %w", folderName, err)
	}
	s.events.FolderUpdated(folderName)
	return nil
}

// collectTags flattens each item's tag categories into (path, category,
// label) rows for the store.
func collectTags(items []models.MediaItem) []models.MediaTag {
	var tags []models.MediaTag
	add := func(path, category string, labels []string) {
		for _, label := range labels {
			tags = append(tags, models.MediaTag{Path: path, Category: category, Label: label})
		}
	}
	for _, item := range items {
		add(item.Path, "tags", item.Tags)
		add(item.Path, "genres", item.Genres)
		add(item.Path, "actors", item.Actors)
		add(item.Path, "studios", item.Studios)
	}
	return tags
}
