package repository

import (
	"database/sql"
	"fmt"

	"github.com/mediadb/mediadb/internal/models"
)

// MediaRepository persists the scanned contents of a folder.
type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// ReplaceFolderContents atomically swaps a folder's media and tags for
// the results of a fresh scan. A failed scan therefore never leaves a
// half-written folder behind.
func (r *MediaRepository) ReplaceFolderContents(folderName string, items []models.MediaItem, tags []models.MediaTag) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM media WHERE folder_name = ?`, folderName); err != nil {
		return fmt.Errorf("failed to clear media: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tags WHERE folder_name = ?`, folderName); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}

	insertMedia, err := tx.Prepare(
		`INSERT INTO media (folder_name, path, kind, title, posters, year, file, seasons)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare media insert: %w", err)
	}
	defer insertMedia.Close()

	for _, item := range items {
		_, err := insertMedia.Exec(
			folderName, item.Path, item.Kind, item.Title,
			item.Posters, item.Year, item.File, item.Seasons,
		)
		if err != nil {
			return fmt.Errorf("failed to insert media %q: %w", item.Path, err)
		}
	}

	insertTag, err := tx.Prepare(
		`INSERT OR IGNORE INTO tags (folder_name, path, t, name) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare tag insert: %w", err)
	}
	defer insertTag.Close()

	for _, tag := range tags {
		if _, err := insertTag.Exec(folderName, tag.Path, tag.Category, tag.Label); err != nil {
			return fmt.Errorf("failed to insert tag for %q: %w", tag.Path, err)
		}
	}

	return tx.Commit()
}

// ListByFolder returns a folder's media ordered by the given sort.
func (r *MediaRepository) ListByFolder(folderName string, sortType models.SortType) ([]models.MediaItem, error) {
	order := "title COLLATE NOCASE, path"
	switch sortType {
	case models.SortByYear:
		order = "year, title COLLATE NOCASE, path"
	case models.SortByPath:
		order = "path"
	}

	rows, err := r.db.Query(
		`SELECT path, kind, title, posters, year, file, seasons
			FROM media WHERE folder_name = ? ORDER BY `+order,
		folderName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var item models.MediaItem
		if err := rows.Scan(&item.Path, &item.Kind, &item.Title, &item.Posters, &item.Year, &item.File, &item.Seasons); err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// TagsByPath returns every tag in the folder grouped by media path.
func (r *MediaRepository) TagsByPath(folderName string) (map[string][]models.Tag, error) {
	rows, err := r.db.Query(
		`SELECT path, t, name FROM tags WHERE folder_name = ?`,
		folderName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[string][]models.Tag)
	for rows.Next() {
		var path string
		var tag models.Tag
		if err := rows.Scan(&path, &tag.Category, &tag.Label); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags[path] = append(tags[path], tag)
	}
	return tags, rows.Err()
}

// FolderTagOptions returns the distinct (category, label) pairs present
// in a folder, for building the filter sidebar.
func (r *MediaRepository) FolderTagOptions(folderName string) ([]models.Tag, error) {
	rows, err := r.db.Query(
		`SELECT DISTINCT t, name FROM tags WHERE folder_name = ? ORDER BY t, name COLLATE NOCASE`,
		folderName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tag options: %w", err)
	}
	defer rows.Close()

	var options []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.Category, &tag.Label); err != nil {
			return nil, fmt.Errorf("failed to scan tag option: %w", err)
		}
		options = append(options, tag)
	}
	return options, rows.Err()
}
