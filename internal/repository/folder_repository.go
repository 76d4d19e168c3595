package repository

import (
	"database/sql"
	"fmt"

	"github.com/mediadb/mediadb/internal/models"
)

// FolderRepository persists the ordered list of library folders.
type FolderRepository struct {
	db *sql.DB
}

func NewFolderRepository(db *sql.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

// Create appends a folder at the end of the list. Folder names are
// unique; re-adding an existing name is an error. The position is
// assigned inside the INSERT so concurrent creates cannot collide.
func (r *FolderRepository) Create(name, path string) (*models.Folder, error) {
	_, err := r.db.Exec(
		`INSERT INTO folder_data (folder_name, folder_path, position, sort_type, filter_type, status)
			VALUES (?, ?, (SELECT COUNT(*) FROM folder_data), 0, 0, 0)`,
		name, path,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	var position int
	if err := r.db.QueryRow(`SELECT position FROM folder_data WHERE folder_name = ?`, name).Scan(&position); err != nil {
		return nil, fmt.Errorf("failed to read back folder position: %w", err)
	}

	return &models.Folder{Name: name, Path: path, Position: position}, nil
}

// List returns all folders ordered by position.
func (r *FolderRepository) List() ([]models.Folder, error) {
	rows, err := r.db.Query(
		`SELECT folder_name, folder_path, position, sort_type, filter_type, status
			FROM folder_data ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.Name, &f.Path, &f.Position, &f.SortType, &f.FilterType, &f.Status); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// GetByName returns the folder with the given name, or sql.ErrNoRows.
func (r *FolderRepository) GetByName(name string) (*models.Folder, error) {
	var f models.Folder
	err := r.db.QueryRow(
		`SELECT folder_name, folder_path, position, sort_type, filter_type, status
			FROM folder_data WHERE folder_name = ?`,
		name,
	).Scan(&f.Name, &f.Path, &f.Position, &f.SortType, &f.FilterType, &f.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to get folder %q: %w", name, err)
	}
	return &f, nil
}

// GetByPosition returns the folder at the given list position.
func (r *FolderRepository) GetByPosition(position int) (*models.Folder, error) {
	var f models.Folder
	err := r.db.QueryRow(
		`SELECT folder_name, folder_path, position, sort_type, filter_type, status
			FROM folder_data WHERE position = ?`,
		position,
	).Scan(&f.Name, &f.Path, &f.Position, &f.SortType, &f.FilterType, &f.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to get folder at position %d: %w", position, err)
	}
	return &f, nil
}

func (r *FolderRepository) UpdateStatus(name string, status models.FolderStatus) error {
	if _, err := r.db.Exec(`UPDATE folder_data SET status = ? WHERE folder_name = ?`, status, name); err != nil {
		return fmt.Errorf("failed to update folder status: %w", err)
	}
	return nil
}

func (r *FolderRepository) UpdateSortType(name string, sortType models.SortType) error {
	if _, err := r.db.Exec(`UPDATE folder_data SET sort_type = ? WHERE folder_name = ?`, sortType, name); err != nil {
		return fmt.Errorf("failed to update sort type: %w", err)
	}
	return nil
}

func (r *FolderRepository) UpdateFilterType(name string, filterType models.FilterType) error {
	if _, err := r.db.Exec(`UPDATE folder_data SET filter_type = ? WHERE folder_name = ?`, filterType, name); err != nil {
		return fmt.Errorf("failed to update filter type: %w", err)
	}
	return nil
}

// UpdatePath repoints a folder at a new location on disk. Scanned
// media is keyed by folder name so it survives the move.
func (r *FolderRepository) UpdatePath(name, path string) error {
	if _, err := r.db.Exec(`UPDATE folder_data SET folder_path = ? WHERE folder_name = ?`, path, name); err != nil {
		return fmt.Errorf("failed to update folder path: %w", err)
	}
	return nil
}

// Reorder moves the folder at position from to position to, shifting
// the folders in between.
func (r *FolderRepository) Reorder(from, to int) error {
	if from == to {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var name string
	if err := tx.QueryRow(`SELECT folder_name FROM folder_data WHERE position = ?`, from).Scan(&name); err != nil {
		return fmt.Errorf("failed to find folder at position %d: %w", from, err)
	}

	if from < to {
		_, err = tx.Exec(
			`UPDATE folder_data SET position = position - 1 WHERE position > ? AND position <= ?`,
			from, to,
		)
	} else {
		_, err = tx.Exec(
			`UPDATE folder_data SET position = position + 1 WHERE position >= ? AND position < ?`,
			to, from,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to shift folder positions: %w", err)
	}

	if _, err := tx.Exec(`UPDATE folder_data SET position = ? WHERE folder_name = ?`, to, name); err != nil {
		return fmt.Errorf("failed to move folder: %w", err)
	}

	return tx.Commit()
}

// Delete removes a folder and compacts the positions above it.
// Associated media and tags are removed by the cascade.
func (r *FolderRepository) Delete(name string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRow(`SELECT position FROM folder_data WHERE folder_name = ?`, name).Scan(&position); err != nil {
		return fmt.Errorf("failed to find folder %q: %w", name, err)
	}

	if _, err := tx.Exec(`DELETE FROM folder_data WHERE folder_name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	if _, err := tx.Exec(`UPDATE folder_data SET position = position - 1 WHERE position > ?`, position); err != nil {
		return fmt.Errorf("failed to compact folder positions: %w", err)
	}

	return tx.Commit()
}

// Recover marks folders stuck in the loading state as errored. Called
// once at startup: a loading folder at that point means a scan was
// interrupted by a crash or shutdown.
func (r *FolderRepository) Recover() (int, error) {
	res, err := r.db.Exec(
		`UPDATE folder_data SET status = ? WHERE status = ?`,
		models.FolderError, models.FolderLoading,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to recover folder statuses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count recovered folders: %w", err)
	}
	return int(n), nil
}
