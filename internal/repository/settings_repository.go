package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mediadb/mediadb/internal/models"
)

// SettingsRepository persists the single application settings row.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get() (*models.Settings, error) {
	var s models.Settings
	var skip string
	err := r.db.QueryRow(
		`SELECT hide_panel, card_width, card_height, skip_folders FROM settings WHERE id = 1`,
	).Scan(&s.HidePanel, &s.CardWidth, &s.CardHeight, &skip)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	s.SkipFolders = splitSkipFolders(skip)
	return &s, nil
}

func (r *SettingsRepository) UpdateHidePanel(hide bool) error {
	if _, err := r.db.Exec(`UPDATE settings SET hide_panel = ? WHERE id = 1`, hide); err != nil {
		return fmt.Errorf("failed to update hide panel: %w", err)
	}
	return nil
}

func (r *SettingsRepository) UpdateCardSize(width, height int) error {
	if _, err := r.db.Exec(`UPDATE settings SET card_width = ?, card_height = ? WHERE id = 1`, width, height); err != nil {
		return fmt.Errorf("failed to update card size: %w", err)
	}
	return nil
}

// UpdateSkipFolders stores the directory-name skip list applied by
// every scan. Persisted newline-separated.
func (r *SettingsRepository) UpdateSkipFolders(skipFolders []string) error {
	joined := strings.Join(skipFolders, "\n")
	if _, err := r.db.Exec(`UPDATE settings SET skip_folders = ? WHERE id = 1`, joined); err != nil {
		return fmt.Errorf("failed to update skip folders: %w", err)
	}
	return nil
}

func splitSkipFolders(raw string) []string {
	var names []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names
}
