package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/melodycompare/mcx/internal/models"
)

// LibraryRepository persists the user's saved analyses.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a LibraryRepository backed by the given database.
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// Create inserts a new library item.
func (r *LibraryRepository) Create(item models.LibraryItem) error {
	data, err := json.Marshal(item.Data)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO library_items (id, song_title, created_at, analysis)
		VALUES (?, ?, ?, ?)
	`, item.ID, item.SongTitle, item.Date.UTC().Format(time.RFC3339Nano), string(data))
	if err != nil {
		return fmt.Errorf("failed to create library item: %w", err)
	}

	return nil
}

// Get retrieves a library item by id.
func (r *LibraryRepository) Get(id string) (*models.LibraryItem, error) {
	row := r.db.QueryRow(`
		SELECT id, song_title, created_at, analysis
		FROM library_items WHERE id = ?
	`, id)

	item, err := scanLibraryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get library item: %w", err)
	}

	return item, nil
}

// List returns all library items, newest first.
func (r *LibraryRepository) List() ([]models.LibraryItem, error) {
	rows, err := r.db.Query(`
		SELECT id, song_title, created_at, analysis
		FROM library_items ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	defer rows.Close()

	var items []models.LibraryItem
	for rows.Next() {
		item, err := scanLibraryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan library item: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// Rename updates an item's title. Renaming an absent id is a no-op.
func (r *LibraryRepository) Rename(id, newTitle string) error {
	if _, err := r.db.Exec("UPDATE library_items SET song_title = ? WHERE id = ?", newTitle, id); err != nil {
		return fmt.Errorf("failed to rename library item: %w", err)
	}
	return nil
}

// Delete removes an item. Deleting an absent id is a no-op, so the
// operation is idempotent.
func (r *LibraryRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM library_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete library item: %w", err)
	}
	return nil
}

// Clear removes every library item. Part of the logout reset.
func (r *LibraryRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM library_items"); err != nil {
		return fmt.Errorf("failed to clear library: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLibraryItem(s scanner) (*models.LibraryItem, error) {
	var item models.LibraryItem
	var createdAt, analysis string

	if err := s.Scan(&item.ID, &item.SongTitle, &createdAt, &analysis); err != nil {
		return nil, err
	}

	date, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	item.Date = date

	if err := json.Unmarshal([]byte(analysis), &item.Data); err != nil {
		return nil, fmt.Errorf("invalid analysis payload: %w", err)
	}

	return &item, nil
}
