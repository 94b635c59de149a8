// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/dqview/internal/ports/secondary"
)

// FrameCatalog implements secondary.FrameCatalog with SQLite.
type FrameCatalog struct {
	db *sql.DB
}

// NewFrameCatalog creates a new SQLite frame catalog.
func NewFrameCatalog(db *sql.DB) *FrameCatalog {
	return &FrameCatalog{db: db}
}

// Create stores a new frame record.
func (c *FrameCatalog) Create(ctx context.Context, frame *secondary.FrameRecord) error {
	if frame.CreatedAt == "" {
		frame.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	createdAt, err := time.Parse(time.RFC3339, frame.CreatedAt)
	if err != nil {
		return fmt.Errorf("invalid created_at %q: %w", frame.CreatedAt, err)
	}

	_, err = c.db.ExecContext(ctx,
		"INSERT INTO frames (id, kind, name, created_at) VALUES (?, ?, ?, ?)",
		frame.ID, frame.Kind, frame.Name, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create frame: %w", err)
	}
	return nil
}

// GetByID retrieves a frame record by UUID.
func (c *FrameCatalog) GetByID(ctx context.Context, id string) (*secondary.FrameRecord, error) {
	var createdAt time.Time

	record := &secondary.FrameRecord{}
	err := c.db.QueryRowContext(ctx,
		"SELECT id, kind, name, created_at FROM frames WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Kind, &record.Name, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", secondary.ErrFrameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get frame: %w", err)
	}

	record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return record, nil
}

// List retrieves all frame records in insertion order.
func (c *FrameCatalog) List(ctx context.Context) ([]*secondary.FrameRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, kind, name, created_at FROM frames ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	defer rows.Close()

	var frames []*secondary.FrameRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.FrameRecord{}
		if err := rows.Scan(&record.ID, &record.Kind, &record.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		frames = append(frames, record)
	}

	return frames, rows.Err()
}

// UpdateName changes the stored name of a frame.
func (c *FrameCatalog) UpdateName(ctx context.Context, id, name string) error {
	result, err := c.db.ExecContext(ctx,
		"UPDATE frames SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update frame: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", secondary.ErrFrameNotFound, id)
	}
	return nil
}

// Delete removes a frame record.
func (c *FrameCatalog) Delete(ctx context.Context, id string) error {
	result, err := c.db.ExecContext(ctx, "DELETE FROM frames WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete frame: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", secondary.ErrFrameNotFound, id)
	}
	return nil
}

var _ secondary.FrameCatalog = (*FrameCatalog)(nil)
