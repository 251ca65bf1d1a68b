// Package catalog keeps the history of finished recording sessions.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned by Get for an unknown session.
var ErrNotFound = errors.New("recording not found")

// Recording is one stopped session.
type Recording struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SessionID     string    `gorm:"uniqueIndex;not null" json:"session_id"`
	Path          string    `gorm:"not null" json:"path"`
	DurationMs    int64     `json:"duration_ms"`
	Codec         string    `json:"codec"`
	MimeType      string    `json:"mime_type"`
	Segments      int       `json:"segments"`
	Interruptions int       `json:"interruptions"`
	StartedAt     time.Time `json:"started_at"`
	StoppedAt     time.Time `json:"stopped_at"`
	Outcome       string    `gorm:"index;not null" json:"outcome"`
	Error         string    `json:"error,omitempty"`
}

type Client struct {
	DB *gorm.DB
}

// Open opens (creating if needed) the sqlite catalog at path and migrates it.
func Open(path string) (*Client, error) {
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	c := &Client{DB: db}
	if err := c.AutoMigrate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) AutoMigrate() error {
	if err := c.DB.AutoMigrate(&Recording{}); err != nil {
		return fmt.Errorf("migrating catalog: %w", err)
	}
	return nil
}

// Save inserts rec, or updates the row with the same session id.
func (c *Client) Save(ctx context.Context, rec *Recording) error {
	err := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "path", "duration_ms", "codec", "mime_type", "segments",
			"interruptions", "started_at", "stopped_at", "outcome", "error",
		}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("saving recording %s: %w", rec.SessionID, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, sessionID string) (*Recording, error) {
	var rec Recording
	err := c.DB.WithContext(ctx).Where("session_id = ?", sessionID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading recording %s: %w", sessionID, err)
	}
	return &rec, nil
}

// List returns the newest recordings first. limit <= 0 means no limit;
// outcome filters when non-empty.
func (c *Client) List(ctx context.Context, outcome string, limit int) ([]Recording, error) {
	q := c.DB.WithContext(ctx).Order("stopped_at desc, id desc")
	if outcome != "" {
		q = q.Where("outcome = ?", outcome)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []Recording
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	return recs, nil
}

func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
