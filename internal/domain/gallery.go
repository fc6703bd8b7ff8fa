package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors for GalleryItem
var (
	ErrEmptyGalleryImageURL = errors.New("gallery image URL cannot be empty")
	ErrEmptyGalleryTaskID   = errors.New("gallery task ID cannot be empty")
)

// GalleryItem is a published generation result in the shared feed.
// Items are immutable once created.
type GalleryItem struct {
	ID           uuid.UUID `json:"id"`
	TaskID       uuid.UUID `json:"task_id"`
	UserID       uuid.UUID `json:"user_id"`
	ImageURL     string    `json:"image_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	OriginalURL  string    `json:"original_url"`
	Prompt       string    `json:"prompt"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewGalleryItem builds the feed entry for a completed task.
func NewGalleryItem(task *GenerationTask) (*GalleryItem, error) {
	item := &GalleryItem{
		ID:           uuid.New(),
		TaskID:       task.ID,
		UserID:       task.UserID,
		ImageURL:     task.ResultURL,
		ThumbnailURL: task.ThumbnailURL,
		OriginalURL:  task.PhotoURL,
		Prompt:       task.Prompt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the GalleryItem has valid data.
func (g *GalleryItem) Validate() error {
	if g.TaskID == uuid.Nil {
		return ErrEmptyGalleryTaskID
	}
	if g.ImageURL == "" {
		return ErrEmptyGalleryImageURL
	}
	return nil
}

// Clone returns a copy of the item.
func (g *GalleryItem) Clone() *GalleryItem {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}
