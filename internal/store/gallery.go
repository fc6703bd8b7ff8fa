package store

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
)

// GalleryStore defines the interface for the shared gallery feed.
type GalleryStore interface {
	// AppendGalleryItem adds an item to the head of the feed.
	// Returns ErrDuplicate if an item for the same task already exists.
	AppendGalleryItem(ctx context.Context, item *domain.GalleryItem) error

	// ListGallery returns one page of the feed, newest first, along with the
	// total number of items. Pages are 1-indexed.
	ListGallery(ctx context.Context, page, pageSize int) ([]*domain.GalleryItem, int, error)

	// GetGalleryItem retrieves an item by ID.
	// Returns ErrGalleryItemNotFound if the item does not exist.
	GetGalleryItem(ctx context.Context, id uuid.UUID) (*domain.GalleryItem, error)
}

// PageOffset converts a 1-indexed page into a row offset. Offsets that would
// overflow saturate at math.MaxInt.
func PageOffset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}
