package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/platform/logger"
	"github.com/phrazzld/magicphoto-api/internal/store"
)

// Pagination bounds for the gallery feed.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// GalleryPage is one page of the feed, newest first.
type GalleryPage struct {
	Items    []*domain.GalleryItem
	Total    int
	Page     int
	PageSize int
}

// GalleryService publishes completed tasks and serves the feed.
type GalleryService interface {
	// Publish prepends the result of a completed task to the feed.
	Publish(ctx context.Context, task *domain.GenerationTask) (*domain.GalleryItem, error)

	// List returns one page of the feed. Zero values select the defaults.
	List(ctx context.Context, page, pageSize int) (*GalleryPage, error)

	// Get returns a single feed item.
	Get(ctx context.Context, id uuid.UUID) (*domain.GalleryItem, error)
}

type galleryServiceImpl struct {
	gallery store.GalleryStore
	logger  *slog.Logger
}

var _ GalleryService = (*galleryServiceImpl)(nil)

// NewGalleryService creates a new GalleryService.
func NewGalleryService(gallery store.GalleryStore, logger *slog.Logger) (GalleryService, error) {
	if gallery == nil {
		return nil, &ServiceError{Service: "gallery", Operation: "create_service", Message: "gallery store cannot be nil"}
	}
	if logger == nil {
		return nil, &ServiceError{Service: "gallery", Operation: "create_service", Message: "logger cannot be nil"}
	}
	return &galleryServiceImpl{
		gallery: gallery,
		logger:  logger.With("component", "gallery_service"),
	}, nil
}

// Publish implements GalleryService.
func (s *galleryServiceImpl) Publish(ctx context.Context, task *domain.GenerationTask) (*domain.GalleryItem, error) {
	if task == nil || task.Status != domain.TaskStatusCompleted {
		return nil, fmt.Errorf("%w: only completed tasks can be published", ErrInvalidInput)
	}

	item, err := domain.NewGalleryItem(task)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.gallery.AppendGalleryItem(ctx, item); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "task already published",
				"task_id", task.ID)
		}
		return nil, NewServiceError("gallery", "publish", "failed to append item", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "published to gallery",
		"item_id", item.ID,
		"task_id", task.ID)
	return item, nil
}

// List implements GalleryService.
func (s *galleryServiceImpl) List(ctx context.Context, page, pageSize int) (*GalleryPage, error) {
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 || pageSize < 1 || pageSize > MaxPageSize || page > math.MaxInt/pageSize {
		return nil, fmt.Errorf("%w: page=%d pageSize=%d", ErrInvalidPage, page, pageSize)
	}

	items, total, err := s.gallery.ListGallery(ctx, page, pageSize)
	if err != nil {
		return nil, NewServiceError("gallery", "list", "failed to list gallery", err)
	}
	if items == nil {
		items = []*domain.GalleryItem{}
	}

	return &GalleryPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get implements GalleryService.
func (s *galleryServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.GalleryItem, error) {
	item, err := s.gallery.GetGalleryItem(ctx, id)
	if err != nil {
		return nil, NewServiceError("gallery", "get", "failed to load item", err)
	}
	return item, nil
}
