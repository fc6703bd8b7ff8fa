package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/store"
)

const galleryColumns = `id, task_id, user_id, image_url, thumbnail_url, original_url, prompt, created_at`

// PostgresGalleryStore implements store.GalleryStore using PostgreSQL.
// Feed order follows the table's insertion sequence, newest first.
type PostgresGalleryStore struct {
	db store.DBTX
}

// NewPostgresGalleryStore creates a new PostgresGalleryStore.
func NewPostgresGalleryStore(db store.DBTX) *PostgresGalleryStore {
	return &PostgresGalleryStore{db: db}
}

var _ store.GalleryStore = (*PostgresGalleryStore)(nil)

func scanGalleryItem(row rowScanner) (*domain.GalleryItem, error) {
	var item domain.GalleryItem
	err := row.Scan(
		&item.ID,
		&item.TaskID,
		&item.UserID,
		&item.ImageURL,
		&item.ThumbnailURL,
		&item.OriginalURL,
		&item.Prompt,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AppendGalleryItem implements store.GalleryStore.
func (s *PostgresGalleryStore) AppendGalleryItem(ctx context.Context, item *domain.GalleryItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO gallery_items (` + galleryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.TaskID,
		item.UserID,
		item.ImageURL,
		item.ThumbnailURL,
		item.OriginalURL,
		item.Prompt,
		item.CreatedAt,
	)
	if err != nil {
		return store.NewStoreError("gallery_item", "create", "failed to insert gallery item", MapError(err))
	}
	return nil
}

// ListGallery implements store.GalleryStore. The page and the total come from
// one statement so they describe the same snapshot of the feed.
func (s *PostgresGalleryStore) ListGallery(
	ctx context.Context,
	page, pageSize int,
) ([]*domain.GalleryItem, int, error) {
	if pageSize <= 0 {
		return nil, 0, fmt.Errorf("%w: page size must be positive", store.ErrInvalidEntity)
	}

	query := `SELECT ` + galleryColumns + `, COUNT(*) OVER() AS total
		FROM gallery_items ORDER BY seq DESC LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, pageSize, store.PageOffset(page, pageSize))
	if err != nil {
		return nil, 0, store.NewStoreError("gallery_item", "list", "failed to query gallery items", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var total int
	items := make([]*domain.GalleryItem, 0, pageSize)
	for rows.Next() {
		var item domain.GalleryItem
		err := rows.Scan(
			&item.ID,
			&item.TaskID,
			&item.UserID,
			&item.ImageURL,
			&item.ThumbnailURL,
			&item.OriginalURL,
			&item.Prompt,
			&item.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, store.NewStoreError("gallery_item", "list", "failed to scan gallery item", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, store.NewStoreError("gallery_item", "list", "failed to iterate gallery items", err)
	}

	// A page past the end carries no window count.
	if len(items) == 0 {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gallery_items`).Scan(&total); err != nil {
			return nil, 0, store.NewStoreError("gallery_item", "list", "failed to count gallery items", MapError(err))
		}
	}
	return items, total, nil
}

// GetGalleryItem implements store.GalleryStore.
func (s *PostgresGalleryStore) GetGalleryItem(ctx context.Context, id uuid.UUID) (*domain.GalleryItem, error) {
	query := `SELECT ` + galleryColumns + ` FROM gallery_items WHERE id = $1`
	item, err := scanGalleryItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGalleryItemNotFound
		}
		return nil, store.NewStoreError("gallery_item", "get", "failed to query gallery item", MapError(err))
	}
	return item, nil
}
