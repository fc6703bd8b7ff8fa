package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/platform/logger"
	"github.com/phrazzld/magicphoto-api/internal/store"
)

// Store keeps tasks, users, and gallery items in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	tasks       map[uuid.UUID]*domain.GenerationTask
	users       map[uuid.UUID]*domain.User
	usersByOpen map[string]uuid.UUID

	// gallery is kept in insertion order; reads walk it backwards.
	gallery       []*domain.GalleryItem
	galleryByID   map[uuid.UUID]int
	galleryByTask map[uuid.UUID]struct{}

	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty Store.
func NewStore(logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		tasks:         make(map[uuid.UUID]*domain.GenerationTask),
		users:         make(map[uuid.UUID]*domain.User),
		usersByOpen:   make(map[string]uuid.UUID),
		galleryByID:   make(map[uuid.UUID]int),
		galleryByTask: make(map[uuid.UUID]struct{}),
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger.With("component", "memory_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTask implements store.TaskStore.
func (s *Store) CreateTask(ctx context.Context, task *domain.GenerationTask) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("%w: task %s", store.ErrDuplicate, task.ID)
	}
	s.tasks[task.ID] = task.Clone()

	logger.FromContextOrDefault(ctx, s.logger).Debug("task created",
		"task_id", task.ID,
		"user_id", task.UserID)
	return nil
}

// GetTask implements store.TaskStore.
func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*domain.GenerationTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task.Clone(), nil
}

// UpdateTask implements store.TaskStore. The merge runs on a copy and is only
// committed when the domain accepts it.
func (s *Store) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	update domain.TaskUpdate,
) (*domain.GenerationTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	next := current.Clone()
	if err := next.Apply(update, s.now()); err != nil {
		return nil, store.NewStoreError("task", "update", "update rejected", err)
	}
	s.tasks[id] = next

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated",
		"task_id", id,
		"status", next.Status,
		"progress", next.Progress)
	return next.Clone(), nil
}

// ListUnfinishedTasks implements store.TaskStore.
func (s *Store) ListUnfinishedTasks(ctx context.Context) ([]*domain.GenerationTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.GenerationTask
	for _, task := range s.tasks {
		if !task.IsTerminal() {
			out = append(out, task.Clone())
		}
	}
	return out, nil
}

// CreateUser implements store.UserStore.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("%w: user %s", store.ErrDuplicate, user.ID)
	}
	if _, exists := s.usersByOpen[user.OpenID]; exists {
		return fmt.Errorf("%w: open id", store.ErrDuplicate)
	}
	s.users[user.ID] = user.Clone()
	s.usersByOpen[user.OpenID] = user.ID
	return nil
}

// GetUser implements store.UserStore.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user.Clone(), nil
}

// GetUserByOpenID implements store.UserStore.
func (s *Store) GetUserByOpenID(ctx context.Context, openID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByOpen[openID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

// DebitPoints implements store.UserStore. The balance check and the debit
// happen under the same lock.
func (s *Store) DebitPoints(ctx context.Context, id uuid.UUID, amount int) (*domain.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit amount must be positive", store.ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if user.Points < amount {
		return nil, store.ErrInsufficientFunds
	}
	user.Points -= amount
	user.UpdatedAt = s.now()

	logger.FromContextOrDefault(ctx, s.logger).Debug("points debited",
		"user_id", id,
		"amount", amount,
		"balance", user.Points)
	return user.Clone(), nil
}

// AppendGalleryItem implements store.GalleryStore.
func (s *Store) AppendGalleryItem(ctx context.Context, item *domain.GalleryItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.galleryByID[item.ID]; exists {
		return fmt.Errorf("%w: gallery item %s", store.ErrDuplicate, item.ID)
	}
	if _, exists := s.galleryByTask[item.TaskID]; exists {
		return fmt.Errorf("%w: gallery item for task %s", store.ErrDuplicate, item.TaskID)
	}

	s.galleryByID[item.ID] = len(s.gallery)
	s.galleryByTask[item.TaskID] = struct{}{}
	s.gallery = append(s.gallery, item.Clone())
	return nil
}

// ListGallery implements store.GalleryStore.
func (s *Store) ListGallery(ctx context.Context, page, pageSize int) ([]*domain.GalleryItem, int, error) {
	if pageSize <= 0 {
		return nil, 0, fmt.Errorf("%w: page size must be positive", store.ErrInvalidEntity)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.gallery)
	offset := store.PageOffset(page, pageSize)
	items := make([]*domain.GalleryItem, 0, min(pageSize, total))
	if offset >= total {
		return items, total, nil
	}
	for i := total - 1 - offset; i >= 0 && len(items) < pageSize; i-- {
		items = append(items, s.gallery[i].Clone())
	}
	return items, total, nil
}

// GetGalleryItem implements store.GalleryStore.
func (s *Store) GetGalleryItem(ctx context.Context, id uuid.UUID) (*domain.GalleryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.galleryByID[id]
	if !ok {
		return nil, store.ErrGalleryItemNotFound
	}
	return s.gallery[idx].Clone(), nil
}

var (
	_ store.TaskStore    = (*Store)(nil)
	_ store.UserStore    = (*Store)(nil)
	_ store.GalleryStore = (*Store)(nil)
)
