package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/service"
)

// MockPhotoService implements service.PhotoService with function fields.
// Unset functions panic so a test notices an unexpected call.
type MockPhotoService struct {
	SubmitFn    func(ctx context.Context, req service.SubmitRequest) (*domain.GenerationTask, error)
	GetStatusFn func(ctx context.Context, taskID uuid.UUID) (*service.StatusView, error)
	GetResultFn func(ctx context.Context, taskID uuid.UUID) (*service.ResultView, error)
}

var _ service.PhotoService = (*MockPhotoService)(nil)

// Submit implements service.PhotoService.
func (m *MockPhotoService) Submit(ctx context.Context, req service.SubmitRequest) (*domain.GenerationTask, error) {
	return m.SubmitFn(ctx, req)
}

// GetStatus implements service.PhotoService.
func (m *MockPhotoService) GetStatus(ctx context.Context, taskID uuid.UUID) (*service.StatusView, error) {
	return m.GetStatusFn(ctx, taskID)
}

// GetResult implements service.PhotoService.
func (m *MockPhotoService) GetResult(ctx context.Context, taskID uuid.UUID) (*service.ResultView, error) {
	return m.GetResultFn(ctx, taskID)
}

// MockGalleryService implements service.GalleryService with function fields.
type MockGalleryService struct {
	PublishFn func(ctx context.Context, task *domain.GenerationTask) (*domain.GalleryItem, error)
	ListFn    func(ctx context.Context, page, pageSize int) (*service.GalleryPage, error)
	GetFn     func(ctx context.Context, id uuid.UUID) (*domain.GalleryItem, error)
}

var _ service.GalleryService = (*MockGalleryService)(nil)

// Publish implements service.GalleryService.
func (m *MockGalleryService) Publish(ctx context.Context, task *domain.GenerationTask) (*domain.GalleryItem, error) {
	return m.PublishFn(ctx, task)
}

// List implements service.GalleryService.
func (m *MockGalleryService) List(ctx context.Context, page, pageSize int) (*service.GalleryPage, error) {
	return m.ListFn(ctx, page, pageSize)
}

// Get implements service.GalleryService.
func (m *MockGalleryService) Get(ctx context.Context, id uuid.UUID) (*domain.GalleryItem, error) {
	return m.GetFn(ctx, id)
}

// MockUserService implements service.UserService with function fields.
type MockUserService struct {
	LoginFn   func(ctx context.Context, code string) (*service.LoginResult, error)
	GetUserFn func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

var _ service.UserService = (*MockUserService)(nil)

// Login implements service.UserService.
func (m *MockUserService) Login(ctx context.Context, code string) (*service.LoginResult, error) {
	return m.LoginFn(ctx, code)
}

// GetUser implements service.UserService.
func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.GetUserFn(ctx, userID)
}
