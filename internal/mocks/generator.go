package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/magicphoto-api/internal/generation"
)

// MockImageProvider implements generation.ImageProvider for testing
type MockImageProvider struct {
	// GenerateImageFn allows test cases to mock the GenerateImage behavior
	GenerateImageFn func(ctx context.Context, req generation.ImageRequest) (*generation.GeneratedImage, error)

	// Default response values
	Image *generation.GeneratedImage
	Err   error

	mu       sync.Mutex
	requests []generation.ImageRequest
}

var _ generation.ImageProvider = (*MockImageProvider)(nil)

// GenerateImage implements the generation.ImageProvider interface
func (m *MockImageProvider) GenerateImage(
	ctx context.Context,
	req generation.ImageRequest,
) (*generation.GeneratedImage, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateImageFn != nil {
		return m.GenerateImageFn(ctx, req)
	}
	return m.Image, m.Err
}

// Requests returns a copy of every request received so far.
func (m *MockImageProvider) Requests() []generation.ImageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]generation.ImageRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// NewMockImageProviderWithBytes creates a provider that returns inline image data.
func NewMockImageProviderWithBytes(data []byte, mimeType string) *MockImageProvider {
	return &MockImageProvider{
		Image: &generation.GeneratedImage{Data: data, MIMEType: mimeType},
	}
}

// MockImageProviderThatFails creates a provider that simulates a generation failure
func MockImageProviderThatFails() *MockImageProvider {
	return &MockImageProvider{Err: generation.ErrGenerationFailed}
}

// MockImageProviderWithContentBlocked creates a provider that simulates a safety block
func MockImageProviderWithContentBlocked() *MockImageProvider {
	return &MockImageProvider{Err: generation.ErrContentBlocked}
}

// MockPromptEnhancer implements generation.PromptEnhancer for testing
type MockPromptEnhancer struct {
	EnhancePromptFn func(ctx context.Context, prompt string) (string, error)

	Enhanced string
	Err      error
}

var _ generation.PromptEnhancer = (*MockPromptEnhancer)(nil)

// EnhancePrompt implements the generation.PromptEnhancer interface
func (m *MockPromptEnhancer) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	if m.EnhancePromptFn != nil {
		return m.EnhancePromptFn(ctx, prompt)
	}
	return m.Enhanced, m.Err
}
