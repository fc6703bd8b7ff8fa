package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/magicphoto-api/internal/config"
	"github.com/phrazzld/magicphoto-api/internal/generation"
	"github.com/phrazzld/magicphoto-api/internal/redact"
	"google.golang.org/genai"
)

// imageModels is the subset of genai.Models used by ImagenProvider.
type imageModels interface {
	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// contentModels is the subset of genai.Models used by TextEnhancer.
type contentModels interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// NewClient creates a genai client for the Gemini API backend.
func NewClient(ctx context.Context, cfg config.LLMConfig) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	return client, nil
}

// classifyCallError maps a failed model call onto a generation sentinel.
// The cause is kept as redacted text since API errors can echo the key.
func classifyCallError(ctx context.Context, sentinel, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %s", sentinel, generation.ErrTimeout, redact.Error(err))
	}
	return fmt.Errorf("%w: %s", sentinel, redact.Error(err))
}
