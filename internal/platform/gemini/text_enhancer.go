package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/magicphoto-api/internal/config"
	"github.com/phrazzld/magicphoto-api/internal/generation"
	"google.golang.org/genai"
)

// TextEnhancer implements generation.PromptEnhancer with a Gemini text model.
type TextEnhancer struct {
	models  contentModels
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

var _ generation.PromptEnhancer = (*TextEnhancer)(nil)

// NewTextEnhancer creates an enhancer that calls cfg.TextModel through client.
func NewTextEnhancer(client *genai.Client, cfg config.LLMConfig, logger *slog.Logger) (*TextEnhancer, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: genai client cannot be nil", generation.ErrInvalidConfig)
	}
	return newTextEnhancer(client.Models, cfg, logger)
}

func newTextEnhancer(models contentModels, cfg config.LLMConfig, logger *slog.Logger) (*TextEnhancer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.TextModel == "" {
		return nil, fmt.Errorf("%w: text model cannot be empty", generation.ErrInvalidConfig)
	}
	return &TextEnhancer{
		models:  models,
		model:   cfg.TextModel,
		timeout: cfg.EnhancerTimeout(),
		logger:  logger.With("component", "text_enhancer", "model", cfg.TextModel),
	}, nil
}

// EnhancePrompt implements generation.PromptEnhancer.
func (e *TextEnhancer) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.models.GenerateContent(ctx, e.model, genai.Text(generation.BuildEnhancementPrompt(prompt)), nil)
	if err != nil {
		return "", classifyCallError(ctx, generation.ErrEnhancementFailed, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: %w: no candidates", generation.ErrEnhancementFailed, generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: %w", generation.ErrEnhancementFailed, generation.ErrContentBlocked)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: %w: empty text", generation.ErrEnhancementFailed, generation.ErrInvalidResponse)
	}

	e.logger.DebugContext(ctx, "prompt enhanced", "length", len(text))
	return text, nil
}
