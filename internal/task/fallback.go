package task

import (
	"context"

	"github.com/phrazzld/magicphoto-api/internal/domain"
)

// Fallback tiers, tried in order after the image provider fails.
const (
	tierEnhanced = "enhanced"
	tierOriginal = "original"
)

// runFallback completes the task without a provider image. The first tier
// asks the text model for a richer description and returns the original
// photo with it; the second returns the original photo alone.
func (t *PhotoGenerationTask) runFallback(ctx context.Context, record *domain.GenerationTask) {
	if t.deps.Enhancer != nil {
		if t.enhancedTier(ctx, record) {
			return
		}
	}
	t.originalTier(ctx, record)
}

func (t *PhotoGenerationTask) enhancedTier(ctx context.Context, record *domain.GenerationTask) bool {
	logger := t.logger.With("tier", tierEnhanced)

	t.checkpoint(ctx, domain.ProgressEnhancing)
	enhanced, err := t.deps.Enhancer.EnhancePrompt(ctx, record.Prompt)
	if err != nil {
		logger.WarnContext(ctx, "prompt enhancement failed", "error", err)
		return false
	}
	logger.DebugContext(ctx, "prompt enhanced", "length", len(enhanced))

	t.checkpoint(ctx, domain.ProgressResponseParsed)
	return t.complete(ctx, record.PhotoURL, record.PhotoURL, enhanced)
}

// originalTier cannot fail on its own; a store error is logged and the
// record is left for the restart sweep.
func (t *PhotoGenerationTask) originalTier(ctx context.Context, record *domain.GenerationTask) {
	t.logger.InfoContext(ctx, "completing with original photo", "tier", tierOriginal)
	t.complete(ctx, record.PhotoURL, record.PhotoURL, "")
}
