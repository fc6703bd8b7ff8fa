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

// ImagenProvider implements generation.ImageProvider with an Imagen model.
type ImagenProvider struct {
	models  imageModels
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

var _ generation.ImageProvider = (*ImagenProvider)(nil)

// NewImagenProvider creates a provider that calls cfg.ImageModel through client.
func NewImagenProvider(client *genai.Client, cfg config.LLMConfig, logger *slog.Logger) (*ImagenProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: genai client cannot be nil", generation.ErrInvalidConfig)
	}
	return newImagenProvider(client.Models, cfg, logger)
}

func newImagenProvider(models imageModels, cfg config.LLMConfig, logger *slog.Logger) (*ImagenProvider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ImageModel == "" {
		return nil, fmt.Errorf("%w: image model cannot be empty", generation.ErrInvalidConfig)
	}
	return &ImagenProvider{
		models:  models,
		model:   cfg.ImageModel,
		timeout: cfg.ProviderTimeout(),
		logger:  logger.With("component", "imagen_provider", "model", cfg.ImageModel),
	}, nil
}

// GenerateImage implements generation.ImageProvider.
func (p *ImagenProvider) GenerateImage(
	ctx context.Context,
	req generation.ImageRequest,
) (*generation.GeneratedImage, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	sampleCount := req.SampleCount
	if sampleCount < 1 {
		sampleCount = 1
	}

	cfg := &genai.GenerateImagesConfig{
		NumberOfImages:   int32(sampleCount),
		AspectRatio:      req.AspectRatio,
		NegativePrompt:   req.NegativePrompt,
		PersonGeneration: genai.PersonGenerationAllowAdult,
	}

	start := time.Now()
	p.logger.DebugContext(ctx, "calling image model", "prompt_length", len(req.Prompt))

	resp, err := p.models.GenerateImages(ctx, p.model, req.Prompt, cfg)
	if err != nil {
		return nil, classifyCallError(ctx, generation.ErrGenerationFailed, err)
	}

	image, err := firstUsableImage(resp)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "image model call succeeded",
		"duration_ms", time.Since(start).Milliseconds(),
		"inline", len(image.Data) > 0)
	return image, nil
}

// firstUsableImage picks the first image carrying inline bytes or a remote reference.
func firstUsableImage(resp *genai.GenerateImagesResponse) (*generation.GeneratedImage, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("%w: %w: no images returned", generation.ErrGenerationFailed, generation.ErrInvalidResponse)
	}

	var filtered string
	for _, generated := range resp.GeneratedImages {
		if generated == nil {
			continue
		}
		if generated.RAIFilteredReason != "" {
			filtered = generated.RAIFilteredReason
		}
		if generated.Image == nil {
			continue
		}
		if len(generated.Image.ImageBytes) > 0 {
			mimeType := generated.Image.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &generation.GeneratedImage{Data: generated.Image.ImageBytes, MIMEType: mimeType}, nil
		}
		if url, ok := publicImageURL(generated.Image.GCSURI); ok {
			return &generation.GeneratedImage{URL: url, MIMEType: generated.Image.MIMEType}, nil
		}
	}

	if filtered != "" {
		return nil, fmt.Errorf("%w: %w: %s", generation.ErrGenerationFailed, generation.ErrContentBlocked, filtered)
	}
	return nil, fmt.Errorf("%w: %w: images carried no data", generation.ErrGenerationFailed, generation.ErrInvalidResponse)
}

const gcsPublicHost = "https://storage.googleapis.com/"

// publicImageURL turns a Cloud Storage reference into a URL clients can fetch.
// gs://bucket/object becomes the bucket's public HTTPS endpoint. HTTP(S) URIs
// pass through unchanged and anything else is rejected.
func publicImageURL(uri string) (string, bool) {
	if path, ok := strings.CutPrefix(uri, "gs://"); ok {
		bucket, object, found := strings.Cut(path, "/")
		if !found || bucket == "" || object == "" {
			return "", false
		}
		return gcsPublicHost + bucket + "/" + object, true
	}
	if strings.HasPrefix(uri, "https://") || strings.HasPrefix(uri, "http://") {
		return uri, true
	}
	return "", false
}
