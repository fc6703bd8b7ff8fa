package generation

import (
	"context"
	"fmt"
)

// ImageRequest describes one call to an image provider.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
	SampleCount    int
}

// GeneratedImage is a provider result. Exactly one of Data or URL is set:
// Data holds inline image bytes, URL a reference the provider already hosts.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
	URL      string
}

// ImageProvider is the boundary to the external image generation model.
type ImageProvider interface {
	// GenerateImage returns the first usable image for req. Any failure,
	// including an empty or filtered response, is reported as an error
	// wrapping one of the package sentinels.
	GenerateImage(ctx context.Context, req ImageRequest) (*GeneratedImage, error)
}

// PromptEnhancer is the boundary to the auxiliary text model used when image
// generation fails.
type PromptEnhancer interface {
	// EnhancePrompt turns a short user prompt into a detailed description.
	EnhancePrompt(ctx context.Context, prompt string) (string, error)
}

// BuildImagePrompt composes the provider prompt from the source photo and the user's request.
func BuildImagePrompt(photoURL, prompt string) string {
	return fmt.Sprintf(
		"Based on the image at %s, create a magical transformation: %s. High quality, detailed, artistic style.",
		photoURL,
		prompt,
	)
}

// BuildEnhancementPrompt composes the instruction sent to the auxiliary text model.
func BuildEnhancementPrompt(prompt string) string {
	return fmt.Sprintf(
		"Based on this prompt: %q, generate a detailed artistic description for an AI image generation. "+
			"Be creative and descriptive.",
		prompt,
	)
}
