package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when the image provider fails for any general reason
	ErrGenerationFailed = errors.New("image generation failed")

	// ErrInvalidResponse is returned when a model response carries no usable content
	ErrInvalidResponse = errors.New("invalid response from generation model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by model safety filters")

	// ErrTimeout is returned when a model call exceeds its deadline
	ErrTimeout = errors.New("generation model call timed out")

	// ErrEnhancementFailed is returned when the auxiliary text model cannot produce a description
	ErrEnhancementFailed = errors.New("prompt enhancement failed")

	// ErrInvalidConfig is returned when a provider configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
