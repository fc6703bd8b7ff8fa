// Package generation defines the boundary between the task pipeline and the
// external generative models: an image provider for the main path and a text
// model used to enhance prompts when the provider fails. Implementations live
// in internal/platform/gemini.
package generation
