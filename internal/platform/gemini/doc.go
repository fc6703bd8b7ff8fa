// Package gemini implements the generation interfaces on Google's genai SDK:
// an Imagen-backed image provider and a Gemini text model used for prompt
// enhancement.
package gemini
