// Package task runs photo generation in the background. A TaskRunner owns a
// bounded TaskQueue and a WorkerPool; PhotoGenerationTask drives one stored
// GenerationTask from pending to a terminal state, falling back through
// enhancement-only and original-photo tiers when the image provider fails.
package task
