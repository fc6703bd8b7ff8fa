// Package store defines the persistence contracts for generation tasks,
// user accounts, and the gallery feed. Implementations live under
// internal/platform: an in-memory store for single-process deployments and
// tests, and a PostgreSQL store for production.
package store
