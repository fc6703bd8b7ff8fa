// Package logger provides structured logging for the application.
//
// It builds JSON loggers on log/slog with a configurable level and carries
// request-scoped loggers through context.Context, so that trace IDs attached
// by the HTTP middleware follow a request into services and stores.
package logger
