// Package postgres implements the store interfaces on PostgreSQL through the
// pgx stdlib driver. Schema changes are embedded goose migrations applied by
// Migrate.
package postgres
