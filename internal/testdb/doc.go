// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database. Tests call Open, which skips unless DATABASE_URL or
// MAGICPHOTO_TEST_DB_URL is set, and gets back a migrated, emptied database.
package testdb
