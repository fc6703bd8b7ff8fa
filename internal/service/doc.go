// Package service contains the application use cases: accepting generation
// requests against a user's point balance, projecting task state for
// pollers, publishing results to the gallery, and logging users in.
//
// Services depend on the store contracts in internal/store and on
// internal/events for dispatch; they never import storage or transport
// implementations. Expected conditions are reported as the sentinel errors
// in errors.go, which the API layer maps to HTTP statuses.
package service
