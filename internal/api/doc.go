// Package api adapts HTTP requests to the photo, gallery and user services.
// Handlers decode and validate input, call a service, and translate results
// and sentinel errors into JSON responses.
package api
