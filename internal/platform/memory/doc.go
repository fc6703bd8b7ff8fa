// Package memory provides an in-process implementation of the task, user,
// and gallery stores. It serializes every mutation behind a mutex and hands
// out copies, so callers can never observe or modify a record mid-update.
// Data does not survive a restart.
package memory
