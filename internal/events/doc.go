// Package events decouples request handling from background work.
//
// Services publish a TaskRequestEvent after persisting a record; handlers
// registered on the emitter turn the event into a unit of background work.
// Neither side imports the other, which keeps internal/service free of
// internal/task.
//
// The primary components are:
// - TaskRequestEvent: a typed request carrying a JSON payload
// - EventHandler: implemented by consumers such as the task factory handler
// - EventEmitter: implemented by InMemoryEventEmitter
package events
