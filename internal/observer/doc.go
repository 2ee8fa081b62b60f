// Package observer delivers task lifecycle events from the scheduler to
// anything that wants to watch them.
//
// The scheduler is constructed with a single Observer and calls it when a
// task starts, stops, or errors. It never formats output itself, so console
// logging, metrics, and remote event streams are all just Observer
// implementations combined with Multi.
//
// Observers are purely observational: they cannot change whether a task runs
// or how its result is reported.
package observer
