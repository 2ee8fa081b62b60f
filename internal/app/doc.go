// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App has two phases. NewApp performs all setup: logging, task
// registration, taskfile loading, and attaching lifecycle observers to the
// scheduler. Run then composes the configured tasks and executes them once.
package app
