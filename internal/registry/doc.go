// Package registry provides the central "glue" for the task system.
//
// The Registry stores every task the launcher can run, keyed by name. Go
// modules register built-in tasks and named actions at startup; HCL taskfiles
// add further tasks that are either backed by an action (for example
// `print = "hello"`) or compose other tasks with `parallel` or `series`.
//
// Before anything runs, the registry is validated so that every composition
// refers only to registered tasks and no composition contains itself.
package registry
