// Package scheduler runs registered tasks as parallel or series
// compositions.
//
// A composition is built from task names and returned as a Runnable. Names are
// resolved against the registry only when the Runnable is invoked, so an
// unknown name fails before any task starts. Every task that starts reports
// OnTaskStart to the configured observer and later exactly one of OnTaskStop
// or OnTaskError. A task still running when the context ends reports neither
// and is left to the observer to flag as incomplete.
package scheduler
